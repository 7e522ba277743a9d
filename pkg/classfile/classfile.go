package classfile

import (
	"fmt"
)

// Magic is the class-file signature.
const Magic = 0xCAFEBABE

// InvalidMagicError is returned by New when the magic is not 0xCAFEBABE.
type InvalidMagicError struct {
	Magic uint32
}

func (e *InvalidMagicError) Error() string {
	return fmt.Sprintf("invalid magic number: 0x%X (expected 0xCAFEBABE)", e.Magic)
}

// RawClass holds the decoded but unresolved fields of a class file.
type RawClass struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  uint16
	ThisClass    uint16
	// SuperClass is 0 for java/lang/Object.
	SuperClass uint16
	Interfaces []uint16
	Fields     []FieldInfo
	Methods    []MethodInfo
	Attributes []AttributeInfo
}

// ClassFile is a validated, resolved class. It is immutable after New.
type ClassFile struct {
	minorVersion uint16
	majorVersion uint16
	pool         *ConstantPool
	accessFlags  AccessFlags
	thisClass    *ConstantClass
	thisName     string
	superClass   *ConstantClass
	superName    string
	interfaces   []uint16
	fields       []FieldInfo
	methods      []MethodInfo
	attributes   []AttributeInfo
}

// New validates raw and resolves its this/super class entries.
func New(raw RawClass) (*ClassFile, error) {
	if raw.Magic != Magic {
		return nil, &InvalidMagicError{Magic: raw.Magic}
	}
	if raw.ConstantPool == nil {
		return nil, fmt.Errorf("class file has no constant pool")
	}

	cf := &ClassFile{
		minorVersion: raw.MinorVersion,
		majorVersion: raw.MajorVersion,
		pool:         raw.ConstantPool,
		accessFlags:  DecodeAccessFlags(raw.AccessFlags),
		interfaces:   append([]uint16(nil), raw.Interfaces...),
		fields:       append([]FieldInfo(nil), raw.Fields...),
		methods:      append([]MethodInfo(nil), raw.Methods...),
		attributes:   append([]AttributeInfo(nil), raw.Attributes...),
	}

	var err error
	cf.thisClass, cf.thisName, err = cf.resolveClass(raw.ThisClass)
	if err != nil {
		return nil, fmt.Errorf("resolving this_class: %w", err)
	}
	if raw.SuperClass != 0 {
		cf.superClass, cf.superName, err = cf.resolveClass(raw.SuperClass)
		if err != nil {
			return nil, fmt.Errorf("resolving super_class: %w", err)
		}
	}
	return cf, nil
}

func (cf *ClassFile) resolveClass(index uint16) (*ConstantClass, string, error) {
	class, err := cf.pool.Class(index)
	if err != nil {
		return nil, "", err
	}
	name, err := cf.pool.Utf8(class.NameIndex)
	if err != nil {
		return nil, "", fmt.Errorf("class name: %w", err)
	}
	return class, name.Value, nil
}

// ClassNameAt resolves a CONSTANT_Class entry to its internal name.
func (cf *ClassFile) ClassNameAt(index uint16) (string, error) {
	_, name, err := cf.resolveClass(index)
	return name, err
}

// Name returns the internal name of this class, e.g. "java/lang/String".
func (cf *ClassFile) Name() string {
	return cf.thisName
}

// ThisClass returns the pool entry for this class.
func (cf *ClassFile) ThisClass() *ConstantClass {
	return cf.thisClass
}

// SuperClass returns the pool entry for the superclass, nil for the root.
func (cf *ClassFile) SuperClass() *ConstantClass {
	return cf.superClass
}

// SuperClassName returns the internal name of the superclass. ok is false
// for the root of the hierarchy.
func (cf *ClassFile) SuperClassName() (name string, ok bool) {
	if cf.superClass == nil {
		return "", false
	}
	return cf.superName, true
}

// Version returns the major and minor version.
func (cf *ClassFile) Version() (major, minor uint16) {
	return cf.majorVersion, cf.minorVersion
}

func (cf *ClassFile) AccessFlags() AccessFlags {
	return cf.accessFlags
}

// Interfaces returns the raw interface indices.
func (cf *ClassFile) Interfaces() []uint16 {
	return cf.interfaces
}

// InterfaceNames resolves the interface indices to internal names.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.interfaces))
	for i, idx := range cf.interfaces {
		name, err := cf.ClassNameAt(idx)
		if err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}
		names[i] = name
	}
	return names, nil
}

func (cf *ClassFile) Fields() []FieldInfo {
	return cf.fields
}

func (cf *ClassFile) Methods() []MethodInfo {
	return cf.methods
}

func (cf *ClassFile) Attributes() []AttributeInfo {
	return cf.attributes
}

// ConstantPool returns the pool, used by the interpreter for live resolution.
func (cf *ClassFile) ConstantPool() *ConstantPool {
	return cf.pool
}

// FindMethod finds a method by name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.methods {
		if cf.methods[i].Name == name && cf.methods[i].Descriptor == descriptor {
			return &cf.methods[i]
		}
	}
	return nil
}

// FindField finds a field by name.
func (cf *ClassFile) FindField(name string) *FieldInfo {
	for i := range cf.fields {
		if cf.fields[i].Name == name {
			return &cf.fields[i]
		}
	}
	return nil
}
