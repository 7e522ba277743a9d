package classfile

import (
	"fmt"
)

// Tag is a constant pool entry tag.
type Tag uint8

// Constant pool tags
const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

var tagNames = map[Tag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagFloat:              "Float",
	TagLong:               "Long",
	TagDouble:             "Double",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
	TagMethodHandle:       "MethodHandle",
	TagMethodType:         "MethodType",
	TagDynamic:            "Dynamic",
	TagInvokeDynamic:      "InvokeDynamic",
	TagModule:             "Module",
	TagPackage:            "Package",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Constant is a constant pool entry. The set of implementations is closed:
// only the types in this package satisfy it.
type Constant interface {
	Tag() Tag
	constant()
}

type ConstantUtf8 struct {
	Value string
}

type ConstantInteger struct {
	Value int32
}

type ConstantFloat struct {
	Value float32
}

type ConstantLong struct {
	Value int64
}

type ConstantDouble struct {
	Value float64
}

type ConstantClass struct {
	NameIndex uint16
}

type ConstantString struct {
	StringIndex uint16
}

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

type ConstantInvokeDynamic struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

// ConstantUnsupported stands in for entries whose contents are not modeled
// (method handles, method types, modules, packages).
type ConstantUnsupported struct {
	RawTag Tag
}

func (*ConstantUtf8) Tag() Tag               { return TagUtf8 }
func (*ConstantInteger) Tag() Tag            { return TagInteger }
func (*ConstantFloat) Tag() Tag              { return TagFloat }
func (*ConstantLong) Tag() Tag               { return TagLong }
func (*ConstantDouble) Tag() Tag             { return TagDouble }
func (*ConstantClass) Tag() Tag              { return TagClass }
func (*ConstantString) Tag() Tag             { return TagString }
func (*ConstantFieldref) Tag() Tag           { return TagFieldref }
func (*ConstantMethodref) Tag() Tag          { return TagMethodref }
func (*ConstantInterfaceMethodref) Tag() Tag { return TagInterfaceMethodref }
func (*ConstantNameAndType) Tag() Tag        { return TagNameAndType }
func (*ConstantInvokeDynamic) Tag() Tag      { return TagInvokeDynamic }
func (c *ConstantUnsupported) Tag() Tag      { return c.RawTag }

func (*ConstantUtf8) constant()               {}
func (*ConstantInteger) constant()            {}
func (*ConstantFloat) constant()              {}
func (*ConstantLong) constant()               {}
func (*ConstantDouble) constant()             {}
func (*ConstantClass) constant()              {}
func (*ConstantString) constant()             {}
func (*ConstantFieldref) constant()           {}
func (*ConstantMethodref) constant()          {}
func (*ConstantInterfaceMethodref) constant() {}
func (*ConstantNameAndType) constant()        {}
func (*ConstantInvokeDynamic) constant()      {}
func (*ConstantUnsupported) constant()        {}

// InvalidConstantIndexError is returned for an index outside [1, size] or
// pointing at the unusable second slot of a long or double.
type InvalidConstantIndexError struct {
	Index uint16
	Size  int
}

func (e *InvalidConstantIndexError) Error() string {
	return fmt.Sprintf("invalid constant pool index %d (pool size %d)", e.Index, e.Size)
}

// ConstantTypeMismatchError is returned when an entry does not carry the tag
// the caller asked for.
type ConstantTypeMismatchError struct {
	Index    uint16
	Expected Tag
	Actual   Tag
}

func (e *ConstantTypeMismatchError) Error() string {
	return fmt.Sprintf("constant pool index %d is %s, expected %s", e.Index, e.Actual, e.Expected)
}

// ConstantPool is the 1-indexed constant table of a class. It is read-only
// once built.
type ConstantPool struct {
	entries []Constant
}

// NewConstantPool builds a pool from its entries; entries[i] is pool index
// i+1. Unusable slots (after a long or double) are nil.
func NewConstantPool(entries []Constant) *ConstantPool {
	cp := make([]Constant, len(entries))
	copy(cp, entries)
	return &ConstantPool{entries: cp}
}

// Size returns the number of slots, so valid indices are 1..Size().
func (p *ConstantPool) Size() int {
	return len(p.entries)
}

// Get returns the entry at index.
func (p *ConstantPool) Get(index uint16) (Constant, error) {
	if index == 0 || int(index) > len(p.entries) || p.entries[index-1] == nil {
		return nil, &InvalidConstantIndexError{Index: index, Size: len(p.entries)}
	}
	return p.entries[index-1], nil
}

func lookup[T Constant](p *ConstantPool, index uint16, want Tag) (T, error) {
	var zero T
	c, err := p.Get(index)
	if err != nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, &ConstantTypeMismatchError{Index: index, Expected: want, Actual: c.Tag()}
	}
	return typed, nil
}

func (p *ConstantPool) Utf8(index uint16) (*ConstantUtf8, error) {
	return lookup[*ConstantUtf8](p, index, TagUtf8)
}

func (p *ConstantPool) Integer(index uint16) (*ConstantInteger, error) {
	return lookup[*ConstantInteger](p, index, TagInteger)
}

func (p *ConstantPool) Class(index uint16) (*ConstantClass, error) {
	return lookup[*ConstantClass](p, index, TagClass)
}

func (p *ConstantPool) String(index uint16) (*ConstantString, error) {
	return lookup[*ConstantString](p, index, TagString)
}

func (p *ConstantPool) Fieldref(index uint16) (*ConstantFieldref, error) {
	return lookup[*ConstantFieldref](p, index, TagFieldref)
}

func (p *ConstantPool) Methodref(index uint16) (*ConstantMethodref, error) {
	return lookup[*ConstantMethodref](p, index, TagMethodref)
}

func (p *ConstantPool) InterfaceMethodref(index uint16) (*ConstantInterfaceMethodref, error) {
	return lookup[*ConstantInterfaceMethodref](p, index, TagInterfaceMethodref)
}

func (p *ConstantPool) NameAndType(index uint16) (*ConstantNameAndType, error) {
	return lookup[*ConstantNameAndType](p, index, TagNameAndType)
}
