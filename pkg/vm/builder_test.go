package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/daimatz/minijvm/pkg/classfile"
)

const (
	publicStatic = uint16(classfile.AccPublic | classfile.AccStatic)
	public       = uint16(classfile.AccPublic)
)

// classBuilder assembles a ClassFile in memory, interning constant pool
// entries as they are requested.
type classBuilder struct {
	name     string
	super    string
	entries  []classfile.Constant
	interned map[string]uint16
	fields   []classfile.FieldInfo
	methods  []classfile.MethodInfo
}

func newClassBuilder(name, super string) *classBuilder {
	return &classBuilder{name: name, super: super, interned: map[string]uint16{}}
}

func (b *classBuilder) intern(key string, c func() classfile.Constant) uint16 {
	if idx, ok := b.interned[key]; ok {
		return idx
	}
	b.entries = append(b.entries, c())
	idx := uint16(len(b.entries))
	b.interned[key] = idx
	return idx
}

func (b *classBuilder) utf8(s string) uint16 {
	return b.intern("utf8:"+s, func() classfile.Constant { return &classfile.ConstantUtf8{Value: s} })
}

func (b *classBuilder) class(name string) uint16 {
	n := b.utf8(name)
	return b.intern("class:"+name, func() classfile.Constant { return &classfile.ConstantClass{NameIndex: n} })
}

func (b *classBuilder) str(s string) int {
	u := b.utf8(s)
	return int(b.intern("string:"+s, func() classfile.Constant { return &classfile.ConstantString{StringIndex: u} }))
}

func (b *classBuilder) nat(name, desc string) uint16 {
	n, d := b.utf8(name), b.utf8(desc)
	return b.intern("nat:"+name+desc, func() classfile.Constant {
		return &classfile.ConstantNameAndType{NameIndex: n, DescriptorIndex: d}
	})
}

func (b *classBuilder) fieldref(class, name, desc string) int {
	c, nt := b.class(class), b.nat(name, desc)
	return int(b.intern("field:"+class+"."+name, func() classfile.Constant {
		return &classfile.ConstantFieldref{ClassIndex: c, NameAndTypeIndex: nt}
	}))
}

func (b *classBuilder) methodref(class, name, desc string) int {
	c, nt := b.class(class), b.nat(name, desc)
	return int(b.intern("method:"+class+"."+name+desc, func() classfile.Constant {
		return &classfile.ConstantMethodref{ClassIndex: c, NameAndTypeIndex: nt}
	}))
}

func (b *classBuilder) field(flags uint16, name, desc string) *classBuilder {
	b.fields = append(b.fields, classfile.FieldInfo{AccessFlags: flags, Name: name, Descriptor: desc})
	return b
}

func (b *classBuilder) method(flags uint16, name, desc string, maxLocals uint16, code ...classfile.Instruction) *classBuilder {
	m := classfile.MethodInfo{AccessFlags: flags, Name: name, Descriptor: desc}
	if code != nil {
		m.Code = &classfile.CodeAttribute{MaxStack: 8, MaxLocals: maxLocals, Instructions: code}
	}
	b.methods = append(b.methods, m)
	return b
}

func (b *classBuilder) build(t *testing.T) *classfile.ClassFile {
	t.Helper()
	this := b.class(b.name)
	var super uint16
	if b.super != "" {
		super = b.class(b.super)
	}
	cf, err := classfile.New(classfile.RawClass{
		Magic:        classfile.Magic,
		MajorVersion: 52,
		ConstantPool: classfile.NewConstantPool(b.entries),
		AccessFlags:  uint16(classfile.AccPublic | classfile.AccSuper),
		ThisClass:    this,
		SuperClass:   super,
		Fields:       b.fields,
		Methods:      b.methods,
	})
	if err != nil {
		t.Fatalf("building %s: %v", b.name, err)
	}
	return cf
}

func ins(op classfile.Opcode, operands ...int) classfile.Instruction {
	return classfile.Instruction{Opcode: op, Operands: operands}
}

// classBytes encodes an empty class extending java/lang/Object.
func classBytes(name string) []byte {
	var b bytes.Buffer
	w := func(v any) { binary.Write(&b, binary.BigEndian, v) }
	utf8 := func(s string) {
		w(uint8(classfile.TagUtf8))
		w(uint16(len(s)))
		b.WriteString(s)
	}

	w(uint32(classfile.Magic))
	w(uint16(0))
	w(uint16(52))
	w(uint16(5)) // constant_pool_count
	utf8(name)
	w(uint8(classfile.TagClass))
	w(uint16(1))
	utf8("java/lang/Object")
	w(uint8(classfile.TagClass))
	w(uint16(3))

	w(uint16(classfile.AccPublic | classfile.AccSuper))
	w(uint16(2)) // this_class
	w(uint16(4)) // super_class
	w(uint16(0)) // interfaces_count
	w(uint16(0)) // fields_count
	w(uint16(0)) // methods_count
	w(uint16(0)) // attributes_count
	return b.Bytes()
}

// mapLoader serves prebuilt classes and counts lookups.
type mapLoader struct {
	classes map[string]*classfile.ClassFile
	loads   atomic.Int32
}

func newMapLoader(classes ...*classfile.ClassFile) *mapLoader {
	l := &mapLoader{classes: map[string]*classfile.ClassFile{}}
	for _, cf := range classes {
		l.classes[cf.Name()] = cf
	}
	return l
}

func (l *mapLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	l.loads.Add(1)
	cf, ok := l.classes[name]
	if !ok {
		return nil, fmt.Errorf("no class %s", name)
	}
	return cf, nil
}
