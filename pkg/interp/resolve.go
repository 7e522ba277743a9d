package interp

import (
	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/descriptor"
)

// memberRef is a field or method reference resolved to names.
type memberRef struct {
	Class      string
	Name       string
	Descriptor string
}

// resolver follows symbolic references through a constant pool one hop at a
// time, so a failure names the hop that broke.
type resolver struct {
	pool  *classfile.ConstantPool
	index uint16
}

func (r resolver) wrap(hop string, err error) error {
	return &UnresolvedSymbolicReferenceError{Index: r.index, Hop: hop, Err: err}
}

func (r resolver) utf8(hop string, index uint16) (string, error) {
	u, err := r.pool.Utf8(index)
	if err != nil {
		return "", r.wrap(hop, err)
	}
	return u.Value, nil
}

func (r resolver) className(classIndex uint16) (string, error) {
	c, err := r.pool.Class(classIndex)
	if err != nil {
		return "", r.wrap("class", err)
	}
	return r.utf8("class name", c.NameIndex)
}

func (r resolver) member(classIndex, natIndex uint16) (memberRef, error) {
	class, err := r.className(classIndex)
	if err != nil {
		return memberRef{}, err
	}
	nat, err := r.pool.NameAndType(natIndex)
	if err != nil {
		return memberRef{}, r.wrap("name-and-type", err)
	}
	name, err := r.utf8("member name", nat.NameIndex)
	if err != nil {
		return memberRef{}, err
	}
	desc, err := r.utf8("member descriptor", nat.DescriptorIndex)
	if err != nil {
		return memberRef{}, err
	}
	return memberRef{Class: class, Name: name, Descriptor: desc}, nil
}

func (r resolver) fieldref() (memberRef, error) {
	f, err := r.pool.Fieldref(r.index)
	if err != nil {
		return memberRef{}, r.wrap("fieldref", err)
	}
	return r.member(f.ClassIndex, f.NameAndTypeIndex)
}

func (r resolver) methodref(iface bool) (memberRef, error) {
	if iface {
		m, err := r.pool.InterfaceMethodref(r.index)
		if err != nil {
			return memberRef{}, r.wrap("interface methodref", err)
		}
		return r.member(m.ClassIndex, m.NameAndTypeIndex)
	}
	m, err := r.pool.Methodref(r.index)
	if err != nil {
		return memberRef{}, r.wrap("methodref", err)
	}
	return r.member(m.ClassIndex, m.NameAndTypeIndex)
}

func (r resolver) stringConstant() (string, error) {
	c, err := r.pool.Get(r.index)
	if err != nil {
		return "", r.wrap("constant", err)
	}
	s, ok := c.(*classfile.ConstantString)
	if !ok {
		return "", &UnexpectedConstantKindError{Index: r.index, Tag: c.Tag()}
	}
	return r.utf8("string value", s.StringIndex)
}

func (r resolver) methodDescriptor(ref memberRef) (descriptor.Method, error) {
	desc, err := descriptor.ParseMethod(ref.Descriptor)
	if err != nil {
		return descriptor.Method{}, r.wrap("method descriptor", err)
	}
	return desc, nil
}
