package vm

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/descriptor"
	"github.com/daimatz/minijvm/pkg/interp"
)

// Class is a class known to the VM. Built-in classes have no File.
type Class struct {
	File    *classfile.ClassFile
	name    string
	statics cmap.ConcurrentMap
}

// ClassName returns the internal name, e.g. "java/lang/System".
func (c *Class) ClassName() string {
	return c.name
}

// Static returns the value of a static field declared by c.
func (c *Class) Static(name string) (interp.Value, bool) {
	v, ok := c.statics.Get(name)
	if !ok {
		return interp.Value{}, false
	}
	return v.(interp.Value), true
}

// SetStatic stores a static field declared by c.
func (c *Class) SetStatic(name string, v interp.Value) {
	c.statics.Set(name, v)
}

// superName returns the superclass name, or false for a root or built-in.
func (c *Class) superName() (string, bool) {
	if c.File == nil {
		return "", false
	}
	return c.File.SuperClassName()
}

// newClass links cf and gives its static fields their default values.
// Static initializers are not run.
func newClass(cf *classfile.ClassFile) (*Class, error) {
	c := &Class{File: cf, name: cf.Name(), statics: cmap.New()}
	for _, f := range cf.Fields() {
		if !f.IsStatic() {
			continue
		}
		t, err := descriptor.ParseField(f.Descriptor)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", c.name, f.Name, err)
		}
		c.statics.Set(f.Name, interp.DefaultValue(t))
	}
	return c, nil
}

func newBuiltinClass(name string, statics map[string]interp.Value) *Class {
	c := &Class{name: name, statics: cmap.New()}
	for k, v := range statics {
		c.statics.Set(k, v)
	}
	return c
}
