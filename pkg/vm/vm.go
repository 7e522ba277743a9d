package vm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cmap "github.com/orcaman/concurrent-map"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/singleflight"

	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/descriptor"
	"github.com/daimatz/minijvm/pkg/interp"
	"github.com/daimatz/minijvm/pkg/native"
)

var log = commonlog.GetLogger("minijvm.vm")

// DefaultMaxFrameDepth is the default maximum number of nested method calls.
const DefaultMaxFrameDepth = 1024

const (
	mainMethod     = "main"
	mainDescriptor = "([Ljava/lang/String;)V"
)

var printStreamType = descriptor.Reference("java/io/PrintStream")

// VM is the runtime behind the interpreter: it loads and links classes,
// stores static fields and dispatches method calls to fresh interpreter
// frames.
type VM struct {
	Stdout        io.Writer
	Stderr        io.Writer
	MaxFrameDepth int

	loader  ClassLoader
	classes cmap.ConcurrentMap
	group   singleflight.Group
	natives *interp.Natives
}

var (
	_ interp.Runtime        = (*VM)(nil)
	_ interp.Runtime        = (*thread)(nil)
	_ interp.SpecialInvoker = (*thread)(nil)
)

// NewVM creates a VM loading classes through loader, which may be nil.
func NewVM(loader ClassLoader) *VM {
	return &VM{
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		MaxFrameDepth: DefaultMaxFrameDepth,
		loader:        loader,
		classes:       cmap.New(),
		natives:       newNatives(),
	}
}

// Natives returns the VM's native method registry.
func (v *VM) Natives() *interp.Natives {
	return v.natives
}

// Define registers an already parsed class, e.g. one given on the command
// line by path.
func (v *VM) Define(cf *classfile.ClassFile) (*Class, error) {
	c, err := newClass(cf)
	if err != nil {
		return nil, err
	}
	if !v.classes.SetIfAbsent(c.name, c) {
		return nil, fmt.Errorf("class %s is already defined", c.name)
	}
	log.Infof("defined class %s", c.name)
	return c, nil
}

// Class returns the class named name, loading it if needed.
func (v *VM) Class(name string) (*Class, error) {
	name = strings.ReplaceAll(name, ".", "/")
	if c, ok := v.classes.Get(name); ok {
		return c.(*Class), nil
	}
	c, err, _ := v.group.Do(name, func() (interface{}, error) {
		if c, ok := v.classes.Get(name); ok {
			return c, nil
		}
		c, err := v.loadClass(name)
		if err != nil {
			return nil, err
		}
		v.classes.Set(name, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return c.(*Class), nil
}

func (v *VM) loadClass(name string) (*Class, error) {
	if c := v.builtinClass(name); c != nil {
		log.Debugf("using built-in class %s", name)
		return c, nil
	}
	if v.loader == nil {
		return nil, &interp.ClassNotFoundError{Name: name}
	}
	cf, err := v.loader.LoadClass(name)
	if err != nil {
		return nil, &interp.ClassNotFoundError{Name: name, Err: err}
	}
	c, err := newClass(cf)
	if err != nil {
		return nil, err
	}
	log.Infof("loaded class %s", name)
	return c, nil
}

// builtinClass returns the classes the VM provides itself. System is built
// in so that out and err exist without running its static initializer.
func (v *VM) builtinClass(name string) *Class {
	switch name {
	case "java/lang/Object":
		return newBuiltinClass(name, nil)
	case "java/lang/System":
		return newBuiltinClass(name, map[string]interp.Value{
			"out": interp.RefValue(printStreamType, native.NewPrintStream("out", v.Stdout)),
			"err": interp.RefValue(printStreamType, native.NewPrintStream("err", v.Stderr)),
		})
	}
	return nil
}

// NewObject allocates an instance of the named class with its instance
// fields, including inherited ones, set to their defaults.
func (v *VM) NewObject(className string) (*Object, error) {
	c, err := v.Class(className)
	if err != nil {
		return nil, err
	}
	obj := &Object{Class: c, Fields: cmap.New(), id: objectIDs.Add(1)}
	for cur := c; cur != nil; {
		if cur.File != nil {
			for _, f := range cur.File.Fields() {
				if f.IsStatic() || obj.Fields.Has(f.Name) {
					continue
				}
				t, err := descriptor.ParseField(f.Descriptor)
				if err != nil {
					return nil, fmt.Errorf("field %s.%s: %w", cur.name, f.Name, err)
				}
				obj.Fields.Set(f.Name, interp.DefaultValue(t))
			}
		}
		if cur, err = v.superClass(cur); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (v *VM) superClass(c *Class) (*Class, error) {
	name, ok := c.superName()
	if !ok {
		return nil, nil
	}
	return v.Class(name)
}

// findMethod looks up name+desc on c and then its superclasses.
func (v *VM) findMethod(c *Class, name, desc string) (*Class, *classfile.MethodInfo, error) {
	for cur := c; cur != nil; {
		if cur.File != nil {
			if m := cur.File.FindMethod(name, desc); m != nil {
				return cur, m, nil
			}
		}
		var err error
		if cur, err = v.superClass(cur); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, &MethodNotFoundError{Class: c.name, Name: name, Descriptor: desc}
}

// ResolveClass implements interp.Runtime.
func (v *VM) ResolveClass(name string) (interp.ClassHandle, error) {
	c, err := v.Class(name)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ReadStaticField implements interp.Runtime. Fields inherited from
// superclasses are found too.
func (v *VM) ReadStaticField(class interp.ClassHandle, fieldName string) (interp.Value, error) {
	c, ok := class.(*Class)
	if !ok {
		return interp.Value{}, fmt.Errorf("foreign class handle %T", class)
	}
	for cur := c; cur != nil; {
		if val, ok := cur.Static(fieldName); ok {
			return val, nil
		}
		var err error
		if cur, err = v.superClass(cur); err != nil {
			return interp.Value{}, err
		}
	}
	return interp.Value{}, &interp.FieldNotFoundError{Class: c.name, Field: fieldName}
}

// InvokeStatic implements interp.Runtime on a new call stack.
func (v *VM) InvokeStatic(current *classfile.ClassFile, methodName string, desc descriptor.Method, args []interp.Value) (interp.Value, bool, error) {
	return v.newThread().InvokeStatic(current, methodName, desc, args)
}

// InvokeVirtualOrSpecial implements interp.Runtime on a new call stack.
func (v *VM) InvokeVirtualOrSpecial(methodName string, desc descriptor.Method, receiver interp.Value, args []interp.Value) (interp.Value, bool, error) {
	return v.newThread().InvokeVirtualOrSpecial(methodName, desc, receiver, args)
}

// Execute runs public static void main(String[]) of the named class with a
// null argument array.
func (v *VM) Execute(className string) error {
	_, _, err := v.Invoke(className, mainMethod, mainDescriptor, interp.RefValue(descriptor.ArrayOf(descriptor.String), nil))
	return err
}

// Invoke calls a static method by name and descriptor on a new call stack.
func (v *VM) Invoke(className, methodName, desc string, args ...interp.Value) (interp.Value, bool, error) {
	c, err := v.Class(className)
	if err != nil {
		return interp.Value{}, false, err
	}
	owner, m, err := v.findMethod(c, methodName, desc)
	if err != nil {
		return interp.Value{}, false, err
	}
	if !m.IsStatic() {
		return interp.Value{}, false, fmt.Errorf("%s.%s%s is not static", owner.name, methodName, desc)
	}
	return v.newThread().call(owner, m, args)
}

func (v *VM) newThread() *thread {
	return &thread{VM: v}
}

// thread is one call stack. Nested frames run with the thread as their
// Runtime so the frame depth is counted per call stack.
type thread struct {
	*VM
	depth int
}

func (t *thread) InvokeStatic(current *classfile.ClassFile, methodName string, desc descriptor.Method, args []interp.Value) (interp.Value, bool, error) {
	c, err := t.Class(current.Name())
	if err != nil {
		return interp.Value{}, false, err
	}
	owner, m, err := t.findMethod(c, methodName, desc.Descriptor())
	if err != nil {
		return interp.Value{}, false, err
	}
	if !m.IsStatic() {
		return interp.Value{}, false, fmt.Errorf("%s.%s%s is not static", owner.name, methodName, desc.Descriptor())
	}
	return t.call(owner, m, args)
}

func (t *thread) InvokeVirtualOrSpecial(methodName string, desc descriptor.Method, receiver interp.Value, args []interp.Value) (interp.Value, bool, error) {
	obj, err := receiverObject(methodName, desc, receiver)
	if err != nil {
		return interp.Value{}, false, err
	}
	return t.invokeOn(obj.Class, methodName, desc, receiver, args)
}

func (t *thread) InvokeSpecial(className, methodName string, desc descriptor.Method, receiver interp.Value, args []interp.Value) (interp.Value, bool, error) {
	if _, err := receiverObject(methodName, desc, receiver); err != nil {
		return interp.Value{}, false, err
	}
	c, err := t.Class(className)
	if err != nil {
		return interp.Value{}, false, err
	}
	return t.invokeOn(c, methodName, desc, receiver, args)
}

func receiverObject(methodName string, desc descriptor.Method, receiver interp.Value) (*Object, error) {
	if receiver.IsNull() {
		return nil, &NullReceiverError{Method: methodName + desc.Descriptor()}
	}
	obj, ok := receiver.Payload.(*Object)
	if !ok {
		return nil, fmt.Errorf("%s%s: receiver %s is not an object", methodName, desc.Descriptor(), receiver.Type)
	}
	return obj, nil
}

func (t *thread) invokeOn(c *Class, methodName string, desc descriptor.Method, receiver interp.Value, args []interp.Value) (interp.Value, bool, error) {
	owner, m, err := t.findMethod(c, methodName, desc.Descriptor())
	if err != nil {
		return interp.Value{}, false, err
	}
	if m.IsStatic() {
		return interp.Value{}, false, fmt.Errorf("%s.%s%s is static", owner.name, methodName, desc.Descriptor())
	}
	return t.call(owner, m, append([]interp.Value{receiver}, args...))
}

// call runs m in a fresh frame. long and double arguments take two local
// slots, so a placeholder follows each of them.
func (t *thread) call(owner *Class, m *classfile.MethodInfo, args []interp.Value) (interp.Value, bool, error) {
	name := m.Name + m.Descriptor
	if m.Code == nil {
		return interp.Value{}, false, &NoCodeError{Class: owner.name, Method: name}
	}

	t.depth++
	defer func() { t.depth-- }()
	if t.depth > t.MaxFrameDepth {
		return interp.Value{}, false, &FrameDepthError{Limit: t.MaxFrameDepth}
	}

	locals := make([]interp.Value, 0, len(args))
	for _, a := range args {
		locals = append(locals, a)
		if a.Type.IsWide() {
			locals = append(locals, interp.Value{})
		}
	}

	log.Debugf("enter %s.%s depth=%d", owner.name, name, t.depth)
	it, err := interp.New(t, owner.File, m.Code, locals,
		interp.WithNatives(t.natives),
		interp.WithMethodName(name))
	if err != nil {
		return interp.Value{}, false, fmt.Errorf("%s.%s: %w", owner.name, name, err)
	}
	return it.Run()
}

// IsClassNotFound reports whether err was caused by a missing class.
func IsClassNotFound(err error) bool {
	var cnf *interp.ClassNotFoundError
	return errors.As(err, &cnf)
}
