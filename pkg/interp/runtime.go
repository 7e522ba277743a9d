package interp

import (
	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/descriptor"
)

// ClassHandle is an opaque handle to a class supplied by a Runtime.
type ClassHandle interface {
	ClassName() string
}

// Runtime is everything the interpreter needs from the surrounding virtual
// machine. Implementations own class loading, static storage and method
// lookup, and may run nested Interpreters for method bodies.
//
// Invoke methods return ok=false for a call that produced no value.
type Runtime interface {
	// ResolveClass fails with *ClassNotFoundError.
	ResolveClass(name string) (ClassHandle, error)
	// ReadStaticField fails with *FieldNotFoundError.
	ReadStaticField(class ClassHandle, fieldName string) (Value, error)
	// InvokeStatic calls a static method of the current class.
	InvokeStatic(current *classfile.ClassFile, methodName string, desc descriptor.Method, args []Value) (Value, bool, error)
	// InvokeVirtualOrSpecial calls an instance method on receiver.
	InvokeVirtualOrSpecial(methodName string, desc descriptor.Method, receiver Value, args []Value) (Value, bool, error)
}

// SpecialInvoker is implemented by runtimes that bind invokespecial to the
// class named in the method reference rather than the receiver's class.
// Runtimes without it receive invokespecial through InvokeVirtualOrSpecial.
type SpecialInvoker interface {
	InvokeSpecial(className, methodName string, desc descriptor.Method, receiver Value, args []Value) (Value, bool, error)
}
