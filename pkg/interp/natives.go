package interp

import (
	"fmt"

	cmap "github.com/orcaman/concurrent-map"

	"github.com/daimatz/minijvm/pkg/native"
)

// NativeFunc implements a method on the host. receiver is the zero Value for
// static methods. ok=false means the call produced no value.
type NativeFunc func(receiver Value, args []Value) (result Value, ok bool, err error)

// Natives maps methods to host implementations. Keys have the form
// "java/io/PrintStream.println(I)V": declaring class, method name and
// descriptor.
//
// The interpreter consults its Natives before handing an invocation to the
// Runtime, so a registered method bypasses class loading and dispatch
// entirely.
type Natives struct {
	fns cmap.ConcurrentMap
}

// NewNatives creates an empty registry.
func NewNatives() *Natives {
	return &Natives{fns: cmap.New()}
}

func nativeKey(class, name, desc string) string {
	return class + "." + name + desc
}

// Register adds or replaces the implementation of class.name desc.
func (n *Natives) Register(class, name, desc string, fn NativeFunc) {
	n.fns.Set(nativeKey(class, name, desc), fn)
}

// Lookup finds the implementation of class.name desc.
func (n *Natives) Lookup(class, name, desc string) (NativeFunc, bool) {
	v, ok := n.fns.Get(nativeKey(class, name, desc))
	if !ok {
		return nil, false
	}
	return v.(NativeFunc), true
}

// Len returns the number of registered natives.
func (n *Natives) Len() int {
	return n.fns.Count()
}

// Clone returns a copy of the registry that can be extended independently.
func (n *Natives) Clone() *Natives {
	c := NewNatives()
	for item := range n.fns.IterBuffered() {
		c.fns.Set(item.Key, item.Val)
	}
	return c
}

const printStreamClass = "java/io/PrintStream"

var printDescriptors = []string{
	"(I)V",
	"(Z)V",
	"(C)V",
	"(Ljava/lang/String;)V",
	"(Ljava/lang/Object;)V",
}

// DefaultNatives returns a registry holding the bootstrap print stub:
// PrintStream.print and PrintStream.println for int, boolean, char, String
// and Object arguments, plus println()V. The receiver must carry a
// *native.PrintStream.
func DefaultNatives() *Natives {
	n := NewNatives()
	n.Register(printStreamClass, "println", "()V", printStub(true))
	for _, desc := range printDescriptors {
		n.Register(printStreamClass, "println", desc, printStub(true))
		n.Register(printStreamClass, "print", desc, printStub(false))
	}
	return n
}

func printStub(newline bool) NativeFunc {
	return func(receiver Value, args []Value) (Value, bool, error) {
		ps, ok := receiver.Payload.(*native.PrintStream)
		if !ok {
			return Value{}, false, fmt.Errorf("print receiver is %s, not a java.io.PrintStream", receiver.Type)
		}
		var s string
		if len(args) > 0 {
			s = args[0].String()
		}
		if newline {
			return Value{}, false, ps.Println(s)
		}
		return Value{}, false, ps.Print(s)
	}
}

var defaultNatives = DefaultNatives()
