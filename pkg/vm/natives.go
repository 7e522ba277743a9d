package vm

import (
	"fmt"

	"github.com/daimatz/minijvm/pkg/descriptor"
	"github.com/daimatz/minijvm/pkg/interp"
	"github.com/daimatz/minijvm/pkg/native"
)

var integerType = descriptor.Reference("java/lang/Integer")

// newNatives extends the interpreter's print stub with the host methods the
// VM provides.
func newNatives() *interp.Natives {
	n := interp.DefaultNatives().Clone()

	// Object has no state to initialize.
	n.Register("java/lang/Object", "<init>", "()V", func(interp.Value, []interp.Value) (interp.Value, bool, error) {
		return interp.Value{}, false, nil
	})

	n.Register("java/lang/Integer", "valueOf", "(I)Ljava/lang/Integer;", func(_ interp.Value, args []interp.Value) (interp.Value, bool, error) {
		i, ok := args[0].Int()
		if !ok {
			return interp.Value{}, false, fmt.Errorf("java/lang/Integer.valueOf: argument is %s, not int", args[0].Type)
		}
		return interp.RefValue(integerType, native.IntegerValueOf(i)), true, nil
	})

	n.Register("java/lang/Integer", "intValue", "()I", func(receiver interp.Value, _ []interp.Value) (interp.Value, bool, error) {
		if receiver.IsNull() {
			return interp.Value{}, false, &NullReceiverError{Method: "intValue()I"}
		}
		boxed, ok := receiver.Payload.(*native.Integer)
		if !ok {
			return interp.Value{}, false, fmt.Errorf("java/lang/Integer.intValue: receiver is %s", receiver.Type)
		}
		return interp.IntValue(boxed.IntValue()), true, nil
	})

	return n
}
