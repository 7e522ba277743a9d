package interp

import (
	"errors"
	"fmt"

	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/descriptor"
)

// ErrTerminated is returned by Step on an interpreter that already returned.
var ErrTerminated = errors.New("frame already returned")

// UnsupportedOpcodeError is returned for an opcode outside the implemented
// subset.
type UnsupportedOpcodeError struct {
	Opcode classfile.Opcode
}

func (e *UnsupportedOpcodeError) Error() string {
	return fmt.Sprintf("unsupported opcode %s (0x%02X)", e.Opcode, uint8(e.Opcode))
}

// Name returns the mnemonic of the unsupported opcode.
func (e *UnsupportedOpcodeError) Name() string {
	return e.Opcode.String()
}

// UnexpectedConstantKindError is returned when ldc meets a constant other
// than a string.
type UnexpectedConstantKindError struct {
	Index uint16
	Tag   classfile.Tag
}

func (e *UnexpectedConstantKindError) Error() string {
	return fmt.Sprintf("ldc of constant #%d: %s constants are not supported", e.Index, e.Tag)
}

// UnresolvedSymbolicReferenceError is returned when one hop of a symbolic
// reference cannot be resolved. Hop names the step that failed.
type UnresolvedSymbolicReferenceError struct {
	Index uint16
	Hop   string
	Err   error
}

func (e *UnresolvedSymbolicReferenceError) Error() string {
	return fmt.Sprintf("unresolved symbolic reference #%d (%s): %v", e.Index, e.Hop, e.Err)
}

func (e *UnresolvedSymbolicReferenceError) Unwrap() error {
	return e.Err
}

// ClassNotFoundError is returned by a Runtime that cannot supply a class.
type ClassNotFoundError struct {
	Name string
	Err  error
}

func (e *ClassNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("class not found: %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("class not found: %s", e.Name)
}

func (e *ClassNotFoundError) Unwrap() error {
	return e.Err
}

// FieldNotFoundError is returned by a Runtime for an unknown static field.
type FieldNotFoundError struct {
	Class string
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("field not found: %s.%s", e.Class, e.Field)
}

// StackUnderflowError is returned when popping more values than the operand
// stack holds.
type StackUnderflowError struct {
	Need int
	Have int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("operand stack underflow: need %d, have %d", e.Need, e.Have)
}

// InvalidLocalIndexError is returned for a local slot outside max-locals.
type InvalidLocalIndexError struct {
	Index int
	Size  int
}

func (e *InvalidLocalIndexError) Error() string {
	return fmt.Sprintf("local variable index out of range: index=%d, max=%d", e.Index, e.Size)
}

// OperandTypeError is returned when an operand has the wrong type for the
// instruction consuming it.
type OperandTypeError struct {
	Opcode classfile.Opcode
	Want   string
	Got    descriptor.Type
}

func (e *OperandTypeError) Error() string {
	return fmt.Sprintf("%s: expected %s operand, got %s", e.Opcode, e.Want, e.Got)
}

// PCOutOfRangeError is returned when execution runs off the instruction
// sequence.
type PCOutOfRangeError struct {
	PC  int
	Len int
}

func (e *PCOutOfRangeError) Error() string {
	return fmt.Sprintf("pc %d outside code of %d instructions", e.PC, e.Len)
}

// MissingReturnValueError is returned when a call to a non-void method
// produced no value.
type MissingReturnValueError struct {
	Method string
}

func (e *MissingReturnValueError) Error() string {
	return fmt.Sprintf("%s returned no value", e.Method)
}

// ExecutionError records where in a frame a failure happened.
type ExecutionError struct {
	Class  string
	Method string
	PC     int
	Opcode classfile.Opcode
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s.%s pc=%d %s: %v", e.Class, e.Method, e.PC, e.Opcode, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
