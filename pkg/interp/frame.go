package interp

// Frame is the mutable state of one method activation: operand stack, local
// variable slots and program counter. A frame is owned by exactly one
// Interpreter and never shared.
type Frame struct {
	Locals []Value
	stack  []Value
	// PC is an index into the decoded instruction sequence.
	PC int
}

// NewFrame creates a Frame with maxLocals slots and an empty stack.
func NewFrame(maxLocals, maxStack int) *Frame {
	return &Frame{
		Locals: make([]Value, maxLocals),
		stack:  make([]Value, 0, maxStack),
	}
}

// Push pushes a value onto the operand stack.
func (f *Frame) Push(v Value) {
	f.stack = append(f.stack, v)
}

// Pop pops a value from the operand stack.
func (f *Frame) Pop() (Value, error) {
	if len(f.stack) == 0 {
		return Value{}, &StackUnderflowError{Need: 1, Have: 0}
	}
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v, nil
}

// PopN pops n values and returns them in push order, so the deepest popped
// value is at index 0. Nothing is popped on underflow.
func (f *Frame) PopN(n int) ([]Value, error) {
	if n > len(f.stack) {
		return nil, &StackUnderflowError{Need: n, Have: len(f.stack)}
	}
	start := len(f.stack) - n
	vals := make([]Value, n)
	copy(vals, f.stack[start:])
	f.stack = f.stack[:start]
	return vals, nil
}

// Peek returns the top of the stack without removing it.
func (f *Frame) Peek() (Value, error) {
	if len(f.stack) == 0 {
		return Value{}, &StackUnderflowError{Need: 1, Have: 0}
	}
	return f.stack[len(f.stack)-1], nil
}

// Depth returns the number of values on the operand stack.
func (f *Frame) Depth() int {
	return len(f.stack)
}

// GetLocal returns the value at the given local variable index.
func (f *Frame) GetLocal(index int) (Value, error) {
	if index < 0 || index >= len(f.Locals) {
		return Value{}, &InvalidLocalIndexError{Index: index, Size: len(f.Locals)}
	}
	return f.Locals[index], nil
}

// SetLocal sets the value at the given local variable index.
func (f *Frame) SetLocal(index int, v Value) error {
	if index < 0 || index >= len(f.Locals) {
		return &InvalidLocalIndexError{Index: index, Size: len(f.Locals)}
	}
	f.Locals[index] = v
	return nil
}
