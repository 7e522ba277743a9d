package interp

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/daimatz/minijvm/pkg/classfile"
)

var log = commonlog.GetLogger("minijvm.interp")

// State is the lifecycle state of an Interpreter.
type State int

const (
	// StateRunning advances one instruction per Step.
	StateRunning State = iota
	// StateReturned is terminal: the method completed.
	StateReturned
	// StateFailed is terminal: an instruction failed and nothing else is
	// usable.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateReturned:
		return "returned"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Interpreter executes the code of one method activation.
type Interpreter struct {
	rt      Runtime
	class   *classfile.ClassFile
	code    *classfile.CodeAttribute
	frame   *Frame
	natives *Natives
	method  string

	state     State
	result    Value
	hasResult bool
	err       error
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithNatives replaces the default native registry.
func WithNatives(n *Natives) Option {
	return func(it *Interpreter) {
		it.natives = n
	}
}

// WithMethodName names the executing method in logs and errors.
func WithMethodName(name string) Option {
	return func(it *Interpreter) {
		it.method = name
	}
}

// New creates an Interpreter for code of a method declared by class, with
// args in local slots 0..len(args)-1.
func New(rt Runtime, class *classfile.ClassFile, code *classfile.CodeAttribute, args []Value, opts ...Option) (*Interpreter, error) {
	if code == nil {
		return nil, fmt.Errorf("no code to execute")
	}
	if len(args) > int(code.MaxLocals) {
		return nil, fmt.Errorf("%d arguments exceed max_locals %d", len(args), code.MaxLocals)
	}

	frame := NewFrame(int(code.MaxLocals), int(code.MaxStack))
	copy(frame.Locals, args)

	it := &Interpreter{
		rt:      rt,
		class:   class,
		code:    code,
		frame:   frame,
		natives: defaultNatives,
		method:  "?",
	}
	for _, opt := range opts {
		opt(it)
	}
	return it, nil
}

// State returns the current lifecycle state.
func (it *Interpreter) State() State {
	return it.state
}

// PC returns the index of the next instruction.
func (it *Interpreter) PC() int {
	return it.frame.PC
}

// StackDepth returns the operand stack depth.
func (it *Interpreter) StackDepth() int {
	return it.frame.Depth()
}

// Peek returns the top of the operand stack.
func (it *Interpreter) Peek() (Value, error) {
	return it.frame.Peek()
}

// Local returns local slot i.
func (it *Interpreter) Local(i int) (Value, error) {
	return it.frame.GetLocal(i)
}

// Err returns the failure of a failed interpreter.
func (it *Interpreter) Err() error {
	return it.err
}

// Result returns the returned value. ok is false for a void return or an
// interpreter that has not returned.
func (it *Interpreter) Result() (Value, bool) {
	return it.result, it.hasResult
}

// Step executes the instruction at the program counter.
func (it *Interpreter) Step() error {
	switch it.state {
	case StateReturned:
		return ErrTerminated
	case StateFailed:
		return it.err
	}

	pc := it.frame.PC
	if pc < 0 || pc >= len(it.code.Instructions) {
		return it.fail(pc, classfile.OpNop, &PCOutOfRangeError{PC: pc, Len: len(it.code.Instructions)})
	}
	in := it.code.Instructions[pc]
	log.Debugf("%s.%s pc=%d %s", it.className(), it.method, pc, in)

	next, err := it.execute(pc, in)
	if err != nil {
		return it.fail(pc, in.Opcode, err)
	}
	if it.state == StateRunning {
		it.frame.PC = next
	}
	return nil
}

// Run steps until the interpreter returns or fails.
func (it *Interpreter) Run() (Value, bool, error) {
	for it.state == StateRunning {
		if err := it.Step(); err != nil {
			return Value{}, false, err
		}
	}
	if it.state == StateFailed {
		return Value{}, false, it.err
	}
	return it.result, it.hasResult, nil
}

func (it *Interpreter) className() string {
	if it.class == nil {
		return "?"
	}
	return it.class.Name()
}

func (it *Interpreter) fail(pc int, op classfile.Opcode, err error) error {
	it.state = StateFailed
	it.err = &ExecutionError{
		Class:  it.className(),
		Method: it.method,
		PC:     pc,
		Opcode: op,
		Err:    err,
	}
	log.Debugf("%v", it.err)
	return it.err
}

func (it *Interpreter) finish(v Value, ok bool) {
	it.state = StateReturned
	it.result = v
	it.hasResult = ok
}
