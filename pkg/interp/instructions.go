package interp

import (
	"errors"
	"fmt"

	"github.com/daimatz/minijvm/pkg/classfile"
	"github.com/daimatz/minijvm/pkg/descriptor"
)

// execute runs one instruction and returns the index of the next one.
// Opcodes outside the implemented subset fail with *UnsupportedOpcodeError.
func (it *Interpreter) execute(pc int, in classfile.Instruction) (int, error) {
	f := it.frame
	next := pc + 1

	switch op := in.Opcode; op {
	case classfile.OpNop:

	case classfile.OpAconstNull:
		f.Push(NullValue())

	case classfile.OpIconstM1, classfile.OpIconst0, classfile.OpIconst1, classfile.OpIconst2,
		classfile.OpIconst3, classfile.OpIconst4, classfile.OpIconst5:
		f.Push(IntValue(int32(op) - int32(classfile.OpIconst0)))

	case classfile.OpBipush, classfile.OpSipush:
		v, err := operand(in, 0)
		if err != nil {
			return pc, err
		}
		f.Push(IntValue(int32(v)))

	case classfile.OpLdc, classfile.OpLdcW:
		r, err := it.refs(in)
		if err != nil {
			return pc, err
		}
		s, err := r.stringConstant()
		if err != nil {
			return pc, err
		}
		f.Push(StringValue(s))

	case classfile.OpIload, classfile.OpAload:
		idx, err := operand(in, 0)
		if err != nil {
			return pc, err
		}
		return next, it.load(idx)
	case classfile.OpIload0, classfile.OpIload1, classfile.OpIload2, classfile.OpIload3:
		return next, it.load(int(op - classfile.OpIload0))
	case classfile.OpAload0, classfile.OpAload1, classfile.OpAload2, classfile.OpAload3:
		return next, it.load(int(op - classfile.OpAload0))

	case classfile.OpIstore, classfile.OpAstore:
		idx, err := operand(in, 0)
		if err != nil {
			return pc, err
		}
		return next, it.store(idx)
	case classfile.OpIstore0, classfile.OpIstore1, classfile.OpIstore2, classfile.OpIstore3:
		return next, it.store(int(op - classfile.OpIstore0))
	case classfile.OpAstore0, classfile.OpAstore1, classfile.OpAstore2, classfile.OpAstore3:
		return next, it.store(int(op - classfile.OpAstore0))

	case classfile.OpPop:
		if _, err := f.Pop(); err != nil {
			return pc, err
		}

	case classfile.OpDup:
		v, err := f.Peek()
		if err != nil {
			return pc, err
		}
		f.Push(v)

	case classfile.OpIadd, classfile.OpIsub, classfile.OpImul:
		return next, it.arith(op)

	case classfile.OpGoto, classfile.OpGotoW:
		delta, err := operand(in, 0)
		if err != nil {
			return pc, err
		}
		return pc + delta, nil

	case classfile.OpIfnull, classfile.OpIfnonnull:
		delta, err := operand(in, 0)
		if err != nil {
			return pc, err
		}
		v, err := f.Pop()
		if err != nil {
			return pc, err
		}
		if v.Type.IsPrimitive() {
			return pc, &OperandTypeError{Opcode: op, Want: "reference", Got: v.Type}
		}
		if v.IsNull() == (op == classfile.OpIfnull) {
			return pc + delta, nil
		}

	case classfile.OpReturn:
		it.finish(Value{}, false)

	case classfile.OpIreturn, classfile.OpAreturn:
		v, err := f.Pop()
		if err != nil {
			return pc, err
		}
		it.finish(v, true)

	case classfile.OpGetstatic:
		return next, it.getStatic(in)

	case classfile.OpInvokevirtual, classfile.OpInvokespecial, classfile.OpInvokeinterface:
		return next, it.invokeInstance(in)
	case classfile.OpInvokestatic:
		return next, it.invokeStatic(in)

	// Monitors only consume the lock object. No mutual exclusion is
	// provided, so callers must not rely on synchronized blocks.
	case classfile.OpMonitorenter, classfile.OpMonitorexit:
		v, err := f.Pop()
		if err != nil {
			return pc, err
		}
		log.Debugf("%s on %s ignored", op, v)

	default:
		return pc, &UnsupportedOpcodeError{Opcode: op}
	}
	return next, nil
}

func operand(in classfile.Instruction, i int) (int, error) {
	if i >= len(in.Operands) {
		return 0, fmt.Errorf("%s is missing operand %d", in.Opcode, i)
	}
	return in.Operands[i], nil
}

func (it *Interpreter) refs(in classfile.Instruction) (resolver, error) {
	if it.class == nil || it.class.ConstantPool() == nil {
		return resolver{}, &UnresolvedSymbolicReferenceError{
			Index: in.Index(),
			Hop:   "constant pool",
			Err:   errors.New("no class bound to frame"),
		}
	}
	if len(in.Operands) == 0 {
		return resolver{}, fmt.Errorf("%s is missing its constant pool index", in.Opcode)
	}
	return resolver{pool: it.class.ConstantPool(), index: in.Index()}, nil
}

func (it *Interpreter) load(index int) error {
	v, err := it.frame.GetLocal(index)
	if err != nil {
		return err
	}
	it.frame.Push(v)
	return nil
}

func (it *Interpreter) store(index int) error {
	v, err := it.frame.Pop()
	if err != nil {
		return err
	}
	return it.frame.SetLocal(index, v)
}

func (it *Interpreter) arith(op classfile.Opcode) error {
	vals, err := it.frame.PopN(2)
	if err != nil {
		return err
	}
	left, ok := vals[0].Int()
	if !ok {
		return &OperandTypeError{Opcode: op, Want: "int", Got: vals[0].Type}
	}
	right, ok := vals[1].Int()
	if !ok {
		return &OperandTypeError{Opcode: op, Want: "int", Got: vals[1].Type}
	}

	var r int32
	switch op {
	case classfile.OpIadd:
		r = left + right
	case classfile.OpIsub:
		r = left - right
	case classfile.OpImul:
		r = left * right
	}
	it.frame.Push(IntValue(r))
	return nil
}

func (it *Interpreter) getStatic(in classfile.Instruction) error {
	r, err := it.refs(in)
	if err != nil {
		return err
	}
	ref, err := r.fieldref()
	if err != nil {
		return err
	}

	class, err := it.rt.ResolveClass(ref.Class)
	if err != nil {
		var cnf *ClassNotFoundError
		if !errors.As(err, &cnf) {
			err = &ClassNotFoundError{Name: ref.Class, Err: err}
		}
		return err
	}
	v, err := it.rt.ReadStaticField(class, ref.Name)
	if err != nil {
		return err
	}
	it.frame.Push(v)
	return nil
}

func (it *Interpreter) native(ref memberRef) (NativeFunc, bool) {
	if it.natives == nil {
		return nil, false
	}
	return it.natives.Lookup(ref.Class, ref.Name, ref.Descriptor)
}

// invokeInstance pops the receiver and the arguments; the receiver is the
// deepest popped value and the arguments keep their push order.
func (it *Interpreter) invokeInstance(in classfile.Instruction) error {
	r, err := it.refs(in)
	if err != nil {
		return err
	}
	ref, err := r.methodref(in.Opcode == classfile.OpInvokeinterface)
	if err != nil {
		return err
	}
	desc, err := r.methodDescriptor(ref)
	if err != nil {
		return err
	}

	vals, err := it.frame.PopN(len(desc.Params) + 1)
	if err != nil {
		return err
	}
	receiver, args := vals[0], vals[1:]

	var v Value
	var ok bool
	special, isSpecial := it.rt.(SpecialInvoker)
	switch fn, found := it.native(ref); {
	case found:
		v, ok, err = fn(receiver, args)
	case in.Opcode == classfile.OpInvokespecial && isSpecial:
		v, ok, err = special.InvokeSpecial(ref.Class, ref.Name, desc, receiver, args)
	default:
		v, ok, err = it.rt.InvokeVirtualOrSpecial(ref.Name, desc, receiver, args)
	}
	if err != nil {
		return err
	}
	return it.pushResult(ref, desc, v, ok)
}

// invokeStatic dispatches against the current class, not the class named in
// the reference.
func (it *Interpreter) invokeStatic(in classfile.Instruction) error {
	r, err := it.refs(in)
	if err != nil {
		return err
	}
	ref, err := r.methodref(false)
	if err != nil {
		return err
	}
	desc, err := r.methodDescriptor(ref)
	if err != nil {
		return err
	}

	args, err := it.frame.PopN(len(desc.Params))
	if err != nil {
		return err
	}

	var v Value
	var ok bool
	if fn, found := it.native(ref); found {
		v, ok, err = fn(Value{}, args)
	} else {
		v, ok, err = it.rt.InvokeStatic(it.class, ref.Name, desc, args)
	}
	if err != nil {
		return err
	}
	return it.pushResult(ref, desc, v, ok)
}

func (it *Interpreter) pushResult(ref memberRef, desc descriptor.Method, v Value, ok bool) error {
	if desc.IsVoid() {
		return nil
	}
	if !ok {
		return &MissingReturnValueError{Method: ref.Class + "." + ref.Name + ref.Descriptor}
	}
	it.frame.Push(v)
	return nil
}
