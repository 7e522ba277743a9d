package classfile

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Instruction is one decoded bytecode instruction.
//
// Branch operands (if*, goto, goto_w, jsr, jsr_w, ifnull, ifnonnull and the
// targets of tableswitch/lookupswitch) are deltas in instructions, not bytes:
// the target of a branch at index i with delta d is instruction i+d.
type Instruction struct {
	Opcode   Opcode
	Operands []int
	// Offset is the byte offset of the instruction in the original code.
	Offset int
}

// Index returns the first operand as a constant pool index.
func (in Instruction) Index() uint16 {
	if len(in.Operands) == 0 {
		return 0
	}
	return uint16(in.Operands[0])
}

func (in Instruction) String() string {
	if len(in.Operands) == 0 {
		return in.Opcode.String()
	}
	ops := make([]string, len(in.Operands))
	for i, o := range in.Operands {
		ops[i] = fmt.Sprint(o)
	}
	return in.Opcode.String() + " " + strings.Join(ops, ", ")
}

// TruncatedCodeError is returned when an instruction's operands run past the
// end of the code array.
type TruncatedCodeError struct {
	Offset int
	Opcode Opcode
}

func (e *TruncatedCodeError) Error() string {
	return fmt.Sprintf("truncated %s at offset %d", e.Opcode, e.Offset)
}

// BranchTargetError is returned when a branch does not land on an
// instruction boundary.
type BranchTargetError struct {
	Offset int
	Target int
}

func (e *BranchTargetError) Error() string {
	return fmt.Sprintf("branch at offset %d targets %d, which is not an instruction boundary", e.Offset, e.Target)
}

// IsBranch reports whether op carries a single relative branch operand.
func IsBranch(op Opcode) bool {
	switch op {
	case OpIfeq, OpIfne, OpIflt, OpIfge, OpIfgt, OpIfle,
		OpIfIcmpeq, OpIfIcmpne, OpIfIcmplt, OpIfIcmpge, OpIfIcmpgt, OpIfIcmple,
		OpIfAcmpeq, OpIfAcmpne, OpGoto, OpJsr, OpIfnull, OpIfnonnull, OpGotoW, OpJsrW:
		return true
	}
	return false
}

type codeReader struct {
	code  []byte
	pc    int
	start int
	op    Opcode
}

func (r *codeReader) need(n int) error {
	if r.pc+n > len(r.code) {
		return &TruncatedCodeError{Offset: r.start, Opcode: r.op}
	}
	return nil
}

func (r *codeReader) u1() (int, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.code[r.pc]
	r.pc++
	return int(v), nil
}

func (r *codeReader) s1() (int, error) {
	v, err := r.u1()
	return int(int8(v)), err
}

func (r *codeReader) u2() (int, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.code[r.pc:])
	r.pc += 2
	return int(v), nil
}

func (r *codeReader) s2() (int, error) {
	v, err := r.u2()
	return int(int16(v)), err
}

func (r *codeReader) s4() (int, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.code[r.pc:])
	r.pc += 4
	return int(int32(v)), nil
}

// DecodeCode disassembles raw bytecode into instructions and rewrites branch
// byte offsets into instruction-index deltas.
func DecodeCode(code []byte) ([]Instruction, error) {
	r := &codeReader{code: code}
	var insns []Instruction
	// branchSlots[i] lists operand positions of insns[i] holding absolute
	// byte targets that still need rewriting.
	var branchSlots [][]int

	for r.pc < len(code) {
		r.start = r.pc
		r.op = Opcode(code[r.pc])
		r.pc++

		operands, slots, err := decodeOperands(r)
		if err != nil {
			return nil, err
		}
		insns = append(insns, Instruction{Opcode: r.op, Operands: operands, Offset: r.start})
		branchSlots = append(branchSlots, slots)
	}

	indexOf := make(map[int]int, len(insns))
	for i, in := range insns {
		indexOf[in.Offset] = i
	}
	for i, slots := range branchSlots {
		for _, s := range slots {
			target := insns[i].Operands[s]
			idx, ok := indexOf[target]
			if !ok {
				return nil, &BranchTargetError{Offset: insns[i].Offset, Target: target}
			}
			insns[i].Operands[s] = idx - i
		}
	}
	return insns, nil
}

// decodeOperands reads the operands of r.op. Branch operands are returned as
// absolute byte targets together with their positions.
func decodeOperands(r *codeReader) ([]int, []int, error) {
	op := r.op
	switch {
	case op == OpBipush, op == OpNewarray:
		var v int
		var err error
		if op == OpBipush {
			v, err = r.s1()
		} else {
			v, err = r.u1()
		}
		return []int{v}, nil, err

	case op == OpSipush:
		v, err := r.s2()
		return []int{v}, nil, err

	case op == OpLdc,
		op >= OpIload && op <= OpAload,
		op >= OpIstore && op <= OpAstore,
		op == OpRet:
		v, err := r.u1()
		return []int{v}, nil, err

	case op == OpLdcW, op == OpLdc2W,
		op >= OpGetstatic && op <= OpInvokestatic,
		op == OpNew, op == OpAnewarray, op == OpCheckcast, op == OpInstanceof:
		v, err := r.u2()
		return []int{v}, nil, err

	case op == OpIinc:
		idx, err := r.u1()
		if err != nil {
			return nil, nil, err
		}
		c, err := r.s1()
		return []int{idx, c}, nil, err

	case op == OpGotoW, op == OpJsrW:
		off, err := r.s4()
		return []int{r.start + off}, []int{0}, err

	case IsBranch(op):
		off, err := r.s2()
		return []int{r.start + off}, []int{0}, err

	case op == OpInvokeinterface:
		idx, err := r.u2()
		if err != nil {
			return nil, nil, err
		}
		count, err := r.u1()
		if err != nil {
			return nil, nil, err
		}
		if _, err := r.u1(); err != nil {
			return nil, nil, err
		}
		return []int{idx, count}, nil, nil

	case op == OpInvokedynamic:
		idx, err := r.u2()
		if err != nil {
			return nil, nil, err
		}
		if _, err := r.u2(); err != nil {
			return nil, nil, err
		}
		return []int{idx}, nil, nil

	case op == OpMultianewarray:
		idx, err := r.u2()
		if err != nil {
			return nil, nil, err
		}
		dims, err := r.u1()
		return []int{idx, dims}, nil, err

	case op == OpWide:
		return decodeWide(r)

	case op == OpTableswitch:
		return decodeTableswitch(r)

	case op == OpLookupswitch:
		return decodeLookupswitch(r)
	}
	return nil, nil, nil
}

func decodeWide(r *codeReader) ([]int, []int, error) {
	modified, err := r.u1()
	if err != nil {
		return nil, nil, err
	}
	idx, err := r.u2()
	if err != nil {
		return nil, nil, err
	}
	if Opcode(modified) == OpIinc {
		c, err := r.s2()
		if err != nil {
			return nil, nil, err
		}
		return []int{modified, idx, c}, nil, nil
	}
	return []int{modified, idx}, nil, nil
}

// skipPadding advances to the next 4-byte boundary relative to the start of
// the code array.
func (r *codeReader) skipPadding() error {
	pad := (4 - r.pc%4) % 4
	if err := r.need(pad); err != nil {
		return err
	}
	r.pc += pad
	return nil
}

// decodeTableswitch returns [default, low, high, offsets...].
func decodeTableswitch(r *codeReader) ([]int, []int, error) {
	if err := r.skipPadding(); err != nil {
		return nil, nil, err
	}
	def, err := r.s4()
	if err != nil {
		return nil, nil, err
	}
	low, err := r.s4()
	if err != nil {
		return nil, nil, err
	}
	high, err := r.s4()
	if err != nil {
		return nil, nil, err
	}
	if high < low {
		return nil, nil, fmt.Errorf("tableswitch at offset %d: high %d < low %d", r.start, high, low)
	}
	n := high - low + 1
	if err := r.need(4 * n); err != nil {
		return nil, nil, err
	}
	operands := []int{r.start + def, low, high}
	slots := []int{0}
	for i := 0; i < n; i++ {
		off, _ := r.s4()
		slots = append(slots, len(operands))
		operands = append(operands, r.start+off)
	}
	return operands, slots, nil
}

// decodeLookupswitch returns [default, npairs, key1, offset1, ...].
func decodeLookupswitch(r *codeReader) ([]int, []int, error) {
	if err := r.skipPadding(); err != nil {
		return nil, nil, err
	}
	def, err := r.s4()
	if err != nil {
		return nil, nil, err
	}
	npairs, err := r.s4()
	if err != nil {
		return nil, nil, err
	}
	if npairs < 0 {
		return nil, nil, fmt.Errorf("lookupswitch at offset %d: negative npairs %d", r.start, npairs)
	}
	if err := r.need(8 * npairs); err != nil {
		return nil, nil, err
	}
	operands := []int{r.start + def, npairs}
	slots := []int{0}
	for i := 0; i < npairs; i++ {
		key, _ := r.s4()
		off, _ := r.s4()
		operands = append(operands, key)
		slots = append(slots, len(operands))
		operands = append(operands, r.start+off)
	}
	return operands, slots, nil
}
