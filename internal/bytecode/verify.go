package bytecode

import (
	"errors"
	"fmt"
	"math"

	"stackc/internal/prim"
)

// Frame describes what the verified code may read. Nil maps skip the
// corresponding checks.
type Frame struct {
	Locals map[uint16]VType
	Fields map[string]VType
}

// Result is the abstract machine state after verification.
type Result struct {
	Stack    []VType
	MaxSlots int
}

// VerifyError pins a verification failure to an instruction offset.
type VerifyError struct {
	PC    int
	Instr Instr
	Msg   string
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("%d: %s: %s", e.PC, e.Instr, e.Msg)
}

type verifier struct {
	frame Frame
	stack []VType
	slots int
	max   int
	errs  []error
	pc    int
	in    Instr
}

func (v *verifier) fail(format string, args ...any) {
	v.errs = append(v.errs, &VerifyError{PC: v.pc, Instr: v.in, Msg: fmt.Sprintf(format, args...)})
}

func (v *verifier) push(t VType) {
	if t == VVoid {
		return
	}
	v.stack = append(v.stack, t)
	v.slots += t.Slots()
	if v.slots > v.max {
		v.max = v.slots
	}
}

// pop removes the top entry and checks it against want.
// Underflow is reported once and treated as an entry of the wanted type.
func (v *verifier) pop(want VType) {
	if len(v.stack) == 0 {
		v.fail("stack underflow, want %s", want)
		return
	}
	got := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	v.slots -= got.Slots()
	if got != want {
		v.fail("operand is %s, want %s", got, want)
	}
}

// Verify simulates code on an abstract stack of VTypes, starting empty.
// All findings are joined into the returned error.
func Verify(code []Instr, f Frame) (Result, error) {
	v := &verifier{frame: f}
	for pc, in := range code {
		v.pc, v.in = pc, in
		v.step(in)
	}
	return Result{Stack: v.stack, MaxSlots: v.max}, errors.Join(v.errs...)
}

func (v *verifier) step(in Instr) {
	t := VTypeOf(in.Kind)
	switch in.Op {
	case OpNop:
	case OpIConst:
		if in.Int < math.MinInt32 || in.Int > math.MaxInt32 {
			v.fail("constant %d out of int range", in.Int)
		}
		v.push(VInt)
	case OpLConst:
		v.push(VLong)
	case OpFConst:
		if !math.IsInf(in.Float, 0) && !math.IsNaN(in.Float) && math.Abs(in.Float) > math.MaxFloat32 {
			v.fail("constant %g out of float range", in.Float)
		}
		v.push(VFloat)
	case OpDConst:
		v.push(VDouble)
	case OpLoad:
		if !v.checkKind(in.Kind) {
			t = VInt
		}
		v.checkLocal(in.Slot, t)
		v.push(t)
	case OpALoad:
		v.checkLocal(in.Slot, VRef)
		v.push(VRef)
	case OpGetStatic, OpGetField:
		if in.Field == "" {
			v.fail("missing field name")
		}
		if !v.checkKind(in.Kind) {
			t = VInt
		}
		if in.Op == OpGetField {
			v.pop(VRef)
		}
		if v.frame.Fields != nil {
			if want, ok := v.frame.Fields[in.Field]; !ok {
				v.fail("unknown field %s", in.Field)
			} else if want != t {
				v.fail("field %s is %s, read as %s", in.Field, want, t)
			}
		}
		v.push(t)
	case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor:
		if !v.checkArith(in) {
			t = VInt
		}
		v.pop(t)
		v.pop(t)
		v.push(t)
	case OpNeg:
		if !v.checkArith(in) {
			t = VInt
		}
		v.pop(t)
		v.push(t)
	case OpShl, OpShr, OpUshr:
		if !v.checkArith(in) {
			t = VInt
		}
		v.pop(VInt)
		v.pop(t)
		v.push(t)
	case OpCmp:
		if !v.checkKind(in.Kind) {
			t = VInt
		}
		v.pop(t)
		v.pop(t)
		v.push(VInt)
	case OpConv:
		if !v.checkKind(in.Kind) {
			t = VInt
		}
		if !ConvertDefined(in.Kind, in.To) {
			v.fail("no conversion from %s to %s", in.Kind, in.To)
		}
		v.pop(t)
		v.push(VTypeOf(in.To))
	case OpInvoke:
		if in.Callee == "" {
			v.fail("missing callee")
		}
		for i := len(in.Sig.Params) - 1; i >= 0; i-- {
			v.pop(in.Sig.Params[i])
		}
		v.push(in.Sig.Result)
	case OpPop:
		if !v.checkKind(in.Kind) {
			t = VInt
		}
		v.pop(t)
	default:
		v.fail("unknown opcode")
	}
}

func (v *verifier) checkKind(k prim.Kind) bool {
	if !k.Valid() {
		v.fail("invalid operand kind")
		return false
	}
	return true
}

func (v *verifier) checkArith(in Instr) bool {
	if !v.checkKind(in.Kind) {
		return false
	}
	if in.Op.bitwise() && !in.Kind.IsIntegral() {
		v.fail("%s is not defined on %s", in.Op, in.Kind)
	}
	return true
}

func (v *verifier) checkLocal(slot uint16, t VType) {
	if v.frame.Locals == nil {
		return
	}
	want, ok := v.frame.Locals[slot]
	if !ok {
		v.fail("unknown local %d", slot)
		return
	}
	if want != t {
		v.fail("local %d is %s, read as %s", slot, want, t)
	}
}

// ConvertDefined reports whether a single conversion instruction exists from
// stack kind from to to.
func ConvertDefined(from, to prim.Kind) bool {
	from = from.StackKind()
	switch to {
	case prim.Int8, prim.Int16, prim.Char16:
		return from == prim.Int32
	case prim.Int32, prim.Int64, prim.Float32, prim.Float64:
		return from != to && from.IsNumeric()
	}
	return false
}
