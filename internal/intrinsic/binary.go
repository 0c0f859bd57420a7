package intrinsic

import (
	"fmt"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// BinaryOp enumerates the two-operand intrinsics.
type BinaryOp uint8

const (
	OpPlus BinaryOp = iota + 1
	OpMinus
	OpTimes
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUshr
)

// BinaryOps lists every BinaryOp in declaration order.
var BinaryOps = []BinaryOp{OpPlus, OpMinus, OpTimes, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpUshr}

func (op BinaryOp) String() string {
	switch op {
	case OpPlus:
		return "plus"
	case OpMinus:
		return "minus"
	case OpTimes:
		return "times"
	case OpDiv:
		return "div"
	case OpRem:
		return "rem"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpShl:
		return "shl"
	case OpShr:
		return "shr"
	case OpUshr:
		return "ushr"
	}
	return fmt.Sprintf("binary(%d)", uint8(op))
}

// IsShift reports whether the argument is a shift count.
func (op BinaryOp) IsShift() bool { return op == OpShl || op == OpShr || op == OpUshr }

// IsBitwise reports whether op is and, or or xor.
func (op BinaryOp) IsBitwise() bool { return op == OpAnd || op == OpOr || op == OpXor }

// accepts reports whether op is defined on operand kind k.
func (op BinaryOp) accepts(k prim.Kind) bool {
	switch {
	case op.IsShift():
		return k == prim.Int32 || k == prim.Int64
	case op.IsBitwise():
		return k == prim.Int32 || k == prim.Int64 || k == prim.Bool
	default:
		return k.IsNumeric()
	}
}

// Binary applies op to the receiver and its single argument.
type Binary struct {
	Op BinaryOp
}

func (b Binary) Name() string { return b.Op.String() }

func (b Binary) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	kind := prim.OperandKindFor(result)
	if !b.Op.accepts(kind) {
		return prim.Invalid, kindMismatch(b, site, result)
	}
	if err := checkArity(b, site, 1); err != nil {
		return prim.Invalid, err
	}
	if err := site.Receiver.Put(kind, a); err != nil {
		return prim.Invalid, err
	}
	argKind := kind
	if b.Op.IsShift() {
		argKind = prim.Int32
	}
	if err := site.Args[0].Put(argKind, a); err != nil {
		return prim.Invalid, err
	}
	switch b.Op {
	case OpPlus:
		a.Add(kind)
	case OpMinus:
		a.Sub(kind)
	case OpTimes:
		a.Mul(kind)
	case OpDiv:
		a.Div(kind)
	case OpRem:
		a.Rem(kind)
	case OpAnd:
		a.And(kind)
	case OpOr:
		a.Or(kind)
	case OpXor:
		a.Xor(kind)
	case OpShl:
		a.Shl(kind)
	case OpShr:
		a.Shr(kind)
	case OpUshr:
		a.Ushr(kind)
	default:
		return prim.Invalid, kindMismatch(b, site, result)
	}
	return kind, nil
}

// CompareTo compares receiver and argument at their promoted kind and
// yields -1, 0 or 1 as an Int32.
type CompareTo struct{}

func (CompareTo) Name() string { return "compareTo" }

func (m CompareTo) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	if result != prim.Int32 {
		return prim.Invalid, kindMismatch(m, site, result)
	}
	if err := checkArity(m, site, 1); err != nil {
		return prim.Invalid, err
	}
	lhs, rhs := site.Receiver.Kind(), site.Args[0].Kind()
	if !lhs.IsNumeric() {
		return prim.Invalid, kindMismatch(m, site, lhs)
	}
	if !rhs.IsNumeric() {
		return prim.Invalid, kindMismatch(m, site, rhs)
	}
	kind := prim.Promote(lhs, rhs)
	if err := site.Receiver.Put(kind, a); err != nil {
		return prim.Invalid, err
	}
	if err := site.Args[0].Put(kind, a); err != nil {
		return prim.Invalid, err
	}
	a.Cmp(kind)
	return prim.Int32, nil
}
