// Package bytecode defines the instruction set of the target stack VM, the
// sink code generators append into, and a stack-type verifier.
package bytecode

import "fmt"

// Op is a VM opcode. Typed opcodes take their operand kind from Instr.Kind.
type Op uint8

const (
	OpNop       Op = iota
	OpIConst       // push Int (int32 range)
	OpLConst       // push Int
	OpFConst       // push Float (float32 range)
	OpDConst       // push Float
	OpLoad         // push local Slot of Kind
	OpALoad        // push reference local Slot
	OpGetStatic    // push static Field of Kind
	OpGetField     // pop reference, push its Field of Kind
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUshr
	OpCmp    // pop two values of Kind, push Int32 -1/0/1 (NaN compares as -1)
	OpConv   // convert top from Kind to To
	OpInvoke // ordinary call through Callee/Sig
	OpPop    // discard top of Kind
)

var opNames = [...]string{
	OpNop:       "nop",
	OpIConst:    "iconst",
	OpLConst:    "lconst",
	OpFConst:    "fconst",
	OpDConst:    "dconst",
	OpLoad:      "load",
	OpALoad:     "aload",
	OpGetStatic: "getstatic",
	OpGetField:  "getfield",
	OpAdd:       "add",
	OpSub:       "sub",
	OpMul:       "mul",
	OpDiv:       "div",
	OpRem:       "rem",
	OpNeg:       "neg",
	OpAnd:       "and",
	OpOr:        "or",
	OpXor:       "xor",
	OpShl:       "shl",
	OpShr:       "shr",
	OpUshr:      "ushr",
	OpCmp:       "cmp",
	OpConv:      "conv",
	OpInvoke:    "invoke",
	OpPop:       "pop",
}

func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", uint8(op))
}

// typed reports whether the mnemonic carries a kind prefix (iadd, lxor, ...).
func (op Op) typed() bool {
	switch op {
	case OpLoad, OpAdd, OpSub, OpMul, OpDiv, OpRem, OpNeg, OpAnd, OpOr, OpXor, OpShl, OpShr, OpUshr, OpCmp, OpPop:
		return true
	}
	return false
}

// bitwise reports whether op is only defined on integer stack kinds.
func (op Op) bitwise() bool {
	switch op {
	case OpAnd, OpOr, OpXor, OpShl, OpShr, OpUshr:
		return true
	}
	return false
}
