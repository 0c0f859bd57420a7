package vm

import (
	"stackc/internal/bytecode"
)

// CallFunc implements invoke for callees the listing does not define.
type CallFunc func(callee string, args []Value) (Value, error)

// Machine holds the environment a listing runs against. Locals and
// statics are read-only for the listing; code generation never stores.
type Machine struct {
	Locals  map[uint16]Value
	Statics map[string]Value
	Call    CallFunc

	stack []Value
	pc    int
	steps int
}

// New returns a machine with empty locals and statics.
func New() *Machine {
	return &Machine{
		Locals:  make(map[uint16]Value),
		Statics: make(map[string]Value),
	}
}

// Steps reports how many instructions the last Run executed.
func (m *Machine) Steps() int { return m.steps }

// Run executes code from an empty stack and returns what is left on it.
func (m *Machine) Run(code []bytecode.Instr) ([]Value, error) {
	m.stack = m.stack[:0]
	m.steps = 0
	for pc, in := range code {
		m.pc = pc
		m.steps++
		if err := m.step(in); err != nil {
			return nil, err
		}
	}
	out := make([]Value, len(m.stack))
	copy(out, m.stack)
	return out, nil
}

// Eval runs code on a fresh machine and returns its single result.
func Eval(code []bytecode.Instr, setup func(*Machine)) (Value, error) {
	m := New()
	if setup != nil {
		setup(m)
	}
	stack, err := m.Run(code)
	if err != nil {
		return Value{}, err
	}
	if len(stack) != 1 {
		return Value{}, &VMError{Code: PanicTypeMismatch, Message: "expected exactly one result", PC: len(code)}
	}
	return stack[0], nil
}

func (m *Machine) push(v Value) { m.stack = append(m.stack, v) }

func (m *Machine) pop(want bytecode.VType) (Value, error) {
	if len(m.stack) == 0 {
		return Value{}, m.panicf(PanicStackUnderflow, "stack underflow, want %s", want)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	if v.Type != want {
		return Value{}, m.panicf(PanicTypeMismatch, "operand is %s, want %s", v.Type, want)
	}
	return v, nil
}

func (m *Machine) pop2(want bytecode.VType) (lhs, rhs Value, err error) {
	if rhs, err = m.pop(want); err != nil {
		return
	}
	lhs, err = m.pop(want)
	return
}

func (m *Machine) step(in bytecode.Instr) error {
	switch in.Op {
	case bytecode.OpNop:
		return nil
	case bytecode.OpIConst:
		m.push(Value{Type: bytecode.VInt, I: wrap32(in.Int)})
	case bytecode.OpLConst:
		m.push(Long(in.Int))
	case bytecode.OpFConst:
		m.push(Value{Type: bytecode.VFloat, F: round32(in.Float)})
	case bytecode.OpDConst:
		m.push(Double(in.Float))
	case bytecode.OpLoad, bytecode.OpALoad:
		v, ok := m.Locals[in.Slot]
		if !ok {
			return m.panicf(PanicUnknownLocal, "local %d is not bound", in.Slot)
		}
		want := bytecode.VRef
		if in.Op == bytecode.OpLoad {
			want = bytecode.VTypeOf(in.Kind)
		}
		if v.Type != want {
			return m.panicf(PanicTypeMismatch, "local %d is %s, read as %s", in.Slot, v.Type, want)
		}
		m.push(v)
	case bytecode.OpGetStatic:
		v, ok := m.Statics[in.Field]
		if !ok {
			return m.panicf(PanicUnknownField, "static %s is not bound", in.Field)
		}
		return m.pushField(in, v)
	case bytecode.OpGetField:
		ref, err := m.pop(bytecode.VRef)
		if err != nil {
			return err
		}
		if ref.Obj == nil {
			return m.panicf(PanicNullReference, "getfield %s on null", in.Field)
		}
		v, ok := ref.Obj.Fields[in.Field]
		if !ok {
			return m.panicf(PanicUnknownField, "%s has no field %s", ref.Obj.Class, in.Field)
		}
		return m.pushField(in, v)
	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpRem:
		return m.evalArith(in)
	case bytecode.OpNeg:
		return m.evalNeg(in)
	case bytecode.OpAnd, bytecode.OpOr, bytecode.OpXor:
		return m.evalBitwise(in)
	case bytecode.OpShl, bytecode.OpShr, bytecode.OpUshr:
		return m.evalShift(in)
	case bytecode.OpCmp:
		return m.evalCmp(in)
	case bytecode.OpConv:
		return m.evalConv(in)
	case bytecode.OpInvoke:
		return m.evalInvoke(in)
	case bytecode.OpPop:
		_, err := m.pop(bytecode.VTypeOf(in.Kind))
		return err
	default:
		return m.panicf(PanicUnimplemented, "opcode %s", in.Op)
	}
	return nil
}

func (m *Machine) pushField(in bytecode.Instr, v Value) error {
	if want := bytecode.VTypeOf(in.Kind); v.Type != want {
		return m.panicf(PanicTypeMismatch, "field %s is %s, read as %s", in.Field, v.Type, want)
	}
	m.push(v)
	return nil
}

func (m *Machine) evalInvoke(in bytecode.Instr) error {
	args := make([]Value, len(in.Sig.Params))
	for i := len(args) - 1; i >= 0; i-- {
		v, err := m.pop(in.Sig.Params[i])
		if err != nil {
			return err
		}
		args[i] = v
	}
	if m.Call == nil {
		return m.panicf(PanicUnsupportedCall, "no implementation for %s", in.Callee)
	}
	res, err := m.Call(in.Callee, args)
	if err != nil {
		return err
	}
	if in.Sig.Result == bytecode.VVoid {
		return nil
	}
	if res.Type != in.Sig.Result {
		return m.panicf(PanicTypeMismatch, "%s returned %s, want %s", in.Callee, res.Type, in.Sig.Result)
	}
	m.push(res)
	return nil
}
