package vm

import (
	"math"

	"stackc/internal/bytecode"
)

func (m *Machine) evalArith(in bytecode.Instr) error {
	t := bytecode.VTypeOf(in.Kind)
	lhs, rhs, err := m.pop2(t)
	if err != nil {
		return err
	}
	switch t {
	case bytecode.VInt, bytecode.VLong:
		v, err := m.intArith(in.Op, lhs.I, rhs.I)
		if err != nil {
			return err
		}
		if t == bytecode.VInt {
			v = wrap32(v)
		}
		m.push(Value{Type: t, I: v})
	case bytecode.VFloat, bytecode.VDouble:
		v := floatArith(in.Op, lhs.F, rhs.F)
		if t == bytecode.VFloat {
			v = round32(v)
		}
		m.push(Value{Type: t, F: v})
	default:
		return m.panicf(PanicTypeMismatch, "%s on %s", in.Op, t)
	}
	return nil
}

// intArith works on int64; Int32 results are wrapped by the caller.
// MinInt64 / -1 yields MinInt64 as Go defines it.
func (m *Machine) intArith(op bytecode.Op, a, b int64) (int64, error) {
	switch op {
	case bytecode.OpAdd:
		return a + b, nil
	case bytecode.OpSub:
		return a - b, nil
	case bytecode.OpMul:
		return a * b, nil
	case bytecode.OpDiv, bytecode.OpRem:
		if b == 0 {
			return 0, m.panicf(PanicDivideByZero, "%s by zero", op)
		}
		if op == bytecode.OpDiv {
			return a / b, nil
		}
		return a % b, nil
	}
	return 0, m.panicf(PanicUnimplemented, "arith %s", op)
}

func floatArith(op bytecode.Op, a, b float64) float64 {
	switch op {
	case bytecode.OpAdd:
		return a + b
	case bytecode.OpSub:
		return a - b
	case bytecode.OpMul:
		return a * b
	case bytecode.OpDiv:
		return a / b
	case bytecode.OpRem:
		return math.Mod(a, b)
	}
	return math.NaN()
}

func (m *Machine) evalNeg(in bytecode.Instr) error {
	t := bytecode.VTypeOf(in.Kind)
	v, err := m.pop(t)
	if err != nil {
		return err
	}
	switch t {
	case bytecode.VInt:
		v.I = wrap32(-v.I)
	case bytecode.VLong:
		v.I = -v.I
	default:
		v.F = -v.F
	}
	m.push(v)
	return nil
}
