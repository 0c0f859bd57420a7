package vm

import (
	"stackc/internal/bytecode"
)

func (m *Machine) evalBitwise(in bytecode.Instr) error {
	t := bytecode.VTypeOf(in.Kind)
	if t != bytecode.VInt && t != bytecode.VLong {
		return m.panicf(PanicTypeMismatch, "%s on %s", in.Op, t)
	}
	lhs, rhs, err := m.pop2(t)
	if err != nil {
		return err
	}
	var v int64
	switch in.Op {
	case bytecode.OpAnd:
		v = lhs.I & rhs.I
	case bytecode.OpOr:
		v = lhs.I | rhs.I
	case bytecode.OpXor:
		v = lhs.I ^ rhs.I
	}
	m.push(Value{Type: t, I: v})
	return nil
}

// evalShift masks the count to the operand width as the VM defines.
func (m *Machine) evalShift(in bytecode.Instr) error {
	t := bytecode.VTypeOf(in.Kind)
	if t != bytecode.VInt && t != bytecode.VLong {
		return m.panicf(PanicTypeMismatch, "%s on %s", in.Op, t)
	}
	count, err := m.pop(bytecode.VInt)
	if err != nil {
		return err
	}
	v, err := m.pop(t)
	if err != nil {
		return err
	}
	if t == bytecode.VInt {
		n := uint(count.I & 31)
		x := v.Int32()
		switch in.Op {
		case bytecode.OpShl:
			v.I = int64(x << n)
		case bytecode.OpShr:
			v.I = int64(x >> n)
		case bytecode.OpUshr:
			v.I = int64(int32(asUint32(x) >> n)) //nolint:gosec // reinterpret as signed slot
		}
	} else {
		n := uint(count.I & 63)
		switch in.Op {
		case bytecode.OpShl:
			v.I <<= n
		case bytecode.OpShr:
			v.I >>= n
		case bytecode.OpUshr:
			v.I = asInt64(v.Bits() >> n)
		}
	}
	m.push(v)
	return nil
}
