package vm

import (
	"math"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

func (m *Machine) evalConv(in bytecode.Instr) error {
	if !bytecode.ConvertDefined(in.Kind, in.To) {
		return m.panicf(PanicTypeMismatch, "no conversion from %s to %s", in.Kind, in.To)
	}
	v, err := m.pop(bytecode.VTypeOf(in.Kind))
	if err != nil {
		return err
	}
	m.push(convert(v, in.To))
	return nil
}

func convert(v Value, to prim.Kind) Value {
	integral := v.Type == bytecode.VInt || v.Type == bytecode.VLong
	switch to {
	case prim.Int8:
		return Value{Type: bytecode.VInt, I: int64(int8(v.I))} //nolint:gosec // i2b truncates
	case prim.Int16:
		return Value{Type: bytecode.VInt, I: int64(int16(v.I))} //nolint:gosec // i2s truncates
	case prim.Char16:
		return Value{Type: bytecode.VInt, I: int64(uint16(v.I))} //nolint:gosec // i2c truncates
	case prim.Int32:
		if integral {
			return Value{Type: bytecode.VInt, I: wrap32(v.I)}
		}
		return Value{Type: bytecode.VInt, I: saturate(v.F, math.MinInt32, math.MaxInt32)}
	case prim.Int64:
		if integral {
			return Long(v.I)
		}
		return Long(saturate(v.F, math.MinInt64, math.MaxInt64))
	case prim.Float32:
		if integral {
			return Value{Type: bytecode.VFloat, F: round32(float64(v.I))}
		}
		return Value{Type: bytecode.VFloat, F: round32(v.F)}
	case prim.Float64:
		if integral {
			return Double(float64(v.I))
		}
		return Double(v.F)
	}
	return v
}

// saturate truncates f toward zero into [lo, hi]; NaN becomes 0.
func saturate(f float64, lo, hi int64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f <= float64(lo):
		return lo
	case f >= float64(hi):
		return hi
	}
	return int64(f)
}
