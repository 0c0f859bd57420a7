package vm

import (
	"math"

	"stackc/internal/bytecode"
)

// evalCmp pushes -1, 0 or 1. A NaN operand yields -1.
func (m *Machine) evalCmp(in bytecode.Instr) error {
	t := bytecode.VTypeOf(in.Kind)
	lhs, rhs, err := m.pop2(t)
	if err != nil {
		return err
	}
	var r int32
	switch t {
	case bytecode.VInt, bytecode.VLong:
		switch {
		case lhs.I < rhs.I:
			r = -1
		case lhs.I > rhs.I:
			r = 1
		}
	default:
		switch {
		case math.IsNaN(lhs.F) || math.IsNaN(rhs.F):
			r = -1
		case lhs.F < rhs.F:
			r = -1
		case lhs.F > rhs.F:
			r = 1
		}
	}
	m.push(Int(r))
	return nil
}
