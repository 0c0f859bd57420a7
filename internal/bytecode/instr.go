package bytecode

import (
	"stackc/internal/prim"
)

// VType is the verifier's view of a stack entry.
type VType uint8

const (
	VVoid VType = iota
	VInt
	VLong
	VFloat
	VDouble
	VRef
)

func (t VType) String() string {
	switch t {
	case VInt:
		return "I"
	case VLong:
		return "J"
	case VFloat:
		return "F"
	case VDouble:
		return "D"
	case VRef:
		return "L"
	default:
		return "V"
	}
}

// Slots is the stack footprint of t.
func (t VType) Slots() int {
	switch t {
	case VVoid:
		return 0
	case VLong, VDouble:
		return 2
	default:
		return 1
	}
}

// VTypeOf maps a primitive kind to its stack entry type.
func VTypeOf(k prim.Kind) VType {
	switch k.StackKind() {
	case prim.Int32:
		return VInt
	case prim.Int64:
		return VLong
	case prim.Float32:
		return VFloat
	case prim.Float64:
		return VDouble
	}
	return VVoid
}

// Signature describes the stack effect of an invoke: it pops Params (the
// receiver first) and pushes Result unless Result is VVoid.
type Signature struct {
	Params []VType `json:"params" msgpack:"params"`
	Result VType   `json:"result" msgpack:"result"`
}

// Instr is one VM instruction. Only the fields relevant to Op are set.
type Instr struct {
	Op     Op        `json:"op" msgpack:"op"`
	Kind   prim.Kind `json:"kind,omitempty" msgpack:"kind,omitempty"`
	To     prim.Kind `json:"to,omitempty" msgpack:"to,omitempty"`
	Int    int64     `json:"int,omitempty" msgpack:"int,omitempty"`
	Float  float64   `json:"float,omitempty" msgpack:"float,omitempty"`
	Slot   uint16    `json:"slot,omitempty" msgpack:"slot,omitempty"`
	Field  string    `json:"field,omitempty" msgpack:"field,omitempty"`
	Callee string    `json:"callee,omitempty" msgpack:"callee,omitempty"`
	Sig    Signature `json:"sig,omitzero" msgpack:"sig,omitempty"`
}
