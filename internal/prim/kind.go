// Package prim classifies semantic types into the primitive kinds of the
// stack VM and encodes the VM's stack-slot promotion rules.
package prim

import (
	"fmt"
	"strings"
)

// Kind is a machine primitive of the target VM.
type Kind uint8

const (
	Invalid Kind = iota
	Bool
	Int8
	Int16
	Char16
	Int32
	Int64
	Float32
	Float64
)

// All lists every valid kind in declaration order.
var All = []Kind{Bool, Int8, Int16, Char16, Int32, Int64, Float32, Float64}

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Char16:
		return "char16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "invalid"
	}
}

// ParseKind accepts the names produced by String.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range All {
		if k.String() == name {
			return k, nil
		}
	}
	return Invalid, fmt.Errorf("unknown primitive kind %q", s)
}

// Valid reports whether k is one of All.
func (k Kind) Valid() bool { return k >= Bool && k <= Float64 }

// IsIntegral reports whether k is a two's-complement integer kind (chars included).
func (k Kind) IsIntegral() bool {
	switch k {
	case Int8, Int16, Char16, Int32, Int64:
		return true
	}
	return false
}

// IsFloating reports whether k is an IEEE-754 kind.
func (k Kind) IsFloating() bool { return k == Float32 || k == Float64 }

// IsNumeric reports whether k takes part in arithmetic.
func (k Kind) IsNumeric() bool { return k.IsIntegral() || k.IsFloating() }

// IsWide reports whether k occupies two stack slots.
func (k Kind) IsWide() bool { return k == Int64 || k == Float64 }

// Bits returns the storage width of k.
func (k Kind) Bits() int {
	switch k {
	case Bool:
		return 1
	case Int8:
		return 8
	case Int16, Char16:
		return 16
	case Int32, Float32:
		return 32
	case Int64, Float64:
		return 64
	}
	return 0
}

// StackKind is the kind a value of k has once it sits on the evaluation
// stack: every kind narrower than 32 bits lives in an Int32 slot.
func (k Kind) StackKind() Kind {
	switch k {
	case Bool, Int8, Int16, Char16:
		return Int32
	}
	return k
}

// Slots returns how many stack slots a value of k occupies.
func (k Kind) Slots() int {
	if k.IsWide() {
		return 2
	}
	return 1
}
