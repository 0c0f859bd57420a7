// Package vm is a reference interpreter for emitted instruction listings.
// It gives every instruction the exact stack semantics code generation
// relies on: Int32 slots wrap at 32 bits and sub-int kinds are narrowed only
// by explicit conversions.
package vm

import (
	"math"
	"strconv"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// Value is one stack entry.
type Value struct {
	Type bytecode.VType
	I    int64
	F    float64
	Obj  *Object
}

// Object is a heap instance with named fields.
type Object struct {
	Class  string
	Fields map[string]Value
}

func Int(v int32) Value     { return Value{Type: bytecode.VInt, I: int64(v)} }
func Long(v int64) Value    { return Value{Type: bytecode.VLong, I: v} }
func Float(v float32) Value { return Value{Type: bytecode.VFloat, F: float64(v)} }
func Double(v float64) Value {
	return Value{Type: bytecode.VDouble, F: v}
}
func Ref(o *Object) Value { return Value{Type: bytecode.VRef, Obj: o} }

// Zero is the default value of kind k.
func Zero(k prim.Kind) Value {
	return Value{Type: bytecode.VTypeOf(k)}
}

// Int32 returns the payload of an Int value.
func (v Value) Int32() int32 { return int32(v.I) } //nolint:gosec // Int values are kept in range.

// Bits returns the raw two's-complement pattern of an integral value.
func (v Value) Bits() uint64 { return asUint64(v.I) }

func (v Value) String() string {
	switch v.Type {
	case bytecode.VInt:
		return "int " + strconv.FormatInt(v.I, 10)
	case bytecode.VLong:
		return "long " + strconv.FormatInt(v.I, 10)
	case bytecode.VFloat:
		return "float " + strconv.FormatFloat(v.F, 'g', -1, 32)
	case bytecode.VDouble:
		return "double " + strconv.FormatFloat(v.F, 'g', -1, 64)
	case bytecode.VRef:
		if v.Obj == nil {
			return "ref null"
		}
		return "ref " + v.Obj.Class
	}
	return "void"
}

// Equal compares payloads bit for bit; NaNs of the same type are equal.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case bytecode.VFloat, bytecode.VDouble:
		return math.Float64bits(v.F) == math.Float64bits(o.F) || (math.IsNaN(v.F) && math.IsNaN(o.F))
	case bytecode.VRef:
		return v.Obj == o.Obj
	}
	return v.I == o.I
}

func round32(f float64) float64 { return float64(float32(f)) }
