// Package stage puts not-yet-evaluated operands onto the VM stack at a
// requested primitive kind.
package stage

import (
	"fmt"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// IllegalConversionError reports a staging request with no implicit
// conversion path.
type IllegalConversionError struct {
	From prim.Kind
	To   prim.Kind
}

func (e *IllegalConversionError) Error() string {
	return fmt.Sprintf("illegal conversion from %s to %s", e.From, e.To)
}

// Convertible reports whether Coerce(from, to) succeeds.
func Convertible(from, to prim.Kind) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	return from.IsNumeric() && to.IsNumeric()
}

// Coerce emits the conversions turning a value of kind from on top of the
// stack into kind to. Nothing is emitted on error.
func Coerce(from, to prim.Kind, a *bytecode.Adapter) error {
	if !Convertible(from, to) {
		return &IllegalConversionError{From: from, To: to}
	}
	if from == to {
		return nil
	}
	switch to {
	case prim.Int8, prim.Int16, prim.Char16:
		if from.StackKind() != prim.Int32 {
			a.Convert(from, prim.Int32)
		} else if from == prim.Int8 && to == prim.Int16 {
			return nil
		}
		a.Convert(prim.Int32, to)
		return nil
	}
	if from.StackKind() == to.StackKind() {
		// sub-int kinds already live in an Int32 slot
		return nil
	}
	a.Convert(from, to)
	return nil
}
