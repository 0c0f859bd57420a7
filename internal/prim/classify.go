package prim

import (
	"fmt"

	"stackc/internal/types"
)

// NotPrimitiveError reports a type with no machine primitive representation.
type NotPrimitiveError struct {
	Type types.TypeID
	Name string
}

func (e *NotPrimitiveError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s is not a primitive type", e.Name)
}

// Classify maps a semantic type to its primitive kind. Boxed wrappers and
// every reference type fail: a boxed Int is not an Int on the stack.
func Classify(in *types.Interner, id types.TypeID) (Kind, error) {
	t, ok := in.Lookup(id)
	if !ok {
		return Invalid, &NotPrimitiveError{Type: id, Name: in.Format(id)}
	}
	switch t.Kind {
	case types.KindBool:
		return Bool, nil
	case types.KindChar:
		return Char16, nil
	case types.KindInt:
		switch t.Width {
		case types.Width8:
			return Int8, nil
		case types.Width16:
			return Int16, nil
		case types.Width32, types.WidthAny:
			return Int32, nil
		case types.Width64:
			return Int64, nil
		}
	case types.KindFloat:
		switch t.Width {
		case types.Width32:
			return Float32, nil
		case types.Width64, types.WidthAny:
			return Float64, nil
		}
	}
	return Invalid, &NotPrimitiveError{Type: id, Name: in.Format(id)}
}

// IsPrimitive reports whether Classify would succeed.
func IsPrimitive(in *types.Interner, id types.TypeID) bool {
	_, err := Classify(in, id)
	return err == nil
}

// OperandKindFor is the kind numeric intrinsics stage their operand at for
// a given result kind. Sub-32-bit integers are computed in Int32 slots.
func OperandKindFor(result Kind) Kind {
	switch result {
	case Int8, Int16, Char16:
		return Int32
	}
	return result
}

// TypeFor is the inverse of Classify for the predeclared types.
func TypeFor(in *types.Interner, k Kind) types.TypeID {
	b := in.Builtins()
	switch k {
	case Bool:
		return b.Bool
	case Int8:
		return b.Int8
	case Int16:
		return b.Int16
	case Char16:
		return b.Char
	case Int32:
		return b.Int32
	case Int64:
		return b.Int64
	case Float32:
		return b.Float32
	case Float64:
		return b.Float64
	}
	return types.NoTypeID
}

// Promote returns the kind binary arithmetic on a and b is carried out in.
func Promote(a, b Kind) Kind {
	switch {
	case a == Float64 || b == Float64:
		return Float64
	case a == Float32 || b == Float32:
		return Float32
	case a == Int64 || b == Int64:
		return Int64
	}
	return Int32
}
