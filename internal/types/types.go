package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the kinds of semantic types the backend sees.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindChar
	KindInt
	KindFloat
	KindString
	KindBoxed // heap wrapper around a primitive (nullable/generic position)
	KindClass // any other reference type
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBoxed:
		return "boxed"
	case KindClass:
		return "class"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats/chars.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  Kind
	Elem  TypeID // boxed payload / array element
	Width Width  // numeric and char widths
	Name  string // class name
}

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeBoxed describes the reference wrapper of elem.
func MakeBoxed(elem TypeID) Type {
	return Type{Kind: KindBoxed, Elem: elem}
}

// MakeClass describes a named reference type.
func MakeClass(name string) Type {
	return Type{Kind: KindClass, Name: name}
}

// MakeArray describes an array of elem.
func MakeArray(elem TypeID) Type {
	return Type{Kind: KindArray, Elem: elem}
}
