package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for the predeclared types.
type Builtins struct {
	Unit    TypeID
	Bool    TypeID
	Char    TypeID
	Int8    TypeID
	Int16   TypeID
	Int32   TypeID
	Int64   TypeID
	Float32 TypeID
	Float64 TypeID
	String  TypeID
	Any     TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// It is built before code generation starts and only read afterwards, so
// concurrent lookups need no locking.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
}

// NewInterner constructs an interner seeded with the predeclared types.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[Type]TypeID, 32),
	}
	in.internRaw(Type{Kind: KindInvalid}) // reserve 0 as NoTypeID
	b := Builtins{
		Unit:    in.Intern(Type{Kind: KindUnit}),
		Bool:    in.Intern(Type{Kind: KindBool}),
		Char:    in.Intern(Type{Kind: KindChar, Width: Width16}),
		Int8:    in.Intern(MakeInt(Width8)),
		Int16:   in.Intern(MakeInt(Width16)),
		Int32:   in.Intern(MakeInt(Width32)),
		Int64:   in.Intern(MakeInt(Width64)),
		Float32: in.Intern(MakeFloat(Width32)),
		Float64: in.Intern(MakeFloat(Width64)),
		String:  in.Intern(Type{Kind: KindString}),
		Any:     in.Intern(MakeClass("Any")),
	}
	in.builtins = b
	for _, prim := range []TypeID{b.Bool, b.Char, b.Int8, b.Int16, b.Int32, b.Int64, b.Float32, b.Float64} {
		in.Intern(MakeBoxed(prim))
	}
	return in
}

// Builtins returns TypeIDs for the predeclared types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Format renders a type the way diagnostics print it.
func (in *Interner) Format(id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return fmt.Sprintf("type#%d", id)
	}
	switch t.Kind {
	case KindInt:
		switch t.Width {
		case Width8:
			return "Byte"
		case Width16:
			return "Short"
		case Width64:
			return "Long"
		default:
			return "Int"
		}
	case KindFloat:
		if t.Width == Width32 {
			return "Float"
		}
		return "Double"
	case KindBool:
		return "Boolean"
	case KindChar:
		return "Char"
	case KindUnit:
		return "Unit"
	case KindString:
		return "String"
	case KindBoxed:
		return in.Format(t.Elem) + "?"
	case KindClass:
		return t.Name
	case KindArray:
		return "Array<" + in.Format(t.Elem) + ">"
	default:
		return t.Kind.String()
	}
}

// Named resolves a type name as written in unit files: the primitive names,
// "T?" for the boxed form of a primitive, and "Unit"/"String"/"Any".
// It never interns, so it is safe to call from concurrent workers.
func (in *Interner) Named(name string) (TypeID, bool) {
	b := in.builtins
	switch name {
	case "Boolean":
		return b.Bool, true
	case "Char":
		return b.Char, true
	case "Byte":
		return b.Int8, true
	case "Short":
		return b.Int16, true
	case "Int":
		return b.Int32, true
	case "Long":
		return b.Int64, true
	case "Float":
		return b.Float32, true
	case "Double":
		return b.Float64, true
	case "String":
		return b.String, true
	case "Unit":
		return b.Unit, true
	case "Any":
		return b.Any, true
	}
	if n := len(name); n > 1 && name[n-1] == '?' {
		elem, ok := in.Named(name[:n-1])
		if !ok {
			return NoTypeID, false
		}
		id, ok := in.index[MakeBoxed(elem)]
		return id, ok
	}
	return NoTypeID, false
}
