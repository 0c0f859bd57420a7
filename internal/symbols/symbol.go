package symbols

import "stackc/internal/types"

// Flags describe how a symbol was declared.
type Flags uint8

const (
	// FlagBuiltin marks members of the predeclared primitive types.
	FlagBuiltin Flags = 1 << iota
	// FlagUser marks symbols declared by a unit.
	FlagUser
)

// Symbol is a member function declared on an owner type. Two symbols with
// the same name on different owners, or with different parameter lists, are
// distinct identities.
type Symbol struct {
	ID     SymbolID
	Owner  types.TypeID
	Name   string
	Params []types.TypeID
	Result types.TypeID
	Flags  Flags
}
