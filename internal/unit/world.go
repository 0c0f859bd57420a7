package unit

import (
	"fmt"

	"stackc/internal/intrinsic"
	"stackc/internal/symbols"
	"stackc/internal/types"
)

// World is the state shared by every unit of a run. Units extend it while
// they are loaded, one at a time; compilation only reads it.
type World struct {
	Types    *types.Interner
	Symbols  *symbols.Table
	Registry *intrinsic.Registry
	Env      *intrinsic.Env
}

// NewWorld declares the primitive members and their intrinsics.
func NewWorld() (*World, error) {
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	reg, err := intrinsic.Standard(tab, in)
	if err != nil {
		return nil, fmt.Errorf("standard intrinsics: %w", err)
	}
	return &World{
		Types:    in,
		Symbols:  tab,
		Registry: reg,
		Env:      intrinsic.NewEnv(in),
	}, nil
}
