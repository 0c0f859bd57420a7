package intrinsic

import (
	"fmt"

	"stackc/internal/prim"
	"stackc/internal/symbols"
	"stackc/internal/types"
)

var (
	integerKinds = []prim.Kind{prim.Int8, prim.Int16, prim.Int32, prim.Int64}
	numericKinds = []prim.Kind{prim.Int8, prim.Int16, prim.Int32, prim.Int64, prim.Float32, prim.Float64}
	// numeric kinds plus Char16
	castKinds = []prim.Kind{prim.Int8, prim.Int16, prim.Char16, prim.Int32, prim.Int64, prim.Float32, prim.Float64}
)

type declarer struct {
	tab *symbols.Table
	in  *types.Interner
	b   *RegistryBuilder
	err error
}

func (d *declarer) add(owner prim.Kind, name string, params []prim.Kind, result prim.Kind, m Method) {
	if d.err != nil {
		return
	}
	ptypes := make([]types.TypeID, len(params))
	for i, p := range params {
		ptypes[i] = prim.TypeFor(d.in, p)
	}
	sym, err := d.tab.Declare(prim.TypeFor(d.in, owner), name, ptypes, prim.TypeFor(d.in, result), symbols.FlagBuiltin)
	if err != nil {
		d.err = fmt.Errorf("declare intrinsic %s: %w", name, err)
		return
	}
	d.b.Register(sym, m)
}

// Standard declares the primitive member operations on tab and registers
// their intrinsics. It must run before tab is shared between workers.
func Standard(tab *symbols.Table, in *types.Interner) (*Registry, error) {
	d := &declarer{tab: tab, in: in, b: NewRegistryBuilder()}

	for _, k := range integerKinds {
		d.add(k, "inv", nil, k, Inv{})
	}
	for _, k := range castKinds {
		d.add(k, "inc", nil, k, Step{})
		d.add(k, "dec", nil, k, Step{Dec: true})
	}
	for _, k := range numericKinds {
		res := prim.OperandKindFor(k)
		d.add(k, "unaryMinus", nil, res, UnaryMinus{})
		d.add(k, "unaryPlus", nil, res, UnaryPlus{})
	}
	d.add(prim.Bool, "not", nil, prim.Bool, Not{})

	for _, op := range []BinaryOp{OpPlus, OpMinus, OpTimes, OpDiv, OpRem} {
		for _, owner := range numericKinds {
			for _, arg := range numericKinds {
				d.add(owner, op.String(), []prim.Kind{arg}, prim.Promote(owner, arg), Binary{Op: op})
			}
		}
	}
	for _, op := range []BinaryOp{OpAnd, OpOr, OpXor} {
		for _, k := range []prim.Kind{prim.Int32, prim.Int64, prim.Bool} {
			d.add(k, op.String(), []prim.Kind{k}, k, Binary{Op: op})
		}
	}
	for _, op := range []BinaryOp{OpShl, OpShr, OpUshr} {
		for _, k := range []prim.Kind{prim.Int32, prim.Int64} {
			d.add(k, op.String(), []prim.Kind{prim.Int32}, k, Binary{Op: op})
		}
	}

	for _, owner := range numericKinds {
		for _, arg := range numericKinds {
			d.add(owner, "compareTo", []prim.Kind{arg}, prim.Int32, CompareTo{})
		}
	}
	d.add(prim.Char16, "compareTo", []prim.Kind{prim.Char16}, prim.Int32, CompareTo{})

	for _, owner := range castKinds {
		for _, to := range castKinds {
			m := NumberCast{To: to}
			d.add(owner, m.Name(), nil, to, m)
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	return d.b.Build()
}
