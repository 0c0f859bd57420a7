package intrinsic

import (
	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// Inv is the bitwise complement: operand xor all-ones.
type Inv struct{}

func (Inv) Name() string { return "inv" }

func (m Inv) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	if !result.IsIntegral() {
		return prim.Invalid, kindMismatch(m, site, result)
	}
	if err := checkArity(m, site, 0); err != nil {
		return prim.Invalid, err
	}
	kind := prim.OperandKindFor(result)
	if err := site.Receiver.Put(kind, a); err != nil {
		return prim.Invalid, err
	}
	if kind == prim.Int64 {
		a.LConst(-1)
	} else {
		a.IConst(-1)
	}
	a.Xor(kind)
	return kind, nil
}
