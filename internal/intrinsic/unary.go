package intrinsic

import (
	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// Step adds or subtracts one. Sub-int results are narrowed back to their
// own kind so that Byte.MAX_VALUE.inc() wraps.
type Step struct {
	Dec bool
}

func (s Step) Name() string {
	if s.Dec {
		return "dec"
	}
	return "inc"
}

func (s Step) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	if !result.IsNumeric() {
		return prim.Invalid, kindMismatch(s, site, result)
	}
	if err := checkArity(s, site, 0); err != nil {
		return prim.Invalid, err
	}
	kind := prim.OperandKindFor(result)
	if err := site.Receiver.Put(kind, a); err != nil {
		return prim.Invalid, err
	}
	a.Const(kind, 1)
	if s.Dec {
		a.Sub(kind)
	} else {
		a.Add(kind)
	}
	if kind != result {
		a.Convert(kind, result)
	}
	return result, nil
}

// UnaryMinus negates.
type UnaryMinus struct{}

func (UnaryMinus) Name() string { return "unaryMinus" }

func (m UnaryMinus) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	kind, err := stageUnary(m, env, site, a)
	if err != nil {
		return prim.Invalid, err
	}
	a.Neg(kind)
	return kind, nil
}

// UnaryPlus stages its receiver and nothing else.
type UnaryPlus struct{}

func (UnaryPlus) Name() string { return "unaryPlus" }

func (m UnaryPlus) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	return stageUnary(m, env, site, a)
}

func stageUnary(m Method, env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	if !result.IsNumeric() || result == prim.Char16 {
		return prim.Invalid, kindMismatch(m, site, result)
	}
	if err := checkArity(m, site, 0); err != nil {
		return prim.Invalid, err
	}
	kind := prim.OperandKindFor(result)
	if err := site.Receiver.Put(kind, a); err != nil {
		return prim.Invalid, err
	}
	return kind, nil
}

// Not is logical negation of a Bool.
type Not struct{}

func (Not) Name() string { return "not" }

func (m Not) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	if result != prim.Bool {
		return prim.Invalid, kindMismatch(m, site, result)
	}
	if err := checkArity(m, site, 0); err != nil {
		return prim.Invalid, err
	}
	if err := site.Receiver.Put(prim.Bool, a); err != nil {
		return prim.Invalid, err
	}
	a.IConst(1)
	a.Xor(prim.Bool)
	return prim.Bool, nil
}
