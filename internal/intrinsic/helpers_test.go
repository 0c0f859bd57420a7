package intrinsic

import (
	"context"
	"strings"
	"testing"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
	"stackc/internal/stage"
	"stackc/internal/types"
	"stackc/internal/vm"
)

func newEnv() *Env { return NewEnv(types.NewInterner()) }

func site(env *Env, result prim.Kind, recv stage.Operand, args ...stage.Operand) *CallSite {
	return &CallSite{
		Result:   prim.TypeFor(env.Types, result),
		Receiver: recv,
		Args:     args,
	}
}

func intLit(t *testing.T, k prim.Kind, v int64) stage.Const {
	t.Helper()
	c, err := stage.IntConst(k, v)
	if err != nil {
		t.Fatalf("IntConst(%s, %d): %v", k, v, err)
	}
	return c
}

func floatLit(t *testing.T, k prim.Kind, v float64) stage.Const {
	t.Helper()
	c, err := stage.FloatConst(k, v)
	if err != nil {
		t.Fatalf("FloatConst(%s, %g): %v", k, v, err)
	}
	return c
}

// gen runs m through the contract and returns the emitted code and kind.
func gen(t *testing.T, env *Env, m Method, s *CallSite) ([]bytecode.Instr, prim.Kind) {
	t.Helper()
	buf := bytecode.NewBuffer()
	kind, err := Generate(context.Background(), env, m, s, buf)
	if err != nil {
		t.Fatalf("%s: %v", m.Name(), err)
	}
	return buf.Instrs(), kind
}

// eval verifies code, checks its single stack entry against kind and runs it.
func eval(t *testing.T, code []bytecode.Instr, kind prim.Kind, setup func(*vm.Machine)) vm.Value {
	t.Helper()
	res, err := bytecode.Verify(code, bytecode.Frame{})
	if err != nil {
		t.Fatalf("verify:\n%s%v", bytecode.Listing(code), err)
	}
	if len(res.Stack) != 1 || res.Stack[0] != bytecode.VTypeOf(kind) {
		t.Fatalf("stack after emission = %v, want [%s]", res.Stack, bytecode.VTypeOf(kind))
	}
	v, err := vm.Eval(code, setup)
	if err != nil {
		t.Fatalf("eval:\n%s%v", bytecode.Listing(code), err)
	}
	return v
}

func listing(code []bytecode.Instr) string {
	parts := make([]string, 0, len(code))
	for _, in := range code {
		parts = append(parts, in.String())
	}
	return strings.Join(parts, "; ")
}

func localOf(k prim.Kind, slot uint16) stage.Operand {
	return stage.Local{Slot: slot, K: k}
}
