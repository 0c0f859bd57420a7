// Package intrinsic generates hand-specialized instruction sequences for
// well-known operations on primitive types, selected by symbol identity.
package intrinsic

import (
	"context"

	"stackc/internal/bytecode"
	"stackc/internal/diag"
	"stackc/internal/prim"
	"stackc/internal/source"
	"stackc/internal/stage"
	"stackc/internal/trace"
	"stackc/internal/types"
)

// Method emits the code for one intrinsic operation. Implementations write
// through a, leave exactly one value on the stack and return its kind.
type Method interface {
	Name() string
	Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error)
}

// CallSite is one recognized call. It is built by the caller, consumed by
// a single Generate and then discarded; its operands are borrowed.
type CallSite struct {
	Span     source.Span
	Callee   string
	Result   types.TypeID
	Receiver stage.Operand
	Args     []stage.Operand
}

// Env holds the read-only state intrinsics consult.
type Env struct {
	Types *types.Interner
}

// NewEnv binds an environment to the type interner.
func NewEnv(in *types.Interner) *Env { return &Env{Types: in} }

// ResultKind classifies the expected result of site.
func (env *Env) ResultKind(site *CallSite) (prim.Kind, error) {
	return prim.Classify(env.Types, site.Result)
}

// Generate runs m for site and appends its code to sink. The expected
// result must be primitive. On any failure nothing reaches sink.
func Generate(ctx context.Context, env *Env, m Method, site *CallSite, sink bytecode.Sink) (prim.Kind, error) {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeIntrinsic, m.Name(), trace.ParentSpan(ctx))
	kind, err := generate(env, m, site, sink)
	if err != nil {
		span.WithExtra("error", err.Error()).End("failed")
		return prim.Invalid, err
	}
	span.WithExtra("kind", kind.String()).End(site.Callee)
	return kind, nil
}

func generate(env *Env, m Method, site *CallSite, sink bytecode.Sink) (prim.Kind, error) {
	if _, err := env.ResultKind(site); err != nil {
		return prim.Invalid, &InternalError{
			Code:   diag.IceNonPrimitiveIntrinsicTarget,
			Span:   site.Span,
			Method: m.Name(),
			Err:    err,
		}
	}
	buf := bytecode.NewBuffer()
	kind, err := m.Generate(env, site, bytecode.NewAdapter(buf))
	if err != nil {
		return prim.Invalid, internalize(m, site, err)
	}
	buf.FlushTo(sink)
	return kind, nil
}
