package intrinsic

import (
	"context"
	"errors"
	"math"
	"testing"

	"stackc/internal/bytecode"
	"stackc/internal/diag"
	"stackc/internal/prim"
	"stackc/internal/source"
	"stackc/internal/stage"
	"stackc/internal/trace"
	"stackc/internal/types"
	"stackc/internal/vm"
)

func TestInvScenarios(t *testing.T) {
	env := newEnv()
	tests := []struct {
		name    string
		kind    prim.Kind
		recv    int64
		listing string
		want    vm.Value
	}{
		{"long zero", prim.Int64, 0, "lconst 0; lconst -1; lxor", vm.Long(-1)},
		{"int minus one", prim.Int32, -1, "iconst -1; iconst -1; ixor", vm.Int(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, kind := gen(t, env, Inv{}, site(env, tt.kind, intLit(t, tt.kind, tt.recv)))
			if got := listing(code); got != tt.listing {
				t.Fatalf("listing = %q, want %q", got, tt.listing)
			}
			if kind != tt.kind {
				t.Fatalf("kind = %s, want %s", kind, tt.kind)
			}
			if got := eval(t, code, kind, nil); !got.Equal(tt.want) {
				t.Fatalf("value = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInvComplement(t *testing.T) {
	env := newEnv()
	int32s := []int64{0, -1, 1, math.MinInt32, math.MaxInt32, 0x5555_5555, -123456}
	for i := int64(-300); i <= 300; i += 7 {
		int32s = append(int32s, i*7919)
	}
	for _, v := range int32s {
		code, kind := gen(t, env, Inv{}, site(env, prim.Int32, intLit(t, prim.Int32, v)))
		got := eval(t, code, kind, nil)
		if want := vm.Int(^int32(v)); !got.Equal(want) {
			t.Fatalf("inv(%d) = %s, want %s", v, got, want)
		}
	}

	int64s := []int64{0, -1, 1, math.MinInt64, math.MaxInt64, 0x5555_5555_5555_5555, 1 << 40}
	for i := int64(-300); i <= 300; i += 7 {
		int64s = append(int64s, i*104729*104729)
	}
	for _, v := range int64s {
		code, kind := gen(t, env, Inv{}, site(env, prim.Int64, intLit(t, prim.Int64, v)))
		got := eval(t, code, kind, nil)
		if want := vm.Long(^v); !got.Equal(want) {
			t.Fatalf("inv(%d) = %s, want %s", v, got, want)
		}
	}
}

func TestInvInvolution(t *testing.T) {
	env := newEnv()
	for _, k := range []prim.Kind{prim.Int32, prim.Int64} {
		for _, v := range []int64{0, -1, 42, math.MinInt32, math.MaxInt32} {
			lit := intLit(t, k, v)
			inner := stage.NewThunk(k, func(a *bytecode.Adapter) error {
				_, err := Generate(context.Background(), env, Inv{}, site(env, k, lit), a)
				return err
			})
			code, kind := gen(t, env, Inv{}, site(env, k, inner))
			got := eval(t, code, kind, nil)
			want := vm.Int(int32(v))
			if k == prim.Int64 {
				want = vm.Long(v)
			}
			if !got.Equal(want) {
				t.Fatalf("inv(inv(%d)) at %s = %s", v, k, got)
			}
		}
	}
}

func TestInvEvaluatesReceiverOnce(t *testing.T) {
	env := newEnv()
	for _, k := range []prim.Kind{prim.Int32, prim.Int64} {
		sig := bytecode.Signature{Result: bytecode.VTypeOf(k)}
		recv := stage.NewThunk(k, func(a *bytecode.Adapter) error {
			a.Invoke("Counter.next", sig)
			return nil
		})
		code, kind := gen(t, env, Inv{}, site(env, k, recv))

		invokes := 0
		for _, in := range code {
			if in.Op == bytecode.OpInvoke {
				invokes++
			}
		}
		if invokes != 1 {
			t.Fatalf("%s: receiver emitted %d times:\n%s", k, invokes, bytecode.Listing(code))
		}

		calls := 0
		got := eval(t, code, kind, func(m *vm.Machine) {
			m.Call = func(string, []vm.Value) (vm.Value, error) {
				calls++
				if k == prim.Int64 {
					return vm.Long(5), nil
				}
				return vm.Int(5), nil
			}
		})
		if calls != 1 {
			t.Fatalf("%s: counter advanced %d times", k, calls)
		}
		if got.I != ^int64(5) {
			t.Fatalf("%s: inv(5) = %s", k, got)
		}
	}
}

func TestInvPreservesKind(t *testing.T) {
	env := newEnv()
	tests := []struct {
		result prim.Kind
		recv   stage.Operand
		want   prim.Kind
	}{
		{prim.Int32, stage.Local{Slot: 0, K: prim.Int32}, prim.Int32},
		{prim.Int64, stage.Local{Slot: 0, K: prim.Int64}, prim.Int64},
		{prim.Int8, stage.Local{Slot: 0, K: prim.Int8}, prim.Int32},
		{prim.Int16, stage.Field{Owner: "S", Name: "f", K: prim.Int16, Static: true}, prim.Int32},
	}
	for _, tt := range tests {
		code, kind := gen(t, env, Inv{}, site(env, tt.result, tt.recv))
		if kind != tt.want {
			t.Fatalf("inv on %s returned %s, want %s", tt.result, kind, tt.want)
		}
		res, err := bytecode.Verify(code, bytecode.Frame{})
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Stack) != 1 || res.Stack[0] != bytecode.VTypeOf(tt.want) {
			t.Fatalf("inv on %s left %v", tt.result, res.Stack)
		}
		for _, in := range code {
			if in.Op == bytecode.OpInvoke {
				t.Fatalf("inv introduced a call:\n%s", bytecode.Listing(code))
			}
		}
	}
}

func TestInvNarrowReceiver(t *testing.T) {
	env := newEnv()
	code, kind := gen(t, env, Inv{}, site(env, prim.Int8, stage.Local{Slot: 2, K: prim.Int8}))
	if got := listing(code); got != "iload 2; iconst -1; ixor" {
		t.Fatalf("listing = %q", got)
	}
	got := eval(t, code, kind, func(m *vm.Machine) { m.Locals[2] = vm.Int(-128) })
	if !got.Equal(vm.Int(127)) {
		t.Fatalf("inv(-128 as byte) = %s", got)
	}
}

func TestNonPrimitiveTargetLeavesSinkUntouched(t *testing.T) {
	env := newEnv()
	b := env.Types.Builtins()
	boxed, ok := env.Types.Named("Int?")
	if !ok {
		t.Fatal("Int? not interned")
	}
	targets := []types.TypeID{b.String, b.Unit, b.Any, boxed, types.NoTypeID}

	for _, target := range targets {
		calls := 0
		recv := stage.NewThunk(prim.Int32, func(a *bytecode.Adapter) error {
			calls++
			a.IConst(1)
			return nil
		})
		s := &CallSite{
			Span:     source.Span{File: 1, Start: 10, End: 17},
			Result:   target,
			Receiver: recv,
		}
		sink := bytecode.NewBuffer()
		sink.Emit(bytecode.Instr{Op: bytecode.OpNop})

		kind, err := Generate(context.Background(), env, Inv{}, s, sink)
		var ie *InternalError
		if !errors.As(err, &ie) {
			t.Fatalf("%s: expected *InternalError, got %v", env.Types.Format(target), err)
		}
		if ie.Code != diag.IceNonPrimitiveIntrinsicTarget || ie.Span != s.Span {
			t.Fatalf("error = %+v", ie)
		}
		if kind != prim.Invalid || sink.Len() != 1 || calls != 0 || recv.Used() {
			t.Fatalf("%s: kind=%s sink=%d calls=%d", env.Types.Format(target), kind, sink.Len(), calls)
		}
	}
}

func TestFailureAfterPartialEmissionLeavesSinkUntouched(t *testing.T) {
	env := newEnv()
	// the receiver stages fine, the Bool argument cannot become an Int32
	s := site(env, prim.Int32, intLit(t, prim.Int32, 1), stage.BoolConst(true))
	sink := bytecode.NewBuffer()
	_, err := Generate(context.Background(), env, Binary{Op: OpPlus}, s, sink)
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Code != diag.IceIllegalConversion {
		t.Fatalf("expected illegal conversion, got %v", err)
	}
	var conv *stage.IllegalConversionError
	if !errors.As(err, &conv) || conv.From != prim.Bool || conv.To != prim.Int32 {
		t.Fatalf("expected wrapped *stage.IllegalConversionError, got %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("sink holds %d instructions", sink.Len())
	}
}

func TestReusedThunkIsInternal(t *testing.T) {
	env := newEnv()
	recv := stage.NewThunk(prim.Int32, func(a *bytecode.Adapter) error {
		a.IConst(4)
		return nil
	})
	s := site(env, prim.Int32, recv)
	gen(t, env, Inv{}, s)
	_, err := Generate(context.Background(), env, Inv{}, s, bytecode.NewBuffer())
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Code != diag.IceReusedOperand {
		t.Fatalf("expected reused operand, got %v", err)
	}
}

func TestInvRejectsFloating(t *testing.T) {
	env := newEnv()
	sink := bytecode.NewBuffer()
	_, err := Generate(context.Background(), env, Inv{}, site(env, prim.Float64, floatLit(t, prim.Float64, 1)), sink)
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Code != diag.IceIntrinsicKindMismatch || ie.Method != "inv" {
		t.Fatalf("expected kind mismatch, got %v", err)
	}
	if sink.Len() != 0 {
		t.Fatal("sink modified")
	}
}

func TestGenerateTracesSpan(t *testing.T) {
	env := newEnv()
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	s := site(env, prim.Int32, intLit(t, prim.Int32, 3))
	s.Callee = "Int.inv()"
	if _, err := Generate(ctx, env, Inv{}, s, bytecode.NewBuffer()); err != nil {
		t.Fatal(err)
	}
	events := ring.Snapshot()
	if len(events) != 2 {
		t.Fatalf("got %d events", len(events))
	}
	end := events[1]
	if end.Kind != trace.KindSpanEnd || end.Scope != trace.ScopeIntrinsic || end.Name != "inv" || end.Detail != "Int.inv()" {
		t.Fatalf("end event = %+v", end)
	}
	if end.Extra["kind"] != "int32" {
		t.Fatalf("extra = %v", end.Extra)
	}
}
