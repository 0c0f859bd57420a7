package stage

import (
	"errors"
	"strings"
	"testing"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

func mnemonics(code []bytecode.Instr) string {
	parts := make([]string, 0, len(code))
	for _, in := range code {
		parts = append(parts, in.String())
	}
	return strings.Join(parts, "; ")
}

func TestCoerceTable(t *testing.T) {
	tests := []struct {
		from, to prim.Kind
		want     string
	}{
		{prim.Int32, prim.Int32, ""},
		{prim.Int8, prim.Int32, ""},
		{prim.Char16, prim.Int32, ""},
		{prim.Int8, prim.Int16, ""},
		{prim.Int32, prim.Int64, "i2l"},
		{prim.Int8, prim.Int64, "i2l"},
		{prim.Int64, prim.Int32, "l2i"},
		{prim.Int64, prim.Int8, "l2i; i2b"},
		{prim.Int32, prim.Char16, "i2c"},
		{prim.Int16, prim.Int8, "i2b"},
		{prim.Int8, prim.Char16, "i2c"},
		{prim.Float64, prim.Int16, "d2i; i2s"},
		{prim.Float32, prim.Float64, "f2d"},
		{prim.Float64, prim.Int64, "d2l"},
		{prim.Int64, prim.Float32, "l2f"},
		{prim.Bool, prim.Bool, ""},
	}
	for _, tt := range tests {
		buf := bytecode.NewBuffer()
		if err := Coerce(tt.from, tt.to, bytecode.NewAdapter(buf)); err != nil {
			t.Fatalf("Coerce(%s, %s): %v", tt.from, tt.to, err)
		}
		if got := mnemonics(buf.Instrs()); got != tt.want {
			t.Errorf("Coerce(%s, %s) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestCoerceIllegal(t *testing.T) {
	pairs := [][2]prim.Kind{
		{prim.Bool, prim.Int32},
		{prim.Int32, prim.Bool},
		{prim.Float64, prim.Bool},
		{prim.Invalid, prim.Int32},
	}
	for _, p := range pairs {
		buf := bytecode.NewBuffer()
		err := Coerce(p[0], p[1], bytecode.NewAdapter(buf))
		var ice *IllegalConversionError
		if !errors.As(err, &ice) {
			t.Fatalf("Coerce(%s, %s): expected *IllegalConversionError, got %v", p[0], p[1], err)
		}
		if ice.From != p[0] || ice.To != p[1] {
			t.Fatalf("error carries %s->%s", ice.From, ice.To)
		}
		if buf.Len() != 0 {
			t.Fatalf("Coerce(%s, %s) emitted %d instructions on failure", p[0], p[1], buf.Len())
		}
	}
}

func TestOperands(t *testing.T) {
	byteLit, err := IntConst(prim.Int8, -5)
	if err != nil {
		t.Fatal(err)
	}
	longLit, err := IntConst(prim.Int64, 1<<40)
	if err != nil {
		t.Fatal(err)
	}
	half, err := FloatConst(prim.Float32, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name   string
		op     Operand
		target prim.Kind
		want   string
	}{
		{"local", Local{Slot: 2, K: prim.Int32}, prim.Int64, "iload 2; i2l"},
		{"static", Field{Owner: "Counter", Name: "n", K: prim.Int64, Static: true}, prim.Int64, "getstatic Counter.n:int64"},
		{"instance", Field{Owner: "Point", Name: "x", K: prim.Float64, OwnerSlot: 0}, prim.Float64, "aload 0; getfield Point.x:float64"},
		{"byte literal", byteLit, prim.Int32, "iconst -5"},
		{"long literal", longLit, prim.Int64, "lconst 1099511627776"},
		{"float literal", half, prim.Float64, "fconst 0.5; f2d"},
		{"bool literal", BoolConst(true), prim.Bool, "iconst 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := bytecode.NewBuffer()
			if err := tt.op.Put(tt.target, bytecode.NewAdapter(buf)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if got := mnemonics(buf.Instrs()); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOperandIllegalTargetEmitsNothing(t *testing.T) {
	ops := []Operand{
		Local{Slot: 1, K: prim.Bool},
		Field{Owner: "F", Name: "b", K: prim.Bool, Static: true},
		BoolConst(false),
		NewThunk(prim.Bool, func(a *bytecode.Adapter) error { a.IConst(1); return nil }),
	}
	for _, op := range ops {
		buf := bytecode.NewBuffer()
		err := op.Put(prim.Int32, bytecode.NewAdapter(buf))
		var ice *IllegalConversionError
		if !errors.As(err, &ice) {
			t.Fatalf("%T: expected *IllegalConversionError, got %v", op, err)
		}
		if buf.Len() != 0 {
			t.Fatalf("%T emitted on failure", op)
		}
	}
}

func TestLiteralRange(t *testing.T) {
	bad := []struct {
		k prim.Kind
		v int64
	}{
		{prim.Int8, 128},
		{prim.Int8, -129},
		{prim.Int16, 1 << 15},
		{prim.Char16, -1},
		{prim.Int32, 1 << 31},
		{prim.Float64, 1},
	}
	for _, b := range bad {
		if _, err := IntConst(b.k, b.v); err == nil {
			t.Errorf("IntConst(%s, %d) accepted", b.k, b.v)
		}
	}
	if _, err := FloatConst(prim.Float32, 1e300); err == nil {
		t.Error("FloatConst(float32, 1e300) accepted")
	}
	if c, err := IntConst(prim.Char16, 0xFFFF); err != nil || c.Int() != 0xFFFF {
		t.Errorf("IntConst(char16, 0xFFFF) = %v, %v", c, err)
	}
}

func TestThunkEmitsOnce(t *testing.T) {
	calls := 0
	th := NewThunk(prim.Int32, func(a *bytecode.Adapter) error {
		calls++
		a.GetStatic("Counter", "next", prim.Int32)
		return nil
	})
	buf := bytecode.NewBuffer()
	a := bytecode.NewAdapter(buf)
	if err := th.Put(prim.Int32, a); err != nil {
		t.Fatal(err)
	}
	err := th.Put(prim.Int32, a)
	var reused *ReusedOperandError
	if !errors.As(err, &reused) {
		t.Fatalf("second Put: expected *ReusedOperandError, got %v", err)
	}
	if calls != 1 || buf.Len() != 1 || !th.Used() {
		t.Fatalf("calls=%d len=%d used=%v", calls, buf.Len(), th.Used())
	}
}
