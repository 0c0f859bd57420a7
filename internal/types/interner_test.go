package types

import "testing"

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Int32 == NoTypeID || b.Float64 == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	i32, _ := in.Lookup(b.Int32)
	if i32.Kind != KindInt || i32.Width != Width32 {
		t.Fatalf("Int32 = %+v", i32)
	}
	if b.Int32 == b.Int64 {
		t.Fatal("int widths must not collapse")
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner()
	a := in.Intern(MakeBoxed(in.Builtins().Int32))
	b := in.Intern(MakeBoxed(in.Builtins().Int32))
	if a != b {
		t.Fatalf("boxed types should be deduplicated")
	}
	if in.Intern(Type{Kind: KindInvalid}) != NoTypeID {
		t.Fatal("invalid descriptor must map to NoTypeID")
	}
}

func TestNamedAndFormatRoundTrip(t *testing.T) {
	in := NewInterner()
	for _, name := range []string{"Boolean", "Char", "Byte", "Short", "Int", "Long", "Float", "Double", "String", "Unit", "Any", "Int?", "Long?"} {
		id, ok := in.Named(name)
		if !ok {
			t.Fatalf("Named(%q) failed", name)
		}
		if got := in.Format(id); got != name {
			t.Errorf("Format(Named(%q)) = %q", name, got)
		}
	}
	if _, ok := in.Named("Widget"); ok {
		t.Fatal("unknown name resolved")
	}
	if _, ok := in.Named("?"); ok {
		t.Fatal("bare ? resolved")
	}
}

func TestLookupOutOfRange(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup(TypeID(1 << 20)); ok {
		t.Fatal("out-of-range lookup succeeded")
	}
	if _, ok := in.Lookup(NoTypeID); ok {
		t.Fatal("NoTypeID lookup succeeded")
	}
}
