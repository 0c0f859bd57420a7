package intrinsic

import (
	"context"
	"strings"
	"sync"
	"testing"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
	"stackc/internal/symbols"
	"stackc/internal/types"
)

func TestRegistryLookupByIdentity(t *testing.T) {
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	b := in.Builtins()

	builtin, err := tab.Declare(b.Int32, "inv", nil, b.Int32, symbols.FlagBuiltin)
	if err != nil {
		t.Fatal(err)
	}
	// same name on a user type is a different identity
	vec := in.Intern(types.MakeClass("Vec"))
	user, err := tab.Declare(vec, "inv", nil, vec, symbols.FlagUser)
	if err != nil {
		t.Fatal(err)
	}

	reg, err := NewRegistryBuilder().Register(builtin, Inv{}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if m, ok := reg.Lookup(builtin); !ok || m.Name() != "inv" {
		t.Fatalf("Lookup(builtin) = %v, %v", m, ok)
	}
	if _, ok := reg.Lookup(user); ok {
		t.Fatal("user symbol sharing the name resolved to an intrinsic")
	}
	if _, ok := reg.Lookup(symbols.NoSymbolID); ok {
		t.Fatal("NoSymbolID resolved")
	}
	var nilReg *Registry
	if _, ok := nilReg.Lookup(builtin); ok || nilReg.Len() != 0 {
		t.Fatal("nil registry resolved")
	}
}

func TestRegistryBuilderErrors(t *testing.T) {
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	sym, err := tab.Declare(in.Builtins().Int64, "inv", nil, in.Builtins().Int64, symbols.FlagBuiltin)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewRegistryBuilder().
		Register(sym, Inv{}).
		Register(sym, UnaryMinus{}).
		Register(symbols.NoSymbolID, Not{}).
		Build()
	if err == nil {
		t.Fatal("expected build error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "already bound to inv") || !strings.Contains(msg, "invalid symbol") {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = NewRegistryBuilder().Register(symbols.NoSymbolID, nil).Build()
	if err == nil || !strings.Contains(err.Error(), "nil intrinsic") {
		t.Fatalf("nil intrinsic on an invalid symbol: %v", err)
	}
}

func TestStandardRegistry(t *testing.T) {
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	reg, err := Standard(tab, in)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != tab.Len() {
		t.Fatalf("registry has %d entries for %d symbols", reg.Len(), tab.Len())
	}
	b := in.Builtins()
	tests := []struct {
		owner  types.TypeID
		name   string
		params []types.TypeID
		method string
	}{
		{b.Int32, "inv", nil, "inv"},
		{b.Int64, "inv", nil, "inv"},
		{b.Char, "inc", nil, "inc"},
		{b.Bool, "not", nil, "not"},
		{b.Int32, "plus", []types.TypeID{b.Int64}, "plus"},
		{b.Int64, "shl", []types.TypeID{b.Int32}, "shl"},
		{b.Bool, "xor", []types.TypeID{b.Bool}, "xor"},
		{b.Float64, "compareTo", []types.TypeID{b.Int8}, "compareTo"},
		{b.Char, "toInt", nil, "toInt"},
	}
	for _, tt := range tests {
		sym, ok := tab.Lookup(tt.owner, tt.name, tt.params)
		if !ok {
			t.Fatalf("%s.%s not declared", in.Format(tt.owner), tt.name)
		}
		m, ok := reg.Lookup(sym)
		if !ok || m.Name() != tt.method {
			t.Fatalf("%s resolved to %v", tab.QualifiedName(sym), m)
		}
	}
	for _, missing := range []struct {
		owner types.TypeID
		name  string
	}{
		{b.Float64, "inv"},
		{b.Bool, "inc"},
		{b.Char, "unaryMinus"},
	} {
		if _, ok := tab.Lookup(missing.owner, missing.name, nil); ok {
			t.Fatalf("%s.%s should not be declared", in.Format(missing.owner), missing.name)
		}
	}
	entries := reg.Entries()
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Symbol >= entries[i].Symbol {
			t.Fatal("entries not ordered by symbol")
		}
	}

	if _, err := Standard(tab, in); err == nil {
		t.Fatal("second Standard on the same table should fail")
	}
}

func TestStandardDeclaredResultsMatchGeneration(t *testing.T) {
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	reg, err := Standard(tab, in)
	if err != nil {
		t.Fatal(err)
	}
	env := NewEnv(in)
	for _, e := range reg.Entries() {
		sym := tab.Get(e.Symbol)
		recvKind, err := prim.Classify(in, sym.Owner)
		if err != nil {
			t.Fatalf("%s: %v", tab.QualifiedName(e.Symbol), err)
		}
		s := &CallSite{Callee: tab.QualifiedName(e.Symbol), Result: sym.Result, Receiver: localOf(recvKind, 0)}
		for i, p := range sym.Params {
			k, err := prim.Classify(in, p)
			if err != nil {
				t.Fatal(err)
			}
			s.Args = append(s.Args, localOf(k, uint16(2*(i+1))))
		}
		buf := bytecode.NewBuffer()
		kind, err := Generate(context.Background(), env, e.Method, s, buf)
		if err != nil {
			t.Fatalf("%s: %v", s.Callee, err)
		}
		res, err := bytecode.Verify(buf.Instrs(), bytecode.Frame{})
		if err != nil {
			t.Fatalf("%s:\n%s%v", s.Callee, bytecode.Listing(buf.Instrs()), err)
		}
		if len(res.Stack) != 1 || res.Stack[0] != bytecode.VTypeOf(kind) {
			t.Fatalf("%s left %v for %s", s.Callee, res.Stack, kind)
		}
	}
}

func TestRegistryConcurrentReaders(t *testing.T) {
	in := types.NewInterner()
	tab := symbols.NewTable(in)
	reg, err := Standard(tab, in)
	if err != nil {
		t.Fatal(err)
	}
	entries := reg.Entries()
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range entries {
				if m, ok := reg.Lookup(e.Symbol); !ok || m != e.Method {
					t.Errorf("lookup of %d diverged", e.Symbol)
					return
				}
			}
		}()
	}
	wg.Wait()
}
