package unit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stackc/internal/diag"
	"stackc/internal/source"
)

type loaded struct {
	fs   *source.FileSet
	w    *World
	bag  *diag.Bag
	unit *Unit
	ok   bool
}

func loadFile(t *testing.T, w *World, path string) loaded {
	t.Helper()
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("load %s: %v", path, err)
	}
	return loadInto(t, fs, w, id)
}

func loadString(t *testing.T, w *World, name, content string) loaded {
	t.Helper()
	fs := source.NewFileSet()
	return loadInto(t, fs, w, fs.AddVirtual(name, []byte(content)))
}

func loadInto(t *testing.T, fs *source.FileSet, w *World, id source.FileID) loaded {
	t.Helper()
	if w == nil {
		var err error
		if w, err = NewWorld(); err != nil {
			t.Fatalf("NewWorld: %v", err)
		}
	}
	bag := diag.NewBag(100)
	u, ok := Load(fs, id, w, diag.BagReporter{Bag: bag})
	return loaded{fs: fs, w: w, bag: bag, unit: u, ok: ok}
}

func (l loaded) compile(t *testing.T) *Result {
	t.Helper()
	if !l.ok {
		t.Fatalf("load failed:\n%s", diag.FormatShort(l.bag.Items(), l.fs))
	}
	return Compile(context.Background(), l.unit, l.w, diag.BagReporter{Bag: l.bag})
}

func TestGolden(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("testdata", "golden"))
	if err != nil {
		t.Fatalf("read golden dir: %v", err)
	}
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".toml") {
			continue
		}
		name := strings.TrimSuffix(ent.Name(), ".toml")
		t.Run(name, func(t *testing.T) {
			base := filepath.Join("testdata", "golden", name)
			l := loadFile(t, nil, base+".toml")
			res := l.compile(t)
			if l.bag.Len() != 0 {
				t.Fatalf("unexpected diagnostics:\n%s", diag.FormatShort(l.bag.Items(), l.fs))
			}

			wantListing, err := os.ReadFile(base + ".listing")
			if err != nil {
				t.Fatalf("read %s.listing: %v", name, err)
			}
			if got := Listing(res); got != string(wantListing) {
				t.Fatalf("listing mismatch:\nwant:\n%s\ngot:\n%s", wantListing, got)
			}

			wantOut, err := os.ReadFile(base + ".out")
			if err != nil {
				t.Fatalf("read %s.out: %v", name, err)
			}
			outcomes, err := Run(l.unit, res)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			var sb strings.Builder
			for _, o := range outcomes {
				sb.WriteString(o.String())
				sb.WriteByte('\n')
			}
			if got := sb.String(); got != string(wantOut) {
				t.Fatalf("output mismatch:\nwant:\n%s\ngot:\n%s", wantOut, got)
			}
		})
	}
}

func TestNestedCallRunsOnce(t *testing.T) {
	l := loadFile(t, nil, filepath.Join("testdata", "golden", "inv.toml"))
	res := l.compile(t)
	outcomes, err := Run(l.unit, res)
	if err != nil {
		t.Fatal(err)
	}
	if got := outcomes[2].Calls; got != 1 {
		t.Fatalf("Counter.next ran %d times", got)
	}
}

func TestUserDiagnostics(t *testing.T) {
	const src = `
[[local]]
name = "x"
type = "Int"

[[call]]
call = "Int.inv"
receiver = { local = "y" }

[[call]]
call = "Int.plus"
receiver = { local = "x" }
args = [{ const = true }]

[[call]]
call = "Byte.inv"
receiver = { const = 300, type = "Byte" }

[[call]]
call = "Int.inv"
receiver = { local = "x" }
`
	l := loadString(t, nil, "diags.toml", src)
	res := l.compile(t)
	if len(res.Calls) != 1 || res.Calls[0].Index != 3 {
		t.Fatalf("expected only call #4 to compile, got %+v", res.Calls)
	}
	items := l.bag.Items()
	want := []diag.Code{diag.UnitUnknownLocal, diag.UnitUnknownSymbol, diag.UnitBadLiteral}
	if len(items) != len(want) {
		t.Fatalf("got %d diagnostics:\n%s", len(items), diag.FormatShort(items, l.fs))
	}
	for i, d := range items {
		if d.Code != want[i] {
			t.Errorf("diagnostic %d: code %s, want %s", i, d.Code.ID(), want[i].ID())
		}
	}
	if pos := l.fs.Position(items[0].Primary); pos != "diags.toml:6:1" {
		t.Errorf("first diagnostic at %s", pos)
	}
	if l.bag.HasInternal() {
		t.Error("user mistakes reported as internal")
	}
}

func TestInternalErrorAbortsUnit(t *testing.T) {
	const src = `
[[call]]
call = "Int.inv"
receiver = { const = 1 }
result = "Int?"

[[call]]
call = "Int.inv"
receiver = { const = 2 }
`
	l := loadString(t, nil, "ice.toml", src)
	res := l.compile(t)
	if len(res.Calls) != 0 {
		t.Fatalf("calls after an internal error compiled: %+v", res.Calls)
	}
	items := l.bag.Items()
	if len(items) != 1 || items[0].Code != diag.IceNonPrimitiveIntrinsicTarget {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(items, l.fs))
	}
	if !l.bag.HasInternal() || !l.bag.HasErrors() {
		t.Fatal("internal error not flagged")
	}
	if pos := l.fs.Position(items[0].Primary); pos != "ice.toml:2:1" {
		t.Fatalf("reported at %s", pos)
	}
}

func TestSameNameDifferentIdentity(t *testing.T) {
	const src = `
[[class]]
name = "Vec"

[[local]]
name = "v"
type = "Vec"

[[function]]
owner = "Vec"
name = "inv"
result = "Vec"

[[call]]
call = "Vec.inv"
receiver = { local = "v" }
`
	l := loadString(t, nil, "vec.toml", src)
	res := l.compile(t)
	if len(res.Calls) != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(l.bag.Items(), l.fs))
	}
	if res.Calls[0].Intrinsic() {
		t.Fatal("user Vec.inv dispatched to the Int intrinsic")
	}
	if got := Listing(res); !strings.Contains(got, "invoke Vec.inv(L)L") {
		t.Fatalf("listing:\n%s", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"syntax", "[[call]\ncall = 1", diag.UnitBadSyntax},
		{"unknown local type", "[[local]]\nname = \"a\"\ntype = \"Quux\"", diag.UnitUnknownKind},
		{"duplicate static", "[[static]]\nowner = \"A\"\nname = \"b\"\ntype = \"Int\"\n[[static]]\nowner = \"A\"\nname = \"b\"\ntype = \"Int\"", diag.UnitDuplicateName},
		{"reference field", "[[class]]\nname = \"A\"\n[[class.field]]\nname = \"s\"\ntype = \"String\"", diag.UnitNonPrimitiveUse},
		{"duplicate builtin", "[[function]]\nowner = \"Int\"\nname = \"inv\"\nresult = \"Int\"", diag.UnitDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := loadString(t, nil, "bad.toml", tt.src)
			if l.ok {
				t.Fatal("load succeeded")
			}
			items := l.bag.Items()
			if len(items) == 0 || items[0].Code != tt.code {
				t.Fatalf("diagnostics:\n%s", diag.FormatShort(items, l.fs))
			}
		})
	}
}

func TestUnknownKeysWarn(t *testing.T) {
	l := loadString(t, nil, "warn.toml", "colour = \"red\"\n")
	if !l.ok {
		t.Fatal("unknown keys should not fail the load")
	}
	items := l.bag.Items()
	if len(items) != 1 || items[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(items, l.fs))
	}
}

func TestFrameCoversDeclarations(t *testing.T) {
	l := loadFile(t, nil, filepath.Join("testdata", "golden", "mixed.toml"))
	f := l.unit.Frame()
	if len(f.Locals) != 3 {
		t.Fatalf("locals = %v", f.Locals)
	}
	for _, key := range []string{"Config.shift", "Point.x", "Point.scale"} {
		if _, ok := f.Fields[key]; !ok {
			t.Errorf("field %s missing from frame", key)
		}
	}
}
