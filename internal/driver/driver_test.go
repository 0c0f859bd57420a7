package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"stackc/internal/diag"
	"stackc/internal/project"
	"stackc/internal/trace"
	"stackc/internal/unit"
)

const invUnit = `
[[local]]
name = "x"
type = "Int"
value = 5

[[call]]
call = "Int.inv"
receiver = { local = "x" }

[[call]]
call = "Long.inv"
receiver = { const = 7, type = "Long" }
`

const counterUnit = `
[[class]]
name = "Counter"

[[function]]
owner = "Counter"
name = "next"
result = "Int"
value = 41

[[call]]
call = "Int.inv"
receiver = { call = "Counter.next" }
`

const brokenUnit = `
[[call]]
call = "Int.inv"
receiver = { local = "missing" }
`

func writeUnits(t *testing.T, units map[string]string) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	for name, content := range units {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}
	return dir, paths
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) last(file string, stage Stage) (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.events) - 1; i >= 0; i-- {
		if ev := s.events[i]; ev.File == file && ev.Stage == stage {
			return ev, true
		}
	}
	return Event{}, false
}

func outcomes(ur *UnitResult) []string {
	out := make([]string, len(ur.Outcomes))
	for i, o := range ur.Outcomes {
		out[i] = o.String()
	}
	return out
}

func TestBuildRunsEveryUnit(t *testing.T) {
	_, paths := writeUnits(t, map[string]string{
		"a.toml": invUnit,
		"b.toml": counterUnit,
		"c.toml": brokenUnit,
	})
	sink := &recordingSink{}
	out, err := Build(context.Background(), paths, Options{Jobs: 2, Run: true, Progress: sink})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out.Units) != 3 {
		t.Fatalf("got %d units", len(out.Units))
	}
	a, b, c := &out.Units[0], &out.Units[1], &out.Units[2]
	if !strings.HasSuffix(a.Path, "a.toml") || !strings.HasSuffix(c.Path, "c.toml") {
		t.Fatalf("units not in path order: %s, %s", a.Path, c.Path)
	}

	want := []string{"#1 Int.inv() = int -6", "#2 Long.inv() = long -8"}
	if got := outcomes(a); strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("a outcomes:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if got := outcomes(b); len(got) != 1 || got[0] != "#1 Int.inv() = int -42" {
		t.Fatalf("b outcomes: %v", got)
	}
	if b.Outcomes[0].Calls != 1 {
		t.Fatalf("Counter.next invoked %d times", b.Outcomes[0].Calls)
	}

	if !c.Bag.HasErrors() || c.Outcomes != nil {
		t.Fatalf("broken unit: errors=%v outcomes=%v", c.Bag.HasErrors(), c.Outcomes)
	}
	if a.Bag.HasErrors() || b.Bag.HasErrors() {
		t.Fatal("a broken unit leaked diagnostics into its neighbours")
	}
	if !out.HasErrors() || out.HasInternal() {
		t.Fatalf("HasErrors=%v HasInternal=%v", out.HasErrors(), out.HasInternal())
	}
	diags := out.Diagnostics()
	if len(diags) != 1 || diags[0].Code != diag.UnitUnknownLocal {
		t.Fatalf("diagnostics: %+v", diags)
	}

	if ev, ok := sink.last(a.Path, StageRun); !ok || ev.Status != StatusDone {
		t.Fatalf("a run event: %+v", ev)
	}
	if ev, ok := sink.last(c.Path, StageCompile); !ok || ev.Status != StatusError {
		t.Fatalf("c compile event: %+v", ev)
	}
	if _, ok := sink.last(c.Path, StageRun); ok {
		t.Fatal("broken unit was run")
	}
}

func TestBuildReportsUnreadableFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.toml")
	out, err := Build(context.Background(), []string{missing}, Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ur := out.Units[0]
	if ur.Unit != nil || ur.Result != nil {
		t.Fatal("unreadable file produced a unit")
	}
	items := ur.Bag.Items()
	if len(items) != 1 || items[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics: %+v", items)
	}
}

func TestBuildUsesCache(t *testing.T) {
	dir, paths := writeUnits(t, map[string]string{"a.toml": invUnit})
	cache, err := OpenDiskCache(filepath.Join(dir, ".cache"))
	if err != nil {
		t.Fatal(err)
	}

	first, err := Build(context.Background(), paths, Options{Cache: cache, Run: true})
	if err != nil {
		t.Fatal(err)
	}
	if first.Units[0].Cached {
		t.Fatal("cold build hit the cache")
	}
	sink := &recordingSink{}
	second, err := Build(context.Background(), paths, Options{Cache: cache, Run: true, Progress: sink})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Units[0].Cached {
		t.Fatal("warm build missed the cache")
	}
	if unit.Listing(first.Units[0].Result) != unit.Listing(second.Units[0].Result) {
		t.Fatalf("cached listing differs:\n%s\nvs\n%s",
			unit.Listing(first.Units[0].Result), unit.Listing(second.Units[0].Result))
	}
	if strings.Join(outcomes(&first.Units[0]), "\n") != strings.Join(outcomes(&second.Units[0]), "\n") {
		t.Fatal("cached result evaluates differently")
	}
	if ev, _ := sink.last(paths[0], StageCompile); ev.Status != StatusCached {
		t.Fatalf("compile status %q", ev.Status)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	third, err := Build(context.Background(), paths, Options{Cache: cache})
	if err != nil {
		t.Fatal(err)
	}
	if third.Units[0].Cached {
		t.Fatal("DropAll left entries behind")
	}
}

func TestCacheSkipsFailedUnits(t *testing.T) {
	dir, paths := writeUnits(t, map[string]string{"c.toml": brokenUnit})
	cache, err := OpenDiskCache(filepath.Join(dir, ".cache"))
	if err != nil {
		t.Fatal(err)
	}
	for range 2 {
		out, err := Build(context.Background(), paths, Options{Cache: cache})
		if err != nil {
			t.Fatal(err)
		}
		if out.Units[0].Cached || !out.Units[0].Bag.HasErrors() {
			t.Fatal("a unit with errors must be recompiled and re-reported")
		}
	}
}

func TestCacheKeyDependsOnWorld(t *testing.T) {
	content := project.Of("unit")
	if CacheKey(content, project.Of("a")) == CacheKey(content, project.Of("b")) {
		t.Fatal("key ignores the world digest")
	}
}

func TestBuildCanceled(t *testing.T) {
	_, paths := writeUnits(t, map[string]string{"a.toml": invUnit, "b.toml": counterUnit})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, paths, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBuildTimingsAndTrace(t *testing.T) {
	_, paths := writeUnits(t, map[string]string{"a.toml": invUnit})
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	out, err := Build(ctx, paths, Options{Timings: true})
	if err != nil {
		t.Fatal(err)
	}
	items := out.Units[0].Bag.Items()
	if len(items) != 1 || items[0].Code != diag.ObsTimings || items[0].Severity != diag.SevInfo {
		t.Fatalf("timing diagnostics: %+v", items)
	}
	if len(out.Units[0].Timing.Phases) != 2 {
		t.Fatalf("phases: %+v", out.Units[0].Timing.Phases)
	}

	scopes := map[trace.Scope]int{}
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			scopes[ev.Scope]++
		}
	}
	if scopes[trace.ScopeDriver] != 1 || scopes[trace.ScopeUnit] != 1 || scopes[trace.ScopeIntrinsic] != 2 {
		t.Fatalf("span ends by scope: %v", scopes)
	}
}

func TestListUnits(t *testing.T) {
	dir, _ := writeUnits(t, map[string]string{"b.toml": invUnit, "a.toml": invUnit, project.ManifestName: ""})
	hidden := filepath.Join(dir, ".cache")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(hidden, "x.toml"), nil, 0o600); err != nil {
		t.Fatal(err)
	}
	files, err := ListUnits([]string{dir, filepath.Join(dir, "a.toml")})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.toml"), filepath.Join(dir, "b.toml")}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("ListUnits = %v, want %v", files, want)
	}
	if _, err := ListUnits([]string{filepath.Join(dir, "nope")}); err == nil {
		t.Fatal("missing path accepted")
	}
}
