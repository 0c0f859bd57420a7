// Package driver runs units through load, compile and run.
//
// Loading is serial: every unit declares its classes and functions into one
// shared World. Compilation then fans out over an errgroup, each worker
// owning its unit's diagnostics bag and timer and only reading the World.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"stackc/internal/diag"
	"stackc/internal/observ"
	"stackc/internal/project"
	"stackc/internal/source"
	"stackc/internal/trace"
	"stackc/internal/unit"
)

// Options configures a Build.
type Options struct {
	Jobs           int // <= 0 means GOMAXPROCS
	MaxDiagnostics int // per unit
	Cache          *DiskCache
	Progress       ProgressSink
	Run            bool // evaluate compiled calls on the reference VM
	Timings        bool // attach an ObsTimings diagnostic to every unit
}

// UnitResult is the outcome of one unit file.
type UnitResult struct {
	Path     string
	FileID   source.FileID
	Unit     *unit.Unit // nil when the file could not be read
	Result   *unit.Result
	Outcomes []unit.Outcome
	Bag      *diag.Bag
	Timing   observ.Report
	Cached   bool

	loaded bool
	timer  *observ.Timer
}

// Output is everything a Build produced, in path order.
type Output struct {
	Files *source.FileSet
	World *unit.World
	Units []UnitResult
}

// HasErrors reports whether any unit has an error diagnostic.
func (o *Output) HasErrors() bool {
	for i := range o.Units {
		if o.Units[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// HasInternal reports whether any unit hit an internal compiler error.
func (o *Output) HasInternal() bool {
	for i := range o.Units {
		if o.Units[i].Bag.HasInternal() {
			return true
		}
	}
	return false
}

// Diagnostics merges every unit's bag, sorted by position.
func (o *Output) Diagnostics() []diag.Diagnostic {
	total := 0
	for i := range o.Units {
		total += o.Units[i].Bag.Len()
	}
	merged := diag.NewBag(total)
	for i := range o.Units {
		merged.Merge(o.Units[i].Bag)
	}
	merged.Sort()
	return merged.Items()
}

// Build loads, compiles and optionally runs the unit files at paths.
func Build(ctx context.Context, paths []string, opts Options) (*Output, error) {
	if opts.Progress == nil {
		opts.Progress = nopSink{}
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	world, err := unit.NewWorld()
	if err != nil {
		return nil, fmt.Errorf("builtin intrinsics: %w", err)
	}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "build", trace.ParentSpan(ctx))
	defer root.End(fmt.Sprintf("%d units", len(sorted)))
	ctx = trace.WithParent(ctx, root.ID())

	out := &Output{Files: source.NewFileSet(), World: world, Units: make([]UnitResult, len(sorted))}
	for _, p := range sorted {
		opts.Progress.OnEvent(Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}
	worldDigest := load(out, sorted, opts)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(sorted))))
	// each goroutine owns out.Units[i]; no locking needed
	for i := range out.Units {
		ur := &out.Units[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			compileUnit(gctx, ur, world, worldDigest, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	for i := range out.Units {
		ur := &out.Units[i]
		ur.Timing = ur.timer.Report()
		if opts.Timings {
			appendTimingDiagnostic(ur.Bag, ur.Path, ur.Timing)
		}
	}
	return out, nil
}

// load reads and declares every unit into out.World, serially. It returns
// a digest of all loaded content.
func load(out *Output, paths []string, opts Options) project.Digest {
	hashes := make([]project.Digest, 0, len(paths))
	for i, p := range paths {
		ur := &out.Units[i]
		ur.Path = p
		ur.Bag = diag.NewBag(opts.MaxDiagnostics)
		ur.timer = observ.NewTimer()
		opts.Progress.OnEvent(Event{File: p, Stage: StageLoad, Status: StatusWorking})
		start := time.Now()
		phase := ur.timer.Begin("load")

		id, err := out.Files.Load(p)
		if err != nil {
			diag.ReportError(diag.BagReporter{Bag: ur.Bag}, diag.IOLoadFileError, source.Span{File: source.NoFile}, err.Error()).Emit()
			ur.timer.End(phase, "unreadable")
			opts.Progress.OnEvent(Event{File: p, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: time.Since(start)})
			continue
		}
		ur.FileID = id
		ur.Unit, ur.loaded = unit.Load(out.Files, id, out.World, diag.BagReporter{Bag: ur.Bag})
		hashes = append(hashes, ur.Unit.Hash)
		ur.timer.End(phase, "")

		status := StatusDone
		if !ur.loaded {
			status = StatusError
		}
		opts.Progress.OnEvent(Event{File: p, Stage: StageLoad, Status: status, Elapsed: time.Since(start)})
	}
	if len(hashes) == 0 {
		return project.Digest{}
	}
	return project.Combine(hashes[0], hashes[1:]...)
}

func compileUnit(ctx context.Context, ur *UnitResult, world *unit.World, worldDigest project.Digest, opts Options) {
	if !ur.loaded {
		return
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeUnit, "unit:"+ur.Path, trace.ParentSpan(ctx))
	ctx = trace.WithParent(ctx, span.ID())
	rep := diag.BagReporter{Bag: ur.Bag}

	opts.Progress.OnEvent(Event{File: ur.Path, Stage: StageCompile, Status: StatusWorking})
	start := time.Now()
	phase := ur.timer.Begin("compile")

	key := CacheKey(ur.Unit.Hash, worldDigest)
	if cached, ok, err := opts.Cache.Get(key); err != nil {
		diag.ReportWarning(rep, diag.IOCacheError, source.Span{File: ur.FileID}, "cache read: "+err.Error()).Emit()
	} else if ok {
		ur.Result = cached
		ur.Cached = true
		rebase(ur.Result, ur.FileID)
	}
	if ur.Result == nil {
		ur.Result = unit.Compile(ctx, ur.Unit, world, rep)
		if !ur.Bag.HasErrors() && ctx.Err() == nil {
			if err := opts.Cache.Put(key, ur.Result); err != nil {
				diag.ReportWarning(rep, diag.IOCacheError, source.Span{File: ur.FileID}, "cache write: "+err.Error()).Emit()
			}
		}
	}
	note := ""
	if ur.Cached {
		note = "cached"
	}
	ur.timer.End(phase, note)

	status := StatusDone
	switch {
	case ur.Bag.HasErrors():
		status = StatusError
	case ur.Cached:
		status = StatusCached
	}
	opts.Progress.OnEvent(Event{File: ur.Path, Stage: StageCompile, Status: status, Elapsed: time.Since(start)})

	if opts.Run && !ur.Bag.HasErrors() {
		runUnit(ur, opts)
	}
	span.WithExtra("calls", fmt.Sprint(len(ur.Result.Calls))).End(string(status))
}

func runUnit(ur *UnitResult, opts Options) {
	opts.Progress.OnEvent(Event{File: ur.Path, Stage: StageRun, Status: StatusWorking})
	start := time.Now()
	phase := ur.timer.Begin("run")
	outcomes, err := unit.Run(ur.Unit, ur.Result)
	ur.Outcomes = outcomes
	ur.timer.End(phase, "")
	status := StatusDone
	if err != nil {
		status = StatusError
		diag.ReportError(diag.BagReporter{Bag: ur.Bag}, diag.UnitBadLiteral, source.Span{File: ur.FileID}, err.Error()).Emit()
	}
	opts.Progress.OnEvent(Event{File: ur.Path, Stage: StageRun, Status: status, Err: err, Elapsed: time.Since(start)})
}

// rebase points cached spans at the file id of this run.
func rebase(res *unit.Result, id source.FileID) {
	for i := range res.Calls {
		res.Calls[i].Span.File = id
	}
}
