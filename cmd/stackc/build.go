package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stackc/internal/diag"
	"stackc/internal/diagfmt"
	"stackc/internal/driver"
)

var (
	errDiagnostics = errors.New("compilation failed")
	errInternal    = errors.New("internal compiler error")
)

func exitCode(err error) int {
	if errors.Is(err, errInternal) {
		return 2
	}
	return 1
}

// session runs fn with settings loaded and tracing and profiling set up.
func session(cmd *cobra.Command, fn func(ctx context.Context, cfg *settings) error) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	stopProf, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProf()
	stopTrace, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	defer stopTrace()
	return fn(cmd.Context(), cfg)
}

// buildUnits compiles the units named by args, prints diagnostics to
// stderr, and fails when any unit has errors.
func buildUnits(ctx context.Context, cmd *cobra.Command, cfg *settings, args []string, run bool) (*driver.Output, error) {
	if len(args) == 0 {
		args = cfg.defaultInputs()
	}
	files, err := driver.ListUnits(args)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no unit files found in %v", args)
	}

	opts := driver.Options{
		Jobs:           cfg.jobs,
		MaxDiagnostics: cfg.maxDiags,
		Run:            run,
		Timings:        cfg.timings,
	}
	if cfg.cache {
		cache, err := driver.OpenDiskCache(cfg.cacheDir())
		if err != nil {
			if !cfg.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "cache disabled: %v\n", err)
			}
		} else {
			opts.Cache = cache
		}
	}

	var out *driver.Output
	if shouldUseTUI(cfg.ui, cfg.quiet) {
		out, err = buildWithUI(ctx, cmd.CommandPath(), files, opts)
	} else {
		out, err = driver.Build(ctx, files, opts)
	}
	if out != nil {
		diags := out.Diagnostics()
		if cfg.quiet {
			diags = errorsOnly(diags)
		}
		if perr := diagfmt.Pretty(cmd.ErrOrStderr(), diags, out.Files, diagfmt.PrettyOpts{
			Color:     !color.NoColor,
			Context:   true,
			ShowNotes: true,
		}); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return out, err
	}
	switch {
	case out.HasInternal():
		return out, errInternal
	case out.HasErrors():
		return out, errDiagnostics
	}
	return out, nil
}

func errorsOnly(diags []diag.Diagnostic) []diag.Diagnostic {
	out := diags[:0:0]
	for _, d := range diags {
		if d.Severity == diag.SevError {
			out = append(out, d)
		}
	}
	return out
}
