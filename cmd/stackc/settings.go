package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"stackc/internal/project"
)

// settings merges the persistent flags with stackc.toml. Flags set on the
// command line win over the manifest.
type settings struct {
	manifest *project.Manifest // nil outside a project
	quiet    bool
	timings  bool
	maxDiags int
	jobs     int
	cache    bool
	ui       switchMode
}

func loadSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Root().PersistentFlags()
	cfg := &settings{}

	colorValue, err := flags.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	colorMode, err := parseSwitch("color", colorValue)
	if err != nil {
		return nil, err
	}
	if colorMode == modeAuto {
		color.NoColor = color.NoColor || !colorMode.enabled(os.Stderr)
	} else {
		color.NoColor = !colorMode.enabled(os.Stderr)
	}

	if cfg.quiet, err = flags.GetBool("quiet"); err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if cfg.timings, err = flags.GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if cfg.maxDiags, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if cfg.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return nil, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if cfg.ui, err = parseSwitch("ui", uiValue); err != nil {
		return nil, err
	}

	m, ok, err := project.Discover(".")
	if err != nil {
		return nil, err
	}
	cfg.cache = !noCache
	if ok {
		cfg.manifest = m
		if !flags.Changed("jobs") && m.Config.Build.Jobs > 0 {
			cfg.jobs = m.Config.Build.Jobs
		}
		if !flags.Changed("max-diagnostics") && m.Config.Diagnostics.Max > 0 {
			cfg.maxDiags = m.Config.Diagnostics.Max
		}
		cfg.cache = cfg.cache && m.CacheEnabled()
	}
	if cfg.jobs < 0 {
		return nil, fmt.Errorf("--jobs must not be negative")
	}
	return cfg, nil
}

// cacheDir is the manifest's cache directory, or "" for the user cache.
func (s *settings) cacheDir() string {
	if s.manifest == nil {
		return ""
	}
	return s.manifest.CacheDir()
}

// defaultInputs is the project root, or the working directory.
func (s *settings) defaultInputs() []string {
	if s.manifest == nil {
		return []string{"."}
	}
	return []string{s.manifest.Root}
}
