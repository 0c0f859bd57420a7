// Package project locates and reads the stackc.toml project manifest.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrBadJobs reports a negative [build].jobs.
var ErrBadJobs = errors.New("[build].jobs must not be negative")

// Config is the decoded manifest. Zero values mean "use the default".
type Config struct {
	Build struct {
		Jobs  int    `toml:"jobs"`
		Cache *bool  `toml:"cache"`
		Dir   string `toml:"cache_dir"`
	} `toml:"build"`
	Diagnostics struct {
		Max int `toml:"max"`
	} `toml:"diagnostics"`
	Trace struct {
		Level  string `toml:"level"`
		Output string `toml:"output"`
	} `toml:"trace"`
}

// Manifest is a loaded stackc.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// CacheEnabled reports [build].cache, defaulting to true.
func (m *Manifest) CacheEnabled() bool {
	if m == nil || m.Config.Build.Cache == nil {
		return true
	}
	return *m.Config.Build.Cache
}

// CacheDir resolves [build].cache_dir against the project root.
func (m *Manifest) CacheDir() string {
	if m == nil {
		return ""
	}
	dir := strings.TrimSpace(m.Config.Build.Dir)
	if dir == "" {
		dir = ".stackc/cache"
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(m.Root, filepath.FromSlash(dir))
}

// LoadManifest parses the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if cfg.Build.Jobs < 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrBadJobs)
	}
	if meta.IsDefined("diagnostics", "max") && cfg.Diagnostics.Max <= 0 {
		return nil, fmt.Errorf("%s: [diagnostics].max must be positive", path)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// Discover finds and loads the manifest above startDir. ok is false when
// there is none.
func Discover(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err = LoadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}
