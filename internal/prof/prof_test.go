package prof

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionWritesHeapProfile(t *testing.T) {
	mem := filepath.Join(t.TempDir(), "mem.pprof")
	s, err := Start("", mem, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second stop: %v", err)
	}
	if fi, err := os.Stat(mem); err != nil || fi.Size() == 0 {
		t.Fatalf("heap profile missing: %v", err)
	}
}
