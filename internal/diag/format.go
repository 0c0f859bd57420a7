package diag

import (
	"fmt"
	"sort"
	"strings"

	"stackc/internal/source"
)

// FormatShort renders one line per diagnostic (plus indented notes) in a
// deterministic order:
//
//	ERROR ICE9001 unit.toml:4:1: non-primitive intrinsic target: ...
func FormatShort(diags []Diagnostic, fs *source.FileSet) string {
	if len(diags) == 0 {
		return ""
	}
	sorted := make([]Diagnostic, len(diags))
	copy(sorted, diags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Primary.File != sorted[j].Primary.File {
			return sorted[i].Primary.File < sorted[j].Primary.File
		}
		return sorted[i].Primary.Start < sorted[j].Primary.Start
	})

	var sb strings.Builder
	for _, d := range sorted {
		fmt.Fprintf(&sb, "%s %s %s: %s\n", d.Severity, d.Code.ID(), position(fs, d.Primary), d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(&sb, "  note %s: %s\n", position(fs, n.Span), n.Msg)
		}
	}
	return sb.String()
}

func position(fs *source.FileSet, sp source.Span) string {
	if fs == nil {
		return "<no-span>"
	}
	return fs.Position(sp)
}
