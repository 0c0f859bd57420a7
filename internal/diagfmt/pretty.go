// Package diagfmt renders diagnostics for terminals and tools.
package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"stackc/internal/diag"
	"stackc/internal/source"
)

// Pretty writes diags in human-readable form, in the given order:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	   6 | [[call]]
//	     | ^~~~~~~~
//	  note: <path>:<line>:<col>: <message>
func Pretty(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) error {
	p := &printer{w: w, fs: fs, opts: opts}
	p.sev = map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevInfo:    color.New(color.FgCyan),
	}
	p.dim = color.New(color.FgBlue)
	p.caret = color.New(color.FgGreen, color.Bold)
	for _, c := range []*color.Color{p.sev[diag.SevError], p.sev[diag.SevWarning], p.sev[diag.SevInfo], p.dim, p.caret} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	n := len(diags)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	for i := range n {
		p.diagnostic(&diags[i])
	}
	if n < len(diags) {
		p.printf("... %d more diagnostics omitted\n", len(diags)-n)
	}
	return p.err
}

type printer struct {
	w     io.Writer
	fs    *source.FileSet
	opts  PrettyOpts
	sev   map[diag.Severity]*color.Color
	dim   *color.Color
	caret *color.Color
	err   error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) diagnostic(d *diag.Diagnostic) {
	sev := p.sev[d.Severity]
	if sev == nil {
		sev = p.sev[diag.SevInfo]
	}
	p.printf("%s: %s %s: %s\n", location(p.fs, d.Primary), sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)
	if p.opts.Context {
		p.context(d.Primary)
	}
	if !p.opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		if n.Span.File == source.NoFile {
			p.printf("  %s %s\n", p.dim.Sprint("note:"), n.Msg)
			continue
		}
		p.printf("  %s %s: %s\n", p.dim.Sprint("note:"), location(p.fs, n.Span), n.Msg)
	}
}

// context prints the first line of sp with a caret run under the span.
func (p *printer) context(sp source.Span) {
	f := p.fs.Get(sp.File)
	if f == nil || int(sp.Start) > len(f.Content) {
		return
	}
	start, _ := p.fs.Resolve(sp)
	if start.Line == 0 || int(start.Line) > len(f.LineIdx)+1 {
		return
	}
	// LineIdx holds the offsets of newlines
	lineStart := 0
	if start.Line > 1 {
		lineStart = int(f.LineIdx[start.Line-2]) + 1
	}
	lineEnd := len(f.Content)
	if int(start.Line) <= len(f.LineIdx) {
		lineEnd = int(f.LineIdx[start.Line-1])
	}
	text := strings.TrimRight(string(f.Content[lineStart:lineEnd]), "\r")
	text = strings.ReplaceAll(text, "\t", " ")

	col := min(int(sp.Start)-lineStart, len(text))
	end := min(max(int(sp.End)-lineStart, col+1), len(text))
	pad := runewidth.StringWidth(text[:col])
	width := max(runewidth.StringWidth(text[col:end]), 1)

	gutter := fmt.Sprintf("%4d", start.Line)
	p.printf("%s %s %s\n", p.dim.Sprint(gutter), p.dim.Sprint("|"), text)
	p.printf("%s %s %s%s\n", strings.Repeat(" ", len(gutter)), p.dim.Sprint("|"),
		strings.Repeat(" ", pad), p.caret.Sprint("^"+strings.Repeat("~", width-1)))
}

func location(fs *source.FileSet, sp source.Span) string {
	if fs == nil || fs.Get(sp.File) == nil {
		return "<no-span>"
	}
	return fs.Position(sp)
}
