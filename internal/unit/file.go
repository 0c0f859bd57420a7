// Package unit loads compilation units described in TOML and compiles their
// calls through the intrinsic registry, falling back to ordinary invokes.
package unit

import (
	"bytes"
)

// File is the decoded form of a unit file.
type File struct {
	Name      string     `toml:"name"`
	Classes   []Class    `toml:"class"`
	Locals    []Local    `toml:"local"`
	Statics   []Static   `toml:"static"`
	Functions []Function `toml:"function"`
	Calls     []Expr     `toml:"call"`
}

// Class declares a reference type and its fields.
type Class struct {
	Name   string      `toml:"name"`
	Fields []FieldDecl `toml:"field"`
}

// FieldDecl is one instance field.
type FieldDecl struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// Local declares a local variable. Value and Fields seed the reference VM.
type Local struct {
	Name   string         `toml:"name"`
	Type   string         `toml:"type"`
	Value  any            `toml:"value"`
	Fields map[string]any `toml:"fields"`
}

// Static declares a static field Owner.Name.
type Static struct {
	Owner string `toml:"owner"`
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Value any    `toml:"value"`
}

// Function declares an ordinary member; calls to it are invokes. Value is
// what the reference VM returns for it.
type Function struct {
	Owner  string   `toml:"owner"`
	Name   string   `toml:"name"`
	Params []string `toml:"params"`
	Result string   `toml:"result"`
	Value  any      `toml:"value"`
}

// Expr is an operand expression. Exactly one of Local, Static, Field,
// Const or Call is set.
type Expr struct {
	Local    string `toml:"local"`
	Static   string `toml:"static"`
	Field    string `toml:"field"`
	Of       string `toml:"of"`
	Const    any    `toml:"const"`
	Type     string `toml:"type"`
	Call     string `toml:"call"`
	Receiver *Expr  `toml:"receiver"`
	Args     []Expr `toml:"args"`
	Result   string `toml:"result"`
}

func (e *Expr) form() string {
	switch {
	case e.Call != "":
		return "call"
	case e.Local != "":
		return "local"
	case e.Static != "":
		return "static"
	case e.Field != "":
		return "field"
	case e.Const != nil:
		return "const"
	}
	return ""
}

var callHeader = []byte("[[call]]")

// callHeaders returns the byte range of every [[call]] header line in
// order. Calls written as inline arrays have no header.
func callHeaders(content []byte) [][2]uint32 {
	var out [][2]uint32
	off := 0
	for off < len(content) {
		end := bytes.IndexByte(content[off:], '\n')
		if end < 0 {
			end = len(content) - off
		}
		line := content[off : off+end]
		trimmed := bytes.TrimLeft(line, " \t")
		if bytes.HasPrefix(trimmed, callHeader) {
			start := off + (len(line) - len(trimmed))
			out = append(out, [2]uint32{uint32(start), uint32(start + len(callHeader))}) //nolint:gosec // file sizes fit uint32
		}
		off += end + 1
	}
	return out
}
