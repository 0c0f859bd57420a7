package unit

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"stackc/internal/bytecode"
	"stackc/internal/diag"
	"stackc/internal/prim"
	"stackc/internal/source"
	"stackc/internal/symbols"
	"stackc/internal/types"
)

// Unit is a loaded unit whose classes and functions are declared in the
// World it was loaded into.
type Unit struct {
	Name   string
	Path   string
	FileID source.FileID
	Hash   [32]byte

	file      File
	fileSpan  source.Span
	callSpans []source.Span
	locals    map[string]*localVar
	statics   map[string]*staticVar
	classes   map[string]*classInfo
	funcs     map[string]*funcInfo
}

type localVar struct {
	decl  *Local
	typ   types.TypeID
	kind  prim.Kind // Invalid for references
	class *classInfo
	slot  uint16
}

type staticVar struct {
	decl *Static
	key  string
	kind prim.Kind
}

type classInfo struct {
	name   string
	typ    types.TypeID
	fields map[string]prim.Kind
	order  []string
}

type funcInfo struct {
	decl   *Function
	sym    symbols.SymbolID
	result types.TypeID
	kind   prim.Kind  // Invalid unless the result is primitive
	class  *classInfo // set when the result is a unit class
}

// Load decodes the unit in file id and declares its members in w. It must
// not run concurrently with other Loads or with Compile on the same World.
// Problems are reported to rep; ok is false when the unit cannot compile.
func Load(fs *source.FileSet, id source.FileID, w *World, rep diag.Reporter) (u *Unit, ok bool) {
	f := fs.Get(id)
	if f == nil {
		return nil, false
	}
	u = &Unit{
		Name:     strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path)),
		Path:     f.Path,
		FileID:   id,
		Hash:     f.Hash,
		fileSpan: source.Span{File: id},
		locals:   make(map[string]*localVar),
		statics:  make(map[string]*staticVar),
		classes:  make(map[string]*classInfo),
		funcs:    make(map[string]*funcInfo),
	}

	meta, err := toml.Decode(string(f.Content), &u.file)
	if err != nil {
		sp := u.fileSpan
		var perr toml.ParseError
		if errors.As(err, &perr) {
			sp.Start = uint32(perr.Position.Start)                   //nolint:gosec // offsets into a loaded file
			sp.End = uint32(perr.Position.Start + perr.Position.Len) //nolint:gosec // offsets into a loaded file
		}
		diag.ReportError(rep, diag.UnitBadSyntax, sp, err.Error()).Emit()
		return u, false
	}
	for _, key := range meta.Undecoded() {
		diag.ReportWarning(rep, diag.UnitBadSyntax, u.fileSpan, fmt.Sprintf("unknown key %q", key.String())).Emit()
	}
	if u.file.Name != "" {
		u.Name = u.file.Name
	}

	headers := callHeaders(f.Content)
	u.callSpans = make([]source.Span, len(u.file.Calls))
	for i := range u.callSpans {
		u.callSpans[i] = u.fileSpan
		if len(headers) == len(u.file.Calls) {
			u.callSpans[i] = source.Span{File: id, Start: headers[i][0], End: headers[i][1]}
		}
	}

	d := &declarer{u: u, w: w, rep: rep, ok: true}
	d.classes()
	d.locals()
	d.statics()
	d.functions()
	return u, d.ok
}

type declarer struct {
	u   *Unit
	w   *World
	rep diag.Reporter
	ok  bool
}

func (d *declarer) errorf(code diag.Code, format string, args ...any) {
	d.ok = false
	diag.ReportError(d.rep, code, d.u.fileSpan, fmt.Sprintf(format, args...)).Emit()
}

// typeOf resolves a type name: predeclared names first, then this unit's classes.
func (d *declarer) typeOf(name string) (types.TypeID, bool) {
	if id, ok := d.w.Types.Named(name); ok {
		return id, true
	}
	if c, ok := d.u.classes[name]; ok {
		return c.typ, true
	}
	return types.NoTypeID, false
}

func (d *declarer) primitive(name, what string) (prim.Kind, bool) {
	id, ok := d.typeOf(name)
	if !ok {
		d.errorf(diag.UnitUnknownKind, "%s: unknown type %q", what, name)
		return prim.Invalid, false
	}
	k, err := prim.Classify(d.w.Types, id)
	if err != nil {
		d.errorf(diag.UnitNonPrimitiveUse, "%s: %v", what, err)
		return prim.Invalid, false
	}
	return k, true
}

func (d *declarer) classes() {
	for i := range d.u.file.Classes {
		c := &d.u.file.Classes[i]
		if c.Name == "" {
			d.errorf(diag.UnitBadSyntax, "class #%d has no name", i+1)
			continue
		}
		if _, ok := d.w.Types.Named(c.Name); ok {
			d.errorf(diag.UnitDuplicateName, "class %s shadows a predeclared type", c.Name)
			continue
		}
		if _, dup := d.u.classes[c.Name]; dup {
			d.errorf(diag.UnitDuplicateName, "class %s declared twice", c.Name)
			continue
		}
		info := &classInfo{
			name:   c.Name,
			typ:    d.w.Types.Intern(types.MakeClass(c.Name)),
			fields: make(map[string]prim.Kind, len(c.Fields)),
		}
		d.u.classes[c.Name] = info
		for _, f := range c.Fields {
			k, ok := d.primitive(f.Type, "field "+c.Name+"."+f.Name)
			if !ok {
				continue
			}
			if _, dup := info.fields[f.Name]; dup {
				d.errorf(diag.UnitDuplicateName, "field %s.%s declared twice", c.Name, f.Name)
				continue
			}
			info.fields[f.Name] = k
			info.order = append(info.order, f.Name)
		}
	}
}

func (d *declarer) locals() {
	next := 0
	for i := range d.u.file.Locals {
		l := &d.u.file.Locals[i]
		if _, dup := d.u.locals[l.Name]; dup || l.Name == "" {
			d.errorf(diag.UnitDuplicateName, "local %q declared twice or unnamed", l.Name)
			continue
		}
		typ, ok := d.typeOf(l.Type)
		if !ok {
			d.errorf(diag.UnitUnknownKind, "local %s: unknown type %q", l.Name, l.Type)
			continue
		}
		slot, err := bytecode.LocalSlot(next)
		if err != nil {
			d.errorf(diag.UnitBadSyntax, "local %s: %v", l.Name, err)
			continue
		}
		v := &localVar{decl: l, typ: typ, slot: slot, class: d.u.classes[l.Type]}
		if k, err := prim.Classify(d.w.Types, typ); err == nil {
			v.kind = k
			next += k.Slots()
		} else {
			next++
		}
		d.u.locals[l.Name] = v
	}
}

func (d *declarer) statics() {
	for i := range d.u.file.Statics {
		s := &d.u.file.Statics[i]
		key := s.Owner + "." + s.Name
		if _, dup := d.u.statics[key]; dup {
			d.errorf(diag.UnitDuplicateName, "static %s declared twice", key)
			continue
		}
		k, ok := d.primitive(s.Type, "static "+key)
		if !ok {
			continue
		}
		d.u.statics[key] = &staticVar{decl: s, key: key, kind: k}
	}
}

func (d *declarer) functions() {
	for i := range d.u.file.Functions {
		fn := &d.u.file.Functions[i]
		owner, ok := d.typeOf(fn.Owner)
		if !ok {
			d.errorf(diag.UnitUnknownKind, "function %s.%s: unknown owner %q", fn.Owner, fn.Name, fn.Owner)
			continue
		}
		params := make([]types.TypeID, 0, len(fn.Params))
		valid := true
		for _, p := range fn.Params {
			id, ok := d.typeOf(p)
			if !ok {
				d.errorf(diag.UnitUnknownKind, "function %s.%s: unknown parameter type %q", fn.Owner, fn.Name, p)
				valid = false
				break
			}
			params = append(params, id)
		}
		resultName := fn.Result
		if resultName == "" {
			resultName = "Unit"
		}
		result, ok := d.typeOf(resultName)
		if !ok {
			d.errorf(diag.UnitUnknownKind, "function %s.%s: unknown result type %q", fn.Owner, fn.Name, resultName)
			valid = false
		}
		if !valid {
			continue
		}
		sym, err := d.w.Symbols.Declare(owner, fn.Name, params, result, symbols.FlagUser)
		if err != nil {
			d.errorf(diag.UnitDuplicateName, "function %s.%s: %v", fn.Owner, fn.Name, err)
			continue
		}
		info := &funcInfo{decl: fn, sym: sym, result: result, class: d.u.classes[resultName]}
		if k, err := prim.Classify(d.w.Types, result); err == nil {
			info.kind = k
		}
		d.u.funcs[d.w.Symbols.QualifiedName(sym)] = info
	}
}

// Frame describes the unit's locals, statics and fields to the verifier.
func (u *Unit) Frame() bytecode.Frame {
	f := bytecode.Frame{
		Locals: make(map[uint16]bytecode.VType, len(u.locals)),
		Fields: make(map[string]bytecode.VType),
	}
	for _, l := range u.locals {
		if l.kind == prim.Invalid {
			f.Locals[l.slot] = bytecode.VRef
		} else {
			f.Locals[l.slot] = bytecode.VTypeOf(l.kind)
		}
	}
	for key, s := range u.statics {
		f.Fields[key] = bytecode.VTypeOf(s.kind)
	}
	for _, c := range u.classes {
		for name, k := range c.fields {
			f.Fields[c.name+"."+name] = bytecode.VTypeOf(k)
		}
	}
	return f
}

// Calls reports how many calls the unit describes.
func (u *Unit) Calls() int { return len(u.file.Calls) }
