package unit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"stackc/internal/bytecode"
	"stackc/internal/diag"
	"stackc/internal/intrinsic"
	"stackc/internal/prim"
	"stackc/internal/source"
	"stackc/internal/stage"
	"stackc/internal/symbols"
	"stackc/internal/trace"
	"stackc/internal/types"
)

// CallResult is the compiled form of one top-level call.
type CallResult struct {
	Index    int              `json:"index" msgpack:"index"`
	Callee   string           `json:"callee" msgpack:"callee"`
	Method   string           `json:"method,omitempty" msgpack:"method,omitempty"`
	Result   string           `json:"result" msgpack:"result"`
	Stack    []bytecode.VType `json:"stack" msgpack:"stack"`
	MaxSlots int              `json:"max_slots" msgpack:"max_slots"`
	Code     []bytecode.Instr `json:"code" msgpack:"code"`
	Span     source.Span      `json:"-" msgpack:"span"`
}

// Intrinsic reports whether the call was generated by an intrinsic.
func (c *CallResult) Intrinsic() bool { return c.Method != "" }

// Result is everything a unit compiled to.
type Result struct {
	Unit  string       `json:"unit" msgpack:"unit"`
	Path  string       `json:"path" msgpack:"path"`
	Calls []CallResult `json:"calls" msgpack:"calls"`
}

// userError is a mistake in the unit description.
type userError struct {
	code diag.Code
	msg  string
}

func (e *userError) Error() string { return e.msg }

func userErrorf(code diag.Code, format string, args ...any) error {
	return &userError{code: code, msg: fmt.Sprintf(format, args...)}
}

// Compile generates code for every call of u. User mistakes skip the call
// they occur in; an internal error aborts the unit. Compile only reads w.
func Compile(ctx context.Context, u *Unit, w *World, rep diag.Reporter) *Result {
	res := &Result{Unit: u.Name, Path: u.Path}
	frame := u.Frame()
	tracer := trace.FromContext(ctx)
	for i := range u.file.Calls {
		if ctx.Err() != nil {
			return res
		}
		c := &compiler{ctx: ctx, u: u, w: w, span: u.callSpans[i]}
		cr, err := c.top(i, &u.file.Calls[i])
		if err == nil {
			err = verify(cr, frame)
		}
		if err == nil {
			res.Calls = append(res.Calls, *cr)
			continue
		}
		trace.Point(tracer, trace.ScopeUnit, "call_failed", err.Error(), trace.ParentSpan(ctx))
		if internal := report(rep, c.span, err); internal {
			return res
		}
	}
	return res
}

// report converts err to a diagnostic and tells whether it was internal.
func report(rep diag.Reporter, sp source.Span, err error) bool {
	var ue *userError
	if errors.As(err, &ue) {
		diag.ReportError(rep, ue.code, sp, ue.msg).Emit()
		return false
	}
	code := diag.UnknownCode
	var ie *intrinsic.InternalError
	if errors.As(err, &ie) {
		code = ie.Code
		sp = ie.Span
	}
	diag.ReportError(rep, code, sp, "internal compiler error: "+err.Error()).
		WithNote(sp, "this is a bug in code generation, not in the unit").
		Emit()
	return true
}

func verify(cr *CallResult, frame bytecode.Frame) error {
	vr, err := bytecode.Verify(cr.Code, frame)
	if err != nil {
		return &intrinsic.InternalError{Code: diag.IceVerifyFailed, Span: cr.Span, Method: cr.Callee, Err: err}
	}
	cr.Stack = vr.Stack
	cr.MaxSlots = vr.MaxSlots
	if len(vr.Stack) > 1 {
		return &intrinsic.InternalError{
			Code:   diag.IceVerifyFailed,
			Span:   cr.Span,
			Method: cr.Callee,
			Msg:    fmt.Sprintf("call left %d values on the stack", len(vr.Stack)),
		}
	}
	return nil
}

type compiler struct {
	ctx  context.Context
	u    *Unit
	w    *World
	span source.Span
}

// value is a resolved operand expression.
type value struct {
	op    stage.Operand // nil for references
	typ   types.TypeID
	local *localVar // set for reference locals
}

// plan is a resolved call, ready to emit.
type plan struct {
	sym    symbols.SymbolID
	callee string
	method intrinsic.Method
	recv   *value
	args   []value
	result types.TypeID
}

func (c *compiler) top(index int, e *Expr) (*CallResult, error) {
	if e.Call == "" {
		return nil, userErrorf(diag.UnitBadExpression, "call #%d has no callee", index+1)
	}
	p, err := c.resolve(e)
	if err != nil {
		return nil, err
	}
	buf := bytecode.NewBuffer()
	if err := c.emit(p, buf); err != nil {
		return nil, err
	}
	cr := &CallResult{
		Index:  index,
		Callee: p.callee,
		Result: c.w.Types.Format(p.result),
		Code:   append([]bytecode.Instr(nil), buf.Instrs()...),
		Span:   c.span,
	}
	if p.method != nil {
		cr.Method = p.method.Name()
	}
	return cr, nil
}

func (c *compiler) resolve(e *Expr) (*plan, error) {
	dot := strings.LastIndexByte(e.Call, '.')
	if dot <= 0 || dot == len(e.Call)-1 {
		return nil, userErrorf(diag.UnitBadExpression, "callee %q is not Owner.member", e.Call)
	}
	ownerName, member := e.Call[:dot], e.Call[dot+1:]
	owner, ok := c.typeOf(ownerName)
	if !ok {
		return nil, userErrorf(diag.UnitUnknownSymbol, "unknown owner type %q in %s", ownerName, e.Call)
	}

	p := &plan{}
	if e.Receiver != nil {
		recv, err := c.value(e.Receiver)
		if err != nil {
			return nil, err
		}
		if recv.typ != owner {
			return nil, userErrorf(diag.UnitBadExpression, "receiver of %s is %s, want %s",
				e.Call, c.w.Types.Format(recv.typ), c.w.Types.Format(owner))
		}
		p.recv = &recv
	}
	argTypes := make([]types.TypeID, 0, len(e.Args))
	for i := range e.Args {
		arg, err := c.value(&e.Args[i])
		if err != nil {
			return nil, err
		}
		p.args = append(p.args, arg)
		argTypes = append(argTypes, arg.typ)
	}

	sym, ok := c.w.Symbols.Lookup(owner, member, argTypes)
	if !ok {
		names := make([]string, len(argTypes))
		for i, t := range argTypes {
			names[i] = c.w.Types.Format(t)
		}
		return nil, userErrorf(diag.UnitUnknownSymbol, "no member %s(%s)", e.Call, strings.Join(names, ", "))
	}
	p.sym = sym
	p.callee = c.w.Symbols.QualifiedName(sym)
	p.result = c.w.Symbols.Get(sym).Result
	if e.Result != "" {
		if p.result, ok = c.typeOf(e.Result); !ok {
			return nil, userErrorf(diag.UnitUnknownKind, "unknown result type %q", e.Result)
		}
	}
	if m, ok := c.w.Registry.Lookup(sym); ok {
		p.method = m
		if p.recv == nil || p.recv.op == nil {
			return nil, userErrorf(diag.UnitBadExpression, "%s needs a primitive receiver", p.callee)
		}
		for i, a := range p.args {
			if a.op == nil {
				return nil, userErrorf(diag.UnitNonPrimitiveUse, "argument %d of %s is a reference", i+1, p.callee)
			}
		}
	}
	return p, nil
}

func (c *compiler) emit(p *plan, sink bytecode.Sink) error {
	if p.method != nil {
		site := &intrinsic.CallSite{
			Span:     c.span,
			Callee:   p.callee,
			Result:   p.result,
			Receiver: p.recv.op,
		}
		for _, a := range p.args {
			site.Args = append(site.Args, a.op)
		}
		_, err := intrinsic.Generate(c.ctx, c.w.Env, p.method, site, sink)
		return err
	}
	return c.invoke(p, sink)
}

// invoke emits an ordinary call: receiver, arguments, invoke.
func (c *compiler) invoke(p *plan, sink bytecode.Sink) error {
	buf := bytecode.NewBuffer()
	a := bytecode.NewAdapter(buf)
	var sig bytecode.Signature
	put := func(v *value) error {
		if v.op == nil {
			a.ALoad(v.local.slot)
			sig.Params = append(sig.Params, bytecode.VRef)
			return nil
		}
		k := v.op.Kind()
		sig.Params = append(sig.Params, bytecode.VTypeOf(k))
		return v.op.Put(k, a)
	}
	if p.recv != nil {
		if err := put(p.recv); err != nil {
			return err
		}
	}
	for i := range p.args {
		if err := put(&p.args[i]); err != nil {
			return err
		}
	}
	sig.Result = c.stackType(p.result)
	sym := c.w.Symbols.Get(p.sym)
	a.Invoke(c.w.Types.Format(sym.Owner)+"."+sym.Name, sig)
	buf.FlushTo(sink)
	return nil
}

func (c *compiler) stackType(id types.TypeID) bytecode.VType {
	if id == c.w.Types.Builtins().Unit {
		return bytecode.VVoid
	}
	if k, err := prim.Classify(c.w.Types, id); err == nil {
		return bytecode.VTypeOf(k)
	}
	return bytecode.VRef
}

func (c *compiler) typeOf(name string) (types.TypeID, bool) {
	if id, ok := c.w.Types.Named(name); ok {
		return id, true
	}
	if cl, ok := c.u.classes[name]; ok {
		return cl.typ, true
	}
	return types.NoTypeID, false
}

func (c *compiler) value(e *Expr) (value, error) {
	switch e.form() {
	case "call":
		return c.nested(e)
	case "local":
		l, ok := c.u.locals[e.Local]
		if !ok {
			return value{}, userErrorf(diag.UnitUnknownLocal, "unknown local %q", e.Local)
		}
		if l.kind == prim.Invalid {
			return value{typ: l.typ, local: l}, nil
		}
		return value{op: stage.Local{Slot: l.slot, K: l.kind}, typ: l.typ}, nil
	case "static":
		s, ok := c.u.statics[e.Static]
		if !ok {
			return value{}, userErrorf(diag.UnitUnknownField, "unknown static %q", e.Static)
		}
		dot := strings.LastIndexByte(s.key, '.')
		op := stage.Field{Owner: s.key[:dot], Name: s.key[dot+1:], K: s.kind, Static: true}
		return value{op: op, typ: prim.TypeFor(c.w.Types, s.kind)}, nil
	case "field":
		owner, ok := c.u.locals[e.Of]
		if !ok {
			return value{}, userErrorf(diag.UnitUnknownLocal, "unknown local %q", e.Of)
		}
		if owner.class == nil {
			return value{}, userErrorf(diag.UnitUnknownField, "local %s is not an object", e.Of)
		}
		k, ok := owner.class.fields[e.Field]
		if !ok {
			return value{}, userErrorf(diag.UnitUnknownField, "%s has no field %q", owner.class.name, e.Field)
		}
		op := stage.Field{Owner: owner.class.name, Name: e.Field, K: k, OwnerSlot: owner.slot}
		return value{op: op, typ: prim.TypeFor(c.w.Types, k)}, nil
	case "const":
		return c.constant(e)
	}
	return value{}, userErrorf(diag.UnitBadExpression, "expression has none of call, local, static, field or const")
}

// nested compiles a call used as an operand into a thunk so it is emitted
// exactly where, and as often as, the enclosing code stages it.
func (c *compiler) nested(e *Expr) (value, error) {
	p, err := c.resolve(e)
	if err != nil {
		return value{}, err
	}
	k, err := prim.Classify(c.w.Types, p.result)
	if err != nil {
		return value{}, userErrorf(diag.UnitNonPrimitiveUse, "%s returns %s and cannot be an operand", p.callee, c.w.Types.Format(p.result))
	}
	op := stage.NewThunk(k, func(a *bytecode.Adapter) error {
		return c.emit(p, a)
	})
	return value{op: op, typ: p.result}, nil
}

func (c *compiler) constant(e *Expr) (value, error) {
	typeName := e.Type
	if typeName == "" {
		switch e.Const.(type) {
		case int64:
			typeName = "Int"
		case float64:
			typeName = "Double"
		case bool:
			typeName = "Boolean"
		}
	}
	typ, ok := c.w.Types.Named(typeName)
	if !ok {
		return value{}, userErrorf(diag.UnitUnknownKind, "unknown constant type %q", typeName)
	}
	k, err := prim.Classify(c.w.Types, typ)
	if err != nil {
		return value{}, userErrorf(diag.UnitNonPrimitiveUse, "constant of type %s", typeName)
	}
	op, err := literal(k, e.Const)
	if err != nil {
		return value{}, userErrorf(diag.UnitBadLiteral, "%v", err)
	}
	return value{op: op, typ: typ}, nil
}

// literal builds a constant of kind k from a decoded TOML value.
func literal(k prim.Kind, raw any) (stage.Const, error) {
	switch v := raw.(type) {
	case bool:
		if k != prim.Bool {
			return stage.Const{}, fmt.Errorf("boolean literal used as %s", k)
		}
		return stage.BoolConst(v), nil
	case int64:
		if k.IsFloating() {
			return stage.FloatConst(k, float64(v))
		}
		return stage.IntConst(k, v)
	case float64:
		return stage.FloatConst(k, v)
	case string:
		r, size := utf8.DecodeRuneInString(v)
		if k != prim.Char16 || size != len(v) || r == utf8.RuneError {
			return stage.Const{}, fmt.Errorf("string literal %q used as %s", v, k)
		}
		return stage.IntConst(prim.Char16, int64(r))
	}
	return stage.Const{}, fmt.Errorf("unsupported literal %v", raw)
}
