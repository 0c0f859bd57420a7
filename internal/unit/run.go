package unit

import (
	"fmt"
	"strings"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
	"stackc/internal/vm"
)

// Outcome is the evaluation of one compiled call.
type Outcome struct {
	Index  int
	Callee string
	Stack  []vm.Value
	Calls  int // invokes executed
	Err    error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("#%d %s: %v", o.Index+1, o.Callee, o.Err)
	}
	vals := make([]string, len(o.Stack))
	for i, v := range o.Stack {
		vals[i] = v.String()
	}
	if len(vals) == 0 {
		vals = append(vals, "void")
	}
	return fmt.Sprintf("#%d %s = %s", o.Index+1, o.Callee, strings.Join(vals, ", "))
}

// Run evaluates every call of res on the reference VM, seeded from the
// values declared in u.
func Run(u *Unit, res *Result) ([]Outcome, error) {
	out := make([]Outcome, 0, len(res.Calls))
	for i := range res.Calls {
		cr := &res.Calls[i]
		m, err := u.machine()
		if err != nil {
			return nil, err
		}
		calls := 0
		inner := m.Call
		m.Call = func(callee string, args []vm.Value) (vm.Value, error) {
			calls++
			return inner(callee, args)
		}
		stack, err := m.Run(cr.Code)
		out = append(out, Outcome{Index: cr.Index, Callee: cr.Callee, Stack: stack, Calls: calls, Err: err})
	}
	return out, nil
}

// machine builds a VM holding the unit's declared values.
func (u *Unit) machine() (*vm.Machine, error) {
	m := vm.New()
	for _, l := range u.locals {
		if l.kind == prim.Invalid {
			obj := &vm.Object{Class: className(l), Fields: make(map[string]vm.Value)}
			if l.class != nil {
				for _, name := range l.class.order {
					k := l.class.fields[name]
					v, err := valueOf(k, l.decl.Fields[name])
					if err != nil {
						return nil, fmt.Errorf("local %s field %s: %w", l.decl.Name, name, err)
					}
					obj.Fields[l.class.name+"."+name] = v
				}
			}
			m.Locals[l.slot] = vm.Ref(obj)
			continue
		}
		v, err := valueOf(l.kind, l.decl.Value)
		if err != nil {
			return nil, fmt.Errorf("local %s: %w", l.decl.Name, err)
		}
		m.Locals[l.slot] = v
	}
	for key, s := range u.statics {
		v, err := valueOf(s.kind, s.decl.Value)
		if err != nil {
			return nil, fmt.Errorf("static %s: %w", key, err)
		}
		m.Statics[key] = v
	}

	returns := make(map[string]vm.Value, len(u.funcs))
	for _, fn := range u.funcs {
		key := fn.decl.Owner + "." + fn.decl.Name
		if fn.class != nil {
			returns[key] = vm.Ref(&vm.Object{Class: fn.class.name, Fields: map[string]vm.Value{}})
			continue
		}
		if fn.kind == prim.Invalid {
			continue
		}
		v, err := valueOf(fn.kind, fn.decl.Value)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", key, err)
		}
		returns[key] = v
	}
	m.Call = func(callee string, _ []vm.Value) (vm.Value, error) {
		if v, ok := returns[callee]; ok {
			return v, nil
		}
		return vm.Value{}, nil
	}
	return m, nil
}

func className(l *localVar) string {
	if l.class != nil {
		return l.class.name
	}
	return l.decl.Type
}

// valueOf converts a declared TOML value to a VM value of kind k; nil
// yields the zero value.
func valueOf(k prim.Kind, raw any) (vm.Value, error) {
	if raw == nil {
		return vm.Zero(k), nil
	}
	c, err := literal(k, raw)
	if err != nil {
		return vm.Value{}, err
	}
	switch k.StackKind() {
	case prim.Int64:
		return vm.Long(c.Int()), nil
	case prim.Float32:
		return vm.Float(float32(c.Float())), nil
	case prim.Float64:
		return vm.Double(c.Float()), nil
	}
	return vm.Value{Type: bytecode.VInt, I: c.Int()}, nil
}
