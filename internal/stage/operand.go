package stage

import (
	"fmt"
	"math"

	"fortio.org/safecast"

	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// Operand is a value that has not been evaluated yet. Put emits the code
// leaving it on top of the stack converted to target.
type Operand interface {
	Kind() prim.Kind
	Put(target prim.Kind, a *bytecode.Adapter) error
}

// Local reads a local variable slot.
type Local struct {
	Slot uint16
	K    prim.Kind
}

func (l Local) Kind() prim.Kind { return l.K }

func (l Local) Put(target prim.Kind, a *bytecode.Adapter) error {
	if !Convertible(l.K, target) {
		return &IllegalConversionError{From: l.K, To: target}
	}
	a.Load(l.K, l.Slot)
	return Coerce(l.K, target, a)
}

// Field reads a static field or, when Static is false, the field of the
// object held in OwnerSlot.
type Field struct {
	Owner     string
	Name      string
	K         prim.Kind
	Static    bool
	OwnerSlot uint16
}

func (f Field) Kind() prim.Kind { return f.K }

func (f Field) Put(target prim.Kind, a *bytecode.Adapter) error {
	if !Convertible(f.K, target) {
		return &IllegalConversionError{From: f.K, To: target}
	}
	if f.Static {
		a.GetStatic(f.Owner, f.Name, f.K)
	} else {
		a.ALoad(f.OwnerSlot)
		a.GetField(f.Owner, f.Name, f.K)
	}
	return Coerce(f.K, target, a)
}

// Const is a literal. Build it with IntConst, FloatConst or BoolConst so
// the value is known to fit its kind.
type Const struct {
	k     prim.Kind
	bits  int64
	float float64
}

// IntConst makes an integral (or Char16) literal of kind k.
func IntConst(k prim.Kind, v int64) (Const, error) {
	var err error
	switch k {
	case prim.Int8:
		_, err = safecast.Conv[int8](v)
	case prim.Int16:
		_, err = safecast.Conv[int16](v)
	case prim.Char16:
		_, err = safecast.Conv[uint16](v)
	case prim.Int32:
		_, err = safecast.Conv[int32](v)
	case prim.Int64:
	default:
		return Const{}, fmt.Errorf("%s is not an integral kind", k)
	}
	if err != nil {
		return Const{}, fmt.Errorf("literal %d does not fit %s: %w", v, k, err)
	}
	return Const{k: k, bits: v}, nil
}

// FloatConst makes a floating literal of kind k.
func FloatConst(k prim.Kind, v float64) (Const, error) {
	switch k {
	case prim.Float32:
		if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > math.MaxFloat32 {
			return Const{}, fmt.Errorf("literal %g does not fit %s", v, k)
		}
	case prim.Float64:
	default:
		return Const{}, fmt.Errorf("%s is not a floating kind", k)
	}
	return Const{k: k, float: v}, nil
}

// BoolConst makes a Bool literal.
func BoolConst(v bool) Const {
	c := Const{k: prim.Bool}
	if v {
		c.bits = 1
	}
	return c
}

func (c Const) Kind() prim.Kind { return c.k }

// Int returns the integral payload; Bool literals are 0 or 1.
func (c Const) Int() int64 { return c.bits }

// Float returns the floating payload.
func (c Const) Float() float64 { return c.float }

func (c Const) Put(target prim.Kind, a *bytecode.Adapter) error {
	if !Convertible(c.k, target) {
		return &IllegalConversionError{From: c.k, To: target}
	}
	switch c.k {
	case prim.Int64:
		a.LConst(c.bits)
	case prim.Float32:
		a.FConst(float32(c.float))
	case prim.Float64:
		a.DConst(c.float)
	default:
		// range checked by IntConst
		a.IConst(int32(c.bits)) //nolint:gosec
	}
	return Coerce(c.k, target, a)
}

// ReusedOperandError reports a second Put of a Thunk.
type ReusedOperandError struct {
	Kind prim.Kind
}

func (e *ReusedOperandError) Error() string {
	return fmt.Sprintf("%s operand staged more than once", e.Kind)
}

// Thunk compiles an arbitrary sub-expression. Its code is emitted at most
// once.
type Thunk struct {
	k    prim.Kind
	emit func(a *bytecode.Adapter) error
	used bool
}

// NewThunk wraps emit, which must leave exactly one value of kind k.
func NewThunk(k prim.Kind, emit func(a *bytecode.Adapter) error) *Thunk {
	return &Thunk{k: k, emit: emit}
}

func (t *Thunk) Kind() prim.Kind { return t.k }

// Used reports whether the thunk has been staged.
func (t *Thunk) Used() bool { return t.used }

func (t *Thunk) Put(target prim.Kind, a *bytecode.Adapter) error {
	if t.used {
		return &ReusedOperandError{Kind: t.k}
	}
	if !Convertible(t.k, target) {
		return &IllegalConversionError{From: t.k, To: target}
	}
	t.used = true
	if err := t.emit(a); err != nil {
		return err
	}
	return Coerce(t.k, target, a)
}
