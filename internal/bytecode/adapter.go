package bytecode

import (
	"fmt"

	"fortio.org/safecast"

	"stackc/internal/prim"
)

// Adapter appends typed instructions to a Sink. Typed methods specialize on
// the stack kind of their argument, so Xor(prim.Int8) emits ixor.
type Adapter struct {
	sink Sink
}

// NewAdapter wraps s.
func NewAdapter(s Sink) *Adapter { return &Adapter{sink: s} }

// Emit forwards in unchanged, so an Adapter is itself a Sink.
func (a *Adapter) Emit(in Instr) { a.sink.Emit(in) }

func (a *Adapter) IConst(v int32) { a.Emit(Instr{Op: OpIConst, Kind: prim.Int32, Int: int64(v)}) }
func (a *Adapter) LConst(v int64) { a.Emit(Instr{Op: OpLConst, Kind: prim.Int64, Int: v}) }
func (a *Adapter) FConst(v float32) {
	a.Emit(Instr{Op: OpFConst, Kind: prim.Float32, Float: float64(v)})
}
func (a *Adapter) DConst(v float64) { a.Emit(Instr{Op: OpDConst, Kind: prim.Float64, Float: v}) }

// Const pushes the small integer v as a constant of k's stack kind.
func (a *Adapter) Const(k prim.Kind, v int32) {
	switch k.StackKind() {
	case prim.Int64:
		a.LConst(int64(v))
	case prim.Float32:
		a.FConst(float32(v))
	case prim.Float64:
		a.DConst(float64(v))
	default:
		a.IConst(v)
	}
}

// Load pushes local slot of kind k.
func (a *Adapter) Load(k prim.Kind, slot uint16) {
	a.Emit(Instr{Op: OpLoad, Kind: k.StackKind(), Slot: slot})
}

// ALoad pushes the reference held in local slot.
func (a *Adapter) ALoad(slot uint16) { a.Emit(Instr{Op: OpALoad, Slot: slot}) }

// GetStatic pushes the static field owner.name of kind k.
func (a *Adapter) GetStatic(owner, name string, k prim.Kind) {
	a.Emit(Instr{Op: OpGetStatic, Kind: k, Field: owner + "." + name})
}

// GetField pops an owner reference and pushes its field name of kind k.
func (a *Adapter) GetField(owner, name string, k prim.Kind) {
	a.Emit(Instr{Op: OpGetField, Kind: k, Field: owner + "." + name})
}

func (a *Adapter) typed(op Op, k prim.Kind) { a.Emit(Instr{Op: op, Kind: k.StackKind()}) }

func (a *Adapter) Add(k prim.Kind)  { a.typed(OpAdd, k) }
func (a *Adapter) Sub(k prim.Kind)  { a.typed(OpSub, k) }
func (a *Adapter) Mul(k prim.Kind)  { a.typed(OpMul, k) }
func (a *Adapter) Div(k prim.Kind)  { a.typed(OpDiv, k) }
func (a *Adapter) Rem(k prim.Kind)  { a.typed(OpRem, k) }
func (a *Adapter) Neg(k prim.Kind)  { a.typed(OpNeg, k) }
func (a *Adapter) And(k prim.Kind)  { a.typed(OpAnd, k) }
func (a *Adapter) Or(k prim.Kind)   { a.typed(OpOr, k) }
func (a *Adapter) Xor(k prim.Kind)  { a.typed(OpXor, k) }
func (a *Adapter) Shl(k prim.Kind)  { a.typed(OpShl, k) }
func (a *Adapter) Shr(k prim.Kind)  { a.typed(OpShr, k) }
func (a *Adapter) Ushr(k prim.Kind) { a.typed(OpUshr, k) }
func (a *Adapter) Cmp(k prim.Kind)  { a.typed(OpCmp, k) }
func (a *Adapter) Pop(k prim.Kind)  { a.typed(OpPop, k) }

// Convert emits a single conversion from the stack kind of from to to.
// Narrowing to Int8, Int16 or Char16 is only defined from Int32.
func (a *Adapter) Convert(from, to prim.Kind) {
	a.Emit(Instr{Op: OpConv, Kind: from.StackKind(), To: to})
}

// Invoke emits an ordinary call.
func (a *Adapter) Invoke(callee string, sig Signature) {
	a.Emit(Instr{Op: OpInvoke, Callee: callee, Sig: sig})
}

// LocalSlot converts a local index to an instruction slot operand.
func LocalSlot(i int) (uint16, error) {
	slot, err := safecast.Conv[uint16](i)
	if err != nil {
		return 0, fmt.Errorf("local slot %d: %w", i, err)
	}
	return slot, nil
}
