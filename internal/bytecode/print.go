package bytecode

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"stackc/internal/prim"
)

func kindPrefix(k prim.Kind) string {
	switch k.StackKind() {
	case prim.Int64:
		return "l"
	case prim.Float32:
		return "f"
	case prim.Float64:
		return "d"
	default:
		return "i"
	}
}

func convSuffix(k prim.Kind) string {
	switch k {
	case prim.Int8:
		return "b"
	case prim.Int16:
		return "s"
	case prim.Char16:
		return "c"
	}
	return kindPrefix(k)
}

// Mnemonic is the assembler name of in, e.g. "lxor", "i2l", "fcmpl".
func (in Instr) Mnemonic() string {
	switch {
	case in.Op == OpConv:
		return kindPrefix(in.Kind) + "2" + convSuffix(in.To)
	case in.Op == OpCmp:
		switch in.Kind.StackKind() {
		case prim.Float32, prim.Float64:
			return kindPrefix(in.Kind) + "cmpl"
		}
		return kindPrefix(in.Kind) + "cmp"
	case in.Op == OpPop:
		if in.Kind.IsWide() {
			return "pop2"
		}
		return "pop"
	case in.Op.typed():
		return kindPrefix(in.Kind) + in.Op.String()
	}
	return in.Op.String()
}

// String renders in as a single listing line without its offset.
func (in Instr) String() string {
	m := in.Mnemonic()
	switch in.Op {
	case OpIConst, OpLConst:
		return m + " " + strconv.FormatInt(in.Int, 10)
	case OpFConst:
		return m + " " + strconv.FormatFloat(in.Float, 'g', -1, 32)
	case OpDConst:
		return m + " " + strconv.FormatFloat(in.Float, 'g', -1, 64)
	case OpLoad, OpALoad:
		return m + " " + strconv.FormatUint(uint64(in.Slot), 10)
	case OpGetStatic, OpGetField:
		return m + " " + in.Field + ":" + in.Kind.String()
	case OpInvoke:
		return m + " " + in.Callee + in.Sig.String()
	}
	return m
}

func (s Signature) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range s.Params {
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	sb.WriteString(s.Result.String())
	return sb.String()
}

// Dump writes a numbered listing of code to w.
func Dump(w io.Writer, code []Instr) error {
	for i, in := range code {
		if _, err := fmt.Fprintf(w, "%4d: %s\n", i, in); err != nil {
			return err
		}
	}
	return nil
}

// Listing renders code as a listing string.
func Listing(code []Instr) string {
	var sb strings.Builder
	_ = Dump(&sb, code)
	return sb.String()
}
