package intrinsic

import (
	"stackc/internal/bytecode"
	"stackc/internal/prim"
)

// NumberCast converts the receiver to To (toByte, toInt, ...). Unlike the
// arithmetic family its operand kind is the receiver's own kind.
type NumberCast struct {
	To prim.Kind
}

var castNames = map[prim.Kind]string{
	prim.Int8:    "toByte",
	prim.Int16:   "toShort",
	prim.Char16:  "toChar",
	prim.Int32:   "toInt",
	prim.Int64:   "toLong",
	prim.Float32: "toFloat",
	prim.Float64: "toDouble",
}

func (c NumberCast) Name() string {
	if n, ok := castNames[c.To]; ok {
		return n
	}
	return "to" + c.To.String()
}

func (c NumberCast) Generate(env *Env, site *CallSite, a *bytecode.Adapter) (prim.Kind, error) {
	result, err := env.ResultKind(site)
	if err != nil {
		return prim.Invalid, err
	}
	if result != c.To || !result.IsNumeric() {
		return prim.Invalid, kindMismatch(c, site, result)
	}
	if err := checkArity(c, site, 0); err != nil {
		return prim.Invalid, err
	}
	if err := site.Receiver.Put(result, a); err != nil {
		return prim.Invalid, err
	}
	return result, nil
}
