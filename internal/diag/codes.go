package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// unit description errors
	UnitInfo            Code = 2000
	UnitBadSyntax       Code = 2001
	UnitUnknownSymbol   Code = 2002
	UnitUnknownKind     Code = 2003
	UnitBadLiteral      Code = 2004
	UnitUnknownLocal    Code = 2005
	UnitUnknownField    Code = 2006
	UnitBadExpression   Code = 2007
	UnitDuplicateName   Code = 2008
	UnitNonPrimitiveUse Code = 2009

	IOLoadFileError  Code = 4001
	IOCacheError     Code = 4002
	IOWriteListError Code = 4003

	ProjInfo        Code = 5000
	ProjBadManifest Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// internal compiler errors: intrinsic misselection or a broken invariant
	// in code generation, never a user mistake
	IceNonPrimitiveIntrinsicTarget Code = 9001
	IceIllegalConversion           Code = 9002
	IceIntrinsicKindMismatch       Code = 9003
	IceIntrinsicArity              Code = 9004
	IceReusedOperand               Code = 9005
	IceVerifyFailed                Code = 9006
)

var codeDescription = map[Code]string{
	UnknownCode:                    "Unknown error",
	UnitInfo:                       "Unit information",
	UnitBadSyntax:                  "Malformed unit description",
	UnitUnknownSymbol:              "Unknown callee symbol",
	UnitUnknownKind:                "Unknown primitive kind",
	UnitBadLiteral:                 "Literal does not fit its kind",
	UnitUnknownLocal:               "Unknown local slot",
	UnitUnknownField:               "Unknown field",
	UnitBadExpression:              "Malformed expression",
	UnitDuplicateName:              "Duplicate name",
	UnitNonPrimitiveUse:            "Non-primitive value used as operand",
	IOLoadFileError:                "Failed to load file",
	IOCacheError:                   "Cache access failed",
	IOWriteListError:               "Failed to write listing",
	ProjInfo:                       "Project information",
	ProjBadManifest:                "Malformed project manifest",
	ObsInfo:                        "Observability information",
	ObsTimings:                     "Timings",
	IceNonPrimitiveIntrinsicTarget: "non-primitive intrinsic target",
	IceIllegalConversion:           "illegal primitive conversion",
	IceIntrinsicKindMismatch:       "intrinsic applied to unsupported kind",
	IceIntrinsicArity:              "intrinsic called with wrong arity",
	IceReusedOperand:               "staged operand emitted twice",
	IceVerifyFailed:                "emitted code failed verification",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("UNT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 9000 && ic < 10000:
		return fmt.Sprintf("ICE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

// Internal reports whether the code denotes a compiler defect.
func (c Code) Internal() bool {
	return c >= 9000 && c < 10000
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
