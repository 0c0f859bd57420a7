package intrinsic

import (
	"errors"
	"fmt"

	"stackc/internal/diag"
	"stackc/internal/source"
	"stackc/internal/stage"
)

// InternalError is a code generation failure caused by the compiler itself:
// an intrinsic selected for a call it cannot serve, or a broken staging
// invariant. It is never a user mistake.
type InternalError struct {
	Code   diag.Code
	Span   source.Span
	Method string
	Msg    string
	Err    error
}

func (e *InternalError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Code.Title()
	}
	s := fmt.Sprintf("internal error %s in %s: %s", e.Code.ID(), e.Method, msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *InternalError) Unwrap() error { return e.Err }

// internalize classifies err for the call site. Errors that are already
// internal keep their code; staging failures get theirs.
func internalize(m Method, site *CallSite, err error) error {
	var ie *InternalError
	if errors.As(err, &ie) {
		if ie.Method == "" {
			ie.Method = m.Name()
		}
		if ie.Span == (source.Span{}) {
			ie.Span = site.Span
		}
		return err
	}
	code := diag.UnknownCode
	var conv *stage.IllegalConversionError
	var reused *stage.ReusedOperandError
	switch {
	case errors.As(err, &conv):
		code = diag.IceIllegalConversion
	case errors.As(err, &reused):
		code = diag.IceReusedOperand
	default:
		return fmt.Errorf("%s: %w", m.Name(), err)
	}
	return &InternalError{Code: code, Span: site.Span, Method: m.Name(), Err: err}
}

func kindMismatch(m Method, site *CallSite, k fmt.Stringer) error {
	return &InternalError{
		Code:   diag.IceIntrinsicKindMismatch,
		Span:   site.Span,
		Method: m.Name(),
		Msg:    fmt.Sprintf("%s is not defined on %s", m.Name(), k),
	}
}

func checkArity(m Method, site *CallSite, want int) error {
	if site.Receiver == nil {
		return &InternalError{Code: diag.IceIntrinsicArity, Span: site.Span, Method: m.Name(), Msg: "missing receiver"}
	}
	if len(site.Args) != want {
		return &InternalError{
			Code:   diag.IceIntrinsicArity,
			Span:   site.Span,
			Method: m.Name(),
			Msg:    fmt.Sprintf("got %d arguments, want %d", len(site.Args), want),
		}
	}
	return nil
}
