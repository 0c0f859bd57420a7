package vm

import (
	"fmt"
)

// PanicCode identifies the type of VM panic.
type PanicCode int

// Stable panic codes - do not change values.
const (
	PanicStackUnderflow  PanicCode = 1001 // VM1001: pop from empty stack
	PanicTypeMismatch    PanicCode = 1003 // VM1003: operand of the wrong kind
	PanicUnknownLocal    PanicCode = 1004 // VM1004: local slot not bound
	PanicUnknownField    PanicCode = 1005 // VM1005: static or instance field not bound
	PanicDivideByZero    PanicCode = 1006 // VM1006: integer division by zero
	PanicUnsupportedCall PanicCode = 1007 // VM1007: invoke with no handler
	PanicNullReference   PanicCode = 1008 // VM1008: getfield on a nil object
	PanicUnimplemented   PanicCode = 1999 // VM1999: unimplemented opcode
)

// String returns the code as "VM1001" format.
func (c PanicCode) String() string {
	return fmt.Sprintf("VM%d", c)
}

// VMError represents a runtime panic in the VM.
type VMError struct {
	Code    PanicCode
	Message string
	PC      int
}

// Error implements the error interface.
func (p *VMError) Error() string {
	return fmt.Sprintf("panic %s at %d: %s", p.Code, p.PC, p.Message)
}

func (m *Machine) panicf(code PanicCode, format string, args ...any) *VMError {
	return &VMError{Code: code, Message: fmt.Sprintf(format, args...), PC: m.pc}
}
