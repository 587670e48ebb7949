package mesi

import (
	"errors"
	"fmt"

	"github.com/ehrlich-b/go-mesi/internal/protocol"
)

// Error represents a structured simulator error with operation and
// location context.
type Error struct {
	Op      string           // Operation that failed (e.g. "LoadWorkload", "Dispatch")
	Node    protocol.NodeID  // Node involved, -1 if not applicable
	Address protocol.Addr    // Address involved, 0xFF (InvalidAddress) if not applicable
	Code    ErrorCode        // High-level error category
	Msg     string           // Human-readable message
	Inner   error            // Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.Node >= 0 {
		parts = append(parts, fmt.Sprintf("node=%d", e.Node))
	}
	if e.Address != protocol.Addr(0xFF) {
		parts = append(parts, fmt.Sprintf("addr=0x%02X", byte(e.Address)))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("mesi: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("mesi: %s", msg)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Inner
}

// Is provides errors.Is support for ErrorCode comparison.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if te, ok := target.(*Error); ok {
		return e.Code == te.Code
	}
	return false
}

// ErrorCode represents high-level error categories.
type ErrorCode string

const (
	ErrCodeConfig    ErrorCode = "config error"
	ErrCodeParse     ErrorCode = "parse error"
	ErrCodeOverflow  ErrorCode = "mailbox overflow"
	ErrCodeInvariant ErrorCode = "coherence invariant violated"
	ErrCodeIO        ErrorCode = "I/O error"
)

// NewConfigError creates an error for bad configuration (flags, TOML file).
func NewConfigError(op, msg string) *Error {
	return &Error{Op: op, Node: -1, Address: protocol.Addr(0xFF), Code: ErrCodeConfig, Msg: msg}
}

// NewParseError creates an error for malformed workload instruction text.
func NewParseError(op, msg string, inner error) *Error {
	return &Error{Op: op, Node: -1, Address: protocol.Addr(0xFF), Code: ErrCodeParse, Msg: msg, Inner: inner}
}

// NewOverflowError creates an error for a mailbox that dropped a message
// while running in debug-invariants mode.
func NewOverflowError(op string, node protocol.NodeID, addr protocol.Addr) *Error {
	return &Error{Op: op, Node: node, Address: addr, Code: ErrCodeOverflow, Msg: "destination mailbox full"}
}

// NewInvariantError creates an error for a detected MESI/directory invariant
// violation (spec.md §5 P1-P5).
func NewInvariantError(op string, node protocol.NodeID, addr protocol.Addr, msg string) *Error {
	return &Error{Op: op, Node: node, Address: addr, Code: ErrCodeInvariant, Msg: msg}
}

// NewIOError wraps a filesystem or writer error encountered while loading a
// workload or writing an output report.
func NewIOError(op string, inner error) *Error {
	return &Error{Op: op, Node: -1, Address: protocol.Addr(0xFF), Code: ErrCodeIO, Msg: inner.Error(), Inner: inner}
}

// WrapError wraps an existing error with simulator op context, preserving a
// structured error's fields if inner is already one.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if se, ok := inner.(*Error); ok {
		return &Error{Op: op, Node: se.Node, Address: se.Address, Code: se.Code, Msg: se.Msg, Inner: se.Inner}
	}
	return &Error{Op: op, Node: -1, Address: protocol.Addr(0xFF), Code: ErrCodeIO, Msg: inner.Error(), Inner: inner}
}

// IsCode checks if an error matches a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
