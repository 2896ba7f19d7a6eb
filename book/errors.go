package book

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a trade ID missing from the book. Wrapped with the
// offending ID; branch with errors.Is.
var ErrNotFound = errors.New("trade not found")

// ValidationError is a caller mistake: bad close quantity, unknown
// strategy, malformed input. The operation aborted before mutating
// anything.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Gate codes carried by GateError.
const (
	GateBlockWindow   = "BLOCK_WINDOW"
	GateRiskChecklist = "RISK_CHECKLIST"
	GateCheckpoint    = "CHECKPOINT_REQUIRED"
)

// GateError is an expected control-flow outcome, not a fault: the
// operation was refused by a trading rule and the book is untouched.
// Callers branch on it with errors.As and must not treat it as a
// successful no-op.
type GateError struct {
	Code   string
	Reason string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("blocked (%s): %s", e.Code, e.Reason)
}

func gatef(code, format string, args ...any) *GateError {
	return &GateError{Code: code, Reason: fmt.Sprintf(format, args...)}
}
