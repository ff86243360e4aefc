package generic

import (
	"errors"
	"fmt"

	"github.com/roach88/typerel/internal/ir"
)

// ErrorCode categorizes call failures.
type ErrorCode string

const (
	// ErrCodeConstraintViolation indicates an argument does not extend its
	// parameter's constraint.
	ErrCodeConstraintViolation ErrorCode = "CONSTRAINT_VIOLATION"

	// ErrCodeArityMismatch indicates too many arguments, or a missing
	// argument for a parameter without a default.
	ErrCodeArityMismatch ErrorCode = "ARITY_MISMATCH"
)

// ConstraintError is the hard failure of a generic call. The call is
// rejected; the arguments are never coerced.
type ConstraintError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Param names the offending parameter (empty for surplus arguments).
	Param string

	// Arg and Constraint are set for constraint violations.
	Arg        ir.Node
	Constraint ir.Node
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param=%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConstraintError returns true if err is or wraps a *ConstraintError of
// any code.
func IsConstraintError(err error) bool {
	var ce *ConstraintError
	return errors.As(err, &ce)
}

// IsArityError returns true if err is or wraps an arity mismatch.
func IsArityError(err error) bool {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeArityMismatch
	}
	return false
}

func newConstraintError(param string, arg, constraint ir.Node) *ConstraintError {
	return &ConstraintError{
		Code:       ErrCodeConstraintViolation,
		Message:    fmt.Sprintf("argument %s does not extend %s", ir.Format(arg), ir.Format(constraint)),
		Param:      param,
		Arg:        arg,
		Constraint: constraint,
	}
}

func newArityError(param string, want, got int) *ConstraintError {
	return &ConstraintError{
		Code:    ErrCodeArityMismatch,
		Message: fmt.Sprintf("expected %d type arguments, got %d", want, got),
		Param:   param,
	}
}
