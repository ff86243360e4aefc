package pattern

import (
	"errors"
	"fmt"
)

// ErrUnbounded is returned by Generate for patterns that contain an open
// scalar interpolation.
var ErrUnbounded = errors.New("pattern is unbounded")

// ErrCodeMalformedPattern identifies a ParseError.
const ErrCodeMalformedPattern = "MALFORMED_PATTERN"

// ParseError reports malformed pattern text.
type ParseError struct {
	// Text is the full input.
	Text string

	// Offset is the byte offset of the offending character.
	Offset int

	// Message is a human-readable description.
	Message string
}

// Code returns the error category.
func (e *ParseError) Code() string { return ErrCodeMalformedPattern }

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s at offset %d in %q", ErrCodeMalformedPattern, e.Message, e.Offset, e.Text)
}

// IsParseError returns true if err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
