package core

import (
	"errors"
	"fmt"
)

// ErrInvalidStringEscape is matched by every *InvalidStringEscapeError.
var ErrInvalidStringEscape = errors.New("invalid string escape")

// InvalidStringEscapeError reports a malformed or unsupported escape in a
// string literal.
type InvalidStringEscapeError struct {
	FullString string // the dequoted literal body
	Escape     string // the offending sequence, e.g. `\q`
}

func (e *InvalidStringEscapeError) Error() string {
	return fmt.Sprintf("invalid escape %q in string %q", e.Escape, e.FullString)
}

// Is makes errors.Is(err, ErrInvalidStringEscape) succeed.
func (e *InvalidStringEscapeError) Is(target error) bool {
	return target == ErrInvalidStringEscape
}

// BuildError reports a failure while building a pattern node.
type BuildError struct {
	Message string
}

func (e *BuildError) Error() string {
	return "build error: " + e.Message
}
