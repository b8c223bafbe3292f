package projection

import (
	"errors"
	"fmt"
)

// UnrecognizedOperatorError reports an operator keyword outside the fixed
// operator set, or an operator used in a position it has no form for.
type UnrecognizedOperatorError struct {
	// Keyword is the offending operator keyword, e.g. "$eqq".
	Keyword string

	// Reason optionally explains why a known keyword was rejected.
	Reason string
}

// Error implements the error interface.
func (e *UnrecognizedOperatorError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unrecognized operator %q: %s", e.Keyword, e.Reason)
	}
	return fmt.Sprintf("unrecognized operator %q", e.Keyword)
}

// MalformedFilterError reports a filter object whose shape cannot be turned
// into an operator tree.
type MalformedFilterError struct {
	// Path locates the offending member, e.g. "$or[1].age".
	Path    string
	Message string
}

// Error implements the error interface.
func (e *MalformedFilterError) Error() string {
	if e.Path == "" {
		return "malformed filter: " + e.Message
	}
	return fmt.Sprintf("malformed filter at %s: %s", e.Path, e.Message)
}

// IsUnrecognizedOperator returns true if err wraps an UnrecognizedOperatorError.
func IsUnrecognizedOperator(err error) bool {
	var uoe *UnrecognizedOperatorError
	return errors.As(err, &uoe)
}

// IsMalformedFilter returns true if err wraps a MalformedFilterError.
func IsMalformedFilter(err error) bool {
	var mfe *MalformedFilterError
	return errors.As(err, &mfe)
}

func malformed(path, format string, args ...any) *MalformedFilterError {
	return &MalformedFilterError{Path: path, Message: fmt.Sprintf(format, args...)}
}
