package scalar

import (
	"fmt"

	language "github.com/hanpama/graphtype/internal/language"
)

// Reason classifies a coercion failure.
type Reason uint8

const (
	UnsupportedShape Reason = iota + 1
	UnrepresentableMagnitude
	DisallowedNull
	StringNotAllowed
)

func (r Reason) String() string {
	switch r {
	case UnsupportedShape:
		return "unsupported shape"
	case UnrepresentableMagnitude:
		return "unrepresentable magnitude"
	case DisallowedNull:
		return "null is not allowed"
	case StringNotAllowed:
		return "string input is not allowed"
	default:
		return fmt.Sprintf("Reason(%d)", uint8(r))
	}
}

// CoercionError reports a value that could not be converted to a scalar.
// Failures are deterministic; retrying with the same input fails the same way.
type CoercionError struct {
	Scalar string
	Reason Reason
	Value  any
	Err    error
}

func (e *CoercionError) Error() string {
	var msg string
	if lit, ok := e.Value.(*language.Value); ok {
		msg = fmt.Sprintf("cannot coerce literal %s to %s: %s", lit.String(), e.Scalar, e.Reason)
	} else {
		msg = fmt.Sprintf("cannot coerce %v (%T) to %s: %s", e.Value, e.Value, e.Scalar, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }

func coercionError(scalar string, reason Reason, value any, err error) *CoercionError {
	return &CoercionError{Scalar: scalar, Reason: reason, Value: value, Err: err}
}
