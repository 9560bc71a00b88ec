package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// Evaluation failures. They are recoverable and surfaced through State.LastError.
var (
	ErrDivisionByZero   = errors.New("division by zero")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrMalformedOperand = errors.New("malformed operand")
)

// Append rejections. The sequence is left untouched.
var (
	ErrSequenceFull    = errors.New("sequence is full")
	ErrUnexpectedToken = errors.New("unexpected token for position")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrInvalidDigit    = errors.New("invalid digit")
)

// ErrorKind is the serializable name of an evaluation failure.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindDivisionByZero   ErrorKind = "division_by_zero"
	KindInvalidOperation ErrorKind = "invalid_operation"
	KindMalformedOperand ErrorKind = "malformed_operand"
)

// KindOf maps an evaluation error to its ErrorKind.
// Errors outside the evaluation taxonomy map to KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrDivisionByZero):
		return KindDivisionByZero
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	case errors.Is(err, ErrMalformedOperand):
		return KindMalformedOperand
	default:
		return KindNone
	}
}

// Message returns the user-facing text for the kind.
func (k ErrorKind) Message() string {
	switch k {
	case KindDivisionByZero:
		return "Division by zero"
	case KindInvalidOperation:
		return "Invalid operation"
	case KindMalformedOperand:
		return "Malformed number"
	default:
		return ""
	}
}

// IsRejection reports whether err is an append rejection (a no-op) rather than a failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrSequenceFull) ||
		errors.Is(err, ErrUnexpectedToken) ||
		errors.Is(err, ErrInvalidDigit)
}
