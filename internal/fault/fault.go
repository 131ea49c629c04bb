// Package fault defines the typed business failures the rewards workflow can
// produce. Every rule violation is detected before any mutation and reported
// as one of these kinds; the HTTP layer maps kinds to status codes and the
// JSON error envelope.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a business failure.
type Kind int

const (
	// Internal is the fallback for infrastructure errors (persistence
	// unavailable, broken invariants). Anything that is not a typed business
	// failure reports as Internal.
	Internal Kind = iota
	NotFound
	InvalidArgument
	InsufficientStock
	InsufficientBalance
	InvalidState
	Forbidden
	EmptyCart
)

// Code returns the stable wire identifier used in error responses.
func (k Kind) Code() string {
	switch k {
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case InsufficientStock:
		return "insufficient_stock"
	case InsufficientBalance:
		return "insufficient_balance"
	case InvalidState:
		return "invalid_state"
	case Forbidden:
		return "forbidden"
	case EmptyCart:
		return "empty_cart"
	default:
		return "internal"
	}
}

// Error is a business failure with a classification and a human message.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a typed failure with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Errorf builds a typed failure with a formatted message.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause so callers can still errors.Is/As through it.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the classification from err, or Internal if err is not a
// typed failure.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// IsKind reports whether err carries exactly the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
