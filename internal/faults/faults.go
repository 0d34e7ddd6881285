// Package faults classifies failures raised by classification and
// resimulation so callers can tell corrupt input apart from missing data.
package faults

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable failure category.
type Kind int

const (
	// KindStructural marks a violated invariant: corrupt source sequence or a
	// classifier/engine bug. The run must abort.
	KindStructural Kind = iota + 1
	// KindLookup marks missing agents, skills or coefficients. Raised before
	// any expensive work starts.
	KindLookup
)

func (k Kind) String() string {
	switch k {
	case KindStructural:
		return "structural"
	case KindLookup:
		return "lookup"
	default:
		return "unknown"
	}
}

// Error is a categorized failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrStructural = &Error{Kind: KindStructural}
	ErrLookup     = &Error{Kind: KindLookup}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Structural wraps a formatted message as a structural failure.
func Structural(op, format string, args ...any) error {
	return &Error{Kind: KindStructural, Op: op, Err: fmt.Errorf(format, args...)}
}

// Lookup wraps a formatted message as a lookup failure.
func Lookup(op, format string, args ...any) error {
	return &Error{Kind: KindLookup, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
