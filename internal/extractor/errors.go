package extractor

import (
	"errors"
	"fmt"
)

type (
	// FailureKind partitions everything that can go wrong during an
	// extractor invocation. Callers use the kind for structured logging
	// and metrics while keeping their outward-facing messages generic.
	FailureKind int

	// Error wraps an underlying failure with the kind of fault that
	// produced it. All errors returned by this package are of this type.
	Error struct {
		kind FailureKind
		err  error
	}
)

const (
	VALIDATION_FAILURE FailureKind = iota
	SPAWN_FAILURE
	NONZERO_EXIT
	PARSE_FAILURE
	IO_FAILURE
)

func newError(kind FailureKind, err error) *Error {
	return &Error{kind: kind, err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.err.Error())
}

func (e *Error) Kind() FailureKind { return e.kind }
func (e *Error) Unwrap() error     { return e.err }

// KindOf extracts the failure kind from an error returned by this
// package. The boolean is false if the error did not originate here.
func KindOf(err error) (FailureKind, bool) {
	var extractorErr *Error
	if errors.As(err, &extractorErr) {
		return extractorErr.kind, true
	}

	return 0, false
}

func (k FailureKind) String() string {
	switch k {
	case VALIDATION_FAILURE:
		return "VALIDATION_FAILURE"
	case SPAWN_FAILURE:
		return "SPAWN_FAILURE"
	case NONZERO_EXIT:
		return "NONZERO_EXIT"
	case PARSE_FAILURE:
		return "PARSE_FAILURE"
	case IO_FAILURE:
		return "IO_FAILURE"
	default:
		return fmt.Sprintf("UNKNOWN[%d]", k)
	}
}
