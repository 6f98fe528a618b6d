package core

import (
	"errors"
	"fmt"
	"strings"
)

// LoadErrorKind classifies why a dataset load failed.
type LoadErrorKind int

const (
	KindNotFound LoadErrorKind = iota + 1
	KindEmpty
	KindDecode
	KindMissingFields
	KindUnexpected
)

// Sentinels for errors.Is against a *LoadError.
var (
	ErrNotFound      = errors.New("dataset not found")
	ErrEmpty         = errors.New("dataset is empty")
	ErrDecode        = errors.New("dataset could not be decoded")
	ErrMissingFields = errors.New("dataset is missing required columns")
	ErrUnexpected    = errors.New("unexpected dataset error")
)

func (k LoadErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindEmpty:
		return ErrEmpty
	case KindDecode:
		return ErrDecode
	case KindMissingFields:
		return ErrMissingFields
	default:
		return ErrUnexpected
	}
}

func (k LoadErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindEmpty:
		return "empty"
	case KindDecode:
		return "decode_error"
	case KindMissingFields:
		return "missing_fields"
	default:
		return "unexpected"
	}
}

// LoadError is the only error Load returns. Every failure is terminal for
// that load attempt.
type LoadError struct {
	Kind      LoadErrorKind
	Path      string
	Missing   []string // KindMissingFields: sorted missing names
	Available []string // KindMissingFields: canonical headers present
	Tried     []string // KindDecode: encodings attempted, in order
	Err       error    // Underlying cause, if any
}

func (e *LoadError) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("dataset file not found at %s", e.Path)
	case KindEmpty:
		return fmt.Sprintf("dataset file %s is empty", e.Path)
	case KindDecode:
		return fmt.Sprintf("dataset file %s could not be decoded with any of [%s]: %v",
			e.Path, strings.Join(e.Tried, ", "), e.Err)
	case KindMissingFields:
		return fmt.Sprintf("dataset file %s is missing required columns [%s] (available columns: [%s])",
			e.Path, strings.Join(e.Missing, ", "), strings.Join(e.Available, ", "))
	default:
		return fmt.Sprintf("unexpected error loading dataset %s: %v", e.Path, e.Err)
	}
}

// Is matches the sentinel for the error's kind.
func (e *LoadError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func unexpected(path string, err error) *LoadError {
	return &LoadError{Kind: KindUnexpected, Path: path, Err: err}
}

// ErrTableUnavailable is matched by every QueryError.
var ErrTableUnavailable = errors.New("restaurant data is not available")

// QueryError is returned in a Result when a search runs against an unusable table.
type QueryError struct {
	Cause error // The load error that left the table unusable, if known
}

func (e *QueryError) Error() string {
	if e.Cause == nil {
		return ErrTableUnavailable.Error()
	}
	return fmt.Sprintf("%s: %v", ErrTableUnavailable, e.Cause)
}

func (e *QueryError) Is(target error) bool {
	return target == ErrTableUnavailable
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}
