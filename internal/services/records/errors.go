package records

import (
	"errors"
	"strings"
)

// Sentinel errors for the record lifecycle
var (
	// ErrNotFound indicates the requested record does not exist
	ErrNotFound = errors.New("document record not found")

	// ErrInvalidTransition indicates the record is not in the state the operation starts from
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrUnauthenticated indicates a mutation without an acting user
	ErrUnauthenticated = errors.New("authenticated user required")
)

// ValidationError reports a missing or inconsistent field of a submission
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failing field of a submission, in form order
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each field error to errors.As
func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// StoreError wraps a persistence failure; callers only see it as opaque
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "record store: " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
