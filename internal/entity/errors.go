package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Input errors
	ErrEmptyQuery   = errors.New("query must be a non-empty string")
	ErrInvalidRole  = errors.New("conversation role must be user or assistant")
	ErrMissingField = errors.New("required field is missing")

	// ErrUpstream marks any failure of the vector store or the language
	// model. Handlers match it with errors.Is and return a generic detail,
	// the wrapped cause is only logged.
	ErrUpstream = errors.New("upstream service failure")
)

// UpstreamError wraps an external-call failure with the pipeline stage
// it happened in.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
