package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrPartialLoad marks a bulk write where the sink rejected at least one document.
	ErrPartialLoad = errors.New("partial load failure")
	// ErrRetryExhausted marks an operation that kept failing until its backoff bound was reached.
	ErrRetryExhausted = errors.New("retry exhausted")
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// PartialLoadError is returned when a bulk request went through but the sink
// reported per-document failures. The batch must not advance the loader checkpoint.
type PartialLoadError struct {
	Pipeline string
	Failed   int
	Total    int
}

func (e *PartialLoadError) Error() string {
	return fmt.Sprintf("%d out of %d documents failed to load", e.Failed, e.Total)
}

func (e *PartialLoadError) Is(target error) bool {
	return target == ErrPartialLoad
}

func NewPartialLoad(pipeline string, failed, total int) *PartialLoadError {
	return &PartialLoadError{Pipeline: pipeline, Failed: failed, Total: total}
}

// RetryExhaustedError wraps the last error of an operation whose backoff gave up.
type RetryExhaustedError struct {
	Operation string
	Attempts  int
	Err       error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Operation, e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

func (e *RetryExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}

func NewRetryExhausted(operation string, attempts int, err error) *RetryExhaustedError {
	return &RetryExhaustedError{Operation: operation, Attempts: attempts, Err: err}
}
