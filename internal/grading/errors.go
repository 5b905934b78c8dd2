package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrGraderUnavailable indicates the grading backend is down or unreachable.
type ErrGraderUnavailable struct {
	Err error
}

func (e *ErrGraderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("grader unavailable: %v", e.Err)
	}
	return "grader unavailable"
}

func (e *ErrGraderUnavailable) Unwrap() error { return e.Err }

// ErrInvalidResult indicates the grader returned content that does not
// conform to the grading schema.
type ErrInvalidResult struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResult) Error() string {
	return fmt.Sprintf("invalid grading result: %v", e.Err)
}

func (e *ErrInvalidResult) Unwrap() error { return e.Err }

// IsCancel reports whether err means the grading request was cancelled.
// Cancellation is benign: the invoker resolves it to a nil result instead
// of surfacing a failure. Deadline expiry is a genuine failure and is not
// treated as cancellation.
func IsCancel(err error) bool {
	return errors.Is(err, context.Canceled)
}
