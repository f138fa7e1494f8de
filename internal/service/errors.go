package service

import (
	"errors"
	"fmt"

	"github.com/ocrsdk/cloud-runner/internal/model"
)

var (
	// ErrCountMismatch means a finished task returned a different number of
	// result URLs than export formats were requested.
	ErrCountMismatch = errors.New("result urls and export formats count mismatch")

	// ErrNotEnoughCredits matches a JobFailedError for an exhausted balance.
	ErrNotEnoughCredits = errors.New("not enough credits")
)

// ValidationError is returned for malformed input. Nothing has been sent
// to the remote service or written to disk when it occurs.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil && e.Msg != "" {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// TransportError wraps a network or remote service failure of one operation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// JobFailedError reports a task that reached a terminal status other than Completed.
type JobFailedError struct {
	TaskID string
	Status model.TaskStatus
	Detail string
}

func (e *JobFailedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("task %s failed. Status=%s, Error=%s", e.TaskID, e.Status, e.Detail)
	}
	return fmt.Sprintf("task %s failed. Status=%s", e.TaskID, e.Status)
}

func (e *JobFailedError) Is(target error) bool {
	return target == ErrNotEnoughCredits && e.Status == model.TaskStatusNotEnoughCredits
}

// ResourceError wraps a local filesystem failure.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }
