package client

import "fmt"

// Error taxonomy for gateway operations. Validation failures are caught
// before any network call; everything else classifies the backend's
// answer (or the lack of one). Gateway errors propagate to callers
// unmodified and are never retried automatically.

// ValidationError reports malformed input rejected locally.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NetworkError reports a transport failure with no response received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError reports a non-2xx response carrying a structured detail.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Detail)
}

// NotFoundError reports that the backend does not know the resource.
type NotFoundError struct {
	Detail string
}

func (e *NotFoundError) Error() string {
	return e.Detail
}

// ConflictError reports a name collision on creation.
type ConflictError struct {
	Detail string
}

func (e *ConflictError) Error() string {
	return e.Detail
}

// InvalidStateError reports an action the task's current state forbids.
type InvalidStateError struct {
	Detail string
}

func (e *InvalidStateError) Error() string {
	return e.Detail
}
