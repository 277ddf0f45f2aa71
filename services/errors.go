package services

import "fmt"

// ValidationError indicates a missing or malformed required field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates that a requested record does not exist
type NotFoundError struct {
	Resource string
	Message  string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// InvalidTransitionError indicates a ticket status change the workflow forbids
type InvalidTransitionError struct {
	Current string
	Message string
}

func (e *InvalidTransitionError) Error() string {
	return e.Message
}

// StorageError wraps a failed store operation. Storage failures are logged
// and surfaced as server errors; they are not retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
