package admission

import "fmt"

// ValidationError reports a form field or document that cannot be accepted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// StorageError wraps a failed upload.
type StorageError struct {
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to store %s: %v", e.Key, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}
