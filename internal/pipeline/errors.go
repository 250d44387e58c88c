package pipeline

import "fmt"

// IngestionError means the request body could not be parsed into an event
// sequence. Client's fault, not retried.
type IngestionError struct {
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("malformed recording: %v", e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// StorageError means an artifact could not be written or read back.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("recording storage failed: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DiagnosisError means the call to the diagnostic model failed.
type DiagnosisError struct {
	Err error
}

func (e *DiagnosisError) Error() string {
	return fmt.Sprintf("diagnosis failed: %v", e.Err)
}

func (e *DiagnosisError) Unwrap() error { return e.Err }
