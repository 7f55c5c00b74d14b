package embedding

import "fmt"

// EmbedError represents a failed or inconsistent embedding call
type EmbedError struct {
	Message string
	Cause   error
}

func (e *EmbedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding error: %s", e.Message)
}

func (e *EmbedError) Unwrap() error {
	return e.Cause
}
