package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps them to status codes.
var (
	// ErrInvalidImage is returned when uploaded bytes are not a supported image.
	ErrInvalidImage = errors.New("unsupported image data")

	// ErrNothingToUpdate is returned for an update without fields.
	ErrNothingToUpdate = errors.New("update contains no fields")

	// ErrSpeechUnavailable is returned by Speak when no speech provider is configured.
	ErrSpeechUnavailable = errors.New("speech synthesis is not configured")

	// ErrNilDependency is returned by NewFlashcardService.
	ErrNilDependency = errors.New("required dependency is nil")
)

// FlashcardServiceError is a custom error type for flashcard service errors.
type FlashcardServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for FlashcardServiceError.
func (e *FlashcardServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flashcard service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("flashcard service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *FlashcardServiceError) Unwrap() error {
	return e.Err
}

// NewFlashcardServiceError creates a new FlashcardServiceError.
func NewFlashcardServiceError(operation, message string, err error) *FlashcardServiceError {
	return &FlashcardServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
