package creation

import "errors"

// Orchestrator errors. Submit methods wrap the underlying cause so callers
// can use errors.Is for both the classification and the cause.
var (
	// ErrBusy is returned when a submission is already in flight. The state
	// is left untouched.
	ErrBusy = errors.New("a submission is already in progress")

	// ErrInvalidInput is returned when local validation fails. No service
	// call is made.
	ErrInvalidInput = errors.New("invalid input")

	// ErrServiceError wraps a failed generation or persistence call.
	ErrServiceError = errors.New("service error")

	// ErrCaptureFailed wraps a capture error raised during a camera submission.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrNothingToRetry is returned by Retry unless the last submission failed.
	ErrNothingToRetry = errors.New("nothing to retry")

	// ErrNilContentService and ErrNilPersistenceService are returned by New.
	ErrNilContentService     = errors.New("content service cannot be nil")
	ErrNilPersistenceService = errors.New("persistence service cannot be nil")
)
