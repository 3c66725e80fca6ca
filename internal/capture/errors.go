package capture

import (
	"errors"
	"fmt"
)

// Capture controller errors. Device implementations should wrap
// ErrDeviceUnavailable or ErrPermissionDenied so the controller can
// classify open failures.
var (
	// ErrDeviceUnavailable is returned when no camera could be opened.
	ErrDeviceUnavailable = errors.New("no camera device accessible")

	// ErrPermissionDenied is returned when access to the camera was refused.
	ErrPermissionDenied = errors.New("camera permission denied")

	// ErrNoAlternateDevice is returned by SwitchFacing when only one device is present.
	ErrNoAlternateDevice = errors.New("only one video device accessible")

	// ErrCaptureFailed is returned when a frame could not be read or encoded.
	ErrCaptureFailed = errors.New("capture failed")

	// ErrInvalidTransition is returned when an operation is not valid in the current phase.
	ErrInvalidTransition = errors.New("invalid capture transition")

	// ErrSessionClosed is returned when the session was cancelled while an
	// operation was blocked on the device.
	ErrSessionClosed = errors.New("capture session closed")
)

// TransitionError reports an operation rejected by the state machine.
type TransitionError struct {
	Op    string
	Phase Phase
	// Busy is set when the rejection was caused by another operation in flight.
	Busy string
}

// Error implements the error interface for TransitionError.
func (e *TransitionError) Error() string {
	if e.Busy != "" {
		return fmt.Sprintf("%s not allowed while %s is in progress", e.Op, e.Busy)
	}
	return fmt.Sprintf("%s not allowed in phase %s", e.Op, e.Phase)
}

// Unwrap returns ErrInvalidTransition to support errors.Is.
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// classifyOpenError keeps known device errors and treats anything else as
// an unavailable device.
func classifyOpenError(err error) error {
	if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
}

// Message returns the user-facing text for a capture error.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPermissionDenied):
		return "Permission denied. Please refresh and give camera permission."
	case errors.Is(err, ErrDeviceUnavailable):
		return "No camera device accessible. Please connect your camera or try a different browser."
	case errors.Is(err, ErrNoAlternateDevice):
		return "It is not possible to switch camera to different one because there is only one video device accessible."
	case errors.Is(err, ErrCaptureFailed):
		return "Failed to capture photo"
	case errors.Is(err, ErrSessionClosed):
		return "Camera was closed"
	default:
		return err.Error()
	}
}
