package capture

import (
	"context"
	"image"
)

// Phase is the capture session state.
type Phase int

const (
	// Idle is both the initial state and the state between sessions.
	Idle Phase = iota
	// Live means the feed is open and frames can be captured.
	Live
	// Reviewing means a still is held and awaits accept or retake.
	Reviewing
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Live:
		return "live"
	case Reviewing:
		return "reviewing"
	default:
		return "unknown"
	}
}

// Facing selects the physical camera.
type Facing int

const (
	Front Facing = iota
	Back
)

func (f Facing) String() string {
	if f == Back {
		return "back"
	}
	return "front"
}

// Opposite returns the other facing.
func (f Facing) Opposite() Facing {
	if f == Front {
		return Back
	}
	return Front
}

// Device is the camera hardware seam.
type Device interface {
	// Open starts a feed for the given facing. It blocks until the device is
	// ready or ctx is done.
	Open(ctx context.Context, facing Facing) (Stream, error)

	// Enumerate reports how many video devices are present.
	Enumerate(ctx context.Context) (int, error)
}

// Stream is an open camera feed. Close must unblock a pending ReadFrame.
type Stream interface {
	ReadFrame(ctx context.Context) (image.Image, error)
	Close() error
}

// Session is a read-only snapshot of the controller.
type Session struct {
	Phase       Phase
	Facing      Facing
	DeviceCount int
	HasStill    bool
	// StillBounds is the size of the held still. It is empty unless Reviewing.
	StillBounds image.Rectangle
}

// Photo is an accepted still encoded for upload.
type Photo struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Observer receives a snapshot after every state change and every failed
// operation. err is nil for plain state changes.
type Observer func(s Session, err error)
