package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
)

// ErrNilDevice is returned by NewController when no device is supplied.
var ErrNilDevice = errors.New("capture device cannot be nil")

const (
	opActivate = "activate"
	opCapture  = "capture"
	opRetake   = "retake"
	opCancel   = "cancel"
	opSwitch   = "switch facing"
	opAccept   = "accept"
)

// Controller owns a single camera feed and the still captured from it.
// All methods are safe for concurrent use. Blocking device calls run
// outside the lock so Cancel can interrupt them.
type Controller struct {
	device Device
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	phase       Phase
	facing      Facing
	deviceCount int
	still       image.Image
	stream      Stream
	// session is cancelled by Cancel and Accept. generation changes with it
	// so late results from a previous session are discarded.
	session    context.Context
	endSession context.CancelFunc
	generation uint64
	// pending names the blocking operation in flight, if any.
	pending string

	obsMu     sync.RWMutex
	observers []Observer
}

// NewController creates an Idle controller facing Front.
func NewController(device Device, cfg Config, logger *slog.Logger) (*Controller, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Controller{
		device:  device,
		cfg:     cfg,
		logger:  logger.With("component", "capture_controller"),
		phase:   Idle,
		facing:  Front,
		session: context.Background(),
	}, nil
}

// Subscribe registers an observer. Observers are called synchronously
// outside the controller lock and must not block.
func (c *Controller) Subscribe(o Observer) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, o)
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Session {
	s := Session{
		Phase:       c.phase,
		Facing:      c.facing,
		DeviceCount: c.deviceCount,
		HasStill:    c.still != nil,
	}
	if c.still != nil {
		s.StillBounds = c.still.Bounds()
	}
	return s
}

// Activate opens the device with the current facing and moves Idle to Live.
// Device enumeration continues in the background for the new session.
// On failure the controller stays Idle.
func (c *Controller) Activate(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked(opActivate, Idle); err != nil {
		c.mu.Unlock()
		return c.fail(err)
	}
	session, endSession := context.WithCancel(context.Background())
	c.generation++
	gen := c.generation
	c.session = session
	c.endSession = endSession
	c.pending = opActivate
	facing := c.facing
	c.mu.Unlock()

	c.logger.DebugContext(ctx, "opening camera", "facing", facing.String())

	stream, err := c.openStream(ctx, session, facing)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeQuietly(c.logger, stream)
		return c.fail(ErrSessionClosed)
	}
	c.pending = ""
	if err != nil {
		c.endSession = nil
		c.session = context.Background()
		c.mu.Unlock()
		endSession()
		err = classifyOpenError(err)
		c.logger.WarnContext(ctx, "camera activation failed", "error", err)
		return c.fail(err)
	}
	c.stream = stream
	c.phase = Live
	c.mu.Unlock()

	go c.enumerate(session, gen)

	c.logger.InfoContext(ctx, "camera activated", "facing", facing.String())
	c.notify(nil)
	return nil
}

// enumerate updates the device count for session gen. It exits quietly once
// the session ends.
func (c *Controller) enumerate(session context.Context, gen uint64) {
	count, err := c.device.Enumerate(session)
	if err != nil {
		if session.Err() == nil {
			c.logger.Warn("device enumeration failed", "error", err)
		}
		return
	}
	if count < 0 {
		count = 0
	}

	c.mu.Lock()
	if gen != c.generation || session.Err() != nil {
		c.mu.Unlock()
		return
	}
	c.deviceCount = count
	c.mu.Unlock()

	c.logger.Debug("devices enumerated", "device_count", count)
	c.notify(nil)
}

// Capture reads one frame and moves Live to Reviewing. A read failure keeps
// the feed Live so the caller can try again.
func (c *Controller) Capture(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked(opCapture, Live); err != nil {
		c.mu.Unlock()
		return c.fail(err)
	}
	c.pending = opCapture
	gen := c.generation
	stream := c.stream
	session := c.session
	c.mu.Unlock()

	readCtx, cancel := joinContexts(ctx, session)
	frame, err := stream.ReadFrame(readCtx)
	cancel()

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return c.fail(ErrSessionClosed)
	}
	c.pending = ""
	if err == nil && frame == nil {
		err = errEmptyImage
	}
	if err != nil {
		c.mu.Unlock()
		err = fmt.Errorf("%w: %v", ErrCaptureFailed, err)
		c.logger.WarnContext(ctx, "frame read failed", "error", err)
		return c.fail(err)
	}
	c.still = frame
	c.phase = Reviewing
	c.mu.Unlock()

	c.notify(nil)
	return nil
}

// Retake discards the held still and returns to Live.
func (c *Controller) Retake() error {
	c.mu.Lock()
	if err := c.checkLocked(opRetake, Reviewing); err != nil {
		c.mu.Unlock()
		return c.fail(err)
	}
	c.still = nil
	c.phase = Live
	c.mu.Unlock()

	c.notify(nil)
	return nil
}

// Cancel ends the session from Live or Reviewing, or aborts an activation in
// progress. The device is released even if a frame read is blocked.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	if c.phase == Idle && c.pending != opActivate {
		err := &TransitionError{Op: opCancel, Phase: c.phase}
		c.mu.Unlock()
		return c.fail(err)
	}
	stream := c.releaseLocked()
	c.mu.Unlock()

	closeQuietly(c.logger, stream)
	c.logger.Info("camera session cancelled")
	c.notify(nil)
	return nil
}

// SwitchFacing opens the opposite camera and closes the current one. The
// facing only changes after the new device is open. With one device or
// fewer it fails with ErrNoAlternateDevice and nothing changes.
func (c *Controller) SwitchFacing(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked(opSwitch, Live); err != nil {
		c.mu.Unlock()
		return c.fail(err)
	}
	if c.deviceCount <= 1 {
		count := c.deviceCount
		c.mu.Unlock()
		c.logger.DebugContext(ctx, "switch refused", "device_count", count)
		return c.fail(ErrNoAlternateDevice)
	}
	c.pending = opSwitch
	gen := c.generation
	session := c.session
	target := c.facing.Opposite()
	c.mu.Unlock()

	next, err := c.openStream(ctx, session, target)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeQuietly(c.logger, next)
		return c.fail(ErrSessionClosed)
	}
	c.pending = ""
	if err != nil {
		c.mu.Unlock()
		err = classifyOpenError(err)
		c.logger.WarnContext(ctx, "camera switch failed", "target", target.String(), "error", err)
		return c.fail(err)
	}
	previous := c.stream
	c.stream = next
	c.facing = target
	c.mu.Unlock()

	closeQuietly(c.logger, previous)
	c.logger.InfoContext(ctx, "camera switched", "facing", target.String())
	c.notify(nil)
	return nil
}

// Accept encodes the held still, releases the device and returns to Idle.
// An encoding failure keeps the still so the user can retry or retake.
func (c *Controller) Accept() (Photo, error) {
	c.mu.Lock()
	if err := c.checkLocked(opAccept, Reviewing); err != nil {
		c.mu.Unlock()
		return Photo{}, c.fail(err)
	}

	data, err := encodeJPEG(c.still, c.cfg)
	if err != nil {
		c.mu.Unlock()
		err = fmt.Errorf("%w: encode still: %v", ErrCaptureFailed, err)
		c.logger.Warn("still encoding failed", "error", err)
		return Photo{}, c.fail(err)
	}
	stream := c.releaseLocked()
	c.mu.Unlock()

	closeQuietly(c.logger, stream)
	c.logger.Info("photo accepted", "bytes", len(data))
	c.notify(nil)

	return Photo{Data: data, MIMEType: PhotoMIMEType, Filename: PhotoFilename}, nil
}

// checkLocked rejects op unless the controller is in want with nothing pending.
func (c *Controller) checkLocked(op string, want Phase) error {
	if c.pending != "" {
		return &TransitionError{Op: op, Phase: c.phase, Busy: c.pending}
	}
	if c.phase != want {
		return &TransitionError{Op: op, Phase: c.phase}
	}
	return nil
}

// releaseLocked ends the session and returns the stream the caller must close.
// The device count belongs to the session and is forgotten with it.
func (c *Controller) releaseLocked() Stream {
	if c.endSession != nil {
		c.endSession()
	}
	c.endSession = nil
	c.session = context.Background()
	c.generation++
	c.pending = ""
	c.still = nil
	c.deviceCount = 0
	c.phase = Idle

	stream := c.stream
	c.stream = nil
	return stream
}

func (c *Controller) openStream(ctx, session context.Context, facing Facing) (Stream, error) {
	openCtx, cancel := joinContexts(ctx, session)
	defer cancel()

	stream, err := c.device.Open(openCtx, facing)
	if err != nil {
		return nil, err
	}
	if stream == nil {
		return nil, ErrDeviceUnavailable
	}
	return stream, nil
}

func (c *Controller) fail(err error) error {
	c.notify(err)
	return err
}

func (c *Controller) notify(err error) {
	snapshot := c.Snapshot()

	c.obsMu.RLock()
	observers := make([]Observer, len(c.observers))
	copy(observers, c.observers)
	c.obsMu.RUnlock()

	for _, o := range observers {
		o(snapshot, err)
	}
}

// joinContexts returns a context that is done when either parent is done.
func joinContexts(ctx, session context.Context) (context.Context, context.CancelFunc) {
	joined, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(session, cancel)
	return joined, func() {
		stop()
		cancel()
	}
}

func closeQuietly(logger *slog.Logger, s Stream) {
	if s == nil {
		return
	}
	if err := s.Close(); err != nil {
		logger.Warn("failed to close camera stream", "error", err)
	}
}
