package capture_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/lingocards/internal/capture"
	"github.com/phrazzld/lingocards/internal/capture/capturetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newController(t *testing.T, device *capturetest.FakeDevice, cfg capture.Config) *capture.Controller {
	t.Helper()
	c, err := capture.NewController(device, cfg, testLogger())
	require.NoError(t, err)
	return c
}

// activate brings c to Live and waits for enumeration to report want devices.
func activate(t *testing.T, c *capture.Controller, want int) {
	t.Helper()
	require.NoError(t, c.Activate(context.Background()))
	require.Eventually(t, func() bool {
		return c.Snapshot().DeviceCount == want
	}, time.Second, 5*time.Millisecond)
}

func TestNewController_NilDevice(t *testing.T) {
	t.Parallel()
	_, err := capture.NewController(nil, capture.Config{}, nil)
	assert.ErrorIs(t, err, capture.ErrNilDevice)
}

func TestActivate(t *testing.T) {
	t.Parallel()

	t.Run("idle to live with async enumeration", func(t *testing.T) {
		t.Parallel()
		device := &capturetest.FakeDevice{DeviceCount: 2}
		c := newController(t, device, capture.Config{})

		activate(t, c, 2)

		s := c.Snapshot()
		assert.Equal(t, capture.Live, s.Phase)
		assert.Equal(t, capture.Front, s.Facing)
		assert.False(t, s.HasStill)
		require.Len(t, device.Streams(), 1)
		assert.Equal(t, capture.Front, device.Streams()[0].Facing)
	})

	t.Run("rejected when already live", func(t *testing.T) {
		t.Parallel()
		device := &capturetest.FakeDevice{DeviceCount: 1}
		c := newController(t, device, capture.Config{})
		activate(t, c, 1)

		err := c.Activate(context.Background())
		assert.ErrorIs(t, err, capture.ErrInvalidTransition)
		assert.Equal(t, capture.Live, c.Snapshot().Phase)
		assert.Len(t, device.Streams(), 1)
	})

	t.Run("open failures keep idle", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			openErr error
			want    error
		}{
			{name: "permission denied", openErr: capture.ErrPermissionDenied, want: capture.ErrPermissionDenied},
			{name: "unavailable", openErr: capture.ErrDeviceUnavailable, want: capture.ErrDeviceUnavailable},
			{name: "unknown error", openErr: errors.New("driver exploded"), want: capture.ErrDeviceUnavailable},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				device := &capturetest.FakeDevice{
					OpenFn: func(ctx context.Context, facing capture.Facing) (capture.Stream, error) {
						return nil, tc.openErr
					},
				}
				c := newController(t, device, capture.Config{})

				err := c.Activate(context.Background())
				assert.ErrorIs(t, err, tc.want)
				assert.Equal(t, capture.Idle, c.Snapshot().Phase)

				// The controller is re-enterable after a failure.
				device.OpenFn = nil
				require.NoError(t, c.Activate(context.Background()))
				assert.Equal(t, capture.Live, c.Snapshot().Phase)
			})
		}
	})
}

func TestCapture(t *testing.T) {
	t.Parallel()

	t.Run("only valid when live", func(t *testing.T) {
		t.Parallel()
		c := newController(t, &capturetest.FakeDevice{}, capture.Config{})
		err := c.Capture(context.Background())
		assert.ErrorIs(t, err, capture.ErrInvalidTransition)
		assert.Equal(t, capture.Idle, c.Snapshot().Phase)
	})

	t.Run("live to reviewing", func(t *testing.T) {
		t.Parallel()
		c := newController(t, &capturetest.FakeDevice{DeviceCount: 1}, capture.Config{})
		activate(t, c, 1)

		require.NoError(t, c.Capture(context.Background()))

		s := c.Snapshot()
		assert.Equal(t, capture.Reviewing, s.Phase)
		assert.True(t, s.HasStill)
		assert.Equal(t, image.Rect(0, 0, 40, 30), s.StillBounds)
	})

	t.Run("read failure stays live", func(t *testing.T) {
		t.Parallel()
		device := &capturetest.FakeDevice{
			DeviceCount: 1,
			ReadFn: func(ctx context.Context, n int) (image.Image, error) {
				if n == 1 {
					return nil, errors.New("sensor glitch")
				}
				return capturetest.Frame(8, 6, image.White.C), nil
			},
		}
		c := newController(t, device, capture.Config{})
		activate(t, c, 1)

		err := c.Capture(context.Background())
		assert.ErrorIs(t, err, capture.ErrCaptureFailed)
		assert.Equal(t, capture.Live, c.Snapshot().Phase)
		assert.False(t, c.Snapshot().HasStill)

		require.NoError(t, c.Capture(context.Background()))
		assert.Equal(t, capture.Reviewing, c.Snapshot().Phase)
	})
}

func TestRetakeThenCaptureReplacesStill(t *testing.T) {
	t.Parallel()
	device := &capturetest.FakeDevice{DeviceCount: 1}
	c := newController(t, device, capture.Config{})
	activate(t, c, 1)

	assert.ErrorIs(t, c.Retake(), capture.ErrInvalidTransition)

	require.NoError(t, c.Capture(context.Background()))
	require.NoError(t, c.Retake())

	s := c.Snapshot()
	assert.Equal(t, capture.Live, s.Phase)
	assert.False(t, s.HasStill)

	require.NoError(t, c.Capture(context.Background()))
	s = c.Snapshot()
	assert.Equal(t, capture.Reviewing, s.Phase)
	assert.Equal(t, image.Rect(0, 0, 80, 60), s.StillBounds)

	photo, err := c.Accept()
	require.NoError(t, err)
	decoded, err := jpeg.Decode(bytes.NewReader(photo.Data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 80, 60), decoded.Bounds(), "accepted still must be the retaken frame")
}

func TestCancel(t *testing.T) {
	t.Parallel()

	for _, reviewing := range []bool{false, true} {
		name := "from live"
		if reviewing {
			name = "from reviewing"
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			device := &capturetest.FakeDevice{DeviceCount: 2}
			c := newController(t, device, capture.Config{})
			activate(t, c, 2)
			require.NoError(t, c.SwitchFacing(context.Background()))
			if reviewing {
				require.NoError(t, c.Capture(context.Background()))
			}

			require.NoError(t, c.Cancel())

			s := c.Snapshot()
			assert.Equal(t, capture.Idle, s.Phase)
			assert.False(t, s.HasStill)
			for _, stream := range device.Streams() {
				assert.True(t, stream.Closed())
			}
		})
	}

	t.Run("rejected when idle", func(t *testing.T) {
		t.Parallel()
		c := newController(t, &capturetest.FakeDevice{}, capture.Config{})
		assert.ErrorIs(t, c.Cancel(), capture.ErrInvalidTransition)
	})

	t.Run("releases device during blocked read", func(t *testing.T) {
		t.Parallel()
		started := make(chan struct{}, 1)
		device := &capturetest.FakeDevice{DeviceCount: 1, ReadFn: capturetest.BlockingRead(started)}
		c := newController(t, device, capture.Config{})
		activate(t, c, 1)

		errCh := make(chan error, 1)
		go func() { errCh <- c.Capture(context.Background()) }()
		<-started

		require.NoError(t, c.Cancel())

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, capture.ErrSessionClosed)
		case <-time.After(time.Second):
			t.Fatal("capture did not return after cancel")
		}
		assert.Equal(t, capture.Idle, c.Snapshot().Phase)
		assert.False(t, c.Snapshot().HasStill)
		assert.True(t, device.Streams()[0].Closed())
	})

	t.Run("stops pending enumeration", func(t *testing.T) {
		t.Parallel()
		stopped := make(chan struct{})
		device := &capturetest.FakeDevice{
			EnumerateFn: func(ctx context.Context) (int, error) {
				<-ctx.Done()
				close(stopped)
				return 0, ctx.Err()
			},
		}
		c := newController(t, device, capture.Config{})
		require.NoError(t, c.Activate(context.Background()))
		require.NoError(t, c.Cancel())

		select {
		case <-stopped:
		case <-time.After(time.Second):
			t.Fatal("enumeration was not cancelled")
		}
	})
}

func TestSwitchFacing(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, 1} {
		t.Run("refused with few devices", func(t *testing.T) {
			t.Parallel()
			device := &capturetest.FakeDevice{DeviceCount: count}
			c := newController(t, device, capture.Config{})
			activate(t, c, count)

			err := c.SwitchFacing(context.Background())
			assert.ErrorIs(t, err, capture.ErrNoAlternateDevice)

			s := c.Snapshot()
			assert.Equal(t, capture.Front, s.Facing)
			assert.Equal(t, capture.Live, s.Phase)
			require.Len(t, device.Streams(), 1)
			assert.False(t, device.Streams()[0].Closed())
		})
	}

	t.Run("toggles between front and back", func(t *testing.T) {
		t.Parallel()
		device := &capturetest.FakeDevice{DeviceCount: 2}
		c := newController(t, device, capture.Config{})
		activate(t, c, 2)

		require.NoError(t, c.SwitchFacing(context.Background()))
		assert.Equal(t, capture.Back, c.Snapshot().Facing)

		require.NoError(t, c.SwitchFacing(context.Background()))
		assert.Equal(t, capture.Front, c.Snapshot().Facing)

		streams := device.Streams()
		require.Len(t, streams, 3)
		assert.Equal(t, []capture.Facing{capture.Front, capture.Back, capture.Front},
			[]capture.Facing{streams[0].Facing, streams[1].Facing, streams[2].Facing})
		assert.True(t, streams[0].Closed())
		assert.True(t, streams[1].Closed())
		assert.False(t, streams[2].Closed())
	})

	t.Run("hardware failure keeps facing and feed", func(t *testing.T) {
		t.Parallel()
		first := capturetest.NewFakeStream(capture.Front)
		device := &capturetest.FakeDevice{DeviceCount: 2}
		device.OpenFn = func(ctx context.Context, facing capture.Facing) (capture.Stream, error) {
			if facing == capture.Back {
				return nil, errors.New("back camera busy")
			}
			return first, nil
		}
		c := newController(t, device, capture.Config{})
		activate(t, c, 2)

		err := c.SwitchFacing(context.Background())
		assert.ErrorIs(t, err, capture.ErrDeviceUnavailable)
		assert.Equal(t, capture.Front, c.Snapshot().Facing)
		assert.Equal(t, capture.Live, c.Snapshot().Phase)
		assert.False(t, first.Closed())

		require.NoError(t, c.Capture(context.Background()))
	})

	t.Run("new session waits for its own enumeration", func(t *testing.T) {
		t.Parallel()
		var sessions atomic.Int32
		gate := make(chan struct{})
		device := &capturetest.FakeDevice{
			EnumerateFn: func(ctx context.Context) (int, error) {
				if sessions.Add(1) == 1 {
					return 2, nil
				}
				select {
				case <-gate:
					return 2, nil
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			},
		}
		c := newController(t, device, capture.Config{})
		activate(t, c, 2)
		require.NoError(t, c.Cancel())
		assert.Zero(t, c.Snapshot().DeviceCount)

		require.NoError(t, c.Activate(context.Background()))
		assert.ErrorIs(t, c.SwitchFacing(context.Background()), capture.ErrNoAlternateDevice)
		assert.Equal(t, capture.Front, c.Snapshot().Facing)

		close(gate)
		require.Eventually(t, func() bool {
			return c.Snapshot().DeviceCount == 2
		}, time.Second, 5*time.Millisecond)
		require.NoError(t, c.SwitchFacing(context.Background()))
		assert.Equal(t, capture.Back, c.Snapshot().Facing)
	})

	t.Run("only valid when live", func(t *testing.T) {
		t.Parallel()
		c := newController(t, &capturetest.FakeDevice{DeviceCount: 2}, capture.Config{})
		assert.ErrorIs(t, c.SwitchFacing(context.Background()), capture.ErrInvalidTransition)
	})
}

func TestAccept(t *testing.T) {
	t.Parallel()

	t.Run("only valid when reviewing", func(t *testing.T) {
		t.Parallel()
		c := newController(t, &capturetest.FakeDevice{DeviceCount: 1}, capture.Config{})
		activate(t, c, 1)
		_, err := c.Accept()
		assert.ErrorIs(t, err, capture.ErrInvalidTransition)
		assert.Equal(t, capture.Live, c.Snapshot().Phase)
	})

	t.Run("scales to max edge", func(t *testing.T) {
		t.Parallel()
		c := newController(t, &capturetest.FakeDevice{DeviceCount: 1}, capture.Config{MaxEdge: 20})
		activate(t, c, 1)
		require.NoError(t, c.Capture(context.Background()))

		photo, err := c.Accept()
		require.NoError(t, err)
		decoded, err := jpeg.Decode(bytes.NewReader(photo.Data))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 20, 15), decoded.Bounds())
	})
}

// Activate, capture and accept deliver exactly one JPEG payload and leave
// the controller idle with the device released.
func TestCaptureRoundTrip(t *testing.T) {
	t.Parallel()
	device := &capturetest.FakeDevice{DeviceCount: 1}
	c := newController(t, device, capture.Config{JPEGQuality: 80})

	var mu sync.Mutex
	var phases []capture.Phase
	var errs []error
	c.Subscribe(func(s capture.Session, err error) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, s.Phase)
		if err != nil {
			errs = append(errs, err)
		}
	})

	activate(t, c, 1)
	require.NoError(t, c.Capture(context.Background()))
	photo, err := c.Accept()
	require.NoError(t, err)

	assert.Equal(t, capture.PhotoMIMEType, photo.MIMEType)
	assert.Equal(t, "camera-capture.jpg", photo.Filename)
	assert.NotEmpty(t, photo.Data)
	_, err = jpeg.Decode(bytes.NewReader(photo.Data))
	require.NoError(t, err)

	s := c.Snapshot()
	assert.Equal(t, capture.Idle, s.Phase)
	assert.False(t, s.HasStill)
	assert.True(t, device.Streams()[0].Closed())

	_, err = c.Accept()
	assert.ErrorIs(t, err, capture.ErrInvalidTransition)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, phases, capture.Live)
	assert.Contains(t, phases, capture.Reviewing)
	assert.Equal(t, capture.Idle, phases[len(phases)-1])
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], capture.ErrInvalidTransition)
}

func TestMessage(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", capture.Message(nil))
	assert.Equal(t, "Failed to capture photo", capture.Message(capture.ErrCaptureFailed))
	assert.Contains(t, capture.Message(capture.ErrNoAlternateDevice), "only one video device accessible")
	assert.Contains(t, capture.Message(capture.ErrPermissionDenied), "Permission denied")
	assert.Contains(t, capture.Message(capture.ErrDeviceUnavailable), "No camera device accessible")
}
