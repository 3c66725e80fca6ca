// Package capturetest provides an in-memory camera for tests.
package capturetest

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/phrazzld/lingocards/internal/capture"
)

// ErrStreamClosed is returned by reads on a closed FakeStream.
var ErrStreamClosed = errors.New("stream closed")

// FakeDevice implements capture.Device. Zero-value fields fall back to a
// healthy device with DeviceCount cameras.
type FakeDevice struct {
	OpenFn      func(ctx context.Context, facing capture.Facing) (capture.Stream, error)
	EnumerateFn func(ctx context.Context) (int, error)
	// ReadFn, when set, is installed on every stream opened by the default Open.
	ReadFn      func(ctx context.Context, n int) (image.Image, error)
	DeviceCount int

	mu      sync.Mutex
	streams []*FakeStream
}

var _ capture.Device = (*FakeDevice)(nil)

// Open implements capture.Device.
func (d *FakeDevice) Open(ctx context.Context, facing capture.Facing) (capture.Stream, error) {
	if d.OpenFn != nil {
		return d.OpenFn(ctx, facing)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := NewFakeStream(facing)
	s.ReadFn = d.ReadFn

	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

// Enumerate implements capture.Device.
func (d *FakeDevice) Enumerate(ctx context.Context) (int, error) {
	if d.EnumerateFn != nil {
		return d.EnumerateFn(ctx)
	}
	return d.DeviceCount, nil
}

// Streams returns every stream opened by the default Open, oldest first.
func (d *FakeDevice) Streams() []*FakeStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*FakeStream, len(d.streams))
	copy(out, d.streams)
	return out
}

// FakeStream implements capture.Stream. By default the nth read returns a
// frame of (40*n)x(30*n) pixels so successive stills are distinguishable.
type FakeStream struct {
	Facing capture.Facing
	ReadFn func(ctx context.Context, n int) (image.Image, error)

	mu     sync.Mutex
	reads  int
	closed bool
	done   chan struct{}
}

var _ capture.Stream = (*FakeStream)(nil)

// NewFakeStream returns an open stream for facing.
func NewFakeStream(facing capture.Facing) *FakeStream {
	return &FakeStream{Facing: facing, done: make(chan struct{})}
}

// ReadFrame implements capture.Stream.
func (s *FakeStream) ReadFrame(ctx context.Context) (image.Image, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStreamClosed
	}
	s.reads++
	n := s.reads
	s.mu.Unlock()

	if s.ReadFn != nil {
		return s.ReadFn(ctx, n)
	}
	return Frame(40*n, 30*n, color.RGBA{R: uint8(n * 50), G: 120, B: 200, A: 255}), nil
}

// Close implements capture.Stream.
func (s *FakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

// Closed reports whether Close was called.
func (s *FakeStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Done is closed when the stream is closed.
func (s *FakeStream) Done() <-chan struct{} {
	return s.done
}

// Reads returns how many frames were requested.
func (s *FakeStream) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Frame returns a solid image of the given size.
func Frame(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// BlockingRead waits until the read context is cancelled.
func BlockingRead(started chan<- struct{}) func(ctx context.Context, n int) (image.Image, error) {
	return func(ctx context.Context, _ int) (image.Image, error) {
		if started != nil {
			started <- struct{}{}
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
}
