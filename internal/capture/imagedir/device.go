// Package imagedir implements a capture.Device backed by directories of
// image files. Each facing is a subdirectory named "front" or "back"; a
// directory holding images directly acts as a single front camera.
package imagedir

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/phrazzld/lingocards/internal/capture"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Device reads frames from image files under Root.
type Device struct {
	Root string
}

var _ capture.Device = (*Device)(nil)

// New returns a Device rooted at dir.
func New(dir string) *Device {
	return &Device{Root: dir}
}

// Enumerate counts the facings for which at least one image exists.
func (d *Device) Enumerate(ctx context.Context) (int, error) {
	count := 0
	for _, f := range []capture.Facing{capture.Front, capture.Back} {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		files, err := d.frames(f)
		if err != nil {
			if errors.Is(err, capture.ErrPermissionDenied) {
				return 0, err
			}
			continue
		}
		if len(files) > 0 {
			count++
		}
	}
	return count, nil
}

// Open implements capture.Device.
func (d *Device) Open(ctx context.Context, facing capture.Facing) (capture.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := d.frames(facing)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s images in %s", capture.ErrDeviceUnavailable, facing, d.Root)
	}
	return &stream{files: files}, nil
}

func (d *Device) frames(facing capture.Facing) ([]string, error) {
	dir := filepath.Join(d.Root, facing.String())
	files, err := listImages(dir)
	if errors.Is(err, fs.ErrNotExist) && facing == capture.Front {
		files, err = listImages(d.Root)
	}
	switch {
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %v", capture.ErrPermissionDenied, err)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
	}
	return files, nil
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// stream cycles through its files, one per read.
type stream struct {
	mu     sync.Mutex
	files  []string
	next   int
	closed bool
}

func (s *stream) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errors.New("stream closed")
	}
	path := s.files[s.next%len(s.files)]
	s.next++
	s.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
