// Package camera provides scanner.Camera implementations for hosts without
// a live video device.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/pricecheck/internal/pricecheck/scanner"
	"github.com/aussiebroadwan/pricecheck/pkg/slogx"
)

// DefaultFrameInterval is roughly 30 frames per second.
const DefaultFrameInterval = 33 * time.Millisecond

var frameExts = []string{".png", ".jpg", ".jpeg", ".gif"}

// Dir replays the images in a directory as a camera feed, in name order.
type Dir struct {
	Path     string
	Interval time.Duration

	// Once stops the feed after the last image instead of looping.
	Once bool

	Logger *slog.Logger
}

// NewDir returns a looping camera over path.
func NewDir(path string, logger *slog.Logger) *Dir {
	return &Dir{Path: path, Interval: DefaultFrameInterval, Logger: logger}
}

// Acquire loads every frame up front so a bad file fails the acquisition
// rather than the scan.
func (d *Dir) Acquire(ctx context.Context, c scanner.Constraints) (scanner.Stream, error) {
	log := slogx.OrDefault(d.Logger)

	entries, err := os.ReadDir(d.Path)
	if err != nil {
		return nil, classify(err)
	}

	var frames []image.Image
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(frameExts, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		img, err := decodeFile(filepath.Join(d.Path, e.Name()))
		if err != nil {
			return nil, classify(err)
		}
		frames = append(frames, img)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", scanner.ErrDeviceUnavailable, d.Path)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	interval := d.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	log.Debug("camera acquired", "dir", d.Path, "frames", len(frames),
		"width", c.Width, "height", c.Height, "facing", c.FacingMode)

	s := &stream{
		frames: make(chan image.Image),
		done:   make(chan struct{}),
	}
	go s.run(frames, interval, !d.Once)
	return s, nil
}

func decodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %v", scanner.ErrPermissionDenied, err)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %v", scanner.ErrDeviceUnavailable, err)
	default:
		return err
	}
}

type stream struct {
	frames chan image.Image
	done   chan struct{}
	once   sync.Once
}

func (s *stream) Frames() <-chan image.Image { return s.frames }

func (s *stream) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *stream) run(frames []image.Image, interval time.Duration, loop bool) {
	defer close(s.frames)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		if i == len(frames) {
			if !loop {
				return
			}
			i = 0
		}
		select {
		case <-s.done:
			return
		case s.frames <- frames[i]:
		}
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// Unavailable is the camera of a host with no capture device configured.
type Unavailable struct{}

func (Unavailable) Acquire(context.Context, scanner.Constraints) (scanner.Stream, error) {
	return nil, fmt.Errorf("%w: no camera configured", scanner.ErrDeviceUnavailable)
}
