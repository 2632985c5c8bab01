package activity

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"sleepsentinel/internal/logging"
)

// DefaultDeviceGlob matches the Linux input event devices
const DefaultDeviceGlob = "/dev/input/event*"

// Linux input event types that count as user activity
const (
	evKey = 0x01
	evRel = 0x02
	evAbs = 0x03
)

// struct input_event is a timeval followed by type, code and value
var (
	timevalSize = 2 * strconv.IntSize / 8
	eventSize   = timevalSize + 8
)

// ErrNoDevices is returned when no input device could be opened
var ErrNoDevices = errors.New("no readable input devices")

// EvdevSource reads key, pointer and touch events from Linux input devices
type EvdevSource struct {
	glob   string
	logger *logging.Logger
	open   func(path string) (io.ReadCloser, error)
	now    func() time.Time
}

// NewEvdevSource creates a source over every device matching glob
func NewEvdevSource(glob string, logger *logging.Logger) *EvdevSource {
	if glob == "" {
		glob = DefaultDeviceGlob
	}
	return &EvdevSource{
		glob:   glob,
		logger: logger,
		open: func(path string) (io.ReadCloser, error) {
			return os.Open(filepath.Clean(path))
		},
		now: time.Now,
	}
}

func (s *EvdevSource) Name() string {
	return "evdev"
}

// Events opens the devices and streams activity until ctx is done or every
// device has closed. Unreadable devices are skipped.
func (s *EvdevSource) Events(ctx context.Context) (<-chan time.Time, error) {
	paths, err := filepath.Glob(s.glob)
	if err != nil {
		return nil, fmt.Errorf("match input devices: %w", err)
	}

	devices := make([]io.ReadCloser, 0, len(paths))
	for _, path := range paths {
		dev, err := s.open(path)
		if err != nil {
			s.logger.Debug("activity.device.skipped", "Input device not readable", map[string]interface{}{
				"device": path,
				"error":  err.Error(),
			})
			continue
		}
		devices = append(devices, dev)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w matching %s", ErrNoDevices, s.glob)
	}

	s.logger.Info("activity.devices.opened", "Listening to input devices", map[string]interface{}{
		"devices": len(devices),
	})

	out := make(chan time.Time, feedBuffer)
	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func(dev io.ReadCloser) {
			defer wg.Done()
			s.read(ctx, dev, out)
		}(dev)
	}

	// closing the devices unblocks the pending reads
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}
		for _, dev := range devices {
			_ = dev.Close()
		}
	}()
	go func() {
		wg.Wait()
		close(stopped)
		close(out)
	}()

	return out, nil
}

func (s *EvdevSource) read(ctx context.Context, dev io.Reader, out chan<- time.Time) {
	buf := make([]byte, eventSize)
	for {
		if _, err := io.ReadFull(dev, buf); err != nil {
			if ctx.Err() == nil && !errors.Is(err, io.EOF) {
				s.logger.Warn("activity.device.failed", "Input device read failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
			return
		}
		if !isUserEvent(buf) {
			continue
		}
		select {
		case out <- s.now():
		case <-ctx.Done():
			return
		default:
			// a pending event already marks this moment
		}
	}
}

// isUserEvent reports whether a raw input_event is a key, relative or
// absolute axis event.
func isUserEvent(raw []byte) bool {
	if len(raw) < eventSize {
		return false
	}
	switch binary.NativeEndian.Uint16(raw[timevalSize:]) {
	case evKey, evRel, evAbs:
		return true
	default:
		return false
	}
}
