//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/mic-e/pedal-actions/internal/core/pedal"
)

const readPollInterval = 10 * time.Millisecond

// Source is the exclusively grabbed pedal device. The device runs in
// nonblocking mode; ReadEvent polls it and watches the stop signal
// between would-block sleeps, so Close from another goroutine ends a
// pending read with io.EOF instead of waiting for the next pedal event.
type Source struct {
	dev     *evdev.InputDevice
	logger  pedal.Logger
	readOne func() (*evdev.InputEvent, error)

	stopCh    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// OpenSource opens and grabs the device at path. Grabbing happens once,
// before any action runs; it is not reentered mid-stream.
func OpenSource(path string, logger pedal.Logger) (*Source, error) {
	dev, err := evdev.OpenWithFlags(path, os.O_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := dev.Grab(); err != nil {
		_ = dev.Close()
		return nil, fmt.Errorf("grabbing %s: %w", path, err)
	}
	if err := dev.NonBlock(); err != nil {
		_ = dev.Ungrab()
		_ = dev.Close()
		return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", path, err)
	}

	name, _ := dev.Name()
	logger.Info("Grabbed pedal device", "path", path, "name", name)
	return &Source{
		dev:     dev,
		logger:  logger,
		readOne: dev.ReadOne,
		stopCh:  make(chan struct{}),
	}, nil
}

func (s *Source) ReadEvent() (pedal.Event, error) {
	for {
		if s.stopped() {
			return pedal.Event{}, io.EOF
		}

		event, err := s.readOne()
		if err != nil {
			if isWouldBlockError(err) {
				if !sleepUnlessDone(s.stopCh, readPollInterval) {
					return pedal.Event{}, io.EOF
				}
				continue
			}
			if s.stopped() || isDeviceClosedError(err) {
				return pedal.Event{}, io.EOF
			}
			return pedal.Event{}, fmt.Errorf("reading pedal device: %w", err)
		}
		if event == nil {
			continue
		}

		return pedal.Event{
			Type:  uint16(event.Type),
			Code:  uint16(event.Code),
			Value: event.Value,
		}, nil
	}
}

func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCh)
		if s.dev != nil {
			_ = s.dev.Ungrab()
			s.closeErr = s.dev.Close()
		}
	})
	return s.closeErr
}

func (s *Source) stopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}

func sleepUnlessDone(done <-chan struct{}, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-done:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV) || errors.Is(err, os.ErrClosed)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
