//go:build linux

package linuxinput

import (
	"fmt"

	evdev "github.com/holoplot/go-evdev"
)

// Sink is a uinput virtual keyboard used to forward pedal transitions to
// the rest of the system. It advertises the full EV_KEY code range, so
// one device covers every configurable target key.
type Sink struct {
	dev *evdev.InputDevice
}

func NewSink() (*Sink, error) {
	codes := make([]evdev.EvCode, 0, int(evdev.KEY_MAX))
	for code := evdev.EvCode(1); code < evdev.KEY_MAX; code++ {
		codes = append(codes, code)
	}

	dev, err := evdev.CreateDevice(
		"pedal-actions virtual keyboard",
		evdev.InputID{
			BusType: uint16(evdev.BUS_VIRTUAL),
			Vendor:  0x1,
			Product: 0x1,
			Version: 1,
		},
		map[evdev.EvType][]evdev.EvCode{
			evdev.EV_KEY: codes,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("creating uinput device: %w", err)
	}
	return &Sink{dev: dev}, nil
}

// SendKey writes one key transition followed by a SYN_REPORT flush.
func (s *Sink) SendKey(code uint16, pressed bool) error {
	var value int32
	if pressed {
		value = 1
	}

	events := []evdev.InputEvent{
		{Type: evdev.EV_KEY, Code: evdev.EvCode(code), Value: value},
		{Type: evdev.EV_SYN, Code: evdev.EvCode(evdev.SYN_REPORT), Value: 0},
	}
	for i := range events {
		if err := s.dev.WriteOne(&events[i]); err != nil {
			return fmt.Errorf("writing key event: %w", err)
		}
	}
	return nil
}

func (s *Sink) Close() error {
	return s.dev.Close()
}
