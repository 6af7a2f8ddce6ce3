//go:build linux

package linuxinput

import (
	"fmt"
	"sort"
	"time"

	evdev "github.com/holoplot/go-evdev"
)

// CaptureNextKeyCode waits for the next pressed key/button (EV_KEY with
// value 1) and reports its code, so a user can identify what a pedal
// switch actually emits. If devicePath is empty, it listens on all
// non-virtual input devices with key capabilities.
func CaptureNextKeyCode(devicePath string, timeout time.Duration) (uint16, error) {
	devices, err := openCaptureDevices(devicePath)
	if err != nil {
		return 0, err
	}
	defer func() {
		for _, dev := range devices {
			_ = dev.Close()
		}
	}()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	done := make(chan struct{})
	defer close(done)
	codeCh := make(chan uint16, 1)
	for _, dev := range devices {
		go watchForPress(dev, done, codeCh)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case code := <-codeCh:
		return code, nil
	case <-timer.C:
		return 0, fmt.Errorf("timed out waiting for key/button input")
	}
}

// watchForPress polls one nonblocking device until it sees a key press,
// the done channel closes, or the device goes away. The codeCh send is
// best-effort: only the first watcher's code is consumed.
func watchForPress(dev *evdev.InputDevice, done <-chan struct{}, codeCh chan<- uint16) {
	for {
		event, err := dev.ReadOne()
		if err != nil {
			if isDeviceClosedError(err) {
				return
			}
			interval := readPollInterval
			if !isWouldBlockError(err) {
				interval = 25 * time.Millisecond
			}
			if !sleepUnlessDone(done, interval) {
				return
			}
			continue
		}
		if event != nil && event.Type == evdev.EV_KEY && event.Value == 1 {
			select {
			case codeCh <- uint16(event.Code):
			default:
			}
			return
		}
	}
}

// prepareCaptureDevice vets an opened device for capture: it must expose
// key events and switch to nonblocking mode. On rejection the device is
// closed and an error returned.
func prepareCaptureDevice(dev *evdev.InputDevice) error {
	if len(dev.CapableEvents(evdev.EV_KEY)) == 0 {
		_ = dev.Close()
		return fmt.Errorf("%s does not expose key/button events", dev.Path())
	}
	if err := dev.NonBlock(); err != nil {
		_ = dev.Close()
		return fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
	}
	return nil
}

func openCaptureDevices(devicePath string) ([]*evdev.InputDevice, error) {
	if devicePath != "" {
		dev, err := openInputDevice(devicePath)
		if err != nil {
			return nil, err
		}
		if err := prepareCaptureDevice(dev); err != nil {
			return nil, err
		}
		return []*evdev.InputDevice{dev}, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	var devices []*evdev.InputDevice
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}
		name := path.Name
		if actualName, nameErr := dev.Name(); nameErr == nil && actualName != "" {
			name = actualName
		}
		if deviceIsVirtual(dev, name) {
			_ = dev.Close()
			continue
		}
		if prepareCaptureDevice(dev) != nil {
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no readable input devices with key/button events found")
	}
	return devices, nil
}
