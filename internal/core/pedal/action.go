package pedal

import (
	"errors"
	"fmt"
	"os/exec"
)

// Action is one unit of work bound to a pedal key. Invoke runs on every
// press and release transition; quit asks the dispatch loop to stop
// after the current chain completes.
type Action interface {
	Invoke(pressed bool) (quit bool, err error)
}

// PrintAction logs the key label and the transition value.
type PrintAction struct {
	label  string
	logger Logger
}

func NewPrintAction(label string, logger Logger) *PrintAction {
	return &PrintAction{label: label, logger: logger}
}

func (a *PrintAction) Invoke(pressed bool) (bool, error) {
	a.logger.Info("pedal", "key", a.label, "value", transitionValue(pressed))
	return false, nil
}

// NotifyAction shows a desktop notification carrying a press counter.
// Releases leave the counter untouched.
type NotifyAction struct {
	notification Notification
	count        int
}

func NewNotifyAction(notification Notification) *NotifyAction {
	return &NotifyAction{notification: notification}
}

func (a *NotifyAction) Invoke(pressed bool) (bool, error) {
	if !pressed {
		return false, nil
	}
	a.count++
	return false, a.notification.Show(fmt.Sprintf("Pressed %d times", a.count))
}

// Count reports how many presses the action has seen.
func (a *NotifyAction) Count() int {
	return a.count
}

// KeyAction forwards the transition 1:1 to the virtual key sink.
type KeyAction struct {
	sink KeySink
	code uint16
}

func NewKeyAction(sink KeySink, code uint16) *KeyAction {
	return &KeyAction{sink: sink, code: code}
}

func (a *KeyAction) Invoke(pressed bool) (bool, error) {
	return false, a.sink.SendKey(a.code, pressed)
}

// ScriptAction launches an external program on press and does not wait
// beyond process start.
type ScriptAction struct {
	path   string
	logger Logger
}

func NewScriptAction(path string, logger Logger) *ScriptAction {
	return &ScriptAction{path: path, logger: logger}
}

func (a *ScriptAction) Invoke(pressed bool) (bool, error) {
	if !pressed {
		return false, nil
	}
	cmd := exec.Command(a.path)
	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("launching %s: %w", a.path, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			a.logger.Warn("Script exited with error", "path", a.path, "err", err)
		}
	}()
	return false, nil
}

// MouseAction triggers the overlay window's click sequence on press.
// A click against an already-closed window is logged and skipped.
type MouseAction struct {
	target ClickTarget
	logger Logger
}

func NewMouseAction(target ClickTarget, logger Logger) *MouseAction {
	return &MouseAction{target: target, logger: logger}
}

func (a *MouseAction) Invoke(pressed bool) (bool, error) {
	if !pressed {
		return false, nil
	}
	if err := a.target.Click(); err != nil {
		if errors.Is(err, ErrWindowClosed) {
			a.logger.Warn("Overlay window already closed, skipping click")
			return false, nil
		}
		return false, err
	}
	return false, nil
}

// QuitAction signals process termination on press.
type QuitAction struct{}

func (QuitAction) Invoke(pressed bool) (bool, error) {
	return pressed, nil
}

func transitionValue(pressed bool) int {
	if pressed {
		return 1
	}
	return 0
}
