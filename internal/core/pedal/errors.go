package pedal

import (
	"errors"
	"fmt"
)

// ErrWindowClosed marks a click or close attempt against an overlay
// window whose background loop already observed destruction. Non-fatal;
// the dispatch loop logs it and skips the click.
var ErrWindowClosed = errors.New("overlay window already closed")

// UnknownKeyError reports a --key name that no evdev key code matches.
type UnknownKeyError struct {
	Name string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown key name %q", e.Name)
}

// DuplicateKeyError reports the same key name configured twice.
type DuplicateKeyError struct {
	Name string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q", e.Name)
}

// UnknownActionError reports a descriptor that matches no action syntax.
type UnknownActionError struct {
	Key        string
	Descriptor string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("key %q: unknown action %q", e.Key, e.Descriptor)
}

// InvalidColorError reports a mouse descriptor color that is not exactly
// six hexadecimal digits.
type InvalidColorError struct {
	Value string
}

func (e *InvalidColorError) Error() string {
	return fmt.Sprintf("invalid color %q (expected 6 hex digits)", e.Value)
}
