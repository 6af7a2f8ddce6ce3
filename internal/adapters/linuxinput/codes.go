package linuxinput

import (
	"strconv"
	"strings"

	evdev "github.com/holoplot/go-evdev"

	"github.com/mic-e/pedal-actions/internal/core/pedal"
)

// ResolveKeyName maps a case-insensitive key name to an evdev key code.
// Bare names get the KEY_/BTN_ prefix tried for them, so "a", "KEY_A"
// and "leftshift" all resolve. Numeric codes are accepted as well.
func ResolveKeyName(name string) (uint16, error) {
	raw := strings.ToUpper(strings.TrimSpace(name))
	if raw == "" {
		return 0, &pedal.UnknownKeyError{Name: name}
	}

	for _, candidate := range []string{raw, "KEY_" + raw, "BTN_" + raw} {
		if code, ok := evdev.KEYFromString[candidate]; ok {
			return uint16(code), nil
		}
	}

	parsed, err := strconv.ParseInt(raw, 0, 32)
	if err != nil || parsed < 0 || parsed > 0xFFFF {
		return 0, &pedal.UnknownKeyError{Name: name}
	}
	return uint16(parsed), nil
}

// FormatCodeName names an EV_KEY code, falling back to the number.
func FormatCodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}
