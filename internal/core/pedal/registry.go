package pedal

import (
	"fmt"
	"strconv"
	"strings"
)

// Binding is one configured pedal key with its ordered action descriptors.
type Binding struct {
	Key         string
	Descriptors []string
}

// Registry maps an evdev key code to the ordered action chain invoked on
// every transition of that key.
type Registry map[uint16][]Action

// KeyResolver maps a case-insensitive key name to an evdev key code. It
// returns an *UnknownKeyError for unrecognized names.
type KeyResolver func(name string) (uint16, error)

// BuildRegistry resolves every binding into an action chain, threading
// the resource context so stateful actions can obtain shared handles.
// It validates the whole configuration before any window or sink exists
// for a later binding, so startup fails before the device is grabbed.
func BuildRegistry(bindings []Binding, resolve KeyResolver, resources *Resources, logger Logger) (Registry, error) {
	registry := make(Registry, len(bindings))
	seen := make(map[string]struct{}, len(bindings))

	for _, binding := range bindings {
		name := strings.ToUpper(strings.TrimSpace(binding.Key))
		if _, ok := seen[name]; ok {
			return nil, &DuplicateKeyError{Name: binding.Key}
		}
		seen[name] = struct{}{}

		code, err := resolve(binding.Key)
		if err != nil {
			return nil, err
		}
		if _, ok := registry[code]; ok {
			return nil, &DuplicateKeyError{Name: binding.Key}
		}

		chain := make([]Action, 0, len(binding.Descriptors))
		for _, descriptor := range binding.Descriptors {
			action, err := buildAction(binding.Key, descriptor, resolve, resources, logger)
			if err != nil {
				return nil, err
			}
			chain = append(chain, action)
		}
		registry[code] = chain
	}

	return registry, nil
}

func buildAction(key, descriptor string, resolve KeyResolver, resources *Resources, logger Logger) (Action, error) {
	switch {
	case descriptor == "print":
		return NewPrintAction(key, logger), nil

	case descriptor == "notify":
		service, err := resources.Notifications()
		if err != nil {
			return nil, err
		}
		notification, err := service.NewNotification(fmt.Sprintf("Pedal %s", key))
		if err != nil {
			return nil, err
		}
		return NewNotifyAction(notification), nil

	case descriptor == "quit":
		return QuitAction{}, nil

	case strings.HasPrefix(descriptor, "key:"):
		code, err := resolve(strings.TrimPrefix(descriptor, "key:"))
		if err != nil {
			return nil, err
		}
		sink, err := resources.KeySink()
		if err != nil {
			return nil, err
		}
		return NewKeyAction(sink, code), nil

	case strings.HasPrefix(descriptor, "mouse:"):
		color, err := ParseColor(strings.TrimPrefix(descriptor, "mouse:"))
		if err != nil {
			return nil, err
		}
		target, err := resources.NewOverlay(fmt.Sprintf("pedal %s", key), color)
		if err != nil {
			return nil, err
		}
		return NewMouseAction(target, logger), nil

	case strings.HasPrefix(descriptor, "script:"):
		path := strings.TrimPrefix(descriptor, "script:")
		if path == "" {
			return nil, &UnknownActionError{Key: key, Descriptor: descriptor}
		}
		return NewScriptAction(path, logger), nil

	default:
		return nil, &UnknownActionError{Key: key, Descriptor: descriptor}
	}
}

// ParseColor decodes exactly six hexadecimal digits into an RGB triple.
func ParseColor(value string) (RGB, error) {
	if len(value) != 6 {
		return RGB{}, &InvalidColorError{Value: value}
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return RGB{}, &InvalidColorError{Value: value}
	}
	return RGB{
		R: uint8(parsed >> 16),
		G: uint8(parsed >> 8),
		B: uint8(parsed),
	}, nil
}
