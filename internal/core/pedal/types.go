package pedal

const (
	EventTypeSyn uint16 = 0x00
	EventTypeKey uint16 = 0x01

	SynReportCode uint16 = 0
)

// Event mirrors a raw input event as read from the pedal device.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// EventSource is a blocking stream of raw input events from the grabbed
// pedal device. ReadEvent returns an error once the device is closed.
type EventSource interface {
	ReadEvent() (Event, error)
	Close() error
}

// KeySink injects synthetic key events into the operating system.
type KeySink interface {
	SendKey(code uint16, pressed bool) error
	Close() error
}

// NotificationService hands out per-action notification handles.
// Process-wide initialization happens at most once.
type NotificationService interface {
	NewNotification(summary string) (Notification, error)
	Close() error
}

// Notification is one replaceable desktop notification; Show creates it
// on first call and updates it in place afterwards.
type Notification interface {
	Show(body string) error
}

// ClickTarget is a visually positioned click destination, typically an
// overlay window. Click reports ErrWindowClosed once the target is gone.
type ClickTarget interface {
	Click() error
	Close() error
}

// RGB is an overlay background color parsed from a 6-hex-digit descriptor.
type RGB struct {
	R, G, B uint8
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
