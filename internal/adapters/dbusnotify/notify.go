package dbusnotify

import (
	"fmt"
	"time"

	"github.com/esiqveland/notify"
	"github.com/godbus/dbus/v5"

	"github.com/mic-e/pedal-actions/internal/core/pedal"
)

// Service talks to org.freedesktop.Notifications on the session bus. One
// private connection serves the whole process.
type Service struct {
	conn *dbus.Conn
}

func New() (*Service, error) {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session bus auth: %w", err)
	}
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("session bus hello: %w", err)
	}
	return &Service{conn: conn}, nil
}

func (s *Service) NewNotification(summary string) (pedal.Notification, error) {
	return &handle{conn: s.conn, summary: summary}, nil
}

func (s *Service) Close() error {
	return s.conn.Close()
}

// handle is one replaceable notification. The server-assigned ID is kept
// so later Show calls update the popup in place instead of stacking.
type handle struct {
	conn    *dbus.Conn
	summary string
	id      uint32
}

func (h *handle) Show(body string) error {
	id, err := notify.SendNotification(h.conn, notify.Notification{
		AppName:       "pedal-actions",
		ReplacesID:    h.id,
		Summary:       h.summary,
		Body:          body,
		ExpireTimeout: 3 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	h.id = id
	return nil
}
