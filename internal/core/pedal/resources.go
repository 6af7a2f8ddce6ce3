package pedal

import "fmt"

// Factories supplies the platform constructors the resource context
// draws from. Each is called at most once per process, except Overlay
// which runs once per configured mouse action.
type Factories struct {
	KeySink       func() (KeySink, error)
	Notifications func() (NotificationService, error)
	Overlay       func(title string, color RGB) (ClickTarget, error)
}

// Resources lazily creates process-wide handles exactly once and
// releases everything it handed out in reverse acquisition order.
type Resources struct {
	factories Factories
	logger    Logger

	sink          KeySink
	notifications NotificationService
	closers       []func() error
}

func NewResources(factories Factories, logger Logger) *Resources {
	return &Resources{factories: factories, logger: logger}
}

func (r *Resources) KeySink() (KeySink, error) {
	if r.sink != nil {
		return r.sink, nil
	}
	if r.factories.KeySink == nil {
		return nil, fmt.Errorf("no key sink available")
	}
	sink, err := r.factories.KeySink()
	if err != nil {
		return nil, fmt.Errorf("creating virtual key sink: %w", err)
	}
	r.logger.Debug("Created virtual key sink")
	r.sink = sink
	r.closers = append(r.closers, sink.Close)
	return sink, nil
}

func (r *Resources) Notifications() (NotificationService, error) {
	if r.notifications != nil {
		return r.notifications, nil
	}
	if r.factories.Notifications == nil {
		return nil, fmt.Errorf("no notification service available")
	}
	service, err := r.factories.Notifications()
	if err != nil {
		return nil, fmt.Errorf("connecting notification service: %w", err)
	}
	r.logger.Debug("Connected notification service")
	r.notifications = service
	r.closers = append(r.closers, service.Close)
	return service, nil
}

func (r *Resources) NewOverlay(title string, color RGB) (ClickTarget, error) {
	if r.factories.Overlay == nil {
		return nil, fmt.Errorf("no overlay backend available")
	}
	target, err := r.factories.Overlay(title, color)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Created overlay window", "title", title)
	r.closers = append(r.closers, target.Close)
	return target, nil
}

// Close tears down every acquired resource in reverse order. It runs all
// closers even if earlier ones fail and reports the first error.
func (r *Resources) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.closers = nil
	r.sink = nil
	r.notifications = nil
	return firstErr
}
