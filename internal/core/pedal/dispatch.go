package pedal

// Dispatch consumes the raw event stream until a quit action fires or
// the source fails. It filters to key-class events, maps value 1 to a
// press and 0 to a release (key-repeat values are ignored), and invokes
// the configured chain in order. Unknown key codes are silently skipped;
// pedals may report codes with no configured action.
//
// A failing action aborts the remaining actions of that invocation and
// is fatal for the loop. Quit is a result value, not an error: every
// sibling action in the same chain runs first.
func Dispatch(source EventSource, registry Registry, logger Logger) error {
	for {
		event, err := source.ReadEvent()
		if err != nil {
			return err
		}
		if event.Type != EventTypeKey {
			continue
		}

		var pressed bool
		switch event.Value {
		case 1:
			pressed = true
		case 0:
			pressed = false
		default:
			continue
		}

		chain, ok := registry[event.Code]
		if !ok {
			continue
		}

		logger.Debug("Dispatching", "code", event.Code, "pressed", pressed, "actions", len(chain))
		quit := false
		for _, action := range chain {
			q, err := action.Invoke(pressed)
			if err != nil {
				return err
			}
			if q {
				quit = true
			}
		}
		if quit {
			logger.Info("Quit action fired, stopping")
			return nil
		}
	}
}
