//go:build linux

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mic-e/pedal-actions/internal/adapters/dbusnotify"
	"github.com/mic-e/pedal-actions/internal/adapters/linuxinput"
	"github.com/mic-e/pedal-actions/internal/adapters/x11overlay"
	"github.com/mic-e/pedal-actions/internal/core/pedal"
)

const captureTimeout = 10 * time.Second

type config struct {
	devicePath  string
	bindings    []pedal.Binding
	listDevices bool
	capture     bool
	logLevel    slog.Level
}

// keyFlags collects repeated --key NAME=action[,action...] occurrences.
type keyFlags []pedal.Binding

func (k *keyFlags) String() string {
	parts := make([]string, 0, len(*k))
	for _, binding := range *k {
		parts = append(parts, fmt.Sprintf("%s=%s", binding.Key, strings.Join(binding.Descriptors, ",")))
	}
	return strings.Join(parts, " ")
}

func (k *keyFlags) Set(value string) error {
	name, rest, ok := strings.Cut(value, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid --key %q (expected NAME=action[,action...])", value)
	}

	raw := strings.Split(rest, ",")
	descriptors := make([]string, 0, len(raw))
	for _, descriptor := range raw {
		descriptor = strings.TrimSpace(descriptor)
		if descriptor == "" {
			return fmt.Errorf("invalid --key %q: empty action descriptor", value)
		}
		descriptors = append(descriptors, descriptor)
	}
	if len(descriptors) == 0 {
		return fmt.Errorf("invalid --key %q: no action descriptors", value)
	}

	*k = append(*k, pedal.Binding{Key: name, Descriptors: descriptors})
	return nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning", "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q (expected debug|info|warning|error)", value)
	}
}

func parseConfig(args []string) (config, error) {
	var cfg config
	flags := flag.NewFlagSet("pedal-actions", flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var keys keyFlags
	var logLevelRaw string

	flags.StringVar(&cfg.devicePath, "device", "", "Pedal input device path, e.g. /dev/input/event4.")
	flags.Var(&keys, "key", "Bind a key to actions: NAME=action[,action...]. Actions: print, notify, quit, key:<name>, mouse:<rrggbb>, script:<path>. Repeatable.")
	flags.BoolVar(&cfg.listDevices, "list-devices", false, "Print available input devices and exit.")
	flags.BoolVar(&cfg.capture, "capture", false, "Wait for the next key/button press, print its name and exit.")
	flags.StringVar(&logLevelRaw, "log-level", "info", "Log verbosity (default: info). Allowed: debug, info, warning, error.")

	if err := flags.Parse(args); err != nil {
		return cfg, err
	}
	if flags.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}

	parsedLevel, err := parseLogLevel(logLevelRaw)
	if err != nil {
		return cfg, err
	}
	cfg.logLevel = parsedLevel
	cfg.bindings = keys

	if cfg.listDevices || cfg.capture {
		return cfg, nil
	}
	if cfg.devicePath == "" {
		return cfg, fmt.Errorf("--device is required; use --list-devices to find your pedal")
	}
	return cfg, nil
}

func newSlogLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) || errors.Is(err, syscall.EACCES)
}

func permissionDeniedHint() string {
	return "Permission denied opening input device. Add your user to the 'input' group (and ensure /dev/uinput access for key actions)."
}

func listInputDevices() error {
	devices, err := linuxinput.ListInputDevices()
	if err != nil {
		return err
	}
	for _, dev := range devices {
		virtualTag := "physical"
		if dev.IsVirtual {
			virtualTag = "virtual"
		}
		pointerTag := "non-pointer"
		if dev.IsPointer {
			pointerTag = "pointer"
		}
		fmt.Printf("%s: %s [%s, %s]\n", dev.Path, dev.Name, virtualTag, pointerTag)
	}
	return nil
}

func run(args []string, stderr io.Writer) int {
	cfg, err := parseConfig(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	if cfg.listDevices {
		if err := listInputDevices(); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		return 0
	}

	if cfg.capture {
		code, err := linuxinput.CaptureNextKeyCode(cfg.devicePath, captureTimeout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Println(linuxinput.FormatCodeName(code))
		return 0
	}

	logger := newSlogLogger(cfg.logLevel)

	resources := pedal.NewResources(pedal.Factories{
		KeySink: func() (pedal.KeySink, error) {
			return linuxinput.NewSink()
		},
		Notifications: func() (pedal.NotificationService, error) {
			return dbusnotify.New()
		},
		Overlay: func(title string, color pedal.RGB) (pedal.ClickTarget, error) {
			return x11overlay.New(title, color, logger)
		},
	}, logger)
	defer func() {
		if err := resources.Close(); err != nil {
			logger.Warn("Teardown error", "err", err)
		}
	}()

	// The whole configuration is validated, and every overlay window
	// exists, before the pedal device is grabbed.
	registry, err := pedal.BuildRegistry(cfg.bindings, linuxinput.ResolveKeyName, resources, logger)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	source, err := linuxinput.OpenSource(cfg.devicePath, logger)
	if err != nil {
		if isPermissionError(err) {
			fmt.Fprintln(stderr, permissionDeniedHint())
			return 1
		}
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer source.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("Listening", "device", cfg.devicePath, "keys", len(registry))
	errCh := make(chan error, 1)
	go func() {
		errCh <- pedal.Dispatch(source, registry, logger)
	}()

	select {
	case <-ctx.Done():
		// Close signals the source's stop channel, which ends the
		// dispatch loop's pending read.
		_ = source.Close()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}
