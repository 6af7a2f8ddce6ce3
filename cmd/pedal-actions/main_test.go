//go:build linux

package main

import (
	"log/slog"
	"testing"
)

func TestParseConfigBindings(t *testing.T) {
	cfg, err := parseConfig([]string{
		"--device", "/dev/input/event4",
		"--key", "A=print,key:leftshift",
		"--key", "B=mouse:00ff00,quit",
	})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.devicePath != "/dev/input/event4" {
		t.Fatalf("devicePath = %q", cfg.devicePath)
	}
	if len(cfg.bindings) != 2 {
		t.Fatalf("bindings = %d, want 2", len(cfg.bindings))
	}
	if cfg.bindings[0].Key != "A" {
		t.Fatalf("bindings[0].Key = %q, want A", cfg.bindings[0].Key)
	}
	want := []string{"print", "key:leftshift"}
	if len(cfg.bindings[0].Descriptors) != len(want) {
		t.Fatalf("descriptors = %v, want %v", cfg.bindings[0].Descriptors, want)
	}
	for i := range want {
		if cfg.bindings[0].Descriptors[i] != want[i] {
			t.Fatalf("descriptors = %v, want %v", cfg.bindings[0].Descriptors, want)
		}
	}
}

func TestParseConfigRequiresDevice(t *testing.T) {
	if _, err := parseConfig([]string{"--key", "A=print"}); err == nil {
		t.Fatalf("expected error without --device")
	}
}

func TestParseConfigListDevicesNeedsNoDevice(t *testing.T) {
	cfg, err := parseConfig([]string{"--list-devices"})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if !cfg.listDevices {
		t.Fatalf("listDevices not set")
	}
}

func TestParseConfigRejectsMalformedKeyFlag(t *testing.T) {
	malformed := []string{
		"A",          // no separator
		"=print",     // empty name
		"A=",         // empty descriptor list
		"A=print,,x", // empty descriptor
	}
	for _, value := range malformed {
		if _, err := parseConfig([]string{"--device", "/dev/input/event0", "--key", value}); err == nil {
			t.Fatalf("--key %q must fail", value)
		}
	}
}

func TestParseConfigLogLevels(t *testing.T) {
	cfg, err := parseConfig([]string{"--device", "/dev/input/event0", "--log-level", "debug"})
	if err != nil {
		t.Fatalf("parseConfig() error = %v", err)
	}
	if cfg.logLevel != slog.LevelDebug {
		t.Fatalf("logLevel = %v, want debug", cfg.logLevel)
	}
	if _, err := parseConfig([]string{"--device", "/dev/input/event0", "--log-level", "loud"}); err == nil {
		t.Fatalf("invalid log level must fail")
	}
}
