//go:build linux

package x11overlay

import (
	"errors"
	"testing"

	"github.com/mic-e/pedal-actions/internal/core/pedal"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// recordingClickConn records the order of warp, sync and button calls.
type recordingClickConn struct {
	ops    []string
	warpX  int16
	warpY  int16
	closed bool
}

func (c *recordingClickConn) Warp(x, y int16) error {
	c.warpX, c.warpY = x, y
	c.ops = append(c.ops, "warp")
	return nil
}

func (c *recordingClickConn) Button(press bool) error {
	if press {
		c.ops = append(c.ops, "press")
	} else {
		c.ops = append(c.ops, "release")
	}
	return nil
}

func (c *recordingClickConn) Sync() { c.ops = append(c.ops, "sync") }

func (c *recordingClickConn) Close() { c.closed = true }

func newTestWindow(conn *recordingClickConn) *Window {
	w := &Window{
		geom:    DefaultGeometry(),
		logger:  testLogger{},
		running: true,
		done:    make(chan struct{}),
	}
	w.render = func(*bitmap) error { return nil }
	w.newClickConn = func() (clickConn, error) { return conn, nil }
	w.destroy = func() error { return nil }
	return w
}

func TestClickSequenceOrdering(t *testing.T) {
	conn := &recordingClickConn{}
	w := newTestWindow(conn)
	w.updatePos(100, 200, 96, 112)

	if err := w.Click(); err != nil {
		t.Fatalf("Click() error = %v", err)
	}

	want := []string{"warp", "sync", "press", "sync", "release", "sync"}
	if len(conn.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", conn.ops, want)
	}
	for i := range want {
		if conn.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", conn.ops, want)
		}
	}
	if conn.warpX != 148 || conn.warpY != 256 {
		t.Fatalf("warp target = (%d,%d), want window center (148,256)", conn.warpX, conn.warpY)
	}
	if !conn.closed {
		t.Fatalf("click connection must be released")
	}
}

func TestClickAfterCloseReportsStaleWindow(t *testing.T) {
	conn := &recordingClickConn{}
	w := newTestWindow(conn)

	// The background loop observed destruction.
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
	close(w.done)

	if err := w.Click(); !errors.Is(err, pedal.ErrWindowClosed) {
		t.Fatalf("Click() error = %v, want ErrWindowClosed", err)
	}
	if len(conn.ops) != 0 {
		t.Fatalf("no pointer traffic may happen for a stale click, got %v", conn.ops)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() after destruction error = %v", err)
	}
	if err := w.Click(); !errors.Is(err, pedal.ErrWindowClosed) {
		t.Fatalf("running flag must stay false, Click() error = %v", err)
	}
}

func TestCloseDestroysRunningWindowAndJoins(t *testing.T) {
	w := newTestWindow(&recordingClickConn{})
	destroyed := 0
	w.destroy = func() error {
		destroyed++
		// Simulate the background loop observing DestroyNotify.
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.done)
		return nil
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if destroyed != 1 {
		t.Fatalf("destroy issued %d times, want 1", destroyed)
	}
}

func TestUpdateMaskIsIdempotentOnSameDimensions(t *testing.T) {
	w := newTestWindow(&recordingClickConn{})
	renders := 0
	w.render = func(b *bitmap) error {
		renders++
		return nil
	}

	if err := w.UpdateMask(96, 112); err != nil {
		t.Fatalf("UpdateMask() error = %v", err)
	}
	if err := w.UpdateMask(96, 112); err != nil {
		t.Fatalf("UpdateMask() error = %v", err)
	}
	if renders != 1 {
		t.Fatalf("renders = %d, want 1 for unchanged dimensions", renders)
	}

	if err := w.UpdateMask(96, 120); err != nil {
		t.Fatalf("UpdateMask() error = %v", err)
	}
	if err := w.UpdateMask(100, 120); err != nil {
		t.Fatalf("UpdateMask() error = %v", err)
	}
	if renders != 3 {
		t.Fatalf("renders = %d, want 3 after two dimension changes", renders)
	}
}

func TestUpdateMaskKeepsCacheOnRenderFailure(t *testing.T) {
	w := newTestWindow(&recordingClickConn{})
	renderErr := errors.New("pixmap upload failed")
	failing := true
	renders := 0
	w.render = func(*bitmap) error {
		renders++
		if failing {
			return renderErr
		}
		return nil
	}

	if err := w.UpdateMask(96, 112); !errors.Is(err, renderErr) {
		t.Fatalf("UpdateMask() error = %v, want %v", err, renderErr)
	}

	// The failed attempt must not poison the cache; the next event with
	// the same dimensions retries.
	failing = false
	if err := w.UpdateMask(96, 112); err != nil {
		t.Fatalf("UpdateMask() retry error = %v", err)
	}
	if renders != 2 {
		t.Fatalf("renders = %d, want 2", renders)
	}
}

func TestUpdatePosStoresWindowCenter(t *testing.T) {
	w := newTestWindow(&recordingClickConn{})

	w.updatePos(10, 20, 96, 112)
	w.mu.Lock()
	x, y := w.centerX, w.centerY
	w.mu.Unlock()

	if x != 58 || y != 76 {
		t.Fatalf("center = (%d,%d), want (58,76)", x, y)
	}
}
