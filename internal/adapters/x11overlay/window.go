//go:build linux

package x11overlay

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/mic-e/pedal-actions/internal/core/pedal"
)

// CapabilityError reports a missing X extension the overlay cannot work
// without.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("X server lacks the %s extension: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

// clickConn is one short-lived X connection used for a single click or
// capability probe. The background loop's connection must never be
// driven from another goroutine, so Click opens one of these instead.
type clickConn interface {
	Warp(x, y int16) error
	Button(press bool) error
	Sync()
	Close()
}

// Window is a borderless shape-masked crosshair window. A background
// goroutine owns the X connection and consumes its events; Click and
// Close only touch the mutex-guarded position and running flag plus
// fresh connections of their own.
type Window struct {
	xu         *xgbutil.XUtil
	conn       *xgb.Conn
	win        xproto.Window
	geom       Geometry
	deleteAtom xproto.Atom
	logger     pedal.Logger

	// last-seen dimensions; only the background goroutine touches these.
	maskWidth  uint16
	maskHeight uint16

	render       func(*bitmap) error
	newClickConn func() (clickConn, error)
	destroy      func() error

	mu      sync.Mutex
	centerX int16
	centerY int16
	running bool

	done chan struct{}
}

// New creates the overlay window and starts its background event loop.
// It fails with a *CapabilityError if the server lacks the SHAPE
// extension.
func New(title string, color pedal.RGB, logger pedal.Logger) (*Window, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	conn := xu.Conn()

	if err := shape.Init(conn); err != nil {
		conn.Close()
		return nil, &CapabilityError{Capability: "SHAPE", Err: err}
	}

	geom := DefaultGeometry()
	width, height := geom.WindowSize()
	screen := xproto.Setup(conn).DefaultScreen(conn)

	pixel, err := allocPixel(conn, screen, color)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("allocating background color: %w", err)
	}

	win, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		win,
		screen.Root,
		-int16(width),
		-int16(height),
		width,
		height,
		0,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{pixel, xproto.EventMaskStructureNotify},
	).Check(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating overlay window: %w", err)
	}

	_ = ewmh.WmNameSet(xu, win, title)
	_ = ewmh.WmWindowTypeSet(xu, win, []string{"_NET_WM_WINDOW_TYPE_DIALOG"})
	_ = icccm.WmHintsSet(xu, win, &icccm.Hints{
		Flags:        icccm.HintState,
		InitialState: icccm.StateNormal,
	})
	_ = icccm.WmNormalHintsSet(xu, win, &icccm.NormalHints{
		Flags:     icccm.SizeHintPMinSize,
		MinWidth:  uint(width),
		MinHeight: uint(height),
	})
	if err := icccm.WmProtocolsSet(xu, win, []string{"WM_DELETE_WINDOW"}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("registering WM_DELETE_WINDOW: %w", err)
	}
	deleteAtom, err := xprop.Atm(xu, "WM_DELETE_WINDOW")
	if err != nil {
		conn.Close()
		return nil, err
	}

	w := &Window{
		xu:           xu,
		conn:         conn,
		win:          win,
		geom:         geom,
		deleteAtom:   deleteAtom,
		logger:       logger,
		newClickConn: newXTestConn,
		running:      true,
		done:         make(chan struct{}),
	}
	w.render = w.applyMask
	w.destroy = w.destroyViaFreshConn

	// Until the window manager assigns real geometry, only the title
	// strip is part of the shape.
	if err := w.render(titleOnlyMask(geom, width, height)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying initial shape mask: %w", err)
	}

	xproto.MapWindow(conn, win)
	conn.Sync()

	go w.eventLoop()
	return w, nil
}

// UpdateMask regenerates and applies the shape mask. It is a no-op while
// the dimensions match the last applied mask. Only the background
// goroutine calls this.
func (w *Window) UpdateMask(width, height uint16) error {
	if width == w.maskWidth && height == w.maskHeight {
		return nil
	}
	if err := w.render(crosshairMask(w.geom, width, height)); err != nil {
		return err
	}
	w.maskWidth = width
	w.maskHeight = height
	return nil
}

func (w *Window) updatePos(x, y int16, width, height uint16) {
	w.mu.Lock()
	w.centerX = x + int16(width/2)
	w.centerY = y + int16(height/2)
	w.mu.Unlock()
}

// Click warps the pointer to the window's current center and synthesizes
// a button press and release, with a sync barrier between each step so
// the target application sees the pointer in place before the click.
func (w *Window) Click() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return pedal.ErrWindowClosed
	}
	x, y := w.centerX, w.centerY
	w.mu.Unlock()

	conn, err := w.newClickConn()
	if err != nil {
		return fmt.Errorf("opening click connection: %w", err)
	}
	defer conn.Close()

	if err := conn.Warp(x, y); err != nil {
		return fmt.Errorf("warping pointer: %w", err)
	}
	conn.Sync()
	if err := conn.Button(true); err != nil {
		return fmt.Errorf("pressing button: %w", err)
	}
	conn.Sync()
	if err := conn.Button(false); err != nil {
		return fmt.Errorf("releasing button: %w", err)
	}
	conn.Sync()
	return nil
}

// Close asks the X server to destroy the window and joins the background
// loop. It is safe to call after the window was already destroyed
// externally; the join is unbounded.
func (w *Window) Close() error {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()

	if running {
		if err := w.destroy(); err != nil {
			return err
		}
	}
	<-w.done
	return nil
}

func (w *Window) destroyViaFreshConn() error {
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("opening close connection: %w", err)
	}
	defer conn.Close()
	xproto.DestroyWindow(conn, w.win)
	conn.Sync()
	return nil
}

// eventLoop owns w.conn. It clears the running flag on every exit path;
// that transition happens exactly once per window.
func (w *Window) eventLoop() {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.done)
		w.conn.Close()
	}()

	for {
		event, xerr := w.conn.WaitForEvent()
		if event == nil && xerr == nil {
			return
		}
		if xerr != nil {
			w.logger.Warn("X11 event error", "err", xerr)
			continue
		}

		switch ev := event.(type) {
		case xproto.ConfigureNotifyEvent:
			if err := w.UpdateMask(ev.Width, ev.Height); err != nil {
				w.logger.Warn("Shape mask update failed", "err", err)
			}
			w.updatePos(ev.X, ev.Y, ev.Width, ev.Height)
		case xproto.DestroyNotifyEvent:
			return
		case xproto.ClientMessageEvent:
			if ev.Format == 32 && xproto.Atom(ev.Data.Data32[0]) == w.deleteAtom {
				xproto.DestroyWindow(w.conn, w.win)
				w.conn.Sync()
				return
			}
		}
	}
}

// applyMask uploads the bitmap into a depth-1 pixmap and installs it as
// both the bounding and the input shape.
func (w *Window) applyMask(b *bitmap) error {
	pixmap, err := xproto.NewPixmapId(w.conn)
	if err != nil {
		return err
	}
	defer xproto.FreePixmap(w.conn, pixmap)

	if err := xproto.CreatePixmapChecked(
		w.conn, 1, pixmap, xproto.Drawable(w.win), b.width, b.height,
	).Check(); err != nil {
		return err
	}

	gc, err := xproto.NewGcontextId(w.conn)
	if err != nil {
		return err
	}
	defer xproto.FreeGC(w.conn, gc)

	if err := xproto.CreateGCChecked(
		w.conn, gc, xproto.Drawable(pixmap),
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{1, 0},
	).Check(); err != nil {
		return err
	}

	if err := xproto.PutImageChecked(
		w.conn, xproto.ImageFormatXYBitmap, xproto.Drawable(pixmap), gc,
		b.width, b.height, 0, 0, 0, 1, b.data,
	).Check(); err != nil {
		return err
	}

	if err := shape.MaskChecked(
		w.conn, shape.SoSet, shape.SkBounding, w.win, 0, 0, pixmap,
	).Check(); err != nil {
		return err
	}
	return shape.MaskChecked(
		w.conn, shape.SoSet, shape.SkInput, w.win, 0, 0, pixmap,
	).Check()
}

func allocPixel(conn *xgb.Conn, screen *xproto.ScreenInfo, color pedal.RGB) (uint32, error) {
	reply, err := xproto.AllocColor(
		conn,
		screen.DefaultColormap,
		uint16(color.R)*257,
		uint16(color.G)*257,
		uint16(color.B)*257,
	).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Pixel, nil
}

type xtestConn struct {
	conn *xgb.Conn
	root xproto.Window
}

func newXTestConn() (clickConn, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, &CapabilityError{Capability: "XTEST", Err: err}
	}
	return &xtestConn{
		conn: conn,
		root: xproto.Setup(conn).DefaultScreen(conn).Root,
	}, nil
}

func (c *xtestConn) Warp(x, y int16) error {
	return xproto.WarpPointerChecked(
		c.conn, xproto.WindowNone, c.root, 0, 0, 0, 0, x, y,
	).Check()
}

func (c *xtestConn) Button(press bool) error {
	eventType := byte(xproto.ButtonRelease)
	if press {
		eventType = byte(xproto.ButtonPress)
	}
	return xtest.FakeInputChecked(
		c.conn, eventType, byte(xproto.ButtonIndex1),
		xproto.TimeCurrentTime, c.root, 0, 0, 0,
	).Check()
}

func (c *xtestConn) Sync() { c.conn.Sync() }

func (c *xtestConn) Close() { c.conn.Close() }
