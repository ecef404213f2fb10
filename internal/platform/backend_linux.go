//go:build linux

package platform

import (
	"fmt"
	"time"

	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/hook"
	"github.com/1broseidon/hyprdesk/internal/occupancy"
	"github.com/1broseidon/hyprdesk/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// countSettleTimeout bounds how long create/remove wait for the window manager
// to publish the new _NET_NUMBER_OF_DESKTOPS.
const countSettleTimeout = time.Second

// LinuxBackend drives EWMH virtual desktops over an X11 connection.
type LinuxBackend struct {
	conn *x11.Connection
}

var (
	_ desktop.Backend        = (*LinuxBackend)(nil)
	_ desktop.Lifecycle      = (*LinuxBackend)(nil)
	_ occupancy.WindowSource = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a backend on an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// Open connects to the X server and checks that the window manager exposes
// EWMH desktops.
func Open(opts Options) (*Native, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to X11: %v", desktop.ErrBackendLoadFailed, err)
	}

	b := NewLinuxBackend(conn)
	if _, err := b.DesktopCount(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: window manager does not publish EWMH desktops: %v", desktop.ErrBackendLoadFailed, err)
	}

	return &Native{
		Backend:  b,
		Windows:  b,
		Keyboard: hook.NewX11(conn, opts.Modifier, opts.logger()),
		close:    conn.Close,
	}, nil
}

func (b *LinuxBackend) CurrentDesktop() (int, error) {
	return b.conn.GetCurrentDesktop()
}

func (b *LinuxBackend) DesktopCount() (int, error) {
	return b.conn.GetDesktopCount()
}

func (b *LinuxBackend) SwitchDesktop(index int) error {
	return b.conn.SetCurrentDesktop(index)
}

// CreateDesktop appends a desktop and returns its index.
func (b *LinuxBackend) CreateDesktop() (int, error) {
	count, err := b.conn.GetDesktopCount()
	if err != nil {
		return 0, err
	}
	if err := b.conn.SetDesktopCount(count + 1); err != nil {
		return 0, err
	}
	if err := b.waitForCount(count + 1); err != nil {
		return 0, err
	}
	return count, nil
}

// RemoveDesktop moves windows off target, renumbers the desktops above it and
// drops the last desktop.
func (b *LinuxBackend) RemoveDesktop(target, fallback int) error {
	count, err := b.conn.GetDesktopCount()
	if err != nil {
		return err
	}
	if target < 0 || target >= count || count <= 1 {
		return fmt.Errorf("cannot remove desktop %d of %d", target, count)
	}

	ids, err := b.conn.WindowIDs()
	if err != nil {
		return err
	}
	for _, id := range ids {
		d, err := b.conn.GetWindowDesktop(id)
		if err != nil || d == x11.StickyDesktop {
			continue
		}
		if moved, ok := shiftedDesktop(d, target, fallback); ok {
			if err := b.conn.SetWindowDesktop(id, moved); err != nil {
				return fmt.Errorf("failed to move window %d: %w", id, err)
			}
		}
	}

	current, err := b.conn.GetCurrentDesktop()
	if err != nil {
		return err
	}
	if moved, ok := shiftedDesktop(current, target, fallback); ok {
		if err := b.conn.SetCurrentDesktop(moved); err != nil {
			return err
		}
	}

	if err := b.conn.SetDesktopCount(count - 1); err != nil {
		return err
	}
	return b.waitForCount(count - 1)
}

// IsWindowOnDesktop reports whether window is on desktop index. Sticky
// windows are on every desktop and therefore on none in particular.
func (b *LinuxBackend) IsWindowOnDesktop(window desktop.WindowID, index int) (bool, error) {
	d, err := b.conn.GetWindowDesktop(xproto.Window(window))
	if err != nil {
		return false, err
	}
	return d == index, nil
}

// EachWindow visits managed client windows until visit returns false.
func (b *LinuxBackend) EachWindow(visit func(occupancy.Window) bool) error {
	windows, err := b.conn.ClientWindows()
	if err != nil {
		return err
	}
	for _, w := range windows {
		if !visit(occupancy.Window{
			ID:      desktop.WindowID(w.ID),
			Visible: w.Visible,
			Title:   w.Title,
			Class:   w.Class,
		}) {
			return nil
		}
	}
	return nil
}

func (b *LinuxBackend) waitForCount(want int) error {
	deadline := time.Now().Add(countSettleTimeout)
	for {
		count, err := b.conn.GetDesktopCount()
		if err == nil && count == want {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("window manager did not apply desktop count %d (have %d)", want, count)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// shiftedDesktop returns where a window on desktop d belongs once target is
// removed: windows on target go to fallback, windows above it move down one.
func shiftedDesktop(d, target, fallback int) (int, bool) {
	switch {
	case d == target:
		if fallback > target {
			fallback--
		}
		return fallback, true
	case d > target:
		return d - 1, true
	default:
		return d, false
	}
}
