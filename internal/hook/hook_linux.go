//go:build linux

package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/1broseidon/hyprdesk/internal/config"
	"github.com/1broseidon/hyprdesk/internal/hotkeys"
	"github.com/1broseidon/hyprdesk/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// X11 grabs <mod>-digit and <mod>-Escape on the root window. Passive grabs
// cannot observe the bare modifier, so each grabbed press is reported as a
// modifier-down, key-down, key-up, modifier-up sequence.
type X11 struct {
	conn     *x11.Connection
	modifier config.Modifier
	logger   *slog.Logger
}

var ignoreModsOnce sync.Once

// NewX11 creates an X11 keyboard source on conn. The connection's event loop
// is driven by Run.
func NewX11(conn *x11.Connection, modifier config.Modifier, logger *slog.Logger) *X11 {
	if logger == nil {
		logger = slog.Default()
	}
	return &X11{conn: conn, modifier: modifier, logger: logger}
}

// x11Modifier maps the configured modifier to its keybind name.
func x11Modifier(mod config.Modifier) string {
	switch mod {
	case config.ModAlt:
		return "Mod1"
	case config.ModCtrl:
		return "Control"
	default:
		return "Mod4"
	}
}

type chord struct {
	keysym string
	key    hotkeys.Key
}

// chordKeys lists the grabbed keysyms and the key each one reports.
func chordKeys() []chord {
	keys := make([]chord, 0, 11)
	for d := 0; d <= 9; d++ {
		keys = append(keys, chord{keysym: strconv.Itoa(d), key: hotkeys.DigitKey(d)})
	}
	return append(keys, chord{keysym: "Escape", key: hotkeys.KeyEscape})
}

func (s *X11) Run(ctx context.Context, handler Handler) error {
	if s.conn == nil {
		return fmt.Errorf("%w: no X11 connection", ErrHookInstallFailed)
	}
	xu := s.conn.XUtil
	root := s.conn.Root

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	mod := x11Modifier(s.modifier)
	for _, ck := range chordKeys() {
		key := ck.key
		seq := mod + "-" + ck.keysym
		err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			emitChord(handler, key, uint32(ev.Detail))
		}).Connect(xu, root, seq, true)
		if err != nil {
			keybind.Detach(xu, root)
			return fmt.Errorf("%w: %v", ErrHookInstallFailed, err)
		}
		s.logger.Debug("grabbed chord", "keys", seq)
	}
	defer keybind.Detach(xu, root)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		s.conn.EventLoop()
	}()

	select {
	case <-ctx.Done():
		if err := s.conn.Quit(); err != nil {
			s.logger.Warn("failed to wake X11 event loop", "error", err)
		}
		<-loopDone
		return nil
	case <-loopDone:
		return errors.New("X11 event loop exited unexpectedly")
	}
}

func emitChord(handler Handler, key hotkeys.Key, raw uint32) {
	handler(hotkeys.KeyEvent{Key: hotkeys.KeyModifier, Down: true})
	handler(hotkeys.KeyEvent{Key: key, RawCode: raw, Down: true})
	handler(hotkeys.KeyEvent{Key: key, RawCode: raw, Down: false})
	handler(hotkeys.KeyEvent{Key: hotkeys.KeyModifier, Down: false})
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock and
// ScrollLock state.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the given lock masks, including 0.
func ignoreMasks(base []uint16) []uint16 {
	unique := map[uint16]struct{}{0: {}}
	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		unique[mask] = struct{}{}
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}
	return ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
