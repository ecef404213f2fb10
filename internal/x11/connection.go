package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	closeOnce sync.Once
}

// NewConnection establishes a connection to the X11 server and initializes
// the keybind module required for global grabs.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	keybind.Initialize(xu)

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes a running EventLoop return. The loop only checks its quit flag
// between events, so a client message is sent to a throwaway window we own
// to wake it up.
func (c *Connection) Quit() error {
	xevent.Quit(c.XUtil)

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return fmt.Errorf("failed to allocate wake window: %w", err)
	}
	if err := win.CreateChecked(c.Root, -1, -1, 1, 1, 0); err != nil {
		return fmt.Errorf("failed to create wake window: %w", err)
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win.Id,
		Type:   xproto.AtomNone,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	// An empty event mask delivers the event to the window's creator.
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win.Id,
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// Close disconnects from the X11 server. Safe to call more than once, but not
// while EventLoop is running: xgbutil aborts the process when its blocking
// read sees a closed connection.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.XUtil.Conn().Close()
	})
}
