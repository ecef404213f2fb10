// Package hook installs a process-wide keyboard source and feeds its events
// to a Handler.
package hook

import (
	"context"
	"errors"

	"github.com/1broseidon/hyprdesk/internal/hotkeys"
)

// ErrHookInstallFailed means the OS refused to install the keyboard hook or
// the key grabs. The daemon cannot work without it.
var ErrHookInstallFailed = errors.New("keyboard hook install failed")

// Handler receives every key event the source observes and reports whether
// the event is consumed. It runs on the source's thread and must not block.
type Handler func(hotkeys.KeyEvent) bool

// Source is a global keyboard event source.
type Source interface {
	// Run installs the hook, delivers events to handler until ctx is
	// cancelled, and uninstalls the hook before returning.
	Run(ctx context.Context, handler Handler) error
}

// Func adapts a function to Source.
type Func func(ctx context.Context, handler Handler) error

func (f Func) Run(ctx context.Context, handler Handler) error {
	return f(ctx, handler)
}

// Replay is a Source that feeds a fixed sequence of events and then waits for
// ctx. It backs dry runs and tests of the dispatch path.
type Replay struct {
	Events []hotkeys.KeyEvent
	// Consumed receives the handler's decision per event when non-nil.
	Consumed []bool
}

func (r *Replay) Run(ctx context.Context, handler Handler) error {
	r.Consumed = r.Consumed[:0]
	for _, ev := range r.Events {
		if ctx.Err() != nil {
			return nil
		}
		r.Consumed = append(r.Consumed, handler(ev))
	}
	<-ctx.Done()
	return nil
}
