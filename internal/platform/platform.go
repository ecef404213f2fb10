// Package platform opens the native desktop backend, window source and
// keyboard source for the running OS.
package platform

import (
	"log/slog"

	"github.com/1broseidon/hyprdesk/internal/config"
	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/hook"
	"github.com/1broseidon/hyprdesk/internal/occupancy"
)

// Options configures Open.
type Options struct {
	// Library is the desktop backend library path (Windows only).
	Library  string
	Modifier config.Modifier
	Logger   *slog.Logger
}

// Native bundles the OS-specific collaborators the daemon wires together.
type Native struct {
	Backend  desktop.Backend
	Windows  occupancy.WindowSource
	Keyboard hook.Source

	close func()
}

// Close releases OS resources. Call it only after Keyboard.Run has returned.
func (n *Native) Close() {
	if n != nil && n.close != nil {
		n.close()
	}
}

// MissingCapabilities lists optional backend operations that could not be
// resolved, when the backend reports them.
func (n *Native) MissingCapabilities() []string {
	type reporter interface {
		MissingCapabilities() []string
	}
	if r, ok := n.Backend.(reporter); ok {
		return r.MissingCapabilities()
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
