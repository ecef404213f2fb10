// Package occupancy decides whether a virtual desktop still holds any window
// a user would care about.
package occupancy

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/hyprdesk/internal/desktop"
)

// ErrEnumerationUncertain means emptiness could not be determined. Callers
// must treat the desktop as occupied.
var ErrEnumerationUncertain = errors.New("desktop occupancy uncertain")

// DefaultIgnoredClasses are shell surfaces present on every desktop.
var DefaultIgnoredClasses = []string{
	"Shell_TrayWnd",        // taskbar
	"DV2ControlHost",       // drag-and-drop visual host
	"ForegroundStaging",    // foreground transition host
	"ApplicationFrameHost", // UWP frame host
}

// Window describes one top-level window as reported by the OS.
type Window struct {
	ID      desktop.WindowID
	Visible bool
	Title   string
	Class   string
}

// WindowSource enumerates top-level windows. Enumeration stops as soon as
// visit returns false.
type WindowSource interface {
	EachWindow(visit func(Window) bool) error
}

// Locator answers window-to-desktop association queries.
type Locator interface {
	HasLifecycle() bool
	IsWindowOnDesktop(window desktop.WindowID, index int) (bool, error)
}

// Config holds oracle settings.
type Config struct {
	// IgnoredClasses extends DefaultIgnoredClasses.
	IgnoredClasses []string
	Logger         *slog.Logger
}

// Oracle reports desktop emptiness.
type Oracle struct {
	windows WindowSource
	locator Locator
	ignored []string
	logger  *slog.Logger
}

// New creates an oracle over the given window source and locator.
func New(windows WindowSource, locator Locator, cfg Config) *Oracle {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ignored := make([]string, 0, len(DefaultIgnoredClasses)+len(cfg.IgnoredClasses))
	ignored = append(ignored, DefaultIgnoredClasses...)
	for _, class := range cfg.IgnoredClasses {
		if class = strings.TrimSpace(class); class != "" {
			ignored = append(ignored, class)
		}
	}

	return &Oracle{
		windows: windows,
		locator: locator,
		ignored: ignored,
		logger:  logger,
	}
}

// Counts reports whether w passes the visibility, title and class filters.
func (o *Oracle) Counts(w Window) bool {
	if !w.Visible {
		return false
	}
	if strings.TrimSpace(w.Title) == "" {
		return false
	}
	for _, class := range o.ignored {
		if strings.Contains(w.Class, class) {
			return false
		}
	}
	return true
}

// IsDesktopEmpty reports whether no counted window lives on desktop index.
// Whenever the answer is not known it returns false with an error wrapping
// ErrEnumerationUncertain.
func (o *Oracle) IsDesktopEmpty(index int) (bool, error) {
	if o.locator == nil || !o.locator.HasLifecycle() {
		return false, fmt.Errorf("%w: %w", ErrEnumerationUncertain, desktop.ErrCapabilityUnavailable)
	}
	if o.windows == nil {
		return false, fmt.Errorf("%w: no window source", ErrEnumerationUncertain)
	}

	occupied := false
	var lookupErr error
	err := o.windows.EachWindow(func(w Window) bool {
		if !o.Counts(w) {
			return true
		}
		on, err := o.locator.IsWindowOnDesktop(w.ID, index)
		if err != nil {
			lookupErr = err
			return false
		}
		if on {
			o.logger.Debug("desktop occupied", "desktop", index+1, "window", w.Title, "class", w.Class)
			occupied = true
			return false
		}
		return true
	})

	if occupied {
		return false, nil
	}
	if lookupErr != nil {
		return false, fmt.Errorf("%w: %v", ErrEnumerationUncertain, lookupErr)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrEnumerationUncertain, err)
	}
	return true, nil
}
