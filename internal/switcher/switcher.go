// Package switcher moves between virtual desktops, creating missing ones on
// the way and removing the desktop that was left when it ends up empty.
package switcher

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/hyprdesk/internal/desktop"
)

// DefaultSettleDelay is the pause between a switch and the emptiness check of
// the desktop that was left. Compositors tear down asynchronously, so this is
// best-effort only.
const DefaultSettleDelay = 300 * time.Millisecond

// Oracle reports whether a desktop holds no user windows.
type Oracle interface {
	IsDesktopEmpty(index int) (bool, error)
}

// Config holds switcher settings.
type Config struct {
	SettleDelay time.Duration
	// AutoRemove enables removal of the desktop that was left when empty.
	AutoRemove bool
	Logger     *slog.Logger

	// Sleep replaces time.Sleep (tests).
	Sleep func(time.Duration)
}

// Switcher orchestrates desktop switches. It is not safe for concurrent use;
// callers serialize access (see hotkeys.Dispatcher).
type Switcher struct {
	desktops    *desktop.Accessor
	oracle      Oracle
	settleDelay time.Duration
	autoRemove  bool
	sleep       func(time.Duration)
	logger      *slog.Logger

	lastActive    int
	hasLastActive bool
}

// New creates a switcher over the given accessor and oracle.
func New(desktops *desktop.Accessor, oracle Oracle, cfg Config) *Switcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	delay := cfg.SettleDelay
	if delay < 0 {
		delay = 0
	}

	return &Switcher{
		desktops:    desktops,
		oracle:      oracle,
		settleDelay: delay,
		autoRemove:  cfg.AutoRemove,
		sleep:       sleep,
		logger:      logger,
	}
}

// LastActive returns the desktop that was active before the most recent switch.
func (s *Switcher) LastActive() (int, bool) {
	return s.lastActive, s.hasLastActive
}

// Status returns the current desktop index and the desktop count.
func (s *Switcher) Status() (desktop.Status, error) {
	return s.desktops.Status()
}

// SwitchTo activates desktop target, creating desktops up to it when needed.
// After a successful switch away from a desktop other than the first, that
// desktop is removed if it is empty.
func (s *Switcher) SwitchTo(target int) error {
	if target < 0 {
		return fmt.Errorf("%w: desktop %d", desktop.ErrDesktopUnavailable, target+1)
	}

	current, err := s.desktops.CurrentDesktop()
	if err != nil {
		return fmt.Errorf("%w: %v", desktop.ErrSwitchFailed, err)
	}
	count, err := s.desktops.DesktopCount()
	if err != nil {
		return fmt.Errorf("%w: %v", desktop.ErrSwitchFailed, err)
	}

	s.logger.Info("switching desktop", "from", current+1, "to", target+1, "count", count)

	if target >= count {
		if err := s.ensureDesktops(target, count); err != nil {
			return err
		}
	}

	s.lastActive = current
	s.hasLastActive = true

	if err := s.desktops.SwitchDesktop(target); err != nil {
		return err
	}

	last := s.lastActive
	if last == target || last <= 0 || !s.autoRemove {
		return nil
	}

	if s.settleDelay > 0 {
		s.sleep(s.settleDelay)
	}
	if _, err := s.maybeRemoveEmptyDesktop(last); err != nil {
		s.logger.Warn("cleanup skipped", "desktop", last+1, "error", err)
	}
	return nil
}

// ensureDesktops creates target-count+1 desktops so target becomes valid.
func (s *Switcher) ensureDesktops(target, count int) error {
	if !s.desktops.HasLifecycle() {
		return fmt.Errorf("%w: desktop %d does not exist and creation is unavailable",
			desktop.ErrDesktopUnavailable, target+1)
	}

	missing := target - count + 1
	s.logger.Info("creating desktops", "count", missing)
	for i := 0; i < missing; i++ {
		index, err := s.desktops.CreateDesktop()
		if err != nil {
			return fmt.Errorf("%w: desktop %d: %w", desktop.ErrDesktopUnavailable, target+1, err)
		}
		s.logger.Debug("desktop created", "desktop", index+1)
	}
	return nil
}

// maybeRemoveEmptyDesktop removes desktop index when policy allows it and the
// oracle reports it empty. It returns whether the desktop was removed.
// Removal failures are logged and leave the desktop in place.
func (s *Switcher) maybeRemoveEmptyDesktop(index int) (bool, error) {
	count, err := s.desktops.DesktopCount()
	if err != nil {
		return false, err
	}
	if count <= 1 {
		s.logger.Debug("not removing the only desktop")
		return false, nil
	}
	if index == 0 {
		s.logger.Debug("not removing the first desktop")
		return false, nil
	}
	if index >= count {
		return false, nil
	}

	empty, err := s.oracle.IsDesktopEmpty(index)
	if err != nil {
		return false, err
	}
	s.logger.Debug("desktop occupancy", "desktop", index+1, "empty", empty)
	if !empty {
		return false, nil
	}

	fallback := 0
	if index > 0 {
		fallback = index - 1
	}
	if err := s.desktops.RemoveDesktop(index, fallback); err != nil {
		if errors.Is(err, desktop.ErrCapabilityUnavailable) {
			return false, err
		}
		s.logger.Error("failed to remove empty desktop", "desktop", index+1, "error", err)
		return false, nil
	}
	s.logger.Info("removed empty desktop", "desktop", index+1, "fallback", fallback+1)
	return true, nil
}
