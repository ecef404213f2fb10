package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Modifier names the key that must be held for desktop chords.
type Modifier string

const (
	ModSuper Modifier = "super" // Win on Windows, Mod4 on X11
	ModAlt   Modifier = "alt"
	ModCtrl  Modifier = "ctrl"
)

const (
	DefaultSettleDelayMS = 300
	MaxSettleDelayMS     = 5000
	DefaultBackendLib    = "VirtualDesktopAccessor.dll"
)

// Config is the effective hyprdesk configuration.
type Config struct {
	// Modifier is the chord key: super, alt or ctrl.
	Modifier Modifier `yaml:"modifier"`
	// SettleDelayMS is how long to wait after a switch before checking whether
	// the desktop that was left is empty. Best-effort, not a guarantee.
	SettleDelayMS int `yaml:"settle_delay_ms"`
	// AutoRemoveEmpty removes the desktop that was left when it has no windows.
	AutoRemoveEmpty bool `yaml:"auto_remove_empty"`
	// BackendLibrary is the VirtualDesktopAccessor DLL path (Windows only).
	BackendLibrary string `yaml:"backend_library"`
	// IgnoredWindowClasses extends the built-in class denylist used when
	// deciding whether a desktop is empty.
	IgnoredWindowClasses []string `yaml:"ignored_window_classes,omitempty"`
	// Notifications shows desktop notifications for the status chord and
	// failed switches.
	Notifications bool `yaml:"notifications"`
	// IPC enables the local control socket used by status/switch/mcp.
	IPC      bool   `yaml:"ipc"`
	LogLevel string `yaml:"log_level"`
}

// ValidationError points at the offending config key.
type ValidationError struct {
	Path string
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Modifier:        ModSuper,
		SettleDelayMS:   DefaultSettleDelayMS,
		AutoRemoveEmpty: true,
		BackendLibrary:  DefaultBackendLib,
		Notifications:   false,
		IPC:             true,
		LogLevel:        "info",
	}
}

// Validate checks the effective config.
func (c *Config) Validate() error {
	switch c.Modifier {
	case ModSuper, ModAlt, ModCtrl:
	default:
		return &ValidationError{Path: "modifier", Err: fmt.Errorf("modifier must be one of: super, alt, ctrl")}
	}
	if c.SettleDelayMS < 0 || c.SettleDelayMS > MaxSettleDelayMS {
		return &ValidationError{Path: "settle_delay_ms", Err: fmt.Errorf("settle_delay_ms must be between 0 and %d", MaxSettleDelayMS)}
	}
	if strings.TrimSpace(c.BackendLibrary) == "" {
		return &ValidationError{Path: "backend_library", Err: fmt.Errorf("backend_library must not be empty")}
	}
	for i, class := range c.IgnoredWindowClasses {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: fmt.Sprintf("ignored_window_classes[%d]", i), Err: fmt.Errorf("class name must not be empty")}
		}
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// SettleDelay returns SettleDelayMS as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
