package desktop

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendLoadFailed means the backend library or one of its mandatory
	// entry points could not be resolved.
	ErrBackendLoadFailed = errors.New("desktop backend load failed")

	// ErrCapabilityUnavailable means an optional backend operation is missing.
	ErrCapabilityUnavailable = errors.New("desktop capability unavailable")

	ErrCreateUnavailable = fmt.Errorf("%w: create desktop", ErrCapabilityUnavailable)
	ErrRemoveUnavailable = fmt.Errorf("%w: remove desktop", ErrCapabilityUnavailable)

	ErrSwitchFailed = errors.New("desktop switch failed")
	ErrCreateFailed = errors.New("desktop create failed")
	ErrRemoveFailed = errors.New("desktop remove failed")

	// ErrDesktopUnavailable means the requested desktop does not exist and
	// could not be created.
	ErrDesktopUnavailable = errors.New("desktop unavailable")
)

// WindowID is a platform-neutral top-level window handle (HWND on Windows,
// X11 window id on Linux).
type WindowID uintptr

// Status is a snapshot of the virtual desktop sequence.
type Status struct {
	Current int
	Count   int
}

// Backend is the mandatory part of a virtual desktop implementation.
// Indices are zero-based and dense: valid range is [0, DesktopCount()).
type Backend interface {
	CurrentDesktop() (int, error)
	DesktopCount() (int, error)
	SwitchDesktop(index int) error
}

// Lifecycle is the optional part of a backend. It is available as a unit:
// either all three operations work or the backend offers none of them.
type Lifecycle interface {
	CreateDesktop() (int, error)
	RemoveDesktop(target, fallback int) error
	IsWindowOnDesktop(window WindowID, index int) (bool, error)
}

// LifecycleProvider is implemented by backends whose optional operations are
// only known at runtime (e.g. symbols probed from a loaded library).
type LifecycleProvider interface {
	Lifecycle() (Lifecycle, bool)
}

// Accessor is the validated capability set every caller goes through.
type Accessor struct {
	backend   Backend
	lifecycle Lifecycle
}

// NewAccessor validates a backend once and detects its optional operations.
func NewAccessor(backend Backend) (*Accessor, error) {
	if backend == nil {
		return nil, fmt.Errorf("%w: no backend", ErrBackendLoadFailed)
	}

	a := &Accessor{backend: backend}
	if p, ok := backend.(LifecycleProvider); ok {
		if lc, ok := p.Lifecycle(); ok && lc != nil {
			a.lifecycle = lc
		}
	} else if lc, ok := backend.(Lifecycle); ok {
		a.lifecycle = lc
	}
	return a, nil
}

// HasLifecycle reports whether create/remove/window-association are available.
func (a *Accessor) HasLifecycle() bool {
	return a.lifecycle != nil
}

func (a *Accessor) CurrentDesktop() (int, error) {
	n, err := a.backend.CurrentDesktop()
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return n, nil
}

func (a *Accessor) DesktopCount() (int, error) {
	n, err := a.backend.DesktopCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return n, nil
}

// Status returns the current desktop and the desktop count.
func (a *Accessor) Status() (Status, error) {
	current, err := a.CurrentDesktop()
	if err != nil {
		return Status{}, err
	}
	count, err := a.DesktopCount()
	if err != nil {
		return Status{}, err
	}
	return Status{Current: current, Count: count}, nil
}

// SwitchDesktop activates desktop index. Out of range indices fail without
// reaching the backend.
func (a *Accessor) SwitchDesktop(index int) error {
	count, err := a.DesktopCount()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSwitchFailed, err)
	}
	if index < 0 || index >= count {
		return fmt.Errorf("%w: desktop %d out of range (count %d)", ErrSwitchFailed, index+1, count)
	}
	if err := a.backend.SwitchDesktop(index); err != nil {
		return fmt.Errorf("%w: desktop %d: %v", ErrSwitchFailed, index+1, err)
	}
	return nil
}

// CreateDesktop appends a desktop and returns its index.
func (a *Accessor) CreateDesktop() (int, error) {
	if a.lifecycle == nil {
		return 0, ErrCreateUnavailable
	}
	index, err := a.lifecycle.CreateDesktop()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}
	return index, nil
}

// RemoveDesktop deletes target, moving its windows to fallback.
func (a *Accessor) RemoveDesktop(target, fallback int) error {
	if a.lifecycle == nil {
		return ErrRemoveUnavailable
	}
	if err := a.lifecycle.RemoveDesktop(target, fallback); err != nil {
		return fmt.Errorf("%w: desktop %d: %v", ErrRemoveFailed, target+1, err)
	}
	return nil
}

// IsWindowOnDesktop reports whether window belongs to desktop index.
func (a *Accessor) IsWindowOnDesktop(window WindowID, index int) (bool, error) {
	if a.lifecycle == nil {
		return false, fmt.Errorf("%w: window desktop lookup", ErrCapabilityUnavailable)
	}
	return a.lifecycle.IsWindowOnDesktop(window, index)
}
