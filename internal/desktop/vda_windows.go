//go:build windows

package desktop

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// DefaultLibrary is the VirtualDesktopAccessor build shipped next to the binary.
const DefaultLibrary = "VirtualDesktopAccessor.dll"

// VDA exported symbols return -1 on failure.
const vdaFailure = -1

// VDA is a Backend backed by VirtualDesktopAccessor.dll.
type VDA struct {
	dll *windows.LazyDLL

	goToDesktopNumber       *windows.LazyProc
	getCurrentDesktopNumber *windows.LazyProc
	getDesktopCount         *windows.LazyProc

	// Windows 11 only; nil when the symbol is missing.
	createDesktop           *windows.LazyProc
	removeDesktop           *windows.LazyProc
	isWindowOnDesktopNumber *windows.LazyProc

	missing []string
}

var _ Backend = (*VDA)(nil)
var _ LifecycleProvider = (*VDA)(nil)

// LoadVDA loads the library at path and resolves its exports. A missing
// mandatory export fails with ErrBackendLoadFailed; missing optional exports
// are recorded and reported by MissingCapabilities.
func LoadVDA(path string) (*VDA, error) {
	if path == "" {
		path = DefaultLibrary
	}

	dll := windows.NewLazyDLL(path)
	if err := dll.Load(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBackendLoadFailed, path, err)
	}

	v := &VDA{dll: dll}

	mandatory := func(name string) (*windows.LazyProc, error) {
		proc := dll.NewProc(name)
		if err := proc.Find(); err != nil {
			return nil, fmt.Errorf("%w: function %q not found in %s", ErrBackendLoadFailed, name, path)
		}
		return proc, nil
	}
	optional := func(name string) *windows.LazyProc {
		proc := dll.NewProc(name)
		if err := proc.Find(); err != nil {
			v.missing = append(v.missing, name)
			return nil
		}
		return proc
	}

	var err error
	if v.goToDesktopNumber, err = mandatory("GoToDesktopNumber"); err != nil {
		return nil, err
	}
	if v.getCurrentDesktopNumber, err = mandatory("GetCurrentDesktopNumber"); err != nil {
		return nil, err
	}
	if v.getDesktopCount, err = mandatory("GetDesktopCount"); err != nil {
		return nil, err
	}

	v.createDesktop = optional("CreateDesktop")
	v.removeDesktop = optional("RemoveDesktop")
	v.isWindowOnDesktopNumber = optional("IsWindowOnDesktopNumber")

	return v, nil
}

// MissingCapabilities lists optional exports that could not be resolved.
func (v *VDA) MissingCapabilities() []string {
	return append([]string(nil), v.missing...)
}

func (v *VDA) CurrentDesktop() (int, error) {
	r, _, _ := v.getCurrentDesktopNumber.Call()
	n := int(int32(r))
	if n == vdaFailure {
		return 0, fmt.Errorf("GetCurrentDesktopNumber returned %d", vdaFailure)
	}
	return n, nil
}

func (v *VDA) DesktopCount() (int, error) {
	r, _, _ := v.getDesktopCount.Call()
	n := int(int32(r))
	if n == vdaFailure {
		return 0, fmt.Errorf("GetDesktopCount returned %d", vdaFailure)
	}
	return n, nil
}

func (v *VDA) SwitchDesktop(index int) error {
	r, _, _ := v.goToDesktopNumber.Call(uintptr(index))
	if int32(r) == vdaFailure {
		return fmt.Errorf("GoToDesktopNumber(%d) returned %d", index, vdaFailure)
	}
	return nil
}

// Lifecycle returns the optional operations when all three exports resolved.
func (v *VDA) Lifecycle() (Lifecycle, bool) {
	if v.createDesktop == nil || v.removeDesktop == nil || v.isWindowOnDesktopNumber == nil {
		return nil, false
	}
	return vdaLifecycle{v}, true
}

type vdaLifecycle struct {
	v *VDA
}

func (l vdaLifecycle) CreateDesktop() (int, error) {
	r, _, _ := l.v.createDesktop.Call()
	n := int(int32(r))
	if n == vdaFailure {
		return 0, fmt.Errorf("CreateDesktop returned %d", vdaFailure)
	}
	return n, nil
}

func (l vdaLifecycle) RemoveDesktop(target, fallback int) error {
	r, _, _ := l.v.removeDesktop.Call(uintptr(target), uintptr(fallback))
	if int32(r) == vdaFailure {
		return fmt.Errorf("RemoveDesktop(%d, %d) returned %d", target, fallback, vdaFailure)
	}
	return nil
}

// IsWindowOnDesktop treats every result other than 1 as "not on desktop";
// the library also returns -1 for windows it cannot attribute.
func (l vdaLifecycle) IsWindowOnDesktop(window WindowID, index int) (bool, error) {
	r, _, _ := l.v.isWindowOnDesktopNumber.Call(uintptr(window), uintptr(index))
	return int32(r) == 1, nil
}
