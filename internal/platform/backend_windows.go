//go:build windows

package platform

import (
	"strings"
	"sync"
	"unsafe"

	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/hook"
	"github.com/1broseidon/hyprdesk/internal/occupancy"
	"golang.org/x/sys/windows"
)

// Open loads VirtualDesktopAccessor and prepares the Win32 window and
// keyboard sources.
func Open(opts Options) (*Native, error) {
	library := opts.Library
	if library == "" {
		library = desktop.DefaultLibrary
	}
	vda, err := desktop.LoadVDA(library)
	if err != nil {
		return nil, err
	}
	return &Native{
		Backend:  vda,
		Windows:  win32Windows{},
		Keyboard: hook.NewWindows(opts.Modifier, opts.logger()),
	}, nil
}

// nameBufferLen caps class names and titles; longer values are truncated,
// which only matters for substring matches near the end.
const nameBufferLen = 256

var (
	user32             = windows.NewLazySystemDLL("user32.dll")
	procGetWindowTextW = user32.NewProc("GetWindowTextW")

	enumOnce     sync.Once
	enumCallback uintptr
	// enumMu serializes EnumWindows calls so the shared callback has a
	// single visitor.
	enumMu    sync.Mutex
	enumVisit func(occupancy.Window) bool
)

// win32Windows enumerates top-level windows with EnumWindows.
type win32Windows struct{}

func enumWindowsProc(hwnd windows.HWND, _ uintptr) uintptr {
	if enumVisit == nil {
		return 0
	}
	if enumVisit(describeWindow(hwnd)) {
		return 1
	}
	return 0
}

func (win32Windows) EachWindow(visit func(occupancy.Window) bool) error {
	enumOnce.Do(func() {
		enumCallback = windows.NewCallback(enumWindowsProc)
	})

	enumMu.Lock()
	defer enumMu.Unlock()

	stopped := false
	enumVisit = func(w occupancy.Window) bool {
		if !visit(w) {
			stopped = true
			return false
		}
		return true
	}
	defer func() { enumVisit = nil }()

	err := windows.EnumWindows(enumCallback, nil)
	if stopped {
		// EnumWindows reports an early stop as a failure.
		return nil
	}
	return err
}

func describeWindow(hwnd windows.HWND) occupancy.Window {
	w := occupancy.Window{
		ID:      desktop.WindowID(hwnd),
		Visible: windows.IsWindowVisible(hwnd),
	}

	class := make([]uint16, nameBufferLen)
	if n, err := windows.GetClassName(hwnd, &class[0], int32(len(class))); err == nil && n > 0 {
		w.Class = windows.UTF16ToString(class[:n])
	}

	title := make([]uint16, nameBufferLen)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&title[0])), uintptr(len(title)))
	if n > 0 {
		w.Title = strings.TrimSpace(windows.UTF16ToString(title[:n]))
	}
	return w
}
