//go:build windows

package hook

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/1broseidon/hyprdesk/internal/config"
	"github.com/1broseidon/hyprdesk/internal/hotkeys"
	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPeekMessage         = user32.NewProc("PeekMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	hcAction     = 0

	wmQuit       = 0x0012
	wmUser       = 0x0400
	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104
	pmNoRemove   = 0x0000
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// activeHook is the target the low-level hook procedure reports to.
// Callbacks from NewCallback are never released, so the procedure is created
// once and only its target changes between runs.
type activeHook struct {
	handler  Handler
	modifier config.Modifier
}

var (
	current      atomic.Pointer[activeHook]
	callbackOnce sync.Once
	hookCallback uintptr
)

// Windows installs a WH_KEYBOARD_LL hook on a dedicated locked OS thread.
type Windows struct {
	modifier config.Modifier
	logger   *slog.Logger
}

func NewWindows(modifier config.Modifier, logger *slog.Logger) *Windows {
	if logger == nil {
		logger = slog.Default()
	}
	return &Windows{modifier: modifier, logger: logger}
}

func keyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) == hcAction {
		if h := current.Load(); h != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			ev := hotkeys.KeyEvent{
				Key:     hotkeys.TranslateVK(kb.VkCode, h.modifier),
				RawCode: kb.VkCode,
				Down:    wParam == wmKeyDown || wParam == wmSysKeyDown,
			}
			if h.handler(ev) {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func (s *Windows) Run(ctx context.Context, handler Handler) error {
	callbackOnce.Do(func() {
		hookCallback = windows.NewCallback(keyboardProc)
	})

	type installResult struct {
		threadID uint32
		err      error
	}
	installed := make(chan installResult, 1)
	loopDone := make(chan struct{})

	go func() {
		defer close(loopDone)
		// The hook is bound to the installing thread's message queue.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		threadID := windows.GetCurrentThreadId()

		// Create the thread's message queue before anyone posts to it.
		var m msg
		procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, wmUser, wmUser, pmNoRemove)

		module, _, _ := procGetModuleHandle.Call(0)
		current.Store(&activeHook{handler: handler, modifier: s.modifier})
		handle, _, callErr := procSetWindowsHookEx.Call(whKeyboardLL, hookCallback, module, 0)
		if handle == 0 {
			current.Store(nil)
			installed <- installResult{err: fmt.Errorf("%w: SetWindowsHookExW: %v", ErrHookInstallFailed, callErr)}
			return
		}
		defer func() {
			procUnhookWindowsHookEx.Call(handle)
			current.Store(nil)
		}()
		installed <- installResult{threadID: threadID}

		for {
			ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			// 0 is WM_QUIT, -1 is an error.
			if ret == 0 || int32(ret) == -1 {
				return
			}
		}
	}()

	res := <-installed
	if res.err != nil {
		<-loopDone
		return res.err
	}
	s.logger.Debug("keyboard hook installed", "thread", res.threadID)

	select {
	case <-ctx.Done():
		procPostThreadMessage.Call(uintptr(res.threadID), wmQuit, 0, 0)
		<-loopDone
		s.logger.Debug("keyboard hook removed")
		return nil
	case <-loopDone:
		return fmt.Errorf("keyboard message loop exited unexpectedly")
	}
}
