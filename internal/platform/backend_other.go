//go:build !linux && !windows

package platform

import (
	"fmt"
	"runtime"

	"github.com/1broseidon/hyprdesk/internal/desktop"
)

// Open reports that no virtual desktop backend exists for this OS.
func Open(opts Options) (*Native, error) {
	return nil, fmt.Errorf("%w: unsupported platform %s", desktop.ErrBackendLoadFailed, runtime.GOOS)
}
