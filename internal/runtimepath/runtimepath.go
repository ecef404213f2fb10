// Package runtimepath locates the per-user directory holding the daemon socket.
package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketName is the daemon socket file name inside Dir.
const SocketName = "hyprdesk.sock"

// Dir returns the runtime directory, trying in order XDG_RUNTIME_DIR,
// /run/user/<uid>, then FallbackDir (created 0700 when missing).
func Dir() (string, error) {
	dir, create := resolve(os.Getenv("XDG_RUNTIME_DIR"), fmt.Sprintf("/run/user/%d", os.Getuid()), FallbackDir())
	if create {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create runtime dir: %w", err)
		}
	}
	return dir, nil
}

// resolve picks the runtime directory. create is set when the fallback was
// chosen and may not exist yet.
func resolve(xdg, runUser, fallback string) (dir string, create bool) {
	if xdg != "" {
		return xdg, false
	}
	if info, err := os.Stat(runUser); err == nil && info.IsDir() {
		return runUser, false
	}
	return fallback, true
}

// FallbackDir is the per-user directory under the system temp dir. On
// Windows the uid is -1, which still yields a stable name.
func FallbackDir() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("hyprdesk-runtime-%d", os.Getuid()))
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SocketName), nil
}
