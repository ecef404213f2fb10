package runtimepath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve(t *testing.T) {
	existing := t.TempDir()
	missing := filepath.Join(existing, "missing")
	file := filepath.Join(existing, "file")
	if err := os.WriteFile(file, nil, 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		xdg        string
		runUser    string
		wantDir    string
		wantCreate bool
	}{
		{"xdg wins", "/xdg", existing, "/xdg", false},
		{"run user dir", "", existing, existing, false},
		{"run user missing", "", missing, "/fallback", true},
		{"run user is a file", "", file, "/fallback", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, create := resolve(tt.xdg, tt.runUser, "/fallback")
			if dir != tt.wantDir || create != tt.wantCreate {
				t.Fatalf("resolve() = (%q, %v), want (%q, %v)", dir, create, tt.wantDir, tt.wantCreate)
			}
		})
	}
}

func TestSocketPathUnderXDGRuntimeDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	if err != nil {
		t.Fatalf("SocketPath() error: %v", err)
	}
	if want := filepath.Join(td, SocketName); socket != want {
		t.Fatalf("SocketPath() = %q, want %q", socket, want)
	}
}
