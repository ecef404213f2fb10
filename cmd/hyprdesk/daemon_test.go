package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/1broseidon/hyprdesk/internal/hotkeys"
	"github.com/1broseidon/hyprdesk/internal/ipc"
)

type stubExecutor struct{}

func (stubExecutor) Do(ctx context.Context, intent hotkeys.Intent) (hotkeys.Result, error) {
	return hotkeys.Result{}, nil
}

func TestStartIPC_SecondDaemonGetsAlreadyRunning(t *testing.T) {
	cfg := ipc.ServerConfig{
		SocketPath: filepath.Join(t.TempDir(), "hyprdesk.sock"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	stop, err := startIPC(stubExecutor{}, cfg)
	if err != nil {
		t.Fatalf("first startIPC: %v", err)
	}
	defer stop()

	if _, err := startIPC(stubExecutor{}, cfg); !errors.Is(err, ipc.ErrAlreadyRunning) {
		t.Fatalf("second startIPC error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStartIPC_OtherFailuresAreNotFatal(t *testing.T) {
	cfg := ipc.ServerConfig{
		SocketPath: filepath.Join(t.TempDir(), "missing", "dir", "hyprdesk.sock"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	stop, err := startIPC(stubExecutor{}, cfg)
	if err != nil {
		t.Fatalf("startIPC error = %v, want nil", err)
	}
	stop()
}
