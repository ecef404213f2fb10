package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/hyprdesk/internal/config"
	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/hook"
	"github.com/1broseidon/hyprdesk/internal/hotkeys"
	"github.com/1broseidon/hyprdesk/internal/ipc"
	"github.com/1broseidon/hyprdesk/internal/notify"
	"github.com/1broseidon/hyprdesk/internal/occupancy"
	"github.com/1broseidon/hyprdesk/internal/platform"
	"github.com/1broseidon/hyprdesk/internal/switcher"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/hyprdesk/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hyprdesk daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Intercept desktop chords and manage virtual desktops (foreground).")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (modifier: %s, settle delay: %v, auto-remove: %v)",
		cfg.Modifier, cfg.SettleDelay(), cfg.AutoRemoveEmpty)

	logger := newLogger(cfg)

	native, err := platform.Open(platform.Options{
		Library:  cfg.BackendLibrary,
		Modifier: cfg.Modifier,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to load desktop backend: %v", err)
	}
	defer native.Close()

	desktops, err := desktop.NewAccessor(native.Backend)
	if err != nil {
		log.Fatalf("Failed to load desktop backend: %v", err)
	}
	for _, name := range native.MissingCapabilities() {
		logger.Warn("desktop capability unavailable", "export", name)
	}

	oracle := occupancy.New(native.Windows, desktops, occupancy.Config{
		IgnoredClasses: cfg.IgnoredWindowClasses,
		Logger:         logger,
	})
	sw := switcher.New(desktops, oracle, switcher.Config{
		SettleDelay: cfg.SettleDelay(),
		AutoRemove:  cfg.AutoRemoveEmpty,
		Logger:      logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := hotkeys.NewDispatcher(sw, hotkeys.NewMachine(), hotkeys.DispatcherConfig{
		Quit:     cancel,
		Notifier: notify.New(cfg.Notifications),
		Logger:   logger,
	})
	go dispatcher.Run(ctx)

	if cfg.IPC {
		stopIPC, err := startIPC(dispatcher, ipc.ServerConfig{
			LifecycleAvailable: desktops.HasLifecycle(),
			Logger:             logger,
		})
		if err != nil {
			log.Printf("Failed to start: %v", err)
			return 1
		}
		defer stopIPC()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Println("Shutting down hyprdesk daemon...")
			cancel()
		case <-ctx.Done():
		}
	}()

	status, statusErr := desktops.Status()
	if statusErr != nil {
		logger.Warn("could not read desktop status", "error", statusErr)
	}
	printBanner(os.Stdout, cfg.Modifier, status, desktops.HasLifecycle())

	if err := native.Keyboard.Run(ctx, dispatcher.HandleKey); err != nil {
		if errors.Is(err, hook.ErrHookInstallFailed) {
			log.Printf("Failed to install keyboard hook: %v", err)
			return 1
		}
		log.Printf("Keyboard hook stopped: %v", err)
		return 1
	}

	log.Println("hyprdesk daemon stopped")
	return 0
}

// startIPC starts the control socket. Only ErrAlreadyRunning is returned;
// other failures leave the daemon running without IPC.
func startIPC(exec ipc.Executor, cfg ipc.ServerConfig) (stop func(), err error) {
	server, err := ipc.NewServer(exec, cfg)
	if errors.Is(err, ipc.ErrAlreadyRunning) {
		return nil, err
	}
	if err == nil {
		err = server.Start()
	}
	if err != nil {
		log.Printf("Warning: IPC disabled: %v", err)
		return func() {}, nil
	}
	return server.Stop, nil
}

// chordLabel is the user-facing name of the modifier key.
func chordLabel(mod config.Modifier) string {
	switch mod {
	case config.ModAlt:
		return "Alt"
	case config.ModCtrl:
		return "Ctrl"
	default:
		return "Super"
	}
}

func printBanner(w io.Writer, mod config.Modifier, st desktop.Status, lifecycle bool) {
	key := chordLabel(mod)
	fmt.Fprintln(w, "hyprdesk running")
	if st.Count > 0 {
		fmt.Fprintf(w, "Current desktop: %d/%d\n", st.Current+1, st.Count)
	}
	if lifecycle {
		fmt.Fprintln(w, "Desktop create/remove: available")
	} else {
		fmt.Fprintln(w, "Desktop create/remove: unavailable (switching between existing desktops only)")
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Chords:")
	fmt.Fprintf(w, "  %s + 1-9     switch to desktop (created when missing)\n", key)
	fmt.Fprintf(w, "  %s + 0       show current desktop\n", key)
	fmt.Fprintf(w, "  %s + Escape  quit\n", key)
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Note: %s + digit is intercepted system-wide while hyprdesk runs.\n", key)
}
