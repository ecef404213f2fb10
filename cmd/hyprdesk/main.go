package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/1broseidon/hyprdesk/internal/config"
	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/ipc"
	"github.com/1broseidon/hyprdesk/internal/platform"
	"github.com/1broseidon/hyprdesk/internal/statusline"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "switch":
		os.Exit(runSwitch(os.Args[2:]))
	case "stop":
		os.Exit(runStop(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: hyprdesk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the hyprdesk daemon (foreground)")
	fmt.Fprintln(w, "  status              Show the current desktop")
	fmt.Fprintln(w, "  switch N            Switch to desktop N (1-based) via the daemon")
	fmt.Fprintln(w, "  stop                Ask the running daemon to exit")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'hyprdesk <command> --help' for command-specific options.")
}

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/hyprdesk/config.yaml)")
	plain := fs.Bool("plain", false, "Print without colors")
	jsonOut := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hyprdesk status [--plain] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the current desktop. Asks the daemon when it is running and")
		fmt.Fprintln(os.Stderr, "reads the desktop backend directly otherwise.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	st, err := queryStatus(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	styled := !*plain && term.IsTerminal(int(os.Stdout.Fd()))
	fmt.Println(statusline.Render(desktop.Status{Current: st.Current - 1, Count: st.Count}, styled))
	return 0
}

// queryStatus asks the daemon, falling back to the backend when no daemon
// answers.
func queryStatus(configPath string) (*ipc.StatusData, error) {
	if st, err := ipc.NewClient().GetStatus(); err == nil {
		return st, nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	native, err := platform.Open(platform.Options{
		Library:  cfg.BackendLibrary,
		Modifier: cfg.Modifier,
		Logger:   newLogger(cfg),
	})
	if err != nil {
		return nil, err
	}
	defer native.Close()

	acc, err := desktop.NewAccessor(native.Backend)
	if err != nil {
		return nil, err
	}
	st, err := acc.Status()
	if err != nil {
		return nil, err
	}
	return &ipc.StatusData{
		Current:            st.Current + 1,
		Count:              st.Count,
		LifecycleAvailable: acc.HasLifecycle(),
	}, nil
}

func runSwitch(args []string) int {
	fs := flag.NewFlagSet("switch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hyprdesk switch N")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Switch to desktop N (1-based) through the running daemon, creating")
		fmt.Fprintln(os.Stderr, "missing desktops and removing the one left behind if it is empty.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	n, err := parseDesktopArg(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	st, err := ipc.NewClient().Switch(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println(statusline.Summary(desktop.Status{Current: st.Current - 1, Count: st.Count}))
	return 0
}

func parseDesktopArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("desktop must be a number, got %q", s)
	}
	if err := (ipc.SwitchPayload{Desktop: n}).Validate(); err != nil {
		return 0, err
	}
	return n, nil
}

func runStop(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "Usage: hyprdesk stop")
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			return 0
		}
		return 2
	}
	if err := ipc.NewClient().Quit(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println("hyprdesk daemon stopping")
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  hyprdesk config validate [--config PATH]")
		fmt.Fprintln(os.Stderr, "  hyprdesk config print [--config PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("config", "", "Config file path (default: ~/.config/hyprdesk/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("config", "", "Config file path (default: ~/.config/hyprdesk/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			loaded, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = loaded
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		log.Printf("Unknown config command: %s", args[0])
		return 2
	}
}
