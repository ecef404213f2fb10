package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1broseidon/hyprdesk/internal/config"
	"github.com/1broseidon/hyprdesk/internal/desktop"
)

func TestParseDesktopArg(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"9", 9, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"two", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDesktopArg(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseDesktopArg(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Fatalf("parseDesktopArg(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	printBanner(&buf, config.ModAlt, desktop.Status{Current: 1, Count: 3}, false)
	out := buf.String()

	for _, want := range []string{
		"Current desktop: 2/3",
		"Alt + 1-9",
		"Alt + Escape",
		"Desktop create/remove: unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestChordLabel(t *testing.T) {
	if chordLabel(config.ModSuper) != "Super" || chordLabel(config.ModCtrl) != "Ctrl" {
		t.Fatalf("unexpected chord labels")
	}
}

func TestPrintMainUsageListsCommands(t *testing.T) {
	var buf bytes.Buffer
	printMainUsage(&buf)
	for _, cmd := range []string{"daemon", "status", "switch N", "config validate", "mcp serve"} {
		if !strings.Contains(buf.String(), cmd) {
			t.Fatalf("usage missing %q", cmd)
		}
	}
}
