// Package mcp exposes the running daemon to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/hyprdesk/internal/ipc"
)

const (
	ServerName    = "hyprdesk"
	ServerVersion = "0.1.0"
)

// Daemon is the IPC surface the tools call into.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	Switch(desktop int) (*ipc.StatusData, error)
}

// Server is the MCP server for desktop navigation.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
}

// NewServer creates an MCP server that forwards to daemon.
func NewServer(daemon Daemon) *Server {
	s := &Server{daemon: daemon}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "desktop_status",
		Description: "Report the active virtual desktop and the number of desktops. Desktop numbers start at 1.",
	}, s.handleDesktopStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "switch_desktop",
		Description: "Activate a virtual desktop by number (starting at 1). Desktops up to that number are created when missing, and the desktop that was left is removed if it has no windows.",
	}, s.handleSwitchDesktop)
}
