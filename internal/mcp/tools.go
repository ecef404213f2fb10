package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/hyprdesk/internal/ipc"
)

func (s *Server) handleDesktopStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DesktopStatusInput) (*mcpsdk.CallToolResult, DesktopStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, DesktopStatusOutput{}, fmt.Errorf("desktop_status: %w", err)
	}
	return nil, statusOutput(status), nil
}

func (s *Server) handleSwitchDesktop(_ context.Context, _ *mcpsdk.CallToolRequest, args SwitchDesktopInput) (*mcpsdk.CallToolResult, SwitchDesktopOutput, error) {
	if err := (ipc.SwitchPayload{Desktop: args.Desktop}).Validate(); err != nil {
		return nil, SwitchDesktopOutput{}, fmt.Errorf("switch_desktop: %w", err)
	}
	status, err := s.daemon.Switch(args.Desktop)
	if err != nil {
		return nil, SwitchDesktopOutput{}, fmt.Errorf("switch_desktop: %w", err)
	}
	return nil, statusOutput(status), nil
}

func statusOutput(st *ipc.StatusData) DesktopStatusOutput {
	return DesktopStatusOutput{
		Current:            st.Current,
		Count:              st.Count,
		LifecycleAvailable: st.LifecycleAvailable,
		Summary:            fmt.Sprintf("Desktop %d/%d", st.Current, st.Count),
	}
}
