package mcp

// DesktopStatusInput is the input for the desktop_status tool.
type DesktopStatusInput struct{}

// DesktopStatusOutput describes the virtual desktop sequence. Desktop numbers
// are 1-based.
type DesktopStatusOutput struct {
	Current            int    `json:"current"`
	Count              int    `json:"count"`
	LifecycleAvailable bool   `json:"lifecycle_available"`
	Summary            string `json:"summary"`
}

// SwitchDesktopInput is the input for the switch_desktop tool.
type SwitchDesktopInput struct {
	Desktop int `json:"desktop" jsonschema:"Desktop number to activate, starting at 1. Missing desktops up to this number are created."`
}

// SwitchDesktopOutput is the status after the switch.
type SwitchDesktopOutput = DesktopStatusOutput
