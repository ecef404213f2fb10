package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandSwitch    CommandType = "SWITCH"
	CommandQuit      CommandType = "QUIT"
)

// MaxDesktop is the highest desktop number SWITCH accepts. It bounds how many
// desktops a single request can create.
const MaxDesktop = 20

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData is returned by GET_STATUS and SWITCH. Desktop numbers are
// 1-based.
type StatusData struct {
	Current            int   `json:"current"`
	Count              int   `json:"count"`
	LifecycleAvailable bool  `json:"lifecycle_available"`
	UptimeSeconds      int64 `json:"uptime_seconds"`
}

// SwitchPayload is the payload for SWITCH. Desktop is 1-based.
type SwitchPayload struct {
	Desktop int `json:"desktop"`
}

// Validate checks the requested desktop number.
func (p SwitchPayload) Validate() error {
	if p.Desktop < 1 || p.Desktop > MaxDesktop {
		return fmt.Errorf("desktop must be between 1 and %d, got %d", MaxDesktop, p.Desktop)
	}
	return nil
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
