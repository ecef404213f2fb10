package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/1broseidon/hyprdesk/internal/hotkeys"
	"github.com/1broseidon/hyprdesk/internal/runtimepath"
)

// ErrAlreadyRunning means another daemon is listening on the socket.
var ErrAlreadyRunning = errors.New("hyprdesk daemon already running")

// requestTimeout bounds how long a client waits on a queued intent. A switch
// includes the settle delay, so this is generous.
const requestTimeout = 10 * time.Second

// Executor runs intents, serialized with the keyboard chords.
type Executor interface {
	Do(ctx context.Context, intent hotkeys.Intent) (hotkeys.Result, error)
}

// ServerConfig holds IPC server settings.
type ServerConfig struct {
	// SocketPath overrides the runtime socket path.
	SocketPath string
	// LifecycleAvailable is reported in status responses.
	LifecycleAvailable bool
	Logger             *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	exec         Executor
	lifecycle    bool
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	conns        sync.WaitGroup
}

// NewServer creates a new IPC server. It fails with ErrAlreadyRunning when a
// live daemon owns the socket; a stale socket file is removed.
func NewServer(exec Executor, cfg ServerConfig) (*Server, error) {
	socketPath := cfg.SocketPath
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}

	if conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond); err == nil {
		conn.Close()
		return nil, fmt.Errorf("%w (socket %s)", ErrAlreadyRunning, socketPath)
	}
	os.Remove(socketPath)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		socketPath: socketPath,
		exec:       exec,
		lifecycle:  cfg.LifecycleAvailable,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) stopping() bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	return s.shuttingDown
}

// handleConnection serves a single newline-delimited request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout + time.Second))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.writeResponse(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	s.writeResponse(conn, s.handleCommand(ctx, req))
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandSwitch:
		return s.handleSwitch(ctx, req.Payload)
	case CommandQuit:
		return s.handleQuit(ctx)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	return s.run(ctx, hotkeys.Intent{Kind: hotkeys.IntentQuery})
}

func (s *Server) handleSwitch(ctx context.Context, payload json.RawMessage) *Response {
	var p SwitchPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	if err := p.Validate(); err != nil {
		return NewErrorResponse(err.Error())
	}
	s.logger.Info("IPC switch", "desktop", p.Desktop)
	return s.run(ctx, hotkeys.SwitchIntent(p.Desktop-1))
}

func (s *Server) handleQuit(ctx context.Context) *Response {
	s.logger.Info("IPC quit requested")
	if _, err := s.exec.Do(ctx, hotkeys.Intent{Kind: hotkeys.IntentQuit}); err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) run(ctx context.Context, intent hotkeys.Intent) *Response {
	res, err := s.exec.Do(ctx, intent)
	if err == nil {
		err = res.Err
	}
	if err != nil {
		return NewErrorResponse(err.Error())
	}

	resp, err := NewOKResponse(s.statusData(res.Status))
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) statusData(st desktop.Status) StatusData {
	return StatusData{
		Current:            st.Current + 1,
		Count:              st.Count,
		LifecycleAvailable: s.lifecycle,
		UptimeSeconds:      int64(time.Since(s.startTime).Seconds()),
	}
}

func (s *Server) writeResponse(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
