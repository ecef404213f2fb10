package hotkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/hyprdesk/internal/desktop"
)

// DefaultQueueSize bounds the number of pending intents.
const DefaultQueueSize = 16

var (
	// ErrDispatcherStopped is returned by Do once Run has returned.
	ErrDispatcherStopped = errors.New("dispatcher stopped")
	ErrUnknownIntent     = errors.New("unknown intent")
)

// Controller is the desktop orchestration the dispatcher drives.
type Controller interface {
	SwitchTo(index int) error
	Status() (desktop.Status, error)
}

// Notifier surfaces results to the user. Implementations must not block for
// long; they run on the dispatcher goroutine.
type Notifier interface {
	DesktopStatus(current, count int)
	Failure(title, message string)
}

// DispatcherConfig holds dispatcher settings.
type DispatcherConfig struct {
	// Quit is called for IntentQuit. It runs on the caller's goroutine, not
	// the dispatcher's, so it must be non-blocking and safe to call twice.
	Quit      func()
	Notifier  Notifier
	Logger    *slog.Logger
	QueueSize int
}

// Result is the outcome of one executed intent.
type Result struct {
	Status desktop.Status
	Err    error
}

type request struct {
	intent Intent
	reply  chan Result
}

// Dispatcher serializes intent execution on a single goroutine.
type Dispatcher struct {
	ctl      Controller
	machine  *Machine
	queue    chan request
	done     chan struct{}
	quit     func()
	notifier Notifier
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher feeding ctl. machine may be nil when the
// dispatcher only serves IPC.
func NewDispatcher(ctl Controller, machine *Machine, cfg DispatcherConfig) *Dispatcher {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	quit := cfg.Quit
	if quit == nil {
		quit = func() {}
	}
	return &Dispatcher{
		ctl:      ctl,
		machine:  machine,
		queue:    make(chan request, size),
		done:     make(chan struct{}),
		quit:     quit,
		notifier: cfg.Notifier,
		logger:   logger,
	}
}

// HandleKey runs ev through the state machine, queues any intent and returns
// whether the event should be consumed. It never blocks.
func (d *Dispatcher) HandleKey(ev KeyEvent) bool {
	if d.machine == nil {
		return false
	}
	decision := d.machine.Handle(ev)
	if decision.Intent.Kind != IntentNone {
		if !d.Submit(decision.Intent) {
			d.logger.Warn("intent queue full, dropping", "intent", decision.Intent.String())
		}
	}
	return decision.Consume
}

// Submit queues intent without waiting. It reports false when the queue is
// full or the dispatcher has stopped. IntentQuit bypasses the queue.
func (d *Dispatcher) Submit(intent Intent) bool {
	if intent.Kind == IntentQuit {
		d.requestQuit()
		return true
	}
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- request{intent: intent}:
		return true
	default:
		return false
	}
}

// Do queues intent and waits for its result. IntentQuit takes effect
// immediately, ahead of anything queued.
func (d *Dispatcher) Do(ctx context.Context, intent Intent) (Result, error) {
	if intent.Kind == IntentQuit {
		d.requestQuit()
		return Result{}, nil
	}
	req := request{intent: intent, reply: make(chan Result, 1)}
	select {
	case d.queue <- req:
	case <-d.done:
		return Result{}, ErrDispatcherStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res, nil
	case <-d.done:
		// Run may have executed the request just before stopping.
		select {
		case res := <-req.reply:
			return res, nil
		default:
			return Result{}, ErrDispatcherStopped
		}
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Run executes queued intents until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)

	d.logger.Info("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped")
			return
		case req := <-d.queue:
			res := d.execute(req.intent)
			if req.reply != nil {
				req.reply <- res
			}
		}
	}
}

func (d *Dispatcher) execute(intent Intent) (res Result) {
	// A panic in a backend call must not take the hook down with it.
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatcher panic recovered", "intent", intent.String(), "error", r)
			res = Result{Err: fmt.Errorf("panic executing %s: %v", intent, r)}
		}
	}()

	switch intent.Kind {
	case IntentSwitch:
		return d.doSwitch(intent.Index)
	case IntentStatus:
		return d.doStatus(true)
	case IntentQuery:
		return d.doStatus(false)
	case IntentQuit:
		d.requestQuit()
		return Result{}
	default:
		return Result{Err: fmt.Errorf("%w: %d", ErrUnknownIntent, intent.Kind)}
	}
}

func (d *Dispatcher) doSwitch(index int) Result {
	if err := d.ctl.SwitchTo(index); err != nil {
		d.logger.Error("switch failed", "desktop", index+1, "error", err)
		if d.notifier != nil {
			d.notifier.Failure("hyprdesk", fmt.Sprintf("Could not switch to desktop %d: %v", index+1, err))
		}
		return Result{Err: err}
	}
	status, err := d.ctl.Status()
	if err != nil {
		// The switch itself succeeded.
		d.logger.Warn("status unavailable after switch", "error", err)
		return Result{Status: desktop.Status{Current: index}}
	}
	return Result{Status: status}
}

func (d *Dispatcher) requestQuit() {
	d.logger.Info("quit requested")
	d.quit()
}

// doStatus reads the status; announce logs and notifies it as the status
// chord does.
func (d *Dispatcher) doStatus(announce bool) Result {
	status, err := d.ctl.Status()
	if err != nil {
		d.logger.Error("status failed", "error", err)
		return Result{Err: err}
	}
	if !announce {
		return Result{Status: status}
	}
	d.logger.Info(fmt.Sprintf("Desktop %d/%d", status.Current+1, status.Count))
	if d.notifier != nil {
		d.notifier.DesktopStatus(status.Current, status.Count)
	}
	return Result{Status: status}
}
