package hotkeys

import (
	"fmt"
	"sync/atomic"
)

// ModifierState tracks whether the chord modifier is held.
type ModifierState int32

const (
	ModifierUp ModifierState = iota
	ModifierDown
)

func (s ModifierState) String() string {
	if s == ModifierDown {
		return "down"
	}
	return "up"
}

// IntentKind identifies what a chord asks for.
type IntentKind int

const (
	IntentNone IntentKind = iota
	IntentSwitch
	IntentStatus
	IntentQuit
	// IntentQuery reads the status without announcing it (IPC, MCP).
	IntentQuery
)

func (k IntentKind) String() string {
	switch k {
	case IntentSwitch:
		return "switch"
	case IntentStatus:
		return "status"
	case IntentQuit:
		return "quit"
	case IntentQuery:
		return "query"
	default:
		return "none"
	}
}

// Intent is a request produced by a chord (or by IPC) for the dispatcher.
type Intent struct {
	Kind IntentKind
	// Index is the zero-based target desktop for IntentSwitch.
	Index int
}

func (i Intent) String() string {
	if i.Kind == IntentSwitch {
		return fmt.Sprintf("switch(%d)", i.Index+1)
	}
	return i.Kind.String()
}

// SwitchIntent returns an intent to activate desktop index.
func SwitchIntent(index int) Intent {
	return Intent{Kind: IntentSwitch, Index: index}
}

// Decision is the synchronous outcome of a key event.
type Decision struct {
	// Consume suppresses the event from reaching other applications.
	Consume bool
	Intent  Intent
}

// Machine is the modifier-tracking state machine. Handle is called from a
// single hook context; State may be read from any goroutine.
type Machine struct {
	state atomic.Int32
}

func NewMachine() *Machine {
	return &Machine{}
}

// State returns the current modifier state.
func (m *Machine) State() ModifierState {
	return ModifierState(m.state.Load())
}

// Reset returns the machine to ModifierUp.
func (m *Machine) Reset() {
	m.state.Store(int32(ModifierUp))
}

// Handle advances the machine and decides whether ev is consumed.
func (m *Machine) Handle(ev KeyEvent) Decision {
	if ev.Key == KeyModifier {
		if ev.Down {
			m.state.Store(int32(ModifierDown))
		} else {
			m.state.Store(int32(ModifierUp))
		}
		// The OS still needs to see the modifier itself.
		return Decision{}
	}

	if !ev.Down || m.State() != ModifierDown {
		return Decision{}
	}

	switch {
	case ev.Key == KeyDigit0:
		return Decision{Consume: true, Intent: Intent{Kind: IntentStatus}}
	case ev.Key.IsDigit():
		return Decision{Consume: true, Intent: SwitchIntent(ev.Key.Digit() - 1)}
	case ev.Key == KeyEscape:
		return Decision{Consume: true, Intent: Intent{Kind: IntentQuit}}
	default:
		return Decision{}
	}
}
