// Package input routes backend input events into the machine keypad and
// emulator control callbacks.
package input

import (
	"time"

	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
)

// debounceDuration is the minimum time between repeated emulator control
// presses (pause, reset, quit). Keypad actions are never debounced: the
// executor's key-wait opcode depends on exact press/release edges.
const debounceDuration = 250 * time.Millisecond

// KeypadSink receives hexadecimal keypad state changes.
type KeypadSink interface {
	SetKey(key uint8, pressed bool)
}

// Manager handles input actions and their associated callbacks.
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]time.Time
	sink          KeypadSink

	now func() time.Time
}

func NewManager(sink KeypadSink) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		sink:          sink,
		now:           time.Now,
	}
}

// On registers a callback for a specific action and event type.
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type. Keypad actions go
// straight to the sink; everything else is dispatched to callbacks with a
// press debounce.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if key, ok := action.KeypadIndex(act); ok {
		if m.sink == nil {
			return
		}
		switch evt {
		case event.Press, event.Hold:
			m.sink.SetKey(key, true)
		case event.Release:
			m.sink.SetKey(key, false)
		}
		return
	}

	if evt == event.Press {
		now := m.now()
		if now.Sub(m.lastTriggered[act]) < debounceDuration {
			return
		}
		m.lastTriggered[act] = now
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}
