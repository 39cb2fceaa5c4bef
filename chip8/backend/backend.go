// Package backend defines the host boundary: anything that can present the
// frame buffer, collect input and reflect the tone signal.
package backend

import (
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/video"
)

// InputEvent is a translated platform input reported by a backend.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// Backend represents a complete emulator platform (rendering + input).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, files)
// - Translating platform-specific input events to Actions
// - Reflecting the tone signal in whatever way the platform allows
type Backend interface {
	// Init configures the backend. Required before calling Update.
	Init(config BackendConfig) error

	// Update runs once per host tick: poll platform events, translate
	// them to input events, and present the frame. The redraw flag is
	// the machine's consumed dirty bit; backends may skip repainting the
	// game area when it is false.
	Update(frame *video.FrameBuffer, redraw bool) ([]InputEvent, error)

	// Cleanup resources when shutting down.
	Cleanup() error
}

// BackendConfig holds configuration for backends.
type BackendConfig struct {
	Title string
	Scale int

	// Tone reports whether the beep should be audible this tick.
	Tone func() bool
	// StateName returns the machine run state for status display.
	StateName func() string
}
