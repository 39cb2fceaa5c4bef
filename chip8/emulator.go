package chip8

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/input"
	"github.com/valerio/go-chip8/chip8/input/action"
	"github.com/valerio/go-chip8/chip8/input/event"
	"github.com/valerio/go-chip8/chip8/timing"
)

// Emulator drives one machine against a backend at a fixed tick rate. It
// owns the run loop; the machine itself is passive.
type Emulator struct {
	machine *Machine
	backend backend.Backend
	limiter timing.Limiter
	inputs  *input.Manager

	running bool
}

// NewEmulator wires a machine, a backend and a pacing limiter together.
func NewEmulator(m *Machine, b backend.Backend, limiter timing.Limiter) *Emulator {
	e := &Emulator{
		machine: m,
		backend: b,
		limiter: limiter,
		inputs:  input.NewManager(m),
	}

	e.inputs.On(action.EmulatorQuit, event.Press, func() {
		e.running = false
	})
	e.inputs.On(action.EmulatorPauseToggle, event.Press, func() {
		m.TogglePause()
		limiter.Reset()
	})
	e.inputs.On(action.EmulatorReset, event.Press, func() {
		if err := m.Reset(); err != nil {
			slog.Error("Reset failed", "error", err)
		}
	})
	e.inputs.On(action.EmulatorSnapshot, event.Press, func() {
		e.saveSnapshot()
	})

	return e
}

// Inputs exposes the input manager so hosts can register extra callbacks.
func (e *Emulator) Inputs() *input.Manager {
	return e.inputs
}

// Run executes the main loop until the backend requests quit or the machine
// halts. The backend must not have been initialized yet.
func (e *Emulator) Run(config backend.BackendConfig) error {
	if config.Tone == nil {
		config.Tone = e.machine.ToneAudible
	}
	if config.StateName == nil {
		config.StateName = e.machine.StateName
	}

	if err := e.backend.Init(config); err != nil {
		return fmt.Errorf("backend init: %w", err)
	}
	defer e.backend.Cleanup()

	e.running = true
	e.limiter.Reset()

	for e.running {
		if err := e.machine.StepTick(); err != nil {
			slog.Error("Machine halted on fault", "error", err)
			// One last Update presents the final frame before bailing.
			e.backend.Update(e.machine.Framebuffer(), true)
			return err
		}

		events, err := e.backend.Update(e.machine.Framebuffer(), e.machine.ConsumeRedraw())
		if err != nil {
			return fmt.Errorf("backend update: %w", err)
		}
		for _, ev := range events {
			e.inputs.Trigger(ev.Action, ev.Type)
		}

		if e.machine.State() == Halted {
			break
		}

		e.limiter.WaitForNextTick()
	}

	slog.Info("Emulator stopped",
		"ticks", e.machine.TickCount(),
		"cycles", e.machine.CycleCount(),
		"state", e.machine.StateName())
	return nil
}

// Stop requests the run loop to exit after the current tick.
func (e *Emulator) Stop() {
	e.running = false
}

// saveSnapshot writes the current frame as text art to the temp directory.
func (e *Emulator) saveSnapshot() {
	path := filepath.Join(os.TempDir(), fmt.Sprintf("chip8_tick_%d.txt", e.machine.TickCount()))
	if err := os.WriteFile(path, []byte(headless.RenderText(e.machine.Framebuffer())), 0644); err != nil {
		slog.Error("Failed to save snapshot", "path", path, "error", err)
		return
	}
	slog.Info("Saved frame snapshot", "path", path)
}
