// Package chip8 ties the CPU core, memory and frame buffer into a complete
// machine driven by fixed 60 Hz host ticks.
package chip8

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/quirks"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	// TicksPerSecond is the host tick rate: one timer decrement and one
	// bounded batch of instruction cycles per tick.
	TicksPerSecond = 60

	// DefaultClockHz is the default instruction rate. Most classic ROMs
	// are tuned for roughly 700 instructions per second.
	DefaultClockHz = 700
)

// State is the machine run state.
type State int

const (
	// Uninitialized means no program has been loaded yet.
	Uninitialized State = iota
	// Running executes instruction batches and timer steps each tick.
	Running
	// Paused suspends execution and timers but still accepts input.
	Paused
	// Halted ends the session, either by request or after a fault.
	Halted
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Halted:
		return "halted"
	default:
		return fmt.Sprintf("chip8.State(%d)", int(s))
	}
}

// Machine is one CHIP-8 instance: CPU, memory, display and run state. It is
// not safe for concurrent use; a single driving loop owns it.
type Machine struct {
	cpu *cpu.CPU
	mem *memory.Memory
	fb  *video.FrameBuffer

	profile       quirks.Profile
	cyclesPerTick int

	// rom is the retained program image so Reset can re-load it.
	rom []byte

	state      State
	tickCount  uint64
	cycleCount uint64
}

// New creates an empty machine with the given dialect and instruction rate.
// A program must be loaded before ticking.
func New(profile quirks.Profile, clockHz int) *Machine {
	if clockHz <= 0 {
		clockHz = DefaultClockHz
	}
	cycles := clockHz / TicksPerSecond
	if cycles < 1 {
		cycles = 1
	}

	mem := memory.New()
	fb := video.NewFrameBuffer()

	return &Machine{
		cpu:           cpu.New(mem, fb, profile),
		mem:           mem,
		fb:            fb,
		profile:       profile,
		cyclesPerTick: cycles,
		state:         Uninitialized,
	}
}

// NewWithFile creates a machine and loads the ROM file at path into it.
func NewWithFile(path string, profile quirks.Profile, clockHz int) (*Machine, error) {
	m := New(profile, clockHz)
	if err := m.LoadFile(path); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFile reads a ROM image from disk and loads it.
func (m *Machine) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading ROM %s: %w", path, err)
	}
	if err := m.Load(data); err != nil {
		return fmt.Errorf("loading ROM %s: %w", path, err)
	}
	return nil
}

// Load installs a program image and fully resets the machine: registers,
// timers, stack, keypad and frame buffer are zeroed, the font table is
// reinstalled and execution restarts at the entry point. On failure the
// machine state is untouched.
func (m *Machine) Load(rom []byte) error {
	if err := m.mem.LoadROM(rom); err != nil {
		return err
	}

	m.rom = make([]byte, len(rom))
	copy(m.rom, rom)

	m.cpu.Reset()
	m.state = Running
	m.tickCount = 0
	m.cycleCount = 0

	slog.Info("Loaded ROM image",
		"bytes", len(rom),
		"quirks", m.profile.String(),
		"cycles_per_tick", m.cyclesPerTick)
	return nil
}

// Reset re-loads the retained program image, valid at any time once a
// program has been loaded, including from Paused or Halted.
func (m *Machine) Reset() error {
	if m.rom == nil {
		return fmt.Errorf("chip8: no program loaded")
	}
	return m.Load(m.rom)
}

// StepTick runs one host tick: the configured batch of instruction cycles
// followed by exactly one timer decrement. Paused and halted machines do
// nothing. A fault from the executor halts the machine and is returned.
func (m *Machine) StepTick() error {
	if m.state != Running {
		return nil
	}

	for i := 0; i < m.cyclesPerTick; i++ {
		if err := m.cpu.Step(); err != nil {
			m.state = Halted
			return fmt.Errorf("machine fault after %d cycles: %w", m.cycleCount, err)
		}
		m.cycleCount++
	}

	m.cpu.TickTimers()
	m.tickCount++
	return nil
}

// SetKey latches one hexadecimal key, accepted in any state so hosts can
// deliver input while paused.
func (m *Machine) SetKey(key uint8, pressed bool) {
	m.cpu.SetKey(key, pressed)
}

// Pause suspends execution and timers.
func (m *Machine) Pause() {
	if m.state == Running {
		m.state = Paused
		slog.Info("Machine paused")
	}
}

// Resume continues execution after a pause.
func (m *Machine) Resume() {
	if m.state == Paused {
		m.state = Running
		slog.Info("Machine resumed")
	}
}

// TogglePause flips between Running and Paused.
func (m *Machine) TogglePause() {
	switch m.state {
	case Running:
		m.Pause()
	case Paused:
		m.Resume()
	}
}

// Halt ends the session.
func (m *Machine) Halt() {
	m.state = Halted
}

func (m *Machine) State() State {
	return m.state
}

// StateName returns the run state as a short display string.
func (m *Machine) StateName() string {
	return m.state.String()
}

// Framebuffer exposes the live display buffer for rendering.
func (m *Machine) Framebuffer() *video.FrameBuffer {
	return m.fb
}

// Snapshot returns an independent copy of the display pixels.
func (m *Machine) Snapshot() []bool {
	return m.fb.Snapshot()
}

// ConsumeRedraw reports whether a repaint is due and clears the flag.
func (m *Machine) ConsumeRedraw() bool {
	return m.cpu.ConsumeRedraw()
}

// ToneAudible reports whether the host should emit the beep tone.
func (m *Machine) ToneAudible() bool {
	return m.cpu.ToneAudible()
}

// CPU exposes the core for host-side status display.
func (m *Machine) CPU() *cpu.CPU {
	return m.cpu
}

func (m *Machine) TickCount() uint64 {
	return m.tickCount
}

func (m *Machine) CycleCount() uint64 {
	return m.cycleCount
}
