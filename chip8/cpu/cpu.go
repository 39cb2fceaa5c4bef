// Package cpu implements the CHIP-8 fetch-decode-execute core: the register
// file, call stack, timers, keypad latches and the instruction executor.
package cpu

import (
	"errors"
	"math/rand"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/quirks"
	"github.com/valerio/go-chip8/chip8/video"
)

const (
	// StackDepth is the call stack capacity, matching the original
	// interpreter's 12 return-address slots.
	StackDepth = 12

	numRegisters    = 16
	numKeys         = 16
	instructionSize = 2

	// flagRegister is VF, overwritten as a side effect by the arithmetic,
	// shift and draw opcodes. It stays addressable as a general-purpose
	// register; programs that store data in it lose that data.
	flagRegister = 0xF
)

var (
	// ErrStackUnderflow is returned when 00EE runs with an empty call stack.
	ErrStackUnderflow = errors.New("cpu: return with empty call stack")
	// ErrStackOverflow is returned when 2NNN runs with a full call stack.
	ErrStackOverflow = errors.New("cpu: call stack exceeded capacity")
	// ErrPCOutOfRange is returned when the program counter escapes the
	// executable address range.
	ErrPCOutOfRange = errors.New("cpu: program counter out of range")
)

// noKeyLatched marks the FX0A wait state as not holding a key yet.
const noKeyLatched = -1

// CPU holds all mutable machine state and executes one instruction per Step.
// The quirk profile is fixed at construction so dialect-dependent opcodes
// never consult shared state.
type CPU struct {
	v  [numRegisters]uint8
	i  uint16
	pc uint16

	stack [StackDepth]uint16
	sp    uint8

	delayTimer uint8
	soundTimer uint8

	keypad [numKeys]bool

	// waitKey is the two-phase FX0A state: noKeyLatched while scanning,
	// otherwise the key index being held until its release. Kept here, not
	// in package state, so machine instances stay independent.
	waitKey int

	redraw bool

	mem     *memory.Memory
	fb      *video.FrameBuffer
	profile quirks.Profile

	// rand returns one byte of entropy for CXNN; replaceable in tests.
	rand func() uint8
}

// New returns a CPU bound to the given memory, frame buffer and dialect,
// with the program counter at the ROM entry point.
func New(mem *memory.Memory, fb *video.FrameBuffer, profile quirks.Profile) *CPU {
	return &CPU{
		pc:      memory.ProgramStart,
		waitKey: noKeyLatched,
		mem:     mem,
		fb:      fb,
		profile: profile,
		rand:    randomByte,
	}
}

func randomByte() uint8 {
	return uint8(rand.Intn(0x100))
}

// Reset zeroes registers, stack, timers, keypad latches and the frame
// buffer, and moves the program counter back to the entry point. Memory
// contents are the caller's responsibility.
func (c *CPU) Reset() {
	c.v = [numRegisters]uint8{}
	c.i = 0
	c.pc = memory.ProgramStart
	c.stack = [StackDepth]uint16{}
	c.sp = 0
	c.delayTimer = 0
	c.soundTimer = 0
	c.keypad = [numKeys]bool{}
	c.waitKey = noKeyLatched
	c.redraw = false
	c.fb.Clear()
}

// SetKey latches the pressed state of one hexadecimal key (0x0-0xF).
func (c *CPU) SetKey(key uint8, pressed bool) {
	if key >= numKeys {
		return
	}
	c.keypad[key] = pressed
}

// Key reports the latched state of one hexadecimal key.
func (c *CPU) Key(key uint8) bool {
	if key >= numKeys {
		return false
	}
	return c.keypad[key]
}

// TickTimers performs one 60 Hz timer step, decrementing each non-zero
// timer toward zero. It runs once per host tick regardless of how many
// instructions executed.
func (c *CPU) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// ToneAudible reports whether the host should be emitting the beep tone.
func (c *CPU) ToneAudible() bool {
	return c.soundTimer > 0
}

// ConsumeRedraw reports whether the frame buffer changed since the last
// call and clears the flag.
func (c *CPU) ConsumeRedraw() bool {
	dirty := c.redraw
	c.redraw = false
	return dirty
}

func (c *CPU) pushStack(addr uint16) error {
	if c.sp >= StackDepth {
		return ErrStackOverflow
	}
	c.stack[c.sp] = addr
	c.sp++
	return nil
}

func (c *CPU) popStack() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

// Debug getters for host-side status display.
func (c *CPU) PC() uint16        { return c.pc }
func (c *CPU) I() uint16         { return c.i }
func (c *CPU) SP() uint8         { return c.sp }
func (c *CPU) V(idx uint8) uint8 { return c.v[idx&0x0F] }
func (c *CPU) DelayTimer() uint8 { return c.delayTimer }
func (c *CPU) SoundTimer() uint8 { return c.soundTimer }
