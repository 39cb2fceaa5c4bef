package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/quirks"
)

func TestTickTimers(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	c.delayTimer = 2
	c.soundTimer = 1

	c.TickTimers()
	assert.Equal(t, uint8(1), c.delayTimer)
	assert.Equal(t, uint8(0), c.soundTimer)

	c.TickTimers()
	c.TickTimers()
	assert.Equal(t, uint8(0), c.delayTimer, "timers clamp at zero")
	assert.Equal(t, uint8(0), c.soundTimer)
}

func TestToneAudible(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	assert.False(t, c.ToneAudible())

	c.soundTimer = 3
	assert.True(t, c.ToneAudible())

	c.TickTimers()
	c.TickTimers()
	assert.True(t, c.ToneAudible(), "audible while the sound timer is non-zero")

	c.TickTimers()
	assert.False(t, c.ToneAudible(), "silent once it hits zero")
}

func TestSetKey_IgnoresOutOfRange(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	c.SetKey(16, true) // no panic
	assert.False(t, c.Key(16))
}

func TestWaitForKey_NoKeyPressed(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	// F50A at the entry point, waiting into V5
	require.NoError(t, c.mem.LoadROM([]byte{0xF5, 0x0A}))

	for i := 0; i < 5; i++ {
		require.NoError(t, c.Step())
	}

	assert.Equal(t, uint16(memory.ProgramStart), c.pc, "PC rewinds while no key is pressed")
}

func TestWaitForKey_PressThenRelease(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	require.NoError(t, c.mem.LoadROM([]byte{0xF5, 0x0A}))

	// a few cycles with nothing pressed
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	assert.Equal(t, uint16(memory.ProgramStart), c.pc)

	// key 0xB goes down; the instruction latches it but keeps waiting
	c.SetKey(0xB, true)
	require.NoError(t, c.Step())
	require.NoError(t, c.Step())
	assert.Equal(t, uint16(memory.ProgramStart), c.pc, "still re-armed while the key is held")

	// release completes the wait exactly once
	c.SetKey(0xB, false)
	require.NoError(t, c.Step())

	assert.Equal(t, uint8(0xB), c.v[0x5])
	assert.Equal(t, uint16(memory.ProgramStart+2), c.pc)
}

func TestWaitForKey_LatchSticksToFirstKey(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	require.NoError(t, c.mem.LoadROM([]byte{0xF0, 0x0A}))

	c.SetKey(0x3, true)
	require.NoError(t, c.Step())

	// a second key press must not replace the latched one
	c.SetKey(0x7, true)
	require.NoError(t, c.Step())
	assert.Equal(t, uint16(memory.ProgramStart), c.pc)

	c.SetKey(0x3, false)
	require.NoError(t, c.Step())

	assert.Equal(t, uint8(0x3), c.v[0x0])
}

func TestWaitForKey_IndependentPerInstance(t *testing.T) {
	a := newTestCPU(t, quirks.Classic)
	b := newTestCPU(t, quirks.Classic)
	require.NoError(t, a.mem.LoadROM([]byte{0xF0, 0x0A}))
	require.NoError(t, b.mem.LoadROM([]byte{0xF0, 0x0A}))

	a.SetKey(0x1, true)
	require.NoError(t, a.Step())
	require.NoError(t, b.Step())

	a.SetKey(0x1, false)
	require.NoError(t, a.Step())
	require.NoError(t, b.Step())

	assert.Equal(t, uint16(memory.ProgramStart+2), a.pc, "machine a completed its wait")
	assert.Equal(t, uint16(memory.ProgramStart), b.pc, "machine b is still waiting")
}

func TestReset(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	c.v[0x1] = 0xAA
	c.i = 0x300
	c.pc = 0x456
	c.sp = 3
	c.delayTimer = 9
	c.soundTimer = 9
	c.keypad[0x2] = true
	c.waitKey = 0x2
	c.redraw = true
	c.fb.SetPixel(1, 1, true)

	c.Reset()

	assert.Equal(t, uint8(0), c.v[0x1])
	assert.Equal(t, uint16(0), c.i)
	assert.Equal(t, uint16(memory.ProgramStart), c.pc)
	assert.Equal(t, uint8(0), c.sp)
	assert.Equal(t, uint8(0), c.delayTimer)
	assert.Equal(t, uint8(0), c.soundTimer)
	assert.False(t, c.keypad[0x2])
	assert.Equal(t, noKeyLatched, c.waitKey)
	assert.False(t, c.ConsumeRedraw())
	assert.False(t, c.fb.GetPixel(1, 1))
}

func TestConsumeRedraw_ClearsFlag(t *testing.T) {
	c := newTestCPU(t, quirks.Classic)
	c.redraw = true

	assert.True(t, c.ConsumeRedraw())
	assert.False(t, c.ConsumeRedraw(), "flag is cleared once consumed")
}
