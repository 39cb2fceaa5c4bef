package chip8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/quirks"
)

// selfLoop jumps to its own address forever, a safe filler program.
var selfLoop = []byte{0x12, 0x00}

func TestLoadStartsRunning(t *testing.T) {
	m := New(quirks.Classic, 60)
	assert.Equal(t, Uninitialized, m.State())

	require.NoError(t, m.Load(selfLoop))
	assert.Equal(t, Running, m.State())
	assert.Equal(t, uint16(memory.ProgramStart), m.CPU().PC())
}

func TestLoadRejectsOversizedROM(t *testing.T) {
	m := New(quirks.Classic, 60)
	huge := make([]byte, memory.MaxROMSize+1)

	err := m.Load(huge)
	require.Error(t, err)
	assert.Equal(t, Uninitialized, m.State())
}

func TestStepTickRunsCycleBatchAndOneTimerStep(t *testing.T) {
	// 700 Hz over 60 ticks/s gives 11 cycles per tick.
	m := New(quirks.Classic, 700)
	require.NoError(t, m.Load(selfLoop))

	require.NoError(t, m.StepTick())
	assert.Equal(t, uint64(11), m.CycleCount())
	assert.Equal(t, uint64(1), m.TickCount())

	require.NoError(t, m.StepTick())
	assert.Equal(t, uint64(22), m.CycleCount())
	assert.Equal(t, uint64(2), m.TickCount())
}

func TestStepTickMinimumOneCyclePerTick(t *testing.T) {
	m := New(quirks.Classic, 30) // below the tick rate, still one cycle
	require.NoError(t, m.Load(selfLoop))

	require.NoError(t, m.StepTick())
	assert.Equal(t, uint64(1), m.CycleCount())
}

func TestPauseSuspendsExecutionAndTimers(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load(selfLoop))

	m.Pause()
	assert.Equal(t, Paused, m.State())

	require.NoError(t, m.StepTick())
	assert.Equal(t, uint64(0), m.CycleCount())
	assert.Equal(t, uint64(0), m.TickCount())

	m.Resume()
	require.NoError(t, m.StepTick())
	assert.Equal(t, uint64(1), m.TickCount())
}

func TestTogglePause(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load(selfLoop))

	m.TogglePause()
	assert.Equal(t, Paused, m.State())
	m.TogglePause()
	assert.Equal(t, Running, m.State())

	// Toggling a halted machine does nothing.
	m.Halt()
	m.TogglePause()
	assert.Equal(t, Halted, m.State())
}

func TestFaultHaltsMachine(t *testing.T) {
	m := New(quirks.Classic, 60)
	// 00EE with an empty call stack is a fatal fault.
	require.NoError(t, m.Load([]byte{0x00, 0xEE}))

	err := m.StepTick()
	require.Error(t, err)
	assert.Equal(t, Halted, m.State())

	// Halted machines stay inert.
	require.NoError(t, m.StepTick())
	assert.Equal(t, uint64(0), m.TickCount())
}

func TestResetReloadsRetainedProgram(t *testing.T) {
	m := New(quirks.Classic, 60)
	// V0 = 7, then loop.
	require.NoError(t, m.Load([]byte{0x60, 0x07, 0x12, 0x02}))

	require.NoError(t, m.StepTick())
	assert.Equal(t, uint8(7), m.CPU().V(0))

	require.NoError(t, m.Reset())
	assert.Equal(t, Running, m.State())
	assert.Equal(t, uint8(0), m.CPU().V(0))
	assert.Equal(t, uint16(memory.ProgramStart), m.CPU().PC())
	assert.Equal(t, uint64(0), m.TickCount())
	assert.Equal(t, uint64(0), m.CycleCount())

	require.NoError(t, m.StepTick())
	assert.Equal(t, uint8(7), m.CPU().V(0))
}

func TestResetFromHalted(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load([]byte{0x00, 0xEE}))

	require.Error(t, m.StepTick())
	require.Equal(t, Halted, m.State())

	require.NoError(t, m.Reset())
	assert.Equal(t, Running, m.State())
}

func TestResetWithoutProgramFails(t *testing.T) {
	m := New(quirks.Classic, 60)
	assert.Error(t, m.Reset())
}

func TestToneAcrossTicks(t *testing.T) {
	m := New(quirks.Classic, 60)
	// V0 = 3, sound timer = V0, then loop.
	require.NoError(t, m.Load([]byte{0x60, 0x03, 0xF0, 0x18, 0x12, 0x04}))

	require.NoError(t, m.StepTick()) // V0 = 3
	assert.False(t, m.ToneAudible())

	require.NoError(t, m.StepTick()) // sound = 3, then timer step to 2
	assert.True(t, m.ToneAudible())

	require.NoError(t, m.StepTick()) // 1
	assert.True(t, m.ToneAudible())

	require.NoError(t, m.StepTick()) // 0
	assert.False(t, m.ToneAudible())
}

func TestConsumeRedrawAfterClear(t *testing.T) {
	m := New(quirks.Classic, 60)
	// 00E0 clear screen, then loop.
	require.NoError(t, m.Load([]byte{0x00, 0xE0, 0x12, 0x02}))

	require.NoError(t, m.StepTick())
	assert.True(t, m.ConsumeRedraw())
	assert.False(t, m.ConsumeRedraw(), "flag is cleared on read")

	require.NoError(t, m.StepTick())
	assert.False(t, m.ConsumeRedraw(), "loop iterations do not mark the frame dirty")
}

func TestSetKeyReachesCPU(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load(selfLoop))

	m.SetKey(0xA, true)
	assert.True(t, m.CPU().Key(0xA))
	m.SetKey(0xA, false)
	assert.False(t, m.CPU().Key(0xA))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "paused", Paused.String())
	assert.Equal(t, "halted", Halted.String())
}
