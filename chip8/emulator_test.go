package chip8

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/quirks"
	"github.com/valerio/go-chip8/chip8/timing"
)

func TestRunStopsAfterHeadlessTickBudget(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load(selfLoop))

	e := NewEmulator(m, headless.New(5, headless.SnapshotConfig{}), timing.NewNoOpLimiter())
	require.NoError(t, e.Run(backend.BackendConfig{Title: "test"}))

	assert.Equal(t, uint64(5), m.TickCount())
}

func TestRunReturnsMachineFault(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load([]byte{0x00, 0xEE}))

	e := NewEmulator(m, headless.New(100, headless.SnapshotConfig{}), timing.NewNoOpLimiter())
	err := e.Run(backend.BackendConfig{Title: "test"})

	require.Error(t, err)
	assert.Equal(t, Halted, m.State())
}

func TestRunStopsWhenHalted(t *testing.T) {
	m := New(quirks.Classic, 60)
	require.NoError(t, m.Load(selfLoop))

	e := NewEmulator(m, headless.New(100, headless.SnapshotConfig{}), timing.NewNoOpLimiter())

	m.Halt()
	require.NoError(t, e.Run(backend.BackendConfig{Title: "test"}))
	assert.Equal(t, uint64(0), m.TickCount())
}
