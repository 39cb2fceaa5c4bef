package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InstallsFont(t *testing.T) {
	m := New()

	// glyph 0 starts with 0xF0, glyph F ends with 0x80
	b, err := m.Read(0x000)
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), b)

	b, err = m.Read(0x04F)
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), b)
}

func TestLoadROM(t *testing.T) {
	m := New()
	rom := []byte{0x12, 0x00, 0xA2, 0x2A}

	require.NoError(t, m.LoadROM(rom))

	for i, want := range rom {
		b, err := m.Read(ProgramStart + uint16(i))
		require.NoError(t, err)
		assert.Equal(t, want, b)
	}
}

func TestLoadROM_TooLarge(t *testing.T) {
	m := New()
	require.NoError(t, m.Write(0x300, 0xAB))

	err := m.LoadROM(make([]byte, MaxROMSize+1))
	assert.ErrorIs(t, err, ErrROMTooLarge)

	// memory untouched on failure
	b, err := m.Read(0x300)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)
}

func TestLoadROM_MaxSizeFits(t *testing.T) {
	m := New()
	assert.NoError(t, m.LoadROM(make([]byte, MaxROMSize)))
}

func TestLoadROM_ResetsPreviousImage(t *testing.T) {
	m := New()
	require.NoError(t, m.LoadROM([]byte{0xAA, 0xBB, 0xCC}))
	require.NoError(t, m.LoadROM([]byte{0x11}))

	b, err := m.Read(ProgramStart + 1)
	require.NoError(t, err)
	assert.Equal(t, byte(0x00), b, "stale bytes from the previous image must be cleared")

	// font survives the reload
	b, err = m.Read(0x000)
	require.NoError(t, err)
	assert.Equal(t, byte(0xF0), b)
}

func TestReadWrite_OutOfRange(t *testing.T) {
	m := New()

	_, err := m.Read(Size)
	assert.ErrorIs(t, err, ErrOutOfRange)

	err = m.Write(0xFFFF, 0x01)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestFontAddress(t *testing.T) {
	assert.Equal(t, uint16(0x00), FontAddress(0x0))
	assert.Equal(t, uint16(0x05), FontAddress(0x1))
	assert.Equal(t, uint16(0x4B), FontAddress(0xF))
	// only the low nibble selects the glyph
	assert.Equal(t, uint16(0x05), FontAddress(0xA1))
}
