// Package memory implements the flat 4KB CHIP-8 address space, including
// the built-in hexadecimal font table and ROM image loading.
package memory

import (
	"errors"
	"fmt"
)

const (
	// Size is the full addressable RAM in bytes.
	Size = 4096
	// ProgramStart is the fixed load address for ROM images.
	ProgramStart = 0x200
	// MaxROMSize is the largest loadable program image.
	MaxROMSize = Size - ProgramStart

	glyphSize = 5
)

var (
	// ErrROMTooLarge is returned when a ROM image does not fit in the
	// program area above ProgramStart.
	ErrROMTooLarge = errors.New("memory: ROM image exceeds available program space")
	// ErrOutOfRange is returned for accesses outside the 4KB address space.
	ErrOutOfRange = errors.New("memory: address out of range")
)

// fontset is the built-in 16-glyph hexadecimal font, 5 bytes per glyph,
// installed at address 0x000. Glyph k lives at address 5*k.
var fontset = [16 * glyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the byte-addressable program store. The zero value is not ready
// for use; call New so the font table is installed.
type Memory struct {
	ram [Size]byte
}

// New returns memory with the font table installed and no program loaded.
func New() *Memory {
	m := &Memory{}
	m.installFont()
	return m
}

func (m *Memory) installFont() {
	copy(m.ram[:], fontset[:])
}

// LoadROM resets RAM, reinstalls the font table and copies the program
// image to ProgramStart. Memory is left untouched when the image is too
// large.
func (m *Memory) LoadROM(data []byte) error {
	if len(data) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(data), MaxROMSize)
	}

	m.ram = [Size]byte{}
	m.installFont()
	copy(m.ram[ProgramStart:], data)

	return nil
}

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) (byte, error) {
	if addr >= Size {
		return 0, fmt.Errorf("%w: read at 0x%04X", ErrOutOfRange, addr)
	}
	return m.ram[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr uint16, value byte) error {
	if addr >= Size {
		return fmt.Errorf("%w: write at 0x%04X", ErrOutOfRange, addr)
	}
	m.ram[addr] = value
	return nil
}

// FontAddress returns the base address of the font glyph for the low nibble
// of digit.
func FontAddress(digit uint8) uint16 {
	return uint16(digit&0x0F) * glyphSize
}
