package cpu

// Instruction is a decoded opcode together with every derived field. It is
// recomputed each cycle and never persisted.
type Instruction struct {
	// Opcode is the full 16-bit instruction word.
	Opcode uint16
	// NNN is the low 12 bits, an address or wide literal.
	NNN uint16
	// NN is the low byte literal.
	NN uint8
	// N is the low nibble literal.
	N uint8
	// X is the first register index (bits 8-11).
	X uint8
	// Y is the second register index (bits 4-7).
	Y uint8
}

// Decode combines two big-endian memory bytes into the 16-bit opcode and
// extracts every field. It is a pure function: any bit pattern decodes.
func Decode(hi, lo byte) Instruction {
	op := uint16(hi)<<8 | uint16(lo)
	return Instruction{
		Opcode: op,
		NNN:    op & 0x0FFF,
		NN:     uint8(op & 0x00FF),
		N:      uint8(op & 0x000F),
		X:      uint8(op >> 8 & 0x0F),
		Y:      uint8(op >> 4 & 0x0F),
	}
}
