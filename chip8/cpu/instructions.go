package cpu

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-chip8/chip8/memory"
	"github.com/valerio/go-chip8/chip8/video"
)

// Step runs one fetch-decode-execute cycle. The program counter advances by
// one instruction during the fetch, before dispatch; jump and call opcodes
// then overwrite it. A returned error is fatal to the machine.
func (c *CPU) Step() error {
	if c.pc < memory.ProgramStart || c.pc >= memory.Size-1 {
		return fmt.Errorf("%w: 0x%04X", ErrPCOutOfRange, c.pc)
	}

	hi, err := c.mem.Read(c.pc)
	if err != nil {
		return err
	}
	lo, err := c.mem.Read(c.pc + 1)
	if err != nil {
		return err
	}

	inst := Decode(hi, lo)
	c.pc += instructionSize

	return c.execute(inst)
}

// execute dispatches on the opcode's high nibble, with a second-level
// dispatch on the low nibble or byte for the 0x0, 0x8, 0xE and 0xF groups.
func (c *CPU) execute(inst Instruction) error {
	switch inst.Opcode >> 12 {
	case 0x0:
		return c.execSystem(inst)
	case 0x1:
		// 1NNN: jump
		c.pc = inst.NNN
	case 0x2:
		// 2NNN: call subroutine
		if err := c.pushStack(c.pc); err != nil {
			return fmt.Errorf("%w: call to 0x%04X at depth %d", err, inst.NNN, c.sp)
		}
		c.pc = inst.NNN
	case 0x3:
		// 3XNN: skip if VX == NN
		c.skipIf(c.v[inst.X] == inst.NN)
	case 0x4:
		// 4XNN: skip if VX != NN
		c.skipIf(c.v[inst.X] != inst.NN)
	case 0x5:
		// 5XY0: skip if VX == VY
		if inst.N != 0x0 {
			c.unknown(inst)
			return nil
		}
		c.skipIf(c.v[inst.X] == c.v[inst.Y])
	case 0x6:
		// 6XNN: VX = NN
		c.v[inst.X] = inst.NN
	case 0x7:
		// 7XNN: VX += NN, wrapping, flags untouched
		c.v[inst.X] += inst.NN
	case 0x8:
		c.execALU(inst)
	case 0x9:
		// 9XY0: skip if VX != VY
		if inst.N != 0x0 {
			c.unknown(inst)
			return nil
		}
		c.skipIf(c.v[inst.X] != c.v[inst.Y])
	case 0xA:
		// ANNN: I = NNN
		c.i = inst.NNN
	case 0xB:
		// BNNN: jump to V0 + NNN
		c.pc = uint16(c.v[0x0]) + inst.NNN
	case 0xC:
		// CXNN: VX = random byte AND NN
		c.v[inst.X] = c.rand() & inst.NN
	case 0xD:
		// DXYN: draw sprite
		return c.drawSprite(inst)
	case 0xE:
		c.execKey(inst)
	case 0xF:
		return c.execMisc(inst)
	}
	return nil
}

func (c *CPU) execSystem(inst Instruction) error {
	switch inst.NN {
	case 0xE0:
		// 00E0: clear screen
		c.fb.Clear()
		c.redraw = true
	case 0xEE:
		// 00EE: return from subroutine
		addr, err := c.popStack()
		if err != nil {
			return err
		}
		c.pc = addr
	default:
		// 0NNN machine-code routines, ignored by modern interpreters.
		c.unknown(inst)
	}
	return nil
}

// execALU handles the 8XYN register-to-register group. VF is written last
// so that the flag survives when X or Y is VF itself.
func (c *CPU) execALU(inst Instruction) {
	x, y := inst.X, inst.Y

	switch inst.N {
	case 0x0:
		// 8XY0: VX = VY
		c.v[x] = c.v[y]
	case 0x1:
		// 8XY1: VX |= VY
		c.v[x] |= c.v[y]
		c.clobberFlag()
	case 0x2:
		// 8XY2: VX &= VY
		c.v[x] &= c.v[y]
		c.clobberFlag()
	case 0x3:
		// 8XY3: VX ^= VY
		c.v[x] ^= c.v[y]
		c.clobberFlag()
	case 0x4:
		// 8XY4: VX += VY, VF = carry
		sum := uint16(c.v[x]) + uint16(c.v[y])
		c.v[x] = uint8(sum)
		c.setFlag(sum > 0xFF)
	case 0x5:
		// 8XY5: VX -= VY, VF = no borrow
		noBorrow := c.v[y] <= c.v[x]
		c.v[x] -= c.v[y]
		c.setFlag(noBorrow)
	case 0x6:
		// 8XY6: shift right; the classic dialect shifts VY into VX
		src := x
		if c.profile.ShiftsFromVY() {
			src = y
		}
		bit := c.v[src] & 0x01
		c.v[x] = c.v[src] >> 1
		c.setFlag(bit != 0)
	case 0x7:
		// 8XY7: VX = VY - VX, VF = no borrow
		noBorrow := c.v[x] <= c.v[y]
		c.v[x] = c.v[y] - c.v[x]
		c.setFlag(noBorrow)
	case 0xE:
		// 8XYE: shift left; the classic dialect shifts VY into VX
		src := x
		if c.profile.ShiftsFromVY() {
			src = y
		}
		bit := c.v[src] & 0x80
		c.v[x] = c.v[src] << 1
		c.setFlag(bit != 0)
	default:
		c.unknown(inst)
	}
}

// drawSprite implements DXYN: an 8xN sprite read from memory at I is XORed
// onto the screen at (VX mod 64, VY mod 32). Rows clip at the right edge
// and the sprite clips at the bottom edge; VF accumulates the collision
// flag over the whole sprite.
func (c *CPU) drawSprite(inst Instruction) error {
	startX := uint(c.v[inst.X]) % video.FramebufferWidth
	startY := uint(c.v[inst.Y]) % video.FramebufferHeight

	c.v[flagRegister] = 0

	for row := uint16(0); row < uint16(inst.N); row++ {
		y := startY + uint(row)
		if y >= video.FramebufferHeight {
			break
		}

		line, err := c.mem.Read(c.i + row)
		if err != nil {
			return err
		}

		for col := uint(0); col < 8; col++ {
			x := startX + col
			if x >= video.FramebufferWidth {
				break
			}
			if line&(0x80>>col) == 0 {
				continue
			}
			if c.fb.Flip(x, y) {
				c.v[flagRegister] = 1
			}
		}
	}

	c.redraw = true
	return nil
}

func (c *CPU) execKey(inst Instruction) {
	key := c.v[inst.X] & 0x0F
	switch inst.NN {
	case 0x9E:
		// EX9E: skip if key VX pressed
		c.skipIf(c.keypad[key])
	case 0xA1:
		// EXA1: skip if key VX not pressed
		c.skipIf(!c.keypad[key])
	default:
		c.unknown(inst)
	}
}

func (c *CPU) execMisc(inst Instruction) error {
	x := inst.X

	switch inst.NN {
	case 0x07:
		// FX07: VX = delay timer
		c.v[x] = c.delayTimer
	case 0x0A:
		// FX0A: wait for a key press
		c.waitForKey(x)
	case 0x15:
		// FX15: delay timer = VX
		c.delayTimer = c.v[x]
	case 0x18:
		// FX18: sound timer = VX
		c.soundTimer = c.v[x]
	case 0x1E:
		// FX1E: I += VX, no flag effect
		c.i += uint16(c.v[x])
	case 0x29:
		// FX29: I = font glyph address for VX
		c.i = memory.FontAddress(c.v[x])
	case 0x33:
		// FX33: binary-coded decimal of VX at I, I+1, I+2
		value := c.v[x]
		digits := [3]byte{value / 100, value / 10 % 10, value % 10}
		for offset, digit := range digits {
			if err := c.mem.Write(c.i+uint16(offset), digit); err != nil {
				return err
			}
		}
	case 0x55:
		// FX55: store V0..VX at I
		for r := uint8(0); r <= x; r++ {
			if err := c.mem.Write(c.i+uint16(r), c.v[r]); err != nil {
				return err
			}
		}
		if c.profile.IncrementsI() {
			c.i += uint16(x) + 1
		}
	case 0x65:
		// FX65: load V0..VX from I
		for r := uint8(0); r <= x; r++ {
			b, err := c.mem.Read(c.i + uint16(r))
			if err != nil {
				return err
			}
			c.v[r] = b
		}
		if c.profile.IncrementsI() {
			c.i += uint16(x) + 1
		}
	default:
		c.unknown(inst)
	}
	return nil
}

// waitForKey implements FX0A as polling across ticks instead of blocking:
// the instruction re-presents itself by rewinding the fetch advance until a
// key has been pressed and then released. The latched key survives across
// ticks as CPU state.
func (c *CPU) waitForKey(x uint8) {
	if c.waitKey == noKeyLatched {
		for key := uint8(0); key < numKeys; key++ {
			if c.keypad[key] {
				c.waitKey = int(key)
				break
			}
		}
		c.pc -= instructionSize
		return
	}

	if c.keypad[c.waitKey] {
		// still held, keep re-presenting the instruction
		c.pc -= instructionSize
		return
	}

	c.v[x] = uint8(c.waitKey)
	c.waitKey = noKeyLatched
}

func (c *CPU) skipIf(condition bool) {
	if condition {
		c.pc += instructionSize
	}
}

func (c *CPU) setFlag(condition bool) {
	if condition {
		c.v[flagRegister] = 1
	} else {
		c.v[flagRegister] = 0
	}
}

// clobberFlag applies the classic-dialect artifact that zeroes VF after the
// 8XY1/2/3 logical ops.
func (c *CPU) clobberFlag() {
	if c.profile.ClobbersVF() {
		c.v[flagRegister] = 0
	}
}

// unknown reports an unrecognized bit pattern. These are explicitly
// non-fatal: execution continues at the next instruction.
func (c *CPU) unknown(inst Instruction) {
	slog.Debug("Ignoring unrecognized opcode",
		"opcode", fmt.Sprintf("0x%04X", inst.Opcode),
		"pc", fmt.Sprintf("0x%04X", c.pc-instructionSize))
}
