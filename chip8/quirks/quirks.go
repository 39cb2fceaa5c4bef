// Package quirks selects among the historical CHIP-8 dialects. Several
// opcodes changed meaning between the original COSMAC VIP interpreter and
// later SUPERCHIP-style interpreters; a Profile captures one consistent set
// of those behaviors. A profile is picked once when a machine is built and
// never changes during a run, so two machines with different dialects can
// execute side by side.
package quirks

import (
	"fmt"
	"strings"
)

// Profile identifies a CHIP-8 dialect.
type Profile int

const (
	// Classic is the original COSMAC VIP behavior.
	Classic Profile = iota
	// SuperChip is the SUPERCHIP-style behavior used by most 90s interpreters.
	SuperChip
	// XOChip is reserved for the XO-CHIP extension, which is not implemented.
	XOChip
)

// Parse returns the profile named by s. Recognized names are "classic"
// (aliases "chip8", "vip") and "superchip" (aliases "schip", "modern").
func Parse(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic", "chip8", "vip":
		return Classic, nil
	case "superchip", "schip", "modern":
		return SuperChip, nil
	case "xochip", "xo-chip":
		return XOChip, fmt.Errorf("quirks: the xo-chip dialect is reserved but not implemented")
	default:
		return Classic, fmt.Errorf("quirks: unknown dialect %q", s)
	}
}

func (p Profile) String() string {
	switch p {
	case Classic:
		return "classic"
	case SuperChip:
		return "superchip"
	case XOChip:
		return "xochip"
	default:
		return fmt.Sprintf("quirks.Profile(%d)", int(p))
	}
}

// ClobbersVF reports whether 8XY1/8XY2/8XY3 force VF to zero after the
// logical operation, an artifact of the original VIP hardware.
func (p Profile) ClobbersVF() bool {
	return p == Classic
}

// ShiftsFromVY reports whether 8XY6/8XYE read VY as the shift source
// instead of shifting VX in place.
func (p Profile) ShiftsFromVY() bool {
	return p == Classic
}

// IncrementsI reports whether FX55/FX65 advance I past the transferred
// register range.
func (p Profile) IncrementsI() bool {
	return p == Classic
}
