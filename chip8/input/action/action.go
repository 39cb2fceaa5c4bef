// Package action enumerates the input actions the emulator understands.
package action

// Action represents input actions that can be performed in the emulator.
type Action int

const (
	// Hexadecimal keypad, 0x0 through 0xF. These stay contiguous and in
	// key order so an action maps directly to its keypad index.
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorPauseToggle
	EmulatorReset
	EmulatorSnapshot
	EmulatorQuit
)

// KeypadIndex returns the hexadecimal keypad index for a keypad action and
// whether act is one.
func KeypadIndex(act Action) (uint8, bool) {
	if act >= Key0 && act <= KeyF {
		return uint8(act - Key0), true
	}
	return 0, false
}
