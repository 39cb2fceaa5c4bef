// Package event describes the kinds of input events backends can report.
package event

// Type represents the type of input event.
type Type int

const (
	Press   Type = iota // Key pressed down
	Release             // Key released
	Hold                // Continuous while pressed
)
