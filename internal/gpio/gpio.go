// Package gpio defines the digital-I/O contract between the timer core and
// the pins it drives. The real implementation uses the Linux GPIO character
// device. The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Pin identifies a line as a port/offset pair: Pin{1, 20} is P1.20. Port n
// maps to gpiochip n on the real backend.
type Pin struct {
	Port   uint8
	Offset uint8
}

func (p Pin) String() string {
	return fmt.Sprintf("P%d_%d", p.Port, p.Offset)
}

// Direction configures a pin as input or output.
type Direction uint8

const (
	Input Direction = iota
	Output
)

// Pull selects a pin's pull-resistor mode.
type Pull uint8

const (
	PullNone Pull = iota
	PullDown
	PullUp
	PullRepeater // holds the last driven level
)

// Line levels.
const (
	Low  = 0
	High = 1
)

// Conn drives a set of GPIO lines. Configure must succeed for a pin before
// the other operations accept it; reads and writes against the wrong
// direction are errors, not silent no-ops.
type Conn interface {
	// Configure claims the pin with the given direction and pull mode.
	Configure(pin Pin, dir Direction, pull Pull) error

	// Write drives an output pin to the given level.
	Write(pin Pin, level int) error

	// Read samples the pin's current level.
	Read(pin Pin) (int, error)

	// Toggle inverts an output pin.
	Toggle(pin Pin) error

	// Close releases all claimed lines.
	Close() error
}
