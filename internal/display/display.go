// Package display renders remaining time on a 4-digit 7-segment display.
// The segment bus is shared across digits, so rendering is time-multiplexed:
// each call illuminates exactly one digit and the caller cycles through all
// four fast enough for persistence of vision (2ms per digit or better).
package display

import (
	"fmt"

	"github.com/sweeney/countdown-timer/internal/gpio"
)

// Blank renders all segments off. Any digit value above 9 does.
const Blank = 0xFF

// Common-cathode segment patterns for 0-9, bit 0 = segment a, bit 6 = g.
var segments = [10]uint8{
	0x3F, // 0: abcdef
	0x06, // 1: bc
	0x5B, // 2: abdeg
	0x4F, // 3: abcdg
	0x66, // 4: bcfg
	0x6D, // 5: acdfg
	0x7D, // 6: acdefg
	0x07, // 7: abc
	0x7F, // 8: abcdefg
	0x6F, // 9: abcdfg
}

// Frame is the four digit values to show, left to right, plus the
// decimal-point position (digit index, -1 for none). Frames are recomputed
// from the remaining seconds every cycle, never stored.
type Frame struct {
	Digits [4]uint8
	DP     int
}

// FrameFor formats whole seconds as MM:SS: minutes tens and ones, seconds
// tens and ones, decimal point after the second digit. Values above 99:59
// are clamped to the display's range.
func FrameFor(seconds uint32) Frame {
	if seconds > 5999 {
		seconds = 5999
	}
	min := seconds / 60
	sec := seconds % 60
	return Frame{
		Digits: [4]uint8{
			uint8(min / 10), uint8(min % 10),
			uint8(sec / 10), uint8(sec % 10),
		},
		DP: 1,
	}
}

// Mux drives the display through the HAL: eight segment lines (a-g plus
// decimal point) and four digit-enable lines.
type Mux struct {
	conn   gpio.Conn
	segs   [8]gpio.Pin
	digits [4]gpio.Pin
	cur    int
}

// NewMux claims the segment and digit-enable pins as outputs, all driven
// low (display dark).
func NewMux(conn gpio.Conn, segs [8]gpio.Pin, digits [4]gpio.Pin) (*Mux, error) {
	for _, p := range segs {
		if err := conn.Configure(p, gpio.Output, gpio.PullNone); err != nil {
			return nil, fmt.Errorf("configure segment %s: %w", p, err)
		}
	}
	for _, p := range digits {
		if err := conn.Configure(p, gpio.Output, gpio.PullNone); err != nil {
			return nil, fmt.Errorf("configure digit %s: %w", p, err)
		}
	}
	return &Mux{conn: conn, segs: segs, digits: digits}, nil
}

// Render shows one digit of the frame and advances the rotation 0-1-2-3-0.
// All digit enables drop before the segment lines change, so the outgoing
// digit cannot ghost the incoming pattern.
func (m *Mux) Render(f Frame) error {
	for _, p := range m.digits {
		if err := m.conn.Write(p, gpio.Low); err != nil {
			return fmt.Errorf("disable digit %s: %w", p, err)
		}
	}

	var pattern uint8
	if v := f.Digits[m.cur]; v <= 9 {
		pattern = segments[v]
	}
	for i := 0; i < 7; i++ {
		if err := m.conn.Write(m.segs[i], int(pattern>>i)&1); err != nil {
			return fmt.Errorf("write segment %s: %w", m.segs[i], err)
		}
	}

	dp := gpio.Low
	if f.DP == m.cur {
		dp = gpio.High
	}
	if err := m.conn.Write(m.segs[7], dp); err != nil {
		return fmt.Errorf("write decimal point %s: %w", m.segs[7], err)
	}

	if err := m.conn.Write(m.digits[m.cur], gpio.High); err != nil {
		return fmt.Errorf("enable digit %s: %w", m.digits[m.cur], err)
	}
	m.cur = (m.cur + 1) % 4
	return nil
}

// Position returns the digit index the next Render call will illuminate.
func (m *Mux) Position() int {
	return m.cur
}
