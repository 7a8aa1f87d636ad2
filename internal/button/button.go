// Package button turns raw active-low GPIO levels into debounced press
// events: one reported press per physical actuation, on the not-pressed to
// pressed transition.
package button

import (
	"fmt"

	"github.com/sweeney/countdown-timer/internal/gpio"
)

// DefaultSettleMs is the debounce window applied after a detected edge.
const DefaultSettleMs = 50

// Sleeper blocks the caller for a number of milliseconds. Satisfied by
// systick.SysTick.
type Sleeper interface {
	SleepMs(ms uint32)
}

// Button tracks the sample history for one input pin.
type Button struct {
	Pin  gpio.Pin
	prev bool // previous sampled logical level, true = pressed
}

// Debouncer polls buttons through the HAL. Debounce is a read-time cost:
// the poll that observes an edge blocks for the settle window, so the
// mechanical bounce is simply never sampled. Acceptable here because the
// main loop has no latency-sensitive work during the window.
type Debouncer struct {
	conn     gpio.Conn
	sleeper  Sleeper
	settleMs uint32
}

// New creates a Debouncer with the given settle window.
func New(conn gpio.Conn, sleeper Sleeper, settleMs uint32) *Debouncer {
	return &Debouncer{conn: conn, sleeper: sleeper, settleMs: settleMs}
}

// Poll samples the button and reports whether a new press was observed.
// The wiring is active-low, so a low raw level means pressed. The previous
// level is updated on every call, pressed or not; a button held down keeps
// returning false until it is released and pressed again.
func (d *Debouncer) Poll(b *Button) (bool, error) {
	raw, err := d.conn.Read(b.Pin)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", b.Pin, err)
	}
	cur := raw == gpio.Low

	pressed := cur && !b.prev
	if pressed {
		d.sleeper.SleepMs(d.settleMs)
	}
	b.prev = cur
	return pressed, nil
}
