//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealConn drives pins through the Linux GPIO character device. Each port
// maps to a gpiochip ("gpiochip0" for port 0, and so on); chips are opened
// on first use and lines are claimed per Configure call.
type RealConn struct {
	chips map[uint8]*gpiocdev.Chip
	lines map[Pin]*realLine
}

type realLine struct {
	line  *gpiocdev.Line
	dir   Direction
	level int // last driven level, for Toggle
}

// NewRealConn creates a conn for actual hardware.
func NewRealConn() *RealConn {
	return &RealConn{
		chips: make(map[uint8]*gpiocdev.Chip),
		lines: make(map[Pin]*realLine),
	}
}

func (c *RealConn) chip(port uint8) (*gpiocdev.Chip, error) {
	if ch, ok := c.chips[port]; ok {
		return ch, nil
	}
	ch, err := gpiocdev.NewChip(fmt.Sprintf("gpiochip%d", port))
	if err != nil {
		return nil, fmt.Errorf("open gpiochip%d: %w", port, err)
	}
	c.chips[port] = ch
	return ch, nil
}

func biasOption(pull Pull) (gpiocdev.LineReqOption, error) {
	switch pull {
	case PullNone:
		return gpiocdev.WithBiasDisabled, nil
	case PullDown:
		return gpiocdev.WithPullDown, nil
	case PullUp:
		return gpiocdev.WithPullUp, nil
	default:
		// The chardev uAPI has no repeater bias.
		return nil, fmt.Errorf("pull mode %d not supported by the gpio chardev", pull)
	}
}

// Configure claims the pin with the given direction and pull mode. Outputs
// start driven low. Reconfiguring a pin releases its previous claim first.
func (c *RealConn) Configure(pin Pin, dir Direction, pull Pull) error {
	ch, err := c.chip(pin.Port)
	if err != nil {
		return err
	}
	bias, err := biasOption(pull)
	if err != nil {
		return fmt.Errorf("configure %s: %w", pin, err)
	}

	if old, ok := c.lines[pin]; ok {
		old.line.Close()
		delete(c.lines, pin)
	}

	var line *gpiocdev.Line
	if dir == Output {
		line, err = ch.RequestLine(int(pin.Offset), gpiocdev.AsOutput(Low), bias)
	} else {
		line, err = ch.RequestLine(int(pin.Offset), gpiocdev.AsInput, bias)
	}
	if err != nil {
		return fmt.Errorf("request %s: %w", pin, err)
	}

	c.lines[pin] = &realLine{line: line, dir: dir}
	return nil
}

// Write drives an output pin.
func (c *RealConn) Write(pin Pin, level int) error {
	l, ok := c.lines[pin]
	if !ok {
		return fmt.Errorf("write %s: not configured", pin)
	}
	if l.dir != Output {
		return fmt.Errorf("write %s: not an output", pin)
	}
	if err := l.line.SetValue(level); err != nil {
		return fmt.Errorf("write %s: %w", pin, err)
	}
	l.level = level
	return nil
}

// Read samples the pin's current level.
func (c *RealConn) Read(pin Pin) (int, error) {
	l, ok := c.lines[pin]
	if !ok {
		return Low, fmt.Errorf("read %s: not configured", pin)
	}
	v, err := l.line.Value()
	if err != nil {
		return Low, fmt.Errorf("read %s: %w", pin, err)
	}
	return v, nil
}

// Toggle inverts an output pin.
func (c *RealConn) Toggle(pin Pin) error {
	l, ok := c.lines[pin]
	if !ok {
		return fmt.Errorf("toggle %s: not configured", pin)
	}
	if l.dir != Output {
		return fmt.Errorf("toggle %s: not an output", pin)
	}
	return c.Write(pin, 1-l.level)
}

// Close releases all lines and chips. Output lines are reconfigured to
// input with pull-down first, so external driver transistors are not left
// switched on across a restart.
func (c *RealConn) Close() error {
	var errs []error
	for pin, l := range c.lines {
		if l.dir == Output {
			if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
				errs = append(errs, fmt.Errorf("reconfigure %s: %w", pin, err))
			}
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", pin, err))
		}
	}
	for port, ch := range c.chips {
		if err := ch.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gpiochip%d: %w", port, err))
		}
	}
	c.lines = make(map[Pin]*realLine)
	c.chips = make(map[uint8]*gpiocdev.Chip)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
