package gpio

import "fmt"

// FakeConn is a test double that tracks pin configuration, records writes,
// and returns scripted levels for input pins.
type FakeConn struct {
	pins map[Pin]*fakePin

	// Writes records every Write and Toggle in order, for asserting on
	// multiplexing sequences.
	Writes []WriteOp

	// ReadError, if set, is returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// WriteOp is one recorded level change.
type WriteOp struct {
	Pin   Pin
	Level int
}

type fakePin struct {
	dir    Direction
	pull   Pull
	level  int
	script []int
	idx    int
}

// NewFakeConn creates an empty FakeConn. Pins must be configured before use,
// as on real hardware.
func NewFakeConn() *FakeConn {
	return &FakeConn{pins: make(map[Pin]*fakePin)}
}

// Configure registers the pin. Inputs default to the level their pull mode
// implies: pull-up reads High, everything else Low.
func (f *FakeConn) Configure(pin Pin, dir Direction, pull Pull) error {
	p := &fakePin{dir: dir, pull: pull}
	if dir == Input && pull == PullUp {
		p.level = High
	}
	f.pins[pin] = p
	return nil
}

// Script queues levels for an input pin. Read consumes them in order and
// repeats the last one once exhausted.
func (f *FakeConn) Script(pin Pin, levels ...int) {
	p, ok := f.pins[pin]
	if !ok {
		panic(fmt.Sprintf("gpio: Script on unconfigured pin %s", pin))
	}
	p.script = append(p.script, levels...)
}

// Write drives an output pin.
func (f *FakeConn) Write(pin Pin, level int) error {
	p, ok := f.pins[pin]
	if !ok {
		return fmt.Errorf("write %s: not configured", pin)
	}
	if p.dir != Output {
		return fmt.Errorf("write %s: not an output", pin)
	}
	p.level = level
	f.Writes = append(f.Writes, WriteOp{Pin: pin, Level: level})
	return nil
}

// Read samples the pin: the next scripted level for inputs, the last driven
// level for outputs.
func (f *FakeConn) Read(pin Pin) (int, error) {
	if f.ReadError != nil {
		return Low, f.ReadError
	}
	p, ok := f.pins[pin]
	if !ok {
		return Low, fmt.Errorf("read %s: not configured", pin)
	}
	if p.dir == Output || len(p.script) == 0 {
		return p.level, nil
	}
	level := p.script[p.idx]
	if p.idx < len(p.script)-1 {
		p.idx++
	}
	return level, nil
}

// Toggle inverts an output pin.
func (f *FakeConn) Toggle(pin Pin) error {
	p, ok := f.pins[pin]
	if !ok {
		return fmt.Errorf("toggle %s: not configured", pin)
	}
	if p.dir != Output {
		return fmt.Errorf("toggle %s: not an output", pin)
	}
	return f.Write(pin, 1-p.level)
}

// Close marks the conn as closed.
func (f *FakeConn) Close() error {
	f.Closed = true
	return nil
}

// Level returns the current level of a configured pin, for assertions.
func (f *FakeConn) Level(pin Pin) int {
	if p, ok := f.pins[pin]; ok {
		return p.level
	}
	return Low
}

// ResetWrites clears the recorded write log.
func (f *FakeConn) ResetWrites() {
	f.Writes = nil
}
