//go:build !linux

package gpio

import "errors"

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealConn is not available on non-Linux platforms.
type RealConn struct{}

// NewRealConn returns a conn whose operations all fail.
func NewRealConn() *RealConn {
	return &RealConn{}
}

func (c *RealConn) Configure(pin Pin, dir Direction, pull Pull) error { return errUnsupported }

func (c *RealConn) Write(pin Pin, level int) error { return errUnsupported }

func (c *RealConn) Read(pin Pin) (int, error) { return Low, errUnsupported }

func (c *RealConn) Toggle(pin Pin) error { return errUnsupported }

func (c *RealConn) Close() error { return nil }
