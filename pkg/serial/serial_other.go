//go:build !linux

package serial

import (
	"errors"
	"time"
)

// Port is an open serial device configured for raw 8N1 byte I/O.
type Port struct{}

var errUnsupported = errors.New("serial ports are only supported on Linux; use a tcp: device instead")

// Open is not supported on this platform.
func Open(path string, baud int) (*Port, error) { return nil, errUnsupported }

func (p *Port) Read(b []byte) (int, error)        { return 0, errUnsupported }
func (p *Port) Write(b []byte) (int, error)       { return 0, errUnsupported }
func (p *Port) Close() error                      { return nil }
func (p *Port) SetReadDeadline(t time.Time) error { return errUnsupported }
