package main

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/lacap/pkg/serial"
)

// deviceConn is the transport the instrument sits behind: a raw serial
// port or a TCP socket (simulator, serial-over-ethernet bridge).
type deviceConn interface {
	io.ReadWriter
	Close() error
	SetReadDeadline(t time.Time) error
}

const instrumentBaud = 115200

// openDevice connects to the instrument. Paths of the form
// "tcp:host:port" dial a socket; anything else is opened as a tty.
func openDevice(path string) (deviceConn, error) {
	if addr, ok := strings.CutPrefix(path, "tcp:"); ok {
		c, err := net.DialTimeout("tcp", addr, 5*time.Second)
		if err != nil {
			return nil, fmt.Errorf("dialing %s: %w", addr, err)
		}
		return c, nil
	}
	return serial.Open(path, instrumentBaud)
}
