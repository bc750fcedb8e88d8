//go:build linux

// Package serial opens tty devices in raw mode for the instrument's byte
// protocol. The instrument side runs at 115200 8N1.
package serial

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Port is an open serial device configured for raw 8N1 byte I/O.
type Port struct {
	f *os.File
}

var baudFlags = map[int]uint32{
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// Open opens path in raw mode at the given baud rate. Reads return
// whatever is available after at most a tenth of a second, so callers can
// poll without blocking forever.
func Open(path string, baud int) (*Port, error) {
	flag, ok := baudFlags[baud]
	if !ok {
		return nil, fmt.Errorf("unsupported baud rate %d", baud)
	}

	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	fd := int(f.Fd())
	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading termios on %s: %w", path, err)
	}

	// raw mode: no line discipline, no echo, no flow control, 8N1
	tio.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP |
		unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON | unix.IXOFF | unix.IXANY
	tio.Oflag &^= unix.OPOST
	tio.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	tio.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB | unix.CRTSCTS
	tio.Cflag |= unix.CS8 | unix.CREAD | unix.CLOCAL

	tio.Cc[unix.VMIN] = 0
	tio.Cc[unix.VTIME] = 1 // deciseconds

	tio.Ispeed = flag
	tio.Ospeed = flag
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, tio); err != nil {
		f.Close()
		return nil, fmt.Errorf("configuring %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIOFLUSH); err != nil {
		f.Close()
		return nil, fmt.Errorf("flushing %s: %w", path, err)
	}

	return &Port{f: f}, nil
}

func (p *Port) Read(b []byte) (int, error)  { return p.f.Read(b) }
func (p *Port) Write(b []byte) (int, error) { return p.f.Write(b) }
func (p *Port) Close() error                { return p.f.Close() }

// SetReadDeadline bounds subsequent reads; os.File on a tty honors
// deadlines through the poller.
func (p *Port) SetReadDeadline(t time.Time) error { return p.f.SetReadDeadline(t) }
