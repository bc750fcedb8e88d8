// Package host is the host-side client for the capture instrument's byte
// protocol: single-byte commands, 4-byte little-endian parameter loads, a
// "start" boot greeting, and raw capture data streamed back after a
// session ends.
package host

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"time"

	"github.com/lacap/pkg/capture"
	"github.com/lacap/pkg/instrument"
)

// SysClockHz is the instrument's system clock; it is both the maximum
// sample rate and the time base for the test generator registers.
const SysClockHz = 27_000_000

// DefaultSampleRateHz matches the device's reset divisor.
const DefaultSampleRateHz = 100_000

// Client drives one instrument over a byte transport. If the transport
// supports read deadlines (net.Conn, serial port), reads are bounded;
// otherwise they block until data arrives.
type Client struct {
	rw io.ReadWriter
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// NewClient wraps an open transport.
func NewClient(rw io.ReadWriter) *Client {
	return &Client{rw: rw}
}

// WaitForReady consumes input until the boot greeting is seen or the
// timeout elapses. Devices that booted earlier never resend the greeting,
// so callers typically treat ErrNoGreeting as a warning.
func (c *Client) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var window []byte
	buf := make([]byte, 64)
	for time.Now().Before(deadline) {
		c.armReadDeadline(50 * time.Millisecond)
		n, err := c.rw.Read(buf)
		if n > 0 {
			window = append(window, buf[:n]...)
			if bytes.Contains(window, []byte(instrument.Greeting)) {
				return nil
			}
			if len(window) > 4*len(instrument.Greeting) {
				window = window[len(window)-len(instrument.Greeting):]
			}
		}
		if err != nil && !isTimeout(err) {
			return fmt.Errorf("waiting for greeting: %w", err)
		}
	}
	return ErrNoGreeting
}

// Start arms a capture session.
func (c *Client) Start() error { return c.command(capture.CmdStart) }

// Stop ends the sampling phase; the device then transmits whatever was
// captured.
func (c *Client) Stop() error { return c.command(capture.CmdStop) }

// SetSampleRate programs the sample-rate divisor for the requested rate
// and returns the actual, quantized rate.
func (c *Client) SetSampleRate(hz float64) (float64, error) {
	if hz <= 0 || hz > SysClockHz {
		return 0, fmt.Errorf("%w: %g Hz", ErrInvalidRate, hz)
	}
	divisor := clampU32(math.Round(SysClockHz / hz))
	if err := c.load(capture.CmdSetSampleRate, divisor); err != nil {
		return 0, err
	}
	return SysClockHz / float64(divisor), nil
}

// SetFrequency programs the test generator's output frequency and returns
// the actual, quantized frequency.
func (c *Client) SetFrequency(hz float64) (float64, error) {
	if hz <= 0 || hz > SysClockHz/2 {
		return 0, fmt.Errorf("%w: %g Hz", ErrInvalidFrequency, hz)
	}
	halfPeriod := clampU32(math.Floor(SysClockHz / hz / 2))
	if err := c.load(capture.CmdSetFrequency, halfPeriod); err != nil {
		return 0, err
	}
	return SysClockHz / (float64(halfPeriod) * 2), nil
}

// SetDutyCycle programs the generator's high time for the given output
// frequency and duty ratio, returning the actual ratio after quantization.
func (c *Client) SetDutyCycle(freqHz, ratio float64) (float64, error) {
	if ratio <= 0 || ratio >= 1 {
		return 0, ErrInvalidDuty
	}
	if freqHz <= 0 || freqHz > SysClockHz/2 {
		return 0, fmt.Errorf("%w: %g Hz", ErrInvalidFrequency, freqHz)
	}
	period := math.Floor(SysClockHz / freqHz)
	high := math.Floor(period * ratio)
	if high < 1 {
		high = 1
	}
	if high > period-1 {
		high = period - 1
	}
	if err := c.load(capture.CmdSetDutyCycle, uint32(high)); err != nil {
		return 0, err
	}
	return high / period, nil
}

// ReadCapture collects up to max capture bytes, returning early once the
// stream goes quiet for idle. A partial capture after Stop is shorter than
// max; that is not an error.
func (c *Client) ReadCapture(max int, idle time.Duration) ([]byte, error) {
	data := make([]byte, 0, max)
	buf := make([]byte, 4096)
	last := time.Now()
	for len(data) < max {
		c.armReadDeadline(50 * time.Millisecond)
		n, err := c.rw.Read(buf)
		if n > 0 {
			room := max - len(data)
			if n > room {
				n = room
			}
			data = append(data, buf[:n]...)
			last = time.Now()
			continue
		}
		if err != nil && !isTimeout(err) {
			return data, fmt.Errorf("reading capture: %w", err)
		}
		if time.Since(last) > idle {
			break
		}
	}
	return data, nil
}

func (c *Client) command(cmd byte) error {
	if _, err := c.rw.Write([]byte{cmd}); err != nil {
		return fmt.Errorf("sending command 0x%02X: %w", cmd, err)
	}
	return nil
}

// load sends a parameter-set command followed by its 4-byte little-endian
// payload.
func (c *Client) load(cmd byte, value uint32) error {
	msg := make([]byte, 5)
	msg[0] = cmd
	binary.LittleEndian.PutUint32(msg[1:], value)
	if _, err := c.rw.Write(msg); err != nil {
		return fmt.Errorf("sending command 0x%02X: %w", cmd, err)
	}
	return nil
}

func (c *Client) armReadDeadline(d time.Duration) {
	if rd, ok := c.rw.(readDeadliner); ok {
		rd.SetReadDeadline(time.Now().Add(d))
	}
}

func clampU32(v float64) uint32 {
	if v < 1 {
		return 1
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
