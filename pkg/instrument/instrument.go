// Package instrument runs a complete virtual capture device: the
// acquisition controller and the square-wave test generator advanced in
// lock-step over a byte transport. It stands in for the hardware during
// development and in tests, speaking the exact wire protocol.
package instrument

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/lacap/pkg/capture"
	"github.com/lacap/pkg/siggen"
)

// Greeting is the fixed boot handshake emitted before any
// controller-issued byte.
const Greeting = "start"

// SampleSource supplies the upper channel bits for one tick. Bit 0 is
// always driven by the test generator; sources should leave it zero.
type SampleSource func(tick uint64) byte

// Config parameterizes a virtual device. Zero values select the hardware
// defaults.
type Config struct {
	Capture capture.Config

	// generator register presets
	HalfPeriod uint32
	HighTicks  uint32

	// Source drives channels 1..7; nil leaves them low.
	Source SampleSource

	// TicksPerSlice is how many ticks run between scheduling points.
	TicksPerSlice int
}

// Status is a point-in-time snapshot of the device registers, refreshed
// once per slice for diagnostic readout.
type Status struct {
	State         capture.State
	SampleCount   int
	Divisor       uint32
	GenHalfPeriod uint32
	GenHighTicks  uint32
	Ticks         uint64
}

// Device couples a controller and generator to a transport.
type Device struct {
	cfg  Config
	ctrl *capture.Controller
	gen  *siggen.Generator

	mu     sync.RWMutex
	status Status
}

// New builds a device. The controller and generator start from reset
// defaults unless overridden by cfg.
func New(cfg Config) *Device {
	if cfg.TicksPerSlice <= 0 {
		cfg.TicksPerSlice = 8192
	}
	return &Device{
		cfg:  cfg,
		ctrl: capture.NewController(cfg.Capture),
		gen:  siggen.New(cfg.HalfPeriod, cfg.HighTicks),
	}
}

// SetTrigger installs a trigger configuration before or between runs.
func (d *Device) SetTrigger(t capture.TriggerConfig) { d.ctrl.SetTrigger(t) }

// Status returns the latest diagnostic snapshot.
func (d *Device) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Run drives the device over rw until the context is canceled or the
// transport fails. The greeting is written before the tick loop starts, so
// no controller byte can ever precede it.
func (d *Device) Run(ctx context.Context, rw io.ReadWriter) error {
	if _, err := io.WriteString(rw, Greeting); err != nil {
		return fmt.Errorf("boot greeting: %w", err)
	}

	rxCh := make(chan byte, 4096)
	errCh := make(chan error, 2)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := rw.Read(buf)
			for i := 0; i < n; i++ {
				select {
				case rxCh <- buf[i]:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				errCh <- fmt.Errorf("transport read: %w", err)
				return
			}
		}
	}()

	// The controller keeps at most one byte in flight: a new TxValid pulse
	// only follows a TxDone, so a buffer of one can never block the loop.
	txCh := make(chan byte, 1)
	txDone := make(chan struct{}, 1)
	go func() {
		one := make([]byte, 1)
		for {
			select {
			case b := <-txCh:
				one[0] = b
				if _, err := rw.Write(one); err != nil {
					errCh <- fmt.Errorf("transport write: %w", err)
					return
				}
				txDone <- struct{}{}
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		tick       uint64
		pendFreqUp bool
		pendFreq   uint32
		pendDutyUp bool
		pendDuty   uint32
	)

	for {
		busy := false
		for i := 0; i < d.cfg.TicksPerSlice; i++ {
			var in capture.Inputs

			select {
			case b := <-rxCh:
				in.RxByte, in.RxValid = b, true
				busy = true
			default:
			}
			select {
			case <-txDone:
				in.TxDone = true
				busy = true
			default:
			}

			// generator updates registered on the previous tick apply now
			level := d.gen.Tick(pendFreqUp, pendFreq, pendDutyUp, pendDuty)
			pendFreqUp, pendDutyUp = false, false

			in.Sample = 0
			if d.cfg.Source != nil {
				in.Sample = d.cfg.Source(tick) &^ 0x01
			}
			if level {
				in.Sample |= 0x01
			}

			out := d.ctrl.Step(in)
			tick++

			if out.TxValid {
				txCh <- out.TxByte
			}
			if out.FreqUpdate {
				pendFreqUp, pendFreq = true, out.FreqValue
			}
			if out.DutyUpdate {
				pendDutyUp, pendDuty = true, out.DutyValue
			}
			if out.State != capture.StateIdle {
				busy = true
			}
		}

		d.mu.Lock()
		d.status = Status{
			State:         d.ctrl.State(),
			SampleCount:   d.ctrl.SampleCount(),
			Divisor:       d.ctrl.Divisor(),
			GenHalfPeriod: d.gen.HalfPeriod(),
			GenHighTicks:  d.gen.HighTicks(),
			Ticks:         tick,
		}
		d.mu.Unlock()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !busy {
			time.Sleep(time.Millisecond)
		}
	}
}
