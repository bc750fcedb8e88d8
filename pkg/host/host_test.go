package host

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/lacap/pkg/capture"
	"github.com/lacap/pkg/instrument"
)

// startDevice runs a virtual instrument on one end of an in-memory pipe
// and returns the other end plus the device for register inspection.
func startDevice(t *testing.T, cfg instrument.Config, trig *capture.TriggerConfig) (*instrument.Device, net.Conn) {
	t.Helper()
	devConn, hostConn := net.Pipe()
	dev := instrument.New(cfg)
	if trig != nil {
		dev.SetTrigger(*trig)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go dev.Run(ctx, devConn)
	t.Cleanup(func() {
		cancel()
		devConn.Close()
		hostConn.Close()
	})
	return dev, hostConn
}

func waitStatus(t *testing.T, dev *instrument.Device, what string, ok func(instrument.Status) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if ok(dev.Status()) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("device never reached %s; last status %+v", what, dev.Status())
}

func TestGreetingThenFullCapture(t *testing.T) {
	cfg := instrument.Config{
		Capture:    capture.Config{Capacity: 64, Divisor: 2},
		HalfPeriod: 16,
		HighTicks:  16,
	}
	_, conn := startDevice(t, cfg, nil)
	cl := NewClient(conn)

	if err := cl.WaitForReady(2 * time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}
	if err := cl.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	data, err := cl.ReadCapture(64, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadCapture: %v", err)
	}
	if len(data) != 64 {
		t.Fatalf("got %d capture bytes, want 64", len(data))
	}

	// only the generator drives channel 0; upper bits stay low
	var highs, lows int
	for i, b := range data {
		if b&^0x01 != 0 {
			t.Fatalf("sample %d = 0x%02X has non-generator bits set", i, b)
		}
		if b == 1 {
			highs++
		} else {
			lows++
		}
	}
	if highs == 0 || lows == 0 {
		t.Fatalf("capture shows no square wave: %d high / %d low", highs, lows)
	}
}

func TestSetSampleRateOverWire(t *testing.T) {
	dev, conn := startDevice(t, instrument.Config{}, nil)
	cl := NewClient(conn)
	if err := cl.WaitForReady(2 * time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}

	actual, err := cl.SetSampleRate(100_000)
	if err != nil {
		t.Fatalf("SetSampleRate: %v", err)
	}
	if actual != 100_000 {
		t.Errorf("actual rate = %g, want 100000", actual)
	}
	waitStatus(t, dev, "divisor 270", func(s instrument.Status) bool {
		return s.Divisor == 270
	})

	actual, err = cl.SetSampleRate(1_000_000)
	if err != nil {
		t.Fatalf("SetSampleRate: %v", err)
	}
	if actual != 1_000_000 {
		t.Errorf("actual rate = %g, want 1000000", actual)
	}
	waitStatus(t, dev, "divisor 27", func(s instrument.Status) bool {
		return s.Divisor == 27
	})
}

func TestGeneratorProgrammingOverWire(t *testing.T) {
	dev, conn := startDevice(t, instrument.Config{}, nil)
	cl := NewClient(conn)
	if err := cl.WaitForReady(2 * time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}

	actual, err := cl.SetFrequency(1000)
	if err != nil {
		t.Fatalf("SetFrequency: %v", err)
	}
	if actual != 1000 {
		t.Errorf("actual frequency = %g, want 1000", actual)
	}
	waitStatus(t, dev, "half-period 13500", func(s instrument.Status) bool {
		return s.GenHalfPeriod == 13500
	})

	ratio, err := cl.SetDutyCycle(1000, 0.25)
	if err != nil {
		t.Fatalf("SetDutyCycle: %v", err)
	}
	if ratio != 0.25 {
		t.Errorf("actual duty = %g, want 0.25", ratio)
	}
	waitStatus(t, dev, "high ticks 6750", func(s instrument.Status) bool {
		return s.GenHighTicks == 6750
	})
}

func TestStopYieldsPartialCapture(t *testing.T) {
	trig := &capture.TriggerConfig{Mask: 0} // sample immediately on arm
	dev, conn := startDevice(t, instrument.Config{
		Capture: capture.Config{Divisor: 2700},
	}, trig)
	cl := NewClient(conn)
	if err := cl.WaitForReady(2 * time.Second); err != nil {
		t.Fatalf("WaitForReady: %v", err)
	}

	if err := cl.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitStatus(t, dev, "sampling with data", func(s instrument.Status) bool {
		return s.SampleCount > 0
	})
	if err := cl.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	data, err := cl.ReadCapture(capture.DefaultCapacity, 300*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadCapture: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected a partial capture, got nothing")
	}
	if len(data) >= capture.DefaultCapacity {
		t.Fatalf("capture of %d bytes is not partial", len(data))
	}
	waitStatus(t, dev, "idle after transmit", func(s instrument.Status) bool {
		return s.State == capture.StateIdle
	})
}

func TestSetSampleRateRejectsOutOfRange(t *testing.T) {
	_, conn := startDevice(t, instrument.Config{}, nil)
	cl := NewClient(conn)
	if _, err := cl.SetSampleRate(0); err == nil {
		t.Error("rate 0 accepted")
	}
	if _, err := cl.SetSampleRate(SysClockHz * 2); err == nil {
		t.Error("rate above system clock accepted")
	}
	if _, err := cl.SetDutyCycle(1000, 1.5); err == nil {
		t.Error("duty 1.5 accepted")
	}
	if _, err := cl.SetFrequency(0); err == nil {
		t.Error("frequency 0 accepted")
	}
}
