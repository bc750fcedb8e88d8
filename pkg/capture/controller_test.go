package capture

import "testing"

func sendByte(c *Controller, b byte) Outputs {
	return c.Step(Inputs{RxByte: b, RxValid: true})
}

func idleTicks(c *Controller, n int) {
	for i := 0; i < n; i++ {
		c.Step(Inputs{})
	}
}

func TestStartToTransmitFullSession(t *testing.T) {
	const bufCap = 8
	c := NewController(Config{Capacity: bufCap, Divisor: 1})

	sendByte(c, CmdStart)
	if c.State() != StateArmed {
		t.Fatalf("state after Start = %v, want armed", c.State())
	}

	// default mask 0xFF is non-empty: a real trigger is required
	for i := 0; i < 5; i++ {
		c.Step(Inputs{Sample: 0x00})
		if c.State() != StateArmed {
			t.Fatalf("armed with no edge, state = %v", c.State())
		}
	}

	// rising edge on channel 0; the detector registers it for the next tick
	c.Step(Inputs{Sample: 0x01})

	var wrote, got []byte
	sample := byte(0x10)
	for i := 0; i < 100; i++ {
		if c.State() == StateIdle && len(got) > 0 {
			break
		}
		st := c.State()
		out := c.Step(Inputs{Sample: sample, TxDone: true})
		if st == StateSampling && out.SampleEnable && len(wrote) < bufCap {
			wrote = append(wrote, sample)
		}
		if out.TxValid {
			got = append(got, out.TxByte)
		}
		sample++
	}

	if c.State() != StateIdle {
		t.Fatalf("session did not return to idle, state = %v", c.State())
	}
	if len(got) != bufCap {
		t.Fatalf("transmitted %d bytes, want buffer capacity %d", len(got), bufCap)
	}
	for i := range got {
		if got[i] != wrote[i] {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X (write order)", i, got[i], wrote[i])
		}
	}
}

func TestEmptyMaskSamplesImmediately(t *testing.T) {
	c := NewController(Config{Capacity: 8, Divisor: 1})
	c.SetTrigger(TriggerConfig{Mask: 0x00, Type: TriggerRisingEdge})

	sendByte(c, CmdStart)
	c.Step(Inputs{})
	if c.State() != StateSampling {
		t.Fatalf("empty mask must arm straight into sampling, state = %v", c.State())
	}
}

func TestSetSampleRateFromIdle(t *testing.T) {
	c := NewController(Config{Capacity: 8})

	sendByte(c, CmdSetSampleRate)
	if c.State() != StateSetSampleRate {
		t.Fatalf("state = %v, want set-sample-rate", c.State())
	}
	for _, b := range []byte{0x0A, 0x00, 0x00} {
		sendByte(c, b)
		if c.State() != StateSetSampleRate {
			t.Fatalf("left loading state after partial payload, state = %v", c.State())
		}
	}
	sendByte(c, 0x00)
	if c.State() != StateIdle {
		t.Fatalf("state after 4th payload byte = %v, want idle", c.State())
	}
	if c.Divisor() != 10 {
		t.Fatalf("divisor = %d, want 10", c.Divisor())
	}
}

func TestParameterPayloadIsOpaque(t *testing.T) {
	c := NewController(Config{Capacity: 8})

	sendByte(c, CmdSetFrequency)
	// payload bytes that collide with command codes must never be
	// reinterpreted as commands
	payload := []byte{CmdStart, CmdStop, CmdSetSampleRate, CmdSetDutyCycle}
	var out Outputs
	for _, b := range payload {
		out = sendByte(c, b)
	}
	if !out.FreqUpdate {
		t.Fatal("no frequency update pulse after 4th payload byte")
	}
	want := uint32(payload[0]) | uint32(payload[1])<<8 | uint32(payload[2])<<16 | uint32(payload[3])<<24
	if out.FreqValue != want {
		t.Fatalf("frequency value = 0x%08X, want 0x%08X (little-endian)", out.FreqValue, want)
	}
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want idle", c.State())
	}
}

func TestDutyCycleLoad(t *testing.T) {
	c := NewController(Config{Capacity: 8})

	sendByte(c, CmdSetDutyCycle)
	var out Outputs
	for _, b := range []byte{0x64, 0x00, 0x00, 0x00} {
		out = sendByte(c, b)
	}
	if !out.DutyUpdate || out.DutyValue != 100 {
		t.Fatalf("duty update = %v value = %d, want pulse with 100", out.DutyUpdate, out.DutyValue)
	}
}

func TestLoadInterruptsArmedAndLandsIdle(t *testing.T) {
	c := NewController(Config{Capacity: 8, Divisor: 1})

	sendByte(c, CmdStart)
	idleTicks(c, 2)
	if c.State() != StateArmed {
		t.Fatalf("state = %v, want armed", c.State())
	}

	sendByte(c, CmdSetFrequency)
	for _, b := range []byte{0x01, 0x02, 0x03, 0x04} {
		sendByte(c, b)
	}
	if c.State() != StateIdle {
		t.Fatalf("state after interrupted arm = %v, want idle (never back to armed)", c.State())
	}

	// a trigger-worthy edge must not start a capture without a fresh Start
	c.Step(Inputs{Sample: 0x00})
	c.Step(Inputs{Sample: 0xFF})
	idleTicks(c, 5)
	if c.State() != StateIdle {
		t.Fatalf("state = %v, capture restarted without Start", c.State())
	}
	if c.SampleCount() != 0 {
		t.Fatalf("sample count = %d, want 0", c.SampleCount())
	}
}

func TestStopSnapshotsPartialCapture(t *testing.T) {
	c := NewController(Config{Capacity: 64, Divisor: 1})
	c.SetTrigger(TriggerConfig{Mask: 0x00})

	sendByte(c, CmdStart)
	c.Step(Inputs{}) // armed -> sampling

	// five sampling ticks before the Stop tick, which itself still writes
	for i := 0; i < 5; i++ {
		c.Step(Inputs{Sample: byte(0xA0 + i)})
	}
	c.Step(Inputs{RxByte: CmdStop, RxValid: true, Sample: 0xA5})

	var got []byte
	for i := 0; i < 50 && c.State() != StateIdle; i++ {
		out := c.Step(Inputs{TxDone: true})
		if out.TxValid {
			got = append(got, out.TxByte)
		}
	}
	if len(got) != 6 {
		t.Fatalf("transmitted %d bytes after Stop, want 6", len(got))
	}
	for i, b := range got {
		if b != byte(0xA0+i) {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X", i, b, 0xA0+i)
		}
	}
}

func TestStopWithNothingCapturedReturnsIdle(t *testing.T) {
	// large divisor: no sample-enable pulse before the Stop arrives
	c := NewController(Config{Capacity: 8, Divisor: 1000})
	c.SetTrigger(TriggerConfig{Mask: 0x00})

	sendByte(c, CmdStart)
	c.Step(Inputs{}) // armed -> sampling
	c.Step(Inputs{RxByte: CmdStop, RxValid: true})
	c.Step(Inputs{}) // ready passes through transmit, which has nothing to send
	if c.State() != StateIdle {
		t.Fatalf("state = %v, want idle with an empty capture", c.State())
	}
}

func TestSampleRateGatesWrites(t *testing.T) {
	c := NewController(Config{Capacity: 64, Divisor: 1})
	c.SetTrigger(TriggerConfig{Mask: 0x00})

	sendByte(c, CmdSetSampleRate)
	for _, b := range []byte{0x03, 0x00, 0x00, 0x00} {
		sendByte(c, b)
	}
	sendByte(c, CmdStart)
	c.Step(Inputs{}) // armed -> sampling

	for i := 0; i < 30; i++ {
		c.Step(Inputs{Sample: 0x55})
	}
	// one accepted write per 3 ticks
	if got := c.SampleCount(); got != 10 {
		t.Fatalf("sample count = %d over 30 ticks at divisor 3, want 10", got)
	}
}

func TestConfigCommandsAreNoOps(t *testing.T) {
	c := NewController(Config{Capacity: 8})

	for _, cmd := range []byte{CmdTriggerConfig, CmdConfig} {
		sendByte(c, cmd)
		if c.State() != StateConfig {
			t.Fatalf("cmd 0x%02X: state = %v, want config", cmd, c.State())
		}
		c.Step(Inputs{})
		if c.State() != StateIdle {
			t.Fatalf("cmd 0x%02X: config must return to idle on the next tick", cmd)
		}
	}
	if c.Trigger() != DefaultTriggerConfig() {
		t.Fatal("config command must not touch the trigger configuration")
	}
}

func TestUnknownCommandsDropped(t *testing.T) {
	c := NewController(Config{Capacity: 8})
	for _, b := range []byte{0x00, 0x03, 0x09, 0xFF} {
		sendByte(c, b)
		if c.State() != StateIdle {
			t.Fatalf("byte 0x%02X must be dropped in idle, state = %v", b, c.State())
		}
	}
}

func TestStalledLoadWaitsIndefinitely(t *testing.T) {
	c := NewController(Config{Capacity: 8})

	sendByte(c, CmdSetFrequency)
	sendByte(c, 0x11)
	sendByte(c, 0x22)
	idleTicks(c, 1000)
	if c.State() != StateSetParameter {
		t.Fatalf("state = %v, a stalled load must keep waiting", c.State())
	}

	sendByte(c, 0x33)
	out := sendByte(c, 0x44)
	if !out.FreqUpdate || out.FreqValue != 0x44332211 {
		t.Fatalf("resumed load: update=%v value=0x%08X, want 0x44332211", out.FreqUpdate, out.FreqValue)
	}
}

func TestRearmClearsPreviousCapture(t *testing.T) {
	c := NewController(Config{Capacity: 8, Divisor: 1})
	c.SetTrigger(TriggerConfig{Mask: 0x00})

	sendByte(c, CmdStart)
	c.Step(Inputs{})
	for i := 0; i < 3; i++ {
		c.Step(Inputs{Sample: 0x01})
	}
	if c.SampleCount() == 0 {
		t.Fatal("expected writes during sampling")
	}

	// interrupt with a rate load, then re-arm: armed clears the buffer
	sendByte(c, CmdSetSampleRate)
	for _, b := range []byte{0x01, 0x00, 0x00, 0x00} {
		sendByte(c, b)
	}
	sendByte(c, CmdStart)

	// trigger mask is empty; the controller spends exactly one tick armed,
	// and that tick clears the buffer
	c.Step(Inputs{})
	if c.State() != StateSampling {
		t.Fatalf("state = %v, want sampling", c.State())
	}
	if got := c.SampleCount(); got > 1 {
		t.Fatalf("sample count = %d right after re-arm, want fresh session", got)
	}
}
