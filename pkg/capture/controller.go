// Package capture implements the acquisition engine of the instrument: a
// host-commanded state machine that samples an 8-channel input vector into
// a fixed ring buffer at a divided rate, qualifies trigger conditions, and
// streams the capture back one byte per sample. Everything advances in a
// single synchronous domain: the integration calls Controller.Step once
// per tick and wires its inputs and outputs to the transport, the sample
// source, and the test-signal generator.
package capture

// Inputs carries the external signals sampled by the controller on one
// tick. RxValid and TxDone are one-tick pulses from the byte transport;
// Sample is the current level of the eight input channels.
type Inputs struct {
	RxByte  byte
	RxValid bool
	Sample  byte
	TxDone  bool
}

// Outputs carries the signals the controller asserts during one tick.
// TxValid, FreqUpdate, DutyUpdate, and SampleEnable are one-tick pulses.
type Outputs struct {
	TxByte  byte
	TxValid bool

	FreqValue  uint32
	FreqUpdate bool
	DutyValue  uint32
	DutyUpdate bool

	SampleEnable bool
	State        State
}

// Config parameterizes a controller. Zero values select the hardware
// defaults (49152-byte buffer, divisor 270, rising edge on all channels).
type Config struct {
	Capacity int
	Divisor  uint32
	Trigger  TriggerConfig
}

// Controller is the acquisition state machine. It owns the ring buffer,
// the sample-rate divider, and the trigger configuration, and advances all
// of them synchronously: one Step per tick, every decision reading only
// values registered on previous ticks.
type Controller struct {
	state State

	ring *Ring
	div  Divider
	trig TriggerConfig

	// registered trigger detector output, one tick behind evaluation
	detected   bool
	prevSample byte

	// parameter-load registers
	target    ParameterTarget
	loadCount uint8
	loadAccum uint32

	// transmit progress
	txSent  int
	txTotal int
}

// NewController returns a controller in Idle with cleared registers.
func NewController(cfg Config) *Controller {
	if cfg.Divisor == 0 {
		cfg.Divisor = DefaultDivisor
	}
	if cfg.Trigger == (TriggerConfig{}) {
		cfg.Trigger = DefaultTriggerConfig()
	}
	return &Controller{
		state: StateIdle,
		ring:  NewRing(cfg.Capacity),
		div:   NewDivider(cfg.Divisor),
		trig:  cfg.Trigger,
	}
}

// Step advances the controller by one tick.
func (c *Controller) Step(in Inputs) Outputs {
	var out Outputs

	// Registered values from previous ticks. Transitions on this tick see
	// the buffer flags as they stood before this tick's write or read.
	full := c.ring.Full()
	empty := c.ring.Empty()
	triggered := c.detected

	// Ready spends no tick: it only zeroes the transmit progress on the
	// way into Transmit, which then runs in this same tick.
	if c.state == StateReady {
		c.txSent = 0
		c.state = StateTransmit
	}

	// The divider is free-running. It must tick exactly once per Step; an
	// update request can only originate in SetSampleRate, never while
	// sampling, so ticking it early for the write gate is safe.
	divTicked := false
	if c.state == StateSampling {
		out.SampleEnable = c.div.Tick(false, 0)
		divTicked = true
	}

	switch c.state {
	case StateIdle:
		if in.RxValid {
			c.dispatch(in.RxByte)
		}

	case StateConfig:
		// Reserved command: no payload format is defined, so nothing is
		// consumed and control returns to Idle on the next tick.
		c.state = StateIdle

	case StateArmed:
		c.txSent = 0
		c.ring.Clear()
		switch {
		case in.RxValid && c.beginLoad(in.RxByte):
			// parameter load interrupts arming; lands in Idle afterwards
		case c.trig.Mask == 0 || triggered:
			c.state = StateSampling
		}

	case StateSampling:
		if out.SampleEnable && !full {
			c.ring.Write(in.Sample)
		}
		switch {
		case in.RxValid && c.beginLoad(in.RxByte):
		case in.RxValid && in.RxByte == CmdStop:
			c.txTotal = c.ring.Count()
			c.state = StateReady
		case full:
			c.txTotal = c.ring.Count()
			c.state = StateReady
		}

	case StateTransmit:
		switch {
		case c.txSent == 0:
			if c.txTotal == 0 {
				// nothing was captured; no byte will ever complete
				c.state = StateIdle
			} else if !empty {
				b, _ := c.ring.Read()
				out.TxByte, out.TxValid = b, true
				c.txSent = 1
			}
		case in.TxDone:
			if c.txSent < c.txTotal {
				b, _ := c.ring.Read()
				out.TxByte, out.TxValid = b, true
				c.txSent++
			} else {
				c.state = StateIdle
				c.txSent = 0
				c.txTotal = 0
			}
		}

	case StateSetParameter, StateSetSampleRate:
		// Every byte received here is payload, never a command.
		if in.RxValid {
			c.loadAccum |= uint32(in.RxByte) << (8 * c.loadCount)
			c.loadCount++
			if c.loadCount == 4 {
				if c.state == StateSetSampleRate {
					c.div.Tick(true, c.loadAccum)
					divTicked = true
				} else if c.target == TargetFrequency {
					out.FreqValue, out.FreqUpdate = c.loadAccum, true
				} else {
					out.DutyValue, out.DutyUpdate = c.loadAccum, true
				}
				c.loadCount = 0
				c.loadAccum = 0
				c.state = StateIdle
			}
		}
	}

	if !divTicked {
		c.div.Tick(false, 0)
	}

	// The detector is evaluated every tick; its output registers for the
	// next tick.
	c.detected = c.trig.Eval(in.Sample, c.prevSample)
	c.prevSample = in.Sample

	out.State = c.state
	return out
}

// dispatch decodes a command byte in Idle. Unrecognized bytes are dropped.
func (c *Controller) dispatch(cmd byte) {
	switch cmd {
	case CmdStart:
		c.state = StateArmed
	case CmdTriggerConfig, CmdConfig:
		c.state = StateConfig
	default:
		c.beginLoad(cmd)
	}
}

// beginLoad enters a parameter-loading state if cmd is one of the three
// parameter-set commands, resetting the payload registers. It reports
// whether the command was consumed.
func (c *Controller) beginLoad(cmd byte) bool {
	switch cmd {
	case CmdSetFrequency:
		c.target = TargetFrequency
		c.state = StateSetParameter
	case CmdSetDutyCycle:
		c.target = TargetDutyCycle
		c.state = StateSetParameter
	case CmdSetSampleRate:
		c.state = StateSetSampleRate
	default:
		return false
	}
	c.loadCount = 0
	c.loadAccum = 0
	return true
}

// State returns the current session state, the value exposed on the
// diagnostic output.
func (c *Controller) State() State { return c.state }

// SampleCount returns the accepted writes in the current session.
func (c *Controller) SampleCount() int { return c.ring.Count() }

// Capacity returns the capture buffer capacity in bytes.
func (c *Controller) Capacity() int { return c.ring.Capacity() }

// Divisor returns the live sample-rate divisor.
func (c *Controller) Divisor() uint32 { return c.div.Divisor() }

// Trigger returns the active trigger configuration. It persists across
// sessions; the wire protocol currently has no command to change it.
func (c *Controller) Trigger() TriggerConfig { return c.trig }

// SetTrigger replaces the trigger configuration. The wire protocol's
// trigger-config command is a reserved no-op, so reconfiguration happens
// out of band through the embedding integration.
func (c *Controller) SetTrigger(cfg TriggerConfig) { c.trig = cfg }
