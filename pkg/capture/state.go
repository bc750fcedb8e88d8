package capture

// Host command bytes. Single-byte commands, no framing; the three
// parameter-set commands each consume exactly four following bytes as a
// little-endian unsigned 32-bit value.
const (
	CmdStart         = 0x01
	CmdStop          = 0x02
	CmdTriggerConfig = 0x04 // reserved, consumes no payload
	CmdConfig        = 0x05 // reserved, consumes no payload
	CmdSetFrequency  = 0x06
	CmdSetSampleRate = 0x07
	CmdSetDutyCycle  = 0x08
)

// State is the session state of the acquisition controller.
type State uint8

const (
	StateIdle State = iota
	StateConfig
	StateArmed
	StateSampling
	StateReady
	StateTransmit
	StateSetParameter
	StateSetSampleRate
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfig:
		return "config"
	case StateArmed:
		return "armed"
	case StateSampling:
		return "sampling"
	case StateReady:
		return "ready"
	case StateTransmit:
		return "transmit"
	case StateSetParameter:
		return "set-parameter"
	case StateSetSampleRate:
		return "set-sample-rate"
	}
	return "unknown"
}

// ParameterTarget selects which generator register a parameter load fills.
// SetParameter is a single state shared by the frequency and duty-cycle
// flows; the latched target disambiguates them.
type ParameterTarget uint8

const (
	TargetFrequency ParameterTarget = iota
	TargetDutyCycle
)

func (t ParameterTarget) String() string {
	if t == TargetDutyCycle {
		return "duty-cycle"
	}
	return "frequency"
}
