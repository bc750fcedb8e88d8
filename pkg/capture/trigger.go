package capture

// TriggerType selects how the detector qualifies a sample vector.
type TriggerType uint8

const (
	TriggerRisingEdge TriggerType = iota
	TriggerFallingEdge
	TriggerPatternMatch
	TriggerEdgeEither
)

func (t TriggerType) String() string {
	switch t {
	case TriggerRisingEdge:
		return "rising"
	case TriggerFallingEdge:
		return "falling"
	case TriggerPatternMatch:
		return "pattern"
	case TriggerEdgeEither:
		return "either"
	}
	return "unknown"
}

// TriggerConfig is the single trigger condition shared by all channels:
// a mask of enabled channel bits, the detection type, and the target bits
// for pattern matching.
type TriggerConfig struct {
	Mask    byte
	Type    TriggerType
	Pattern byte
}

// DefaultTriggerConfig is the reset configuration: all channels enabled,
// rising edge, pattern zero.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{Mask: 0xFF, Type: TriggerRisingEdge}
}

// Eval evaluates the trigger condition for one tick given the current and
// one-tick-delayed sample vectors. Evaluation is purely combinational and
// re-done every tick; a stable qualifying condition re-fires every tick.
// Unrecognized types never detect.
func (c TriggerConfig) Eval(current, previous byte) bool {
	rising := current &^ previous
	falling := previous &^ current
	switch c.Type {
	case TriggerRisingEdge:
		return rising&c.Mask != 0
	case TriggerFallingEdge:
		return falling&c.Mask != 0
	case TriggerPatternMatch:
		return current&c.Mask == c.Pattern&c.Mask
	case TriggerEdgeEither:
		return (rising|falling)&c.Mask != 0
	}
	return false
}
