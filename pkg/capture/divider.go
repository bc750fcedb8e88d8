package capture

// DefaultDivisor yields the default 100 kHz sample rate from the 27 MHz
// system clock.
const DefaultDivisor = 270

// Divider generates a one-tick sample-enable pulse once every divisor
// ticks. The pulse is edge-like: consumers must not treat it as a level.
type Divider struct {
	divisor uint32
	counter uint32
}

// NewDivider returns a divider with the given divisor. A divisor of 0 is
// promoted to 1, matching the register semantics of an update.
func NewDivider(divisor uint32) Divider {
	if divisor == 0 {
		divisor = 1
	}
	return Divider{divisor: divisor}
}

// Tick advances the divider by one tick and reports whether the sample
// enable is asserted. When update is true the new divisor is adopted, the
// phase counter resets, and the pulse is asserted on this same tick so a
// configuration change never waits out a stale period.
func (d *Divider) Tick(update bool, divisor uint32) bool {
	if update {
		if divisor == 0 {
			divisor = 1
		}
		d.divisor = divisor
		d.counter = 0
		return true
	}
	if d.counter >= d.divisor-1 {
		d.counter = 0
		return true
	}
	d.counter++
	return false
}

// Divisor returns the current divisor register value.
func (d *Divider) Divisor() uint32 { return d.divisor }
