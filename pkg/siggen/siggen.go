// Package siggen models the instrument's auxiliary square-wave test
// generator. The host programs it through two 32-bit registers: the
// frequency register holds the half-period in system-clock ticks
// (value = sysclk / frequency / 2), and the duty register holds the
// high time in ticks within the full period.
package siggen

// Register defaults: 1 kHz at 50% duty from a 27 MHz system clock.
const (
	DefaultHalfPeriod = 13500
	DefaultHighTicks  = 13500
)

// Generator is a free-running square-wave source advanced one tick at a
// time alongside the acquisition controller.
type Generator struct {
	halfPeriod uint32
	highTicks  uint32
	counter    uint32
	level      bool
}

// New returns a generator with the given register values. Zero values
// select the defaults.
func New(halfPeriod, highTicks uint32) *Generator {
	if halfPeriod == 0 {
		halfPeriod = DefaultHalfPeriod
	}
	if highTicks == 0 {
		highTicks = DefaultHighTicks
	}
	return &Generator{halfPeriod: halfPeriod, highTicks: highTicks}
}

// Tick advances the generator one tick and returns the output level.
// Register updates reset the phase so the new waveform starts clean.
func (g *Generator) Tick(freqUpdate bool, halfPeriod uint32, dutyUpdate bool, highTicks uint32) bool {
	if freqUpdate {
		if halfPeriod == 0 {
			halfPeriod = 1
		}
		g.halfPeriod = halfPeriod
		g.counter = 0
	}
	if dutyUpdate {
		g.highTicks = highTicks
		g.counter = 0
	}

	period := g.halfPeriod * 2
	g.level = g.counter < g.highTicks
	g.counter++
	if g.counter >= period {
		g.counter = 0
	}
	return g.level
}

// Level returns the output level as of the last tick.
func (g *Generator) Level() bool { return g.level }

// HalfPeriod returns the frequency register value.
func (g *Generator) HalfPeriod() uint32 { return g.halfPeriod }

// HighTicks returns the duty register value.
func (g *Generator) HighTicks() uint32 { return g.highTicks }
