package host

import (
	"fmt"
	"strconv"
	"strings"
)

// ratePresets are the named sample rates the hardware divides cleanly.
var ratePresets = map[string]float64{
	"27M":   27_000_000,
	"13.5M": 13_500_000,
	"9M":    9_000_000,
	"6.75M": 6_750_000,
	"5.4M":  5_400_000,
	"1M":    1_000_000,
	"500K":  500_000,
	"100K":  100_000,
	"50K":   50_000,
	"10K":   10_000,
	"1K":    1_000,
}

// ParseRate parses a rate string such as "100k", "1M", "250000" or
// "1.5MHz" into Hertz.
func ParseRate(s string) (float64, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	if hz, ok := ratePresets[up]; ok {
		return hz, nil
	}
	up = strings.TrimSuffix(up, "HZ")

	mult := 1.0
	switch {
	case strings.HasSuffix(up, "M"):
		mult = 1_000_000
		up = strings.TrimSuffix(up, "M")
	case strings.HasSuffix(up, "K"):
		mult = 1_000
		up = strings.TrimSuffix(up, "K")
	}

	v, err := strconv.ParseFloat(up, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	hz := v * mult
	if hz <= 0 || hz > SysClockHz {
		return 0, fmt.Errorf("%w: %g Hz (valid range 1..%d)", ErrInvalidRate, hz, SysClockHz)
	}
	return hz, nil
}

// ParseDuty parses a duty ratio given either as a percentage ("25", "25%")
// or a fraction ("0.25").
func ParseDuty(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuty, s)
	}
	if v > 1 {
		v /= 100
	}
	if v <= 0 || v >= 1 {
		return 0, ErrInvalidDuty
	}
	return v, nil
}
