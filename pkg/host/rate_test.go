package host

import (
	"errors"
	"testing"
)

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"100k", 100_000},
		{"100K", 100_000},
		{"1M", 1_000_000},
		{"13.5M", 13_500_000},
		{"27M", 27_000_000},
		{"250000", 250_000},
		{"2.5k", 2_500},
		{"1000Hz", 1_000},
	}
	for _, tc := range cases {
		got, err := ParseRate(tc.in)
		if err != nil {
			t.Fatalf("ParseRate(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseRate(%q) = %g, want %g", tc.in, got, tc.want)
		}
	}
}

func TestParseRateRejectsJunk(t *testing.T) {
	for _, in := range []string{"", "fast", "-5k", "0", "28M"} {
		if _, err := ParseRate(in); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("ParseRate(%q) err = %v, want ErrInvalidRate", in, err)
		}
	}
}

func TestParseDuty(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"50", 0.5},
		{"50%", 0.5},
		{"0.25", 0.25},
		{"75%", 0.75},
	}
	for _, tc := range cases {
		got, err := ParseDuty(tc.in)
		if err != nil {
			t.Fatalf("ParseDuty(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseDuty(%q) = %g, want %g", tc.in, got, tc.want)
		}
	}
	for _, in := range []string{"0", "100", "1.0", "nope"} {
		if _, err := ParseDuty(in); err == nil {
			t.Errorf("ParseDuty(%q) accepted, want error", in)
		}
	}
}
