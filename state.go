package main

import (
	"sync"

	"github.com/lacap/pkg/capture"
	"github.com/lacap/pkg/host"
)

// Server state
type ServerState struct {
	mu sync.RWMutex

	// Acquisition settings
	SampleRateHz float64
	Samples      int

	// Test signal generator
	GenFreqHz    float64
	GenDutyRatio float64

	// Live session; client is non-nil only while an acquisition runs so
	// the stop handler can inject the stop command mid-session.
	Acquiring bool
	client    *host.Client

	// Last completed capture, kept for status readout
	LastCaptureID string
	LastSamples   int

	// Recording: persist finished acquisitions under the data folder
	Recording bool
	Parquet   bool

	// System
	DevicePath string
}

// CaptureMetadata is the sidecar saved alongside each capture file and
// embedded in the parquet footer.
type CaptureMetadata struct {
	ID           string  `json:"id"`
	Timestamp    string  `json:"timestamp"`
	SampleRateHz float64 `json:"sample_rate_hz"`
	GenFreqHz    float64 `json:"gen_freq_hz,omitempty"`
	GenDutyRatio float64 `json:"gen_duty,omitempty"`
	Samples      int     `json:"samples"`
	Channels     int     `json:"channels"`
}

var serverState = &ServerState{
	SampleRateHz: host.DefaultSampleRateHz,
	Samples:      capture.DefaultCapacity,
	GenFreqHz:    1000.0,
	GenDutyRatio: 0.5,
}
