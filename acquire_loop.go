package main

import (
	"errors"
	"log"
	"time"

	"github.com/lacap/pkg/host"
)

// startAcquisition kicks off one capture session in the background. Only
// one session may run at a time.
func startAcquisition(samples int) error {
	serverState.mu.Lock()
	if serverState.Acquiring {
		serverState.mu.Unlock()
		return errors.New("acquisition already running")
	}
	serverState.Acquiring = true
	devicePath := serverState.DevicePath
	serverState.mu.Unlock()

	broadcastJSON(map[string]interface{}{
		"type":      "acquire_status",
		"acquiring": true,
		"samples":   samples,
	})

	go performAcquisition(devicePath, samples)
	return nil
}

// stopAcquisition injects the stop command into the running session. The
// device then transmits whatever it has captured so far.
func stopAcquisition() {
	serverState.mu.RLock()
	cl := serverState.client
	serverState.mu.RUnlock()
	if cl == nil {
		return
	}
	if err := cl.Stop(); err != nil {
		log.Printf("Sending stop: %v", err)
	}
}

// performAcquisition owns the device connection for one full session:
// connect, apply the configured registers, arm, collect, publish.
func performAcquisition(devicePath string, samples int) {
	defer func() {
		serverState.mu.Lock()
		serverState.Acquiring = false
		serverState.client = nil
		serverState.mu.Unlock()
		broadcastJSON(stateMessage())
	}()

	conn, err := openDevice(devicePath)
	if err != nil {
		log.Printf("Acquisition failed: %v", err)
		broadcastJSON(map[string]interface{}{"type": "error", "error": err.Error()})
		return
	}
	defer conn.Close()

	cl := host.NewClient(conn)
	if err := cl.WaitForReady(2 * time.Second); err != nil {
		log.Printf("Warning: %v (continuing)", err)
	}

	serverState.mu.Lock()
	rateHz := serverState.SampleRateHz
	genFreq := serverState.GenFreqHz
	genDuty := serverState.GenDutyRatio
	recording := serverState.Recording
	writeParquet := serverState.Parquet
	serverState.client = cl
	serverState.mu.Unlock()

	actualRate, err := cl.SetSampleRate(rateHz)
	if err != nil {
		log.Printf("Setting sample rate: %v", err)
		broadcastJSON(map[string]interface{}{"type": "error", "error": err.Error()})
		return
	}
	if genFreq > 0 {
		if _, err := cl.SetFrequency(genFreq); err != nil {
			log.Printf("Setting generator frequency: %v", err)
		}
		if _, err := cl.SetDutyCycle(genFreq, genDuty); err != nil {
			log.Printf("Setting duty cycle: %v", err)
		}
	}

	if err := cl.Start(); err != nil {
		log.Printf("Starting capture: %v", err)
		broadcastJSON(map[string]interface{}{"type": "error", "error": err.Error()})
		return
	}

	start := time.Now()
	data, err := cl.ReadCapture(samples, 2*time.Second)
	if err != nil {
		log.Printf("Reading capture: %v", err)
		broadcastJSON(map[string]interface{}{"type": "error", "error": err.Error()})
		return
	}
	log.Printf("Acquired %d samples in %v", len(data), time.Since(start))

	meta := newCaptureMetadata(len(data), actualRate, genFreq, genDuty)

	filename := ""
	if recording && len(data) > 0 {
		filename, err = recordCapture(data, meta, writeParquet)
		if err != nil {
			log.Printf("Recording capture: %v", err)
		}
	}

	serverState.mu.Lock()
	serverState.LastCaptureID = meta.ID
	serverState.LastSamples = len(data)
	serverState.mu.Unlock()

	broadcastJSON(map[string]interface{}{
		"type":           "capture",
		"id":             meta.ID,
		"samples":        len(data),
		"sample_rate_hz": actualRate,
		"file":           filename,
	})
	if len(data) > 0 {
		broadcastCapture(data)
	}
}
