package main

import (
	"fmt"
	"log"
	"time"

	"github.com/lacap/pkg/host"
)

type cliOptions struct {
	Device       string
	Samples      int
	RateHz       float64
	GenFreqHz    float64
	GenDuty      string
	OutputFile   string
	WriteParquet bool
}

// runCLI executes the one-shot capture and file save
func runCLI(opt cliOptions) {
	fmt.Println("--- Logic Capture Session Start ---")
	fmt.Printf("Device: %s | Target: %d samples\n", opt.Device, opt.Samples)

	conn, err := openDevice(opt.Device)
	if err != nil {
		log.Fatalf("Opening device: %v", err)
	}
	defer conn.Close()

	cl := host.NewClient(conn)
	if err := cl.WaitForReady(2 * time.Second); err != nil {
		// a device that was already powered never resends its greeting
		log.Printf("Warning: %v (continuing)", err)
	}

	rateHz, err := cl.SetSampleRate(opt.RateHz)
	if err != nil {
		log.Fatalf("Setting sample rate: %v", err)
	}
	fmt.Printf("Sample rate:    %g Hz\n", rateHz)

	if opt.GenFreqHz > 0 {
		actual, err := cl.SetFrequency(opt.GenFreqHz)
		if err != nil {
			log.Fatalf("Setting generator frequency: %v", err)
		}
		fmt.Printf("Generator:      %g Hz\n", actual)
	}
	if opt.GenDuty != "" {
		ratio, err := host.ParseDuty(opt.GenDuty)
		if err != nil {
			log.Fatalf("Parsing duty cycle: %v", err)
		}
		genFreq := opt.GenFreqHz
		if genFreq <= 0 {
			genFreq = serverState.GenFreqHz
		}
		actual, err := cl.SetDutyCycle(genFreq, ratio)
		if err != nil {
			log.Fatalf("Setting duty cycle: %v", err)
		}
		fmt.Printf("Duty cycle:     %.1f%%\n", actual*100)
	}

	fmt.Println(">>> CAPTURING...")
	start := time.Now()
	if err := cl.Start(); err != nil {
		log.Fatalf("Starting capture: %v", err)
	}
	data, err := cl.ReadCapture(opt.Samples, 2*time.Second)
	if err != nil {
		log.Fatalf("Capture failed: %v", err)
	}
	elapsed := time.Since(start)
	if len(data) == 0 {
		log.Fatalf("No data received; check the trigger signal and wiring")
	}

	fmt.Println("--- Results ---")
	fmt.Printf("Samples:        %d\n", len(data))
	fmt.Printf("Duration:       %v\n", elapsed)
	fmt.Printf("Window:         %.6f s of signal\n", float64(len(data))/rateHz)

	printAnalysis(data, rateHz)

	meta := newCaptureMetadata(len(data), rateHz, opt.GenFreqHz, 0)
	fmt.Printf(">>> SAVING TO FILE: %s ... ", opt.OutputFile)
	if err := saveCapture(opt.OutputFile, data, meta, opt.WriteParquet); err != nil {
		fmt.Println()
		log.Fatalf("Saving capture: %v", err)
	}
	fmt.Println("DONE")
}

// printAnalysis prints per-channel signal measurements for every channel
// that shows activity.
func printAnalysis(data []byte, rateHz float64) {
	fmt.Println("--- Channels ---")
	active := 0
	for ch := 0; ch < numChannels; ch++ {
		stats := analyzeChannel(data, ch, rateHz)
		if !stats.Active {
			continue
		}
		active++
		fmt.Printf("CH%d: %8.6g Hz  duty %5.1f%%  (%d edges)\n",
			ch, stats.FreqHz, stats.DutyRatio*100, stats.Edges)
	}
	if active == 0 {
		fmt.Println("(no activity on any channel)")
	}
}
