package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/lacap/pkg/capture"
	"github.com/lacap/pkg/host"
)

const simAddr = "127.0.0.1:9870"

// rateFlag custom type to handle rates like 100k, 1M, 250000
type rateFlag float64

func (r *rateFlag) String() string {
	return fmt.Sprintf("%g", float64(*r))
}

func (r *rateFlag) Set(value string) error {
	hz, err := host.ParseRate(value)
	if err != nil {
		return err
	}
	*r = rateFlag(hz)
	return nil
}

func main() {
	// Common flags
	device := flag.String("d", "/dev/ttyUSB0", "Device path, or tcp:host:port")

	// Use custom rate flag
	var rate rateFlag = host.DefaultSampleRateHz
	flag.Var(&rate, "rate", "Sample rate (e.g. 100k, 1M, 250000)")

	// CLI-specific flags
	outputFile := flag.String("o", "capture.bin", "Output filename (CLI mode only)")
	samples := flag.Int("n", capture.DefaultCapacity, "Samples to capture (CLI mode only)")
	freq := flag.Float64("freq", 0, "Program the test generator frequency in Hz (0 = leave unchanged)")
	duty := flag.String("duty", "", "Program the test generator duty cycle (e.g. 25%)")
	writeParquet := flag.Bool("parquet", false, "Also record the capture as parquet")
	list := flag.Bool("list", false, "List saved captures and exit")

	// Server-specific flags
	isServer := flag.Bool("server", false, "Run in WebSocket server mode")
	port := flag.Int("p", 8080, "Port to listen on (Server mode only)")

	// Simulation flags
	isSim := flag.Bool("sim", false, "Run against a built-in virtual instrument")

	// Custom usage message
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "  CLI Mode:    go run . [options]")
		fmt.Fprintln(os.Stderr, "  Server Mode: go run . --server [options]")
		fmt.Fprintln(os.Stderr, "  Sim Mode:    go run . --sim [options]")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *list {
		if err := listCaptures(os.Stdout); err != nil {
			log.Fatalf("Listing captures: %v", err)
		}
		return
	}

	// If simulation mode is on, override the device path and start the
	// virtual instrument in the background
	if *isSim {
		*device = "tcp:" + simAddr
		go RunSimulator(simAddr)
		// Give the simulator a moment to start listening
		time.Sleep(200 * time.Millisecond)
	}

	if *isServer {
		runServer(*port, *device, float64(rate))
	} else {
		runCLI(cliOptions{
			Device:       *device,
			Samples:      *samples,
			RateHz:       float64(rate),
			GenFreqHz:    *freq,
			GenDuty:      *duty,
			OutputFile:   *outputFile,
			WriteParquet: *writeParquet,
		})
	}
}
