// Command bin2vcd converts a saved raw capture into VCD or sigrok CSV for
// waveform viewers. The sample rate is taken from the capture's metadata
// sidecar when present, or from the -rate flag.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lacap/pkg/export"
	"github.com/lacap/pkg/host"
)

type sidecar struct {
	SampleRateHz float64 `json:"sample_rate_hz"`
	Channels     int     `json:"channels"`
}

func main() {
	input := flag.String("i", "capture.bin", "Input capture file")
	output := flag.String("o", "", "Output filename (default: input with .vcd/.csv extension)")
	format := flag.String("f", "vcd", "Output format: vcd or csv")
	rateArg := flag.String("rate", "", "Sample rate override (e.g. 100k, 1M)")
	channels := flag.Int("c", 8, "Channels to emit (1-8)")
	flag.Parse()

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Reading %s: %v", *input, err)
	}
	if len(data) == 0 {
		log.Fatalf("%s is empty", *input)
	}

	rateHz := float64(host.DefaultSampleRateHz)
	metaPath := strings.TrimSuffix(*input, filepath.Ext(*input)) + ".json"
	if raw, err := os.ReadFile(metaPath); err == nil {
		var meta sidecar
		if err := json.Unmarshal(raw, &meta); err == nil && meta.SampleRateHz > 0 {
			rateHz = meta.SampleRateHz
		}
	}
	if *rateArg != "" {
		rateHz, err = host.ParseRate(*rateArg)
		if err != nil {
			log.Fatalf("Parsing rate: %v", err)
		}
	}

	outPath := *output
	if outPath == "" {
		outPath = strings.TrimSuffix(*input, filepath.Ext(*input)) + "." + *format
	}
	f, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("Creating %s: %v", outPath, err)
	}
	defer f.Close()

	switch *format {
	case "vcd":
		err = export.WriteVCD(f, data, *channels, rateHz)
	case "csv":
		err = export.WriteCSV(f, data, *channels, rateHz)
	default:
		log.Fatalf("Unknown format %q (want vcd or csv)", *format)
	}
	if err != nil {
		log.Fatalf("Converting: %v", err)
	}

	fmt.Printf("Wrote %s (%d samples at %g Hz)\n", outPath, len(data), rateHz)
}
