// Package export converts raw capture bytes into interchange formats.
// VCD is readable by PulseView and GTKWave; the CSV layout follows the
// sigrok conventions (semicolon comments, a time column, one column per
// channel) so sigrok-cli can ingest it directly.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Bit extracts one channel's level from a packed sample byte.
func Bit(sample byte, channel int) int {
	return int(sample>>channel) & 1
}

// WriteVCD writes data as a Value Change Dump. Each sample byte packs
// eight channels; only the first channels bits are emitted. Timestamps
// are in picoseconds so any divisor of the 27 MHz clock is exact.
func WriteVCD(w io.Writer, data []byte, channels int, sampleRateHz float64) error {
	if channels < 1 || channels > 8 {
		return fmt.Errorf("channel count %d out of range 1..8", channels)
	}
	if sampleRateHz <= 0 {
		return fmt.Errorf("sample rate %g Hz out of range", sampleRateHz)
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "$date\n    %s\n$end\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(bw, "$version\n    logic capture export\n$end\n")
	fmt.Fprintf(bw, "$comment\n    Sample Rate: %g Hz\n    Channels: %d\n    Samples: %d\n$end\n",
		sampleRateHz, channels, len(data))
	fmt.Fprintf(bw, "$timescale 1ps $end\n")
	fmt.Fprintf(bw, "$scope module logic_analyzer $end\n")
	for i := 0; i < channels; i++ {
		fmt.Fprintf(bw, "$var wire 1 ch%d CH%d $end\n", i, i)
	}
	fmt.Fprintf(bw, "$upscope $end\n$enddefinitions $end\n")

	stepPS := uint64(1e12 / sampleRateHz)

	if len(data) > 0 {
		fmt.Fprintf(bw, "#0\n")
		for i := 0; i < channels; i++ {
			fmt.Fprintf(bw, "%dch%d\n", Bit(data[0], i), i)
		}
	}
	for idx := 1; idx < len(data); idx++ {
		if data[idx] == data[idx-1] {
			continue
		}
		fmt.Fprintf(bw, "#%d\n", uint64(idx)*stepPS)
		for i := 0; i < channels; i++ {
			if Bit(data[idx], i) != Bit(data[idx-1], i) {
				fmt.Fprintf(bw, "%dch%d\n", Bit(data[idx], i), i)
			}
		}
	}
	return bw.Flush()
}

// WriteCSV writes data with a time column in seconds followed by one
// 0/1 column per channel.
func WriteCSV(w io.Writer, data []byte, channels int, sampleRateHz float64) error {
	if channels < 1 || channels > 8 {
		return fmt.Errorf("channel count %d out of range 1..8", channels)
	}
	if sampleRateHz <= 0 {
		return fmt.Errorf("sample rate %g Hz out of range", sampleRateHz)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; logic capture export\n")
	fmt.Fprintf(bw, "; Sample Rate: %d Hz\n", int64(sampleRateHz))
	fmt.Fprintf(bw, "; Channels: %d, Samples: %d\n;\n", channels, len(data))

	cw := csv.NewWriter(bw)
	header := make([]string, 0, channels+1)
	header = append(header, "time")
	for i := 0; i < channels; i++ {
		header = append(header, fmt.Sprintf("CH%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	step := 1.0 / sampleRateHz
	row := make([]string, channels+1)
	for idx, b := range data {
		row[0] = strconv.FormatFloat(float64(idx)*step, 'f', 9, 64)
		for i := 0; i < channels; i++ {
			row[i+1] = strconv.Itoa(Bit(b, i))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}
