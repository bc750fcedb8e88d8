package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
)

const dataFolder = "data"

func newCaptureMetadata(samples int, rateHz, genFreqHz, genDuty float64) CaptureMetadata {
	return CaptureMetadata{
		ID:           uuid.NewString(),
		Timestamp:    time.Now().Format(time.RFC3339),
		SampleRateHz: rateHz,
		GenFreqHz:    genFreqHz,
		GenDutyRatio: genDuty,
		Samples:      samples,
		Channels:     numChannels,
	}
}

// saveCapture writes the raw capture plus its metadata sidecar, and
// optionally a parquet rendition with the metadata in the footer.
func saveCapture(path string, data []byte, meta CaptureMetadata, writeParquet bool) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	metaPath := replaceExt(path, ".json")
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(metaPath, metaBytes, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", metaPath, err)
	}

	if !writeParquet {
		return nil
	}
	pqPath := replaceExt(path, ".parquet")
	f, err := os.Create(pqPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", pqPath, err)
	}
	w := NewCaptureWriter(f, meta)
	if _, err := WriteCaptureRows(w, data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", pqPath, err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing %s: %w", pqPath, err)
	}
	return f.Close()
}

// recordCapture stores a server-side acquisition under the data folder,
// named by timestamp like the manual CLI saves.
func recordCapture(data []byte, meta CaptureMetadata, writeParquet bool) (string, error) {
	if _, err := os.Stat(dataFolder); os.IsNotExist(err) {
		os.Mkdir(dataFolder, 0755)
	}
	filename := fmt.Sprintf("capture_%s.bin", time.Now().Format("20060102_150405"))
	if err := saveCapture(filepath.Join(dataFolder, filename), data, meta, writeParquet); err != nil {
		return "", err
	}
	return filename, nil
}

// listCaptures renders a table of every capture with a metadata sidecar
// in the data folder.
func listCaptures(w io.Writer) error {
	entries, err := os.ReadDir(dataFolder)
	if os.IsNotExist(err) {
		fmt.Fprintln(w, "No captures recorded yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", dataFolder, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		fmt.Fprintln(w, "No captures recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Timestamp", "Rate (Hz)", "Samples", "ID"})
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dataFolder, name))
		if err != nil {
			continue
		}
		var meta CaptureMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		table.Append([]string{
			replaceExt(name, ".bin"),
			meta.Timestamp,
			strconv.FormatFloat(meta.SampleRateHz, 'g', -1, 64),
			strconv.Itoa(meta.Samples),
			meta.ID,
		})
	}
	table.Render()
	return nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
