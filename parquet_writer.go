package main

import (
	"encoding/json"
	"io"

	"github.com/segmentio/parquet-go"
)

// CaptureRow represents a single time sample with one column per channel
type CaptureRow struct {
	Sample int64 `parquet:"sample"`
	CH0    int32 `parquet:"CH0"`
	CH1    int32 `parquet:"CH1"`
	CH2    int32 `parquet:"CH2"`
	CH3    int32 `parquet:"CH3"`
	CH4    int32 `parquet:"CH4"`
	CH5    int32 `parquet:"CH5"`
	CH6    int32 `parquet:"CH6"`
	CH7    int32 `parquet:"CH7"`
}

// NewCaptureWriter creates a generic parquet writer with our schema and
// the capture metadata serialized into the file footer
func NewCaptureWriter(w io.Writer, meta CaptureMetadata) *parquet.GenericWriter[CaptureRow] {
	metaStr := "{}"
	if b, err := json.Marshal(meta); err == nil {
		metaStr = string(b)
	}
	return parquet.NewGenericWriter[CaptureRow](w,
		parquet.KeyValueMetadata("capture", metaStr),
	)
}

// WriteCaptureRows unpacks raw capture bytes (one byte = eight channel
// bits per sample) and writes them as rows
func WriteCaptureRows(writer *parquet.GenericWriter[CaptureRow], buf []byte) (int, error) {
	rows := make([]CaptureRow, len(buf))
	for i, b := range buf {
		bit := func(ch int) int32 { return int32(b>>ch) & 1 }
		rows[i] = CaptureRow{
			Sample: int64(i),
			CH0:    bit(0),
			CH1:    bit(1),
			CH2:    bit(2),
			CH3:    bit(3),
			CH4:    bit(4),
			CH5:    bit(5),
			CH6:    bit(6),
			CH7:    bit(7),
		}
	}
	_, err := writer.Write(rows)
	return len(rows), err
}
