package main

const numChannels = 8

// ChannelStats are the measurements extracted from one channel of a
// packed capture.
type ChannelStats struct {
	Active    bool    // any level change observed
	Edges     int     // rising edges
	FreqHz    float64 // rising-edge rate
	DutyRatio float64 // fraction of samples high
}

// unpackChannel extracts one channel's 0/1 stream from packed samples.
func unpackChannel(data []byte, ch int) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = (b >> ch) & 1
	}
	return out
}

// analyzeChannel measures the toggle frequency and duty cycle of one
// channel. Frequency is computed over the span between the first and
// last rising edge, so partial leading/trailing periods don't bias it.
func analyzeChannel(data []byte, ch int, sampleRateHz float64) ChannelStats {
	var stats ChannelStats
	if len(data) < 2 || sampleRateHz <= 0 {
		return stats
	}

	mask := byte(1) << ch
	var highs, rising int
	firstEdge, lastEdge := -1, -1
	prev := data[0] & mask
	if prev != 0 {
		highs++
	}
	for i := 1; i < len(data); i++ {
		cur := data[i] & mask
		if cur != 0 {
			highs++
		}
		if cur != prev {
			stats.Active = true
			if cur != 0 {
				rising++
				if firstEdge < 0 {
					firstEdge = i
				}
				lastEdge = i
			}
		}
		prev = cur
	}

	stats.Edges = rising
	stats.DutyRatio = float64(highs) / float64(len(data))

	// frequency needs at least two rising edges to bound full periods
	if rising >= 2 {
		span := float64(lastEdge-firstEdge) / sampleRateHz
		stats.FreqHz = float64(rising-1) / span
	}
	return stats
}
