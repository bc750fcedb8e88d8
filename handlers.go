package main

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lacap/pkg/host"
)

// API Handlers

func stateMessage() map[string]interface{} {
	serverState.mu.RLock()
	defer serverState.mu.RUnlock()

	return map[string]interface{}{
		"type":            "state",
		"device":          serverState.DevicePath,
		"sample_rate_hz":  serverState.SampleRateHz,
		"samples":         serverState.Samples,
		"gen_freq_hz":     serverState.GenFreqHz,
		"gen_duty":        serverState.GenDutyRatio,
		"acquiring":       serverState.Acquiring,
		"recording":       serverState.Recording,
		"last_capture_id": serverState.LastCaptureID,
		"last_samples":    serverState.LastSamples,
	}
}

func handleState(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(stateMessage())
}

func handleSampleRate(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		serverState.mu.RLock()
		defer serverState.mu.RUnlock()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"sample_rate_hz": serverState.SampleRateHz,
		})
		return
	}

	if r.Method == "POST" {
		var req struct {
			Rate   string  `json:"rate"`
			RateHz float64 `json:"rate_hz"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		hz := req.RateHz
		if req.Rate != "" {
			parsed, err := host.ParseRate(req.Rate)
			if err != nil {
				http.Error(w, err.Error(), 400)
				return
			}
			hz = parsed
		}
		if hz <= 0 || hz > host.SysClockHz {
			http.Error(w, "rate out of range", 400)
			return
		}

		serverState.mu.Lock()
		serverState.SampleRateHz = hz
		serverState.mu.Unlock()

		// Applied on the next acquisition; broadcast to all clients
		broadcastJSON(map[string]interface{}{
			"type":           "samplerate_update",
			"sample_rate_hz": hz,
		})

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"sample_rate_hz": hz,
		})
	}
}

func handleSigGenFrequency(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		FreqHz float64 `json:"freq_hz"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.FreqHz <= 0 || req.FreqHz > host.SysClockHz/2 {
		http.Error(w, "frequency out of range", 400)
		return
	}

	serverState.mu.Lock()
	serverState.GenFreqHz = req.FreqHz
	serverState.mu.Unlock()

	broadcastJSON(map[string]interface{}{
		"type":    "siggen_freq_update",
		"freq_hz": req.FreqHz,
	})

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"freq_hz": req.FreqHz,
	})
}

func handleSigGenDuty(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		Duty float64 `json:"duty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if req.Duty <= 0 || req.Duty >= 1 {
		http.Error(w, "duty must be between 0 and 1", 400)
		return
	}

	serverState.mu.Lock()
	serverState.GenDutyRatio = req.Duty
	serverState.mu.Unlock()

	broadcastJSON(map[string]interface{}{
		"type": "siggen_duty_update",
		"duty": req.Duty,
	})

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"duty":    req.Duty,
	})
}

func handleAcquireStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		Samples int `json:"samples"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	samples := req.Samples
	if samples <= 0 {
		serverState.mu.RLock()
		samples = serverState.Samples
		serverState.mu.RUnlock()
	}

	if err := startAcquisition(samples); err != nil {
		http.Error(w, err.Error(), 409)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"samples": samples,
	})
}

func handleAcquireStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	stopAcquisition()
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

func handleRecordEnable(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req struct {
		Enabled bool `json:"enabled"`
		Parquet bool `json:"parquet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	serverState.mu.Lock()
	serverState.Recording = req.Enabled
	serverState.Parquet = req.Parquet
	serverState.mu.Unlock()

	broadcastJSON(map[string]interface{}{
		"type":      "recording_status",
		"recording": req.Enabled,
	})

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"recording": req.Enabled,
	})
}

// handleCaptures lists the metadata of every recorded capture.
func handleCaptures(w http.ResponseWriter, r *http.Request) {
	metas := []CaptureMetadata{}
	entries, err := os.ReadDir(dataFolder)
	if err != nil && !os.IsNotExist(err) {
		http.Error(w, err.Error(), 500)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dataFolder, e.Name()))
		if err != nil {
			continue
		}
		var meta CaptureMetadata
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		metas = append(metas, meta)
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"captures": metas,
	})
}
