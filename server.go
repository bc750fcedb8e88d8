package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocket clients
var (
	wsClients   = make(map[*Client]bool)
	wsClientsMu sync.RWMutex
)

type Client struct {
	conn *websocket.Conn
	send chan interface{}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			switch v := msg.(type) {
			case []byte:
				if err := c.conn.WriteMessage(websocket.BinaryMessage, v); err != nil {
					return
				}
			default:
				if err := c.conn.WriteJSON(v); err != nil {
					return
				}
			}
		}
	}
}

// runServer starts the control server: REST endpoints for one-shot
// commands, a WebSocket for live status plus capture frames.
func runServer(port int, devicePath string, rateHz float64) {
	serverState.mu.Lock()
	serverState.DevicePath = devicePath
	serverState.SampleRateHz = rateHz
	serverState.mu.Unlock()

	upgrader := websocket.Upgrader{
		CheckOrigin:     func(r *http.Request) bool { return true },
		ReadBufferSize:  1024,
		WriteBufferSize: 65536,
	}

	// API endpoints
	http.HandleFunc("/api/state", handleState)
	http.HandleFunc("/api/samplerate", handleSampleRate)
	http.HandleFunc("/api/siggen/frequency", handleSigGenFrequency)
	http.HandleFunc("/api/siggen/duty", handleSigGenDuty)
	http.HandleFunc("/api/acquire/start", handleAcquireStart)
	http.HandleFunc("/api/acquire/stop", handleAcquireStop)
	http.HandleFunc("/api/record/enable", handleRecordEnable)
	http.HandleFunc("/api/captures", handleCaptures)

	// WebSocket streaming endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("Upgrade:", err)
			return
		}

		log.Println("Client connected")

		client := &Client{conn: conn, send: make(chan interface{}, 256)}

		// Register client
		wsClientsMu.Lock()
		wsClients[client] = true
		wsClientsMu.Unlock()

		// Start write pump
		go client.writePump()

		// Greet with the current state
		client.send <- stateMessage()

		defer func() {
			wsClientsMu.Lock()
			delete(wsClients, client)
			wsClientsMu.Unlock()
			close(client.send) // This will stop writePump
			log.Println("Client disconnected")
		}()

		// Handle incoming control messages from client (read pump)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var ctrl struct {
				Type    string  `json:"type"`
				Samples int     `json:"samples"`
				RateHz  float64 `json:"rate_hz"`
			}
			if err := json.Unmarshal(msg, &ctrl); err != nil {
				continue
			}
			switch ctrl.Type {
			case "acquire":
				samples := ctrl.Samples
				if samples <= 0 {
					serverState.mu.RLock()
					samples = serverState.Samples
					serverState.mu.RUnlock()
				}
				if err := startAcquisition(samples); err != nil {
					client.send <- map[string]interface{}{
						"type":  "error",
						"error": err.Error(),
					}
				}
			case "stop":
				stopAcquisition()
			case "config":
				serverState.mu.Lock()
				if ctrl.Samples > 0 {
					serverState.Samples = ctrl.Samples
				}
				if ctrl.RateHz > 0 {
					serverState.SampleRateHz = ctrl.RateHz
				}
				serverState.mu.Unlock()
				broadcastJSON(stateMessage())
			}
		}
	})

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Capture server listening on http://localhost%s", addr)
	log.Printf("Device: %s", devicePath)
	log.Fatal(http.ListenAndServe(addr, nil))
}

func broadcastJSON(msg interface{}) {
	wsClientsMu.RLock()
	defer wsClientsMu.RUnlock()

	for client := range wsClients {
		select {
		case client.send <- msg:
		default:
		}
	}
}

// broadcastCapture sends a finished capture to every client as one binary
// frame.
func broadcastCapture(data []byte) {
	wsClientsMu.RLock()
	defer wsClientsMu.RUnlock()

	for client := range wsClients {
		select {
		case client.send <- data:
		default:
		}
	}
}
