// Command client is a minimal automation client for the capture server:
// it requests one acquisition over the WebSocket and saves the returned
// frame.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "Capture server address")
	samples := flag.Int("n", 4096, "Samples to acquire")
	output := flag.String("o", "capture.bin", "Output filename")
	timeout := flag.Duration("timeout", 30*time.Second, "How long to wait for the capture")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	req := map[string]interface{}{
		"type":    "acquire",
		"samples": *samples,
	}
	if err := c.WriteJSON(req); err != nil {
		log.Fatal("request:", err)
	}

	c.SetReadDeadline(time.Now().Add(*timeout))
	for {
		msgType, msg, err := c.ReadMessage()
		if err != nil {
			log.Fatal("read:", err)
		}
		if msgType == websocket.BinaryMessage {
			if err := os.WriteFile(*output, msg, 0644); err != nil {
				log.Fatal("save:", err)
			}
			log.Printf("Saved %d samples to %s", len(msg), *output)
			return
		}

		var status struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		}
		if err := json.Unmarshal(msg, &status); err != nil {
			continue
		}
		switch status.Type {
		case "error":
			log.Fatalf("server error: %s", status.Error)
		case "capture":
			log.Printf("Capture finished, waiting for data frame")
		}
	}
}
