package main

import (
	"context"
	"log"
	"net"

	"github.com/lacap/pkg/instrument"
)

// demoSource drives channels 1..7 with a binary ripple counter clocked at
// the default sample rate, so each channel toggles at half the rate of
// the one below it. Channel 0 belongs to the test generator.
func demoSource(tick uint64) byte {
	return byte((tick / 270) << 1)
}

// RunSimulator serves a virtual instrument on addr. Each connection gets
// a freshly booted device, greeting included.
func RunSimulator(addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("[SIM] listen on %s: %v", addr, err)
	}
	log.Printf("[SIM] Virtual instrument listening on %s", addr)
	serveSimulator(ln)
}

func serveSimulator(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Printf("[SIM] accept: %v", err)
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			dev := instrument.New(instrument.Config{Source: demoSource})
			if err := dev.Run(context.Background(), c); err != nil {
				log.Printf("[SIM] device session ended: %v", err)
			}
		}(conn)
	}
}
