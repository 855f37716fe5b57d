//go:build windows

package main

import (
	"os"
	"os/signal"
)

// notifySignals registers the interrupts that map onto stop requests.
// On Windows only os.Interrupt (Ctrl+C) exists.
func notifySignals(ch chan<- os.Signal) {
	signal.Notify(ch, os.Interrupt)
}
