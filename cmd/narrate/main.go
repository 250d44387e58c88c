package main

import (
	"fmt"
	"log"
	"os"

	"replay-doctor/internal/narrator"
	"replay-doctor/internal/session"
)

// narrate prints the textual story of a saved recording. Handy for
// checking what the diagnostic model will be told about a session.
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <recording.json>\n", os.Args[0])
		os.Exit(2)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("failed to read recording: %v", err)
	}

	events, err := session.Decode(raw)
	if err != nil {
		log.Fatalf("failed to decode recording: %v", err)
	}

	fmt.Println(narrator.Narrate(events))
}
