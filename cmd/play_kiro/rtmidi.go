//go:build rtmidi

package main

// Registers the RtMidi driver for -midi-in. Needs cgo and the system MIDI
// libraries, so it is opt-in: go build -tags rtmidi.
import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
