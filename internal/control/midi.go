// Package control turns MIDI and computer keyboard input into synth events.
package control

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"

	"github.com/cbegin/kirosynth-go/internal/event"
	"github.com/cbegin/kirosynth-go/internal/program"
)

// Omni makes a translator accept every channel.
const Omni = -1

// MIDI maps channel voice messages onto a program: notes become note events,
// mapped controllers set params across their range and pitch bend drives a
// bend param.
type MIDI struct {
	prog    *program.Program
	channel int
	cc      map[uint8]program.ParamRef
	bend    program.ParamRef
	hasBend bool
}

type MIDIOption func(*MIDI)

// WithChannel restricts the translator to one zero-based channel.
func WithChannel(ch int) MIDIOption {
	return func(m *MIDI) { m.channel = ch }
}

// WithPitchBend routes pitch bend to the named param.
func WithPitchBend(param string) MIDIOption {
	return func(m *MIDI) {
		if ref, ok := m.prog.ParamByName(param); ok {
			m.bend, m.hasBend = ref, true
		}
	}
}

func NewMIDI(prog *program.Program, opts ...MIDIOption) *MIDI {
	m := &MIDI{prog: prog, channel: Omni, cc: make(map[uint8]program.ParamRef)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MapCC assigns a controller number to a param.
func (m *MIDI) MapCC(controller uint8, param string) error {
	ref, ok := m.prog.ParamByName(param)
	if !ok {
		return fmt.Errorf("cc %d -> %q: %w", controller, param, program.ErrParamNotFound)
	}
	m.cc[controller] = ref
	return nil
}

// Translate converts msg; ok is false for messages the translator ignores.
func (m *MIDI) Translate(msg midi.Message) (ev event.Message, ok bool) {
	var ch, key, vel, cc, val uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		if !m.accepts(ch) {
			return ev, false
		}
		return event.NoteOn(key, float64(vel)/127), true
	case msg.GetNoteEnd(&ch, &key):
		if !m.accepts(ch) {
			return ev, false
		}
		return event.NoteOff(key, 0), true
	case msg.GetControlChange(&ch, &cc, &val):
		ref, mapped := m.cc[cc]
		if !mapped || !m.accepts(ch) {
			return ev, false
		}
		param, _ := m.prog.Param(ref)
		v := param.Values
		return event.ParamValue(ref, v.Min+float64(val)/127*(v.Max-v.Min)), true
	case msg.GetPitchBend(&ch, &rel, &abs):
		if !m.hasBend || !m.accepts(ch) {
			return ev, false
		}
		param, _ := m.prog.Param(m.bend)
		amount := float64(rel) / 8192
		if amount < 0 {
			return event.ParamValue(m.bend, -amount*param.Values.Min), true
		}
		return event.ParamValue(m.bend, amount*param.Values.Max), true
	}
	return ev, false
}

func (m *MIDI) accepts(ch uint8) bool {
	return m.channel == Omni || int(ch) == m.channel
}
