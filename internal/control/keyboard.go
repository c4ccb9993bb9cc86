package control

import "gitlab.com/gomidi/midi/v2"

// Two rows of a QWERTY keyboard laid out like a piano, starting at C.
var keyLayout = map[rune]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12, 'o': 13,
	'l': 14, 'p': 15, ';': 16,
}

const (
	minOctave = 0
	maxOctave = 8
)

// Keyboard maps terminal key presses to MIDI messages. Terminals report no
// key release, so each note key toggles its note.
type Keyboard struct {
	Channel  uint8
	Velocity uint8

	octave int
	held   map[uint8]bool
}

func NewKeyboard() *Keyboard {
	return &Keyboard{Velocity: 100, octave: 4, held: make(map[uint8]bool)}
}

func (k *Keyboard) Octave() int { return k.octave }

// Press handles one key. z and x shift the octave, space releases every held
// note.
func (k *Keyboard) Press(r rune) []midi.Message {
	switch r {
	case 'z':
		k.octave = max(k.octave-1, minOctave)
		return nil
	case 'x':
		k.octave = min(k.octave+1, maxOctave)
		return nil
	case ' ':
		return k.ReleaseAll()
	}
	offset, ok := keyLayout[r]
	if !ok {
		return nil
	}
	note := 12*(k.octave+1) + offset
	if note > 127 {
		return nil
	}
	key := uint8(note)
	if k.held[key] {
		delete(k.held, key)
		return []midi.Message{midi.NoteOff(k.Channel, key)}
	}
	k.held[key] = true
	return []midi.Message{midi.NoteOn(k.Channel, key, k.Velocity)}
}

// ReleaseAll returns note offs for every held note.
func (k *Keyboard) ReleaseAll() []midi.Message {
	var out []midi.Message
	for key := range k.held {
		out = append(out, midi.NoteOff(k.Channel, key))
		delete(k.held, key)
	}
	return out
}
