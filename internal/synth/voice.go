package synth

import (
	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/signal"
)

// Voice is one polyphony slot: a private bus and one processor per program
// block, indexed in lockstep with Program.Blocks.
type Voice struct {
	bus        *signal.Bus
	processors []processor
	key        uint8
	noteID     uint64
}

// NewVoice allocates the bus and processors for prog. It is called once per
// pool slot; voices are recycled, never reallocated.
func NewVoice(sampleRate float64, prog *program.Program) *Voice {
	v := &Voice{bus: prog.NewVoiceBus()}
	for _, blk := range prog.Blocks() {
		v.processors = append(v.processors, newProcessor(sampleRate, prog, blk))
	}
	return v
}

// NoteOn writes the note into the voice signals. Retriggering a sounding
// voice continues from its current envelope level.
func (v *Voice) NoteOn(prog *program.Program, key uint8, velocity float64) {
	sig := prog.Voice()
	v.key = key
	v.bus.Set(sig.Trigger, 1)
	v.bus.Set(sig.Gate, 1)
	v.bus.Set(sig.NotePitch, float64(key))
	v.bus.Set(sig.Velocity, velocity)
}

func (v *Voice) NoteOff(prog *program.Program) {
	v.bus.Set(prog.Voice().Gate, 0)
}

// Process runs every block once, in program order.
func (v *Voice) Process(prog *program.Program, globals *signal.Bus) {
	for _, p := range v.processors {
		p.process(v.bus, globals, prog)
	}
}

func (v *Voice) Output(prog *program.Program) (left, right float64) {
	l, r := prog.Output()
	return v.bus.Get(l), v.bus.Get(r)
}

func (v *Voice) IsOff(prog *program.Program) bool {
	return v.bus.Get(prog.Voice().Off) > 0
}

// Reset returns the voice to its initial state before it re-enters the free
// pool.
func (v *Voice) Reset() {
	for _, p := range v.processors {
		p.reset()
	}
	v.bus.Reset()
	v.key = 0
	v.noteID = 0
}

func (v *Voice) Key() uint8 { return v.key }

// NoteID is the id of the note that allocated the voice, 0 when free.
func (v *Voice) NoteID() uint64 { return v.noteID }

// Signals exposes the voice bus for inspection.
func (v *Voice) Signals() *signal.Bus { return v.bus }
