// Package synth runs a program polyphonically: a fixed pool of voices, a
// LIFO free stack and the event application step between buffers.
package synth

import (
	"github.com/cbegin/kirosynth-go/internal/diag"
	"github.com/cbegin/kirosynth-go/internal/event"
	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/signal"
)

type Config struct {
	SampleRate float64
	Polyphony  int
}

func DefaultConfig() Config {
	return Config{SampleRate: 48000, Polyphony: 32}
}

// Synth owns the program and every voice. All methods must be called from
// the audio context.
type Synth struct {
	cfg     Config
	prog    *program.Program
	globals *signal.Bus
	events  *event.Consumer
	diags   *diag.Writer

	voices []*Voice
	free   []int // stack, top is the last element
	active []int
	last   int
	noteID uint64
}

// New builds the voice pool. events and diags may be nil.
func New(cfg Config, prog *program.Program, events *event.Consumer, diags *diag.Writer) *Synth {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Polyphony <= 0 {
		cfg.Polyphony = def.Polyphony
	}
	s := &Synth{
		cfg:     cfg,
		prog:    prog,
		globals: prog.NewGlobalBus(),
		events:  events,
		diags:   diags,
		voices:  make([]*Voice, cfg.Polyphony),
		free:    make([]int, 0, cfg.Polyphony),
		active:  make([]int, 0, cfg.Polyphony),
		last:    -1,
	}
	for i := range s.voices {
		s.voices[i] = NewVoice(cfg.SampleRate, prog)
	}
	// Reverse order so voice 0 is allocated first.
	for i := cfg.Polyphony - 1; i >= 0; i-- {
		s.free = append(s.free, i)
	}
	return s
}

// Prepare drains pending events in arrival order and publishes changed param
// values. It runs once per buffer, before Process.
func (s *Synth) Prepare() {
	if s.events != nil {
		for {
			ev, ok := s.events.Pop()
			if !ok {
				break
			}
			s.Apply(ev.Message)
		}
	}
	s.prog.UpdateParams(s.globals)
}

// Apply applies one message. Routing errors are reported and the message is
// dropped; nothing here fails the audio stream.
func (s *Synth) Apply(msg event.Message) {
	switch msg.Kind {
	case event.KindNoteOn:
		s.NoteOn(msg.Key, msg.Velocity)
	case event.KindNoteOff:
		s.NoteOff(msg.Key, msg.Velocity)
	case event.KindParamValue:
		v, err := s.prog.SetParamValue(msg.Param, msg.Value)
		s.reportParam(msg, v, err)
	case event.KindParamChange:
		v, err := s.prog.ChangeParamValue(msg.Param, msg.Value)
		s.reportParam(msg, v, err)
	case event.KindModulationUpdate:
		err := s.prog.UpdateModulation(msg.Param, msg.Source, msg.Value)
		s.reportRoute(diag.ModulationUpdated, msg, err)
	case event.KindModulationDelete:
		err := s.prog.DeleteModulation(msg.Param, msg.Source)
		s.reportRoute(diag.ModulationDeleted, msg, err)
	}
}

func (s *Synth) reportParam(msg event.Message, v float64, err error) {
	if err != nil {
		s.diags.Report(diag.Record{Kind: diag.Rejected, Param: msg.Param, Err: err})
		return
	}
	s.diags.Report(diag.Record{Kind: diag.ParamValue, Param: msg.Param, Value: v})
}

func (s *Synth) reportRoute(kind diag.Kind, msg event.Message, err error) {
	rec := diag.Record{Kind: kind, Param: msg.Param, Source: msg.Source, Value: msg.Value}
	if err != nil {
		rec.Kind, rec.Err = diag.Rejected, err
	}
	s.diags.Report(rec)
}

// NoteOn allocates the most recently freed voice. With no free voice the
// note is dropped.
func (s *Synth) NoteOn(key uint8, velocity float64) {
	n := len(s.free)
	if n == 0 {
		s.diags.Report(diag.Record{Kind: diag.NoteDropped, Voice: -1, Key: key, Active: len(s.active)})
		return
	}
	idx := s.free[n-1]
	s.free = s.free[:n-1]
	s.active = append(s.active, idx)
	s.last = idx

	s.noteID++
	v := s.voices[idx]
	v.NoteOn(s.prog, key, velocity)
	v.noteID = s.noteID
	s.diags.Report(diag.Record{Kind: diag.NoteOn, Voice: idx, Key: key, NoteID: s.noteID, Active: len(s.active)})
}

// NoteOff releases every active voice holding key.
func (s *Synth) NoteOff(key uint8, _ float64) {
	for _, idx := range s.active {
		v := s.voices[idx]
		if v.key == key {
			v.NoteOff(s.prog)
			s.diags.Report(diag.Record{Kind: diag.NoteOff, Voice: idx, Key: key, NoteID: v.noteID, Active: len(s.active)})
		}
	}
}

// Process advances every active voice by one sample and returns the summed
// stereo output. Voices that finished during this sample go back to the free
// stack before it returns.
func (s *Synth) Process() (left, right float64) {
	for i := 0; i < len(s.active); {
		idx := s.active[i]
		v := s.voices[idx]
		v.Process(s.prog, s.globals)
		l, r := v.Output(s.prog)
		left += l
		right += r
		if !v.IsOff(s.prog) {
			i++
			continue
		}
		last := len(s.active) - 1
		s.active[i] = s.active[last]
		s.active = s.active[:last]
		s.diags.Report(diag.Record{Kind: diag.VoiceFreed, Voice: idx, Key: v.key, NoteID: v.noteID, Active: len(s.active)})
		v.Reset()
		s.free = append(s.free, idx)
	}
	return left, right
}

// Render fills dst with interleaved stereo frames, running one Prepare for
// the whole buffer.
func (s *Synth) Render(dst []float32) {
	s.Prepare()
	for i := 0; i+1 < len(dst); i += 2 {
		l, r := s.Process()
		dst[i] = float32(l)
		dst[i+1] = float32(r)
	}
}

func (s *Synth) Program() *program.Program { return s.prog }

func (s *Synth) SampleRate() float64 { return s.cfg.SampleRate }

func (s *Synth) Polyphony() int { return len(s.voices) }

func (s *Synth) NumActiveVoices() int { return len(s.active) }

// LastVoice is the index of the most recently allocated voice, -1 before the
// first note.
func (s *Synth) LastVoice() int { return s.last }

// FreeVoices returns the free stack, bottom first. The slice is owned by the
// synth.
func (s *Synth) FreeVoices() []int { return s.free }

// ActiveVoices returns the active voice indices in processing order. The
// slice is owned by the synth.
func (s *Synth) ActiveVoices() []int { return s.active }

func (s *Synth) Voice(idx int) *Voice { return s.voices[idx] }

// Globals is the bus holding every param's published base value.
func (s *Synth) Globals() *signal.Bus { return s.globals }
