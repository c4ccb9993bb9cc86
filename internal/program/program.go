// Package program describes a synth patch as a fixed graph of blocks wired by
// signals, plus the params and modulation routes that drive it.
package program

import (
	"errors"

	"github.com/cbegin/kirosynth-go/internal/signal"
)

var (
	ErrParamNotFound      = errors.New("param not found")
	ErrSourceNotFound     = errors.New("modulation source not found")
	ErrModulationNotFound = errors.New("modulation route not found")
	ErrBlockOrder         = errors.New("block reads a signal before it is written")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrNoOutput           = errors.New("program output not declared")
)

type ParamRef int

type SourceRef int

// VoiceSignals are the per-voice slots written by the synth on note events.
type VoiceSignals struct {
	Trigger   signal.Ref
	Gate      signal.Ref
	NotePitch signal.Ref
	Velocity  signal.Ref
	Off       signal.Ref
}

// Source is a named signal that params can be modulated from.
type Source struct {
	ID     string
	Signal signal.Ref
}

// Program is the frozen result of a Builder. Its topology never changes; param
// base values and modulation routes are mutated by the audio context only.
type Program struct {
	blocks       []Block
	params       []Param
	sources      []Source
	voice        VoiceSignals
	outLeft      signal.Ref
	outRight     signal.Ref
	voiceInitial []float64
}

func (p *Program) Blocks() []Block { return p.blocks }

func (p *Program) Voice() VoiceSignals { return p.voice }

// Output returns the signals a voice's stereo output is read from.
func (p *Program) Output() (left, right signal.Ref) { return p.outLeft, p.outRight }

// NumSignals is the size of each voice's bus.
func (p *Program) NumSignals() int { return len(p.voiceInitial) }

// NewVoiceBus allocates a bus for one voice.
func (p *Program) NewVoiceBus() *signal.Bus { return signal.NewBus(p.voiceInitial) }

// NewGlobalBus allocates the bus holding every param's base value, one slot
// per param in ParamRef order.
func (p *Program) NewGlobalBus() *signal.Bus {
	initial := make([]float64, len(p.params))
	for i := range p.params {
		initial[i] = p.params[i].base
	}
	return signal.NewBus(initial)
}

func (p *Program) NumParams() int { return len(p.params) }

// Params returns the param table in ParamRef order. The slice is owned by the
// program.
func (p *Program) Params() []Param { return p.params }

func (p *Program) Param(ref ParamRef) (*Param, bool) {
	if ref < 0 || int(ref) >= len(p.params) {
		return nil, false
	}
	return &p.params[ref], true
}

func (p *Program) ParamByName(id string) (ParamRef, bool) {
	for i := range p.params {
		if p.params[i].ID == id {
			return ParamRef(i), true
		}
	}
	return -1, false
}

func (p *Program) NumSources() int { return len(p.sources) }

func (p *Program) Source(ref SourceRef) (Source, bool) {
	if ref < 0 || int(ref) >= len(p.sources) {
		return Source{}, false
	}
	return p.sources[ref], true
}

func (p *Program) SourceByName(id string) (SourceRef, bool) {
	for i := range p.sources {
		if p.sources[i].ID == id {
			return SourceRef(i), true
		}
	}
	return -1, false
}

// Sources returns the registered sources in SourceRef order.
func (p *Program) Sources() []Source { return p.sources }

// SetParamValue sets a param's base value, clamped to its bounds.
func (p *Program) SetParamValue(ref ParamRef, value float64) (float64, error) {
	param, ok := p.Param(ref)
	if !ok {
		return 0, ErrParamNotFound
	}
	return param.setBase(value), nil
}

// ChangeParamValue moves a param's base value by delta, clamped to its bounds.
func (p *Program) ChangeParamValue(ref ParamRef, delta float64) (float64, error) {
	param, ok := p.Param(ref)
	if !ok {
		return 0, ErrParamNotFound
	}
	return param.setBase(param.base + delta), nil
}

// UpdateParams publishes changed base values to the global bus. The synth
// calls it once per processing cycle after applying events.
func (p *Program) UpdateParams(globals *signal.Bus) {
	for i := range p.params {
		param := &p.params[i]
		if param.dirty {
			globals.Set(param.global, param.base)
			param.dirty = false
		}
	}
}
