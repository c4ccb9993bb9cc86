package program

import "github.com/cbegin/kirosynth-go/internal/signal"

// Block is one processing stage. The concrete types below are the closed set
// of block kinds; Reads and Writes list the signals a block consumes and
// produces and are only used while building.
type Block interface {
	Kind() string
	Reads() []signal.Ref
	Writes() []signal.Ref
}

type EnvGenInputs struct {
	Attack      signal.Ref
	Decay       signal.Ref
	Sustain     signal.Ref
	Release     signal.Ref
	Mode        signal.Ref
	Legato      signal.Ref
	ResetToZero signal.Ref
}

type EnvGenOutputs struct {
	Normal   signal.Ref
	Biased   signal.Ref
	VoiceOff signal.Ref
}

// EnvGen is an ADSR envelope driven by the voice trigger and gate signals.
type EnvGen struct {
	Inputs  EnvGenInputs
	Outputs EnvGenOutputs
}

func (EnvGen) Kind() string { return "envgen" }

func (b EnvGen) Reads() []signal.Ref {
	in := b.Inputs
	return []signal.Ref{in.Attack, in.Decay, in.Sustain, in.Release, in.Mode, in.Legato, in.ResetToZero}
}

func (b EnvGen) Writes() []signal.Ref {
	return []signal.Ref{b.Outputs.Normal, b.Outputs.Biased, b.Outputs.VoiceOff}
}

type OscInputs struct {
	Shape     signal.Ref
	Amplitude signal.Ref
	AmpMod    signal.Ref
	Octaves   signal.Ref
	Semitones signal.Ref
	Cents     signal.Ref
	NotePitch signal.Ref
	PitchBend signal.Ref
	FreqMod   signal.Ref
}

type Osc struct {
	Inputs OscInputs
	Output signal.Ref
}

func (Osc) Kind() string { return "osc" }

func (b Osc) Reads() []signal.Ref {
	in := b.Inputs
	return []signal.Ref{in.Shape, in.Amplitude, in.AmpMod, in.Octaves, in.Semitones, in.Cents, in.NotePitch, in.PitchBend, in.FreqMod}
}

func (b Osc) Writes() []signal.Ref { return []signal.Ref{b.Output} }

type LfoInputs struct {
	Shape signal.Ref
	Rate  signal.Ref
	Phase signal.Ref
	Depth signal.Ref
}

type Lfo struct {
	Inputs LfoInputs
	Output signal.Ref
}

func (Lfo) Kind() string { return "lfo" }

func (b Lfo) Reads() []signal.Ref {
	return []signal.Ref{b.Inputs.Shape, b.Inputs.Rate, b.Inputs.Phase, b.Inputs.Depth}
}

func (b Lfo) Writes() []signal.Ref { return []signal.Ref{b.Output} }

type FilterParams struct {
	Mode    signal.Ref
	Freq    signal.Ref
	FreqMod signal.Ref
	Q       signal.Ref
}

type Filter struct {
	Input  signal.Ref
	Params FilterParams
	Output signal.Ref
}

func (Filter) Kind() string { return "filter" }

func (b Filter) Reads() []signal.Ref {
	return []signal.Ref{b.Input, b.Params.Mode, b.Params.Freq, b.Params.FreqMod, b.Params.Q}
}

func (b Filter) Writes() []signal.Ref { return []signal.Ref{b.Output} }

type DCAInputs struct {
	Left      signal.Ref
	Right     signal.Ref
	Velocity  signal.Ref
	Amplitude signal.Ref
	AmpMod    signal.Ref
	EgMod     signal.Ref
	Pan       signal.Ref
	PanMod    signal.Ref
}

type DCAOutputs struct {
	Left  signal.Ref
	Right signal.Ref
}

// DCA is the amplitude and pan stage.
type DCA struct {
	Inputs  DCAInputs
	Outputs DCAOutputs
}

func (DCA) Kind() string { return "dca" }

func (b DCA) Reads() []signal.Ref {
	in := b.Inputs
	return []signal.Ref{in.Left, in.Right, in.Velocity, in.Amplitude, in.AmpMod, in.EgMod, in.Pan, in.PanMod}
}

func (b DCA) Writes() []signal.Ref { return []signal.Ref{b.Outputs.Left, b.Outputs.Right} }

// ParamStage publishes a param's modulated value on its Out signal. With a
// positive Smoothing time the output glides toward the target instead of
// jumping.
type ParamStage struct {
	Param     ParamRef
	Out       signal.Ref
	Smoothing float64
}

func (ParamStage) Kind() string { return "param" }

// Reads is empty: the base value lives on the global bus and modulation
// sources may be rewired at any time.
func (ParamStage) Reads() []signal.Ref { return nil }

func (b ParamStage) Writes() []signal.Ref { return []signal.Ref{b.Out} }
