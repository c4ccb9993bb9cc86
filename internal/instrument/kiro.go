// Package instrument assembles the Kiro program: two LFOs, an envelope,
// four oscillators mixed into a filter, and an output amplifier.
package instrument

import (
	"github.com/cbegin/kirosynth-go/internal/filter"
	"github.com/cbegin/kirosynth-go/internal/lfo"
	"github.com/cbegin/kirosynth-go/internal/osc"
	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/signal"
)

type Config struct {
	NumLfoShapes int
	NumOscShapes int
}

func DefaultConfig() Config {
	return Config{NumLfoShapes: lfo.NumWaves, NumOscShapes: osc.NumShapes}
}

type LfoParams struct {
	Shape, Rate, Phase, Depth program.ParamBlock
}

func (p LfoParams) blocks() []program.ParamBlock {
	return []program.ParamBlock{p.Shape, p.Rate, p.Phase, p.Depth}
}

type EnvGenParams struct {
	Attack, Decay, Sustain, Release program.ParamBlock
	Mode, Legato, ResetToZero       program.ParamBlock
	DCAMod                          program.ParamBlock
}

func (p EnvGenParams) blocks() []program.ParamBlock {
	return []program.ParamBlock{p.Attack, p.Decay, p.Sustain, p.Release, p.Mode, p.Legato, p.ResetToZero, p.DCAMod}
}

type OscParams struct {
	Shape, Amplitude, Octaves, Semitones, Cents program.ParamBlock
}

func (p OscParams) blocks() []program.ParamBlock {
	return []program.ParamBlock{p.Shape, p.Amplitude, p.Octaves, p.Semitones, p.Cents}
}

type FilterParams struct {
	Mode, Freq, Q program.ParamBlock
}

func (p FilterParams) blocks() []program.ParamBlock {
	return []program.ParamBlock{p.Mode, p.Freq, p.Q}
}

type DCAParams struct {
	Amplitude, Pan program.ParamBlock
}

func (p DCAParams) blocks() []program.ParamBlock {
	return []program.ParamBlock{p.Amplitude, p.Pan}
}

type Params struct {
	PitchBend  program.ParamBlock
	Lfo1, Lfo2 LfoParams
	Eg1        EnvGenParams
	Osc        [4]OscParams
	Filter1    FilterParams
	DCA        DCAParams
}

type Signals struct {
	Lfo1, Lfo2           signal.Ref
	Eg1Normal, Eg1Biased signal.Ref
	Osc                  [4]signal.Ref
	Filter1              signal.Ref
	DCALeft, DCARight    signal.Ref
}

type Sources struct {
	Lfo1, Lfo2           program.SourceRef
	Eg1Normal, Eg1Biased program.SourceRef
	Osc                  [4]program.SourceRef
}

// Module holds the handles of everything the Kiro program registered, so a
// host can address params and sources without looking them up by name.
type Module struct {
	Params  Params
	Signals Signals
	Sources Sources
}

// NewProgram builds a complete Kiro program with its output declared.
func NewProgram(cfg Config) (*program.Program, *Module, error) {
	b := program.NewBuilder()
	m := New(b, cfg)
	b.Out(m.Signals.DCALeft, m.Signals.DCARight)
	prog, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return prog, m, nil
}

// New registers the Kiro params, sources and blocks on b. The caller decides
// where the output goes.
func New(b *program.Builder, cfg Config) *Module {
	def := DefaultConfig()
	if cfg.NumLfoShapes <= 0 {
		cfg.NumLfoShapes = def.NumLfoShapes
	}
	if cfg.NumOscShapes <= 0 {
		cfg.NumOscShapes = def.NumOscShapes
	}
	voice := b.Voice()
	zero := b.ConstZero()

	lfoParams := func(name string) LfoParams {
		return LfoParams{
			Shape: b.Param(name+"-shape", enumeration(cfg.NumLfoShapes).WithInitial(lfo.WaveSine)),
			Rate:  b.Param(name+"-rate", lfoRate()),
			Phase: b.Param(name+"-phase", lfoPhase()),
			Depth: b.Param(name+"-depth", amplitude()),
		}
	}

	m := &Module{}
	p := &m.Params
	p.PitchBend = b.Param("pitch-bend", pitchBend())
	p.Lfo1 = lfoParams("lfo1")
	p.Lfo2 = lfoParams("lfo2")
	p.Eg1 = EnvGenParams{
		Attack:      b.Param("eg1-attack", adsr(0.02)),
		Decay:       b.Param("eg1-decay", adsr(0.1)),
		Sustain:     b.Param("eg1-sustain", adsr(1.0)),
		Release:     b.Param("eg1-release", adsr(1.5)),
		Mode:        b.Param("eg1-mode", egMode()),
		Legato:      b.Param("eg1-legato", boolean(false)),
		ResetToZero: b.Param("eg1-reset-to-zero", boolean(false)),
		DCAMod:      b.Param("eg1-dca-mod", egDCAMod()),
	}
	oscDefaults := [4]struct {
		shape     osc.Shape
		amplitude float64
		octaves   float64
	}{
		{osc.ShapeSaw, 1, 0},
		{osc.ShapeSine, 0.25, -1},
		{osc.ShapeSine, 0, 0},
		{osc.ShapeSine, 0, 0},
	}
	for i, d := range oscDefaults {
		name := "osc" + string(rune('1'+i))
		p.Osc[i] = OscParams{
			Shape:     b.Param(name+"-shape", enumeration(cfg.NumOscShapes).WithInitial(float64(d.shape))),
			Amplitude: b.Param(name+"-amplitude", amplitude().WithInitial(d.amplitude)),
			Octaves:   b.Param(name+"-octaves", octave().WithInitial(d.octaves)),
			Semitones: b.Param(name+"-semitones", semitones()),
			Cents:     b.Param(name+"-cents", cents()),
		}
	}
	p.Filter1 = FilterParams{
		Mode: b.Param("filt1-mode", enumeration(filter.NumModes).WithInitial(float64(filter.ModeLowPass))),
		Freq: b.Param("filt1-freq", filtFreq()),
		Q:    b.Param("filt1-q", filtQ()),
	}
	p.DCA = DCAParams{
		Amplitude: b.Param("dca-amplitude-db", amplitudeDB().WithInitial(-3)),
		Pan:       b.Param("dca-pan", pan()),
	}

	s := &m.Signals
	s.Lfo1, s.Lfo2 = b.Signal(), b.Signal()
	s.Eg1Normal, s.Eg1Biased = b.Signal(), b.Signal()
	for i := range s.Osc {
		s.Osc[i] = b.Signal()
	}
	s.Filter1 = b.Signal()
	s.DCALeft, s.DCARight = b.Signal(), b.Signal()

	src := &m.Sources
	src.Lfo1 = b.Source("lfo1", s.Lfo1)
	src.Lfo2 = b.Source("lfo2", s.Lfo2)
	src.Eg1Normal = b.Source("eg1", s.Eg1Normal)
	src.Eg1Biased = b.Source("eg1-biased", s.Eg1Biased)
	for i := range src.Osc {
		src.Osc[i] = b.Source("osc"+string(rune('1'+i)), s.Osc[i])
	}

	b.Modulation(p.Filter1.Freq, src.Lfo1, 800)
	b.Modulation(p.Filter1.Freq, src.Eg1Normal, 700)
	b.Modulation(p.Filter1.Q, src.Lfo2, 0.09)
	b.Modulation(p.Osc[0].Amplitude, src.Lfo2, 0.1)
	b.Modulation(p.DCA.Pan, src.Lfo1, 0.1)

	stages := func(pbs []program.ParamBlock) {
		for _, pb := range pbs {
			b.ParamStage(pb)
		}
	}

	b.ParamStage(p.PitchBend)
	for _, l := range []struct {
		params LfoParams
		out    signal.Ref
	}{{p.Lfo1, s.Lfo1}, {p.Lfo2, s.Lfo2}} {
		stages(l.params.blocks())
		b.Block(program.Lfo{
			Inputs: program.LfoInputs{
				Shape: l.params.Shape.Out,
				Rate:  l.params.Rate.Out,
				Phase: l.params.Phase.Out,
				Depth: l.params.Depth.Out,
			},
			Output: l.out,
		})
	}

	eg := p.Eg1
	stages(eg.blocks())
	b.Block(program.EnvGen{
		Inputs: program.EnvGenInputs{
			Attack:      eg.Attack.Out,
			Decay:       eg.Decay.Out,
			Sustain:     eg.Sustain.Out,
			Release:     eg.Release.Out,
			Mode:        eg.Mode.Out,
			Legato:      eg.Legato.Out,
			ResetToZero: eg.ResetToZero.Out,
		},
		Outputs: program.EnvGenOutputs{
			Normal:   s.Eg1Normal,
			Biased:   s.Eg1Biased,
			VoiceOff: voice.Off,
		},
	})
	egDCA := b.Expr(func(e program.ExprBuilder) program.ExprNode {
		return e.MulSignalParam(s.Eg1Normal, eg.DCAMod)
	})
	b.Block(egDCA)

	for i, op := range p.Osc {
		stages(op.blocks())
		b.Block(program.Osc{
			Inputs: program.OscInputs{
				Shape:     op.Shape.Out,
				Amplitude: op.Amplitude.Out,
				AmpMod:    zero,
				Octaves:   op.Octaves.Out,
				Semitones: op.Semitones.Out,
				Cents:     op.Cents.Out,
				NotePitch: voice.NotePitch,
				PitchBend: p.PitchBend.Out,
				FreqMod:   zero,
			},
			Output: s.Osc[i],
		})
	}
	mix := b.Expr(func(e program.ExprBuilder) program.ExprNode {
		return e.Add(e.AddSignals(s.Osc[0], s.Osc[1]), e.AddSignals(s.Osc[2], s.Osc[3]))
	})
	b.Block(mix)

	stages(p.Filter1.blocks())
	b.Block(program.Filter{
		Input: mix.Output,
		Params: program.FilterParams{
			Mode:    p.Filter1.Mode.Out,
			Freq:    p.Filter1.Freq.Out,
			FreqMod: zero,
			Q:       p.Filter1.Q.Out,
		},
		Output: s.Filter1,
	})

	stages(p.DCA.blocks())
	b.Block(program.DCA{
		Inputs: program.DCAInputs{
			Left:      s.Filter1,
			Right:     s.Filter1,
			Velocity:  voice.Velocity,
			Amplitude: p.DCA.Amplitude.Out,
			AmpMod:    zero,
			EgMod:     egDCA.Output,
			Pan:       p.DCA.Pan.Out,
			PanMod:    zero,
		},
		Outputs: program.DCAOutputs{Left: s.DCALeft, Right: s.DCARight},
	})
	return m
}

// Controllers maps MIDI controller numbers to the params they drive.
func Controllers() map[uint8]string {
	return map[uint8]string{
		1:  "lfo1-depth",
		7:  "dca-amplitude-db",
		10: "dca-pan",
		71: "filt1-q",
		72: "eg1-release",
		73: "eg1-attack",
		74: "filt1-freq",
	}
}
