package synth

import (
	"math"

	"github.com/cbegin/kirosynth-go/internal/dca"
	"github.com/cbegin/kirosynth-go/internal/envgen"
	"github.com/cbegin/kirosynth-go/internal/filter"
	"github.com/cbegin/kirosynth-go/internal/lfo"
	"github.com/cbegin/kirosynth-go/internal/osc"
	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/signal"
)

// paramProcessor publishes clamp(base + sum(source*amount)) on the param's
// out signal. It only recomputes when the base, the route set or a routed
// source was written.
type paramProcessor struct {
	ref        program.ParamRef
	out        signal.Ref
	base       signal.Cursor
	sources    []signal.Cursor // indexed by SourceRef
	routesSeen uint64
	primed     bool

	coeff   float64 // one-pole smoothing, 0 when disabled
	current float64
	target  float64
}

func newParamProcessor(sampleRate float64, prog *program.Program, b program.ParamStage) *paramProcessor {
	param, ok := prog.Param(b.Param)
	if !ok {
		panic("synth: param stage for unknown param")
	}
	p := &paramProcessor{
		ref:  b.Param,
		out:  b.Out,
		base: signal.NewCursor(param.Global()),
	}
	for _, src := range prog.Sources() {
		p.sources = append(p.sources, signal.NewCursor(src.Signal))
	}
	if b.Smoothing > 0 {
		p.coeff = 1 - math.Exp(-1/(sampleRate*b.Smoothing))
	}
	return p
}

func (p *paramProcessor) reset() {
	p.base.Reset()
	for i := range p.sources {
		p.sources[i].Reset()
	}
	p.primed = false
}

func (p *paramProcessor) process(bus, globals *signal.Bus, prog *program.Program) {
	param, _ := prog.Param(p.ref)
	base, changed := p.base.Changed(globals)
	if v := param.RoutesVersion(); v != p.routesSeen || !p.primed {
		p.routesSeen = v
		changed = true
	}
	for _, r := range param.Routes() {
		if _, c := p.sources[r.Source].Changed(bus); c {
			changed = true
		}
	}
	if changed {
		p.target = prog.ModulatedValue(param, base, bus)
	}

	if p.coeff == 0 || !p.primed {
		p.primed = true
		if changed {
			p.current = p.target
			bus.Set(p.out, p.current)
		}
		return
	}
	if p.current != p.target {
		p.current += (p.target - p.current) * p.coeff
		if math.Abs(p.target-p.current) < 1e-9 {
			p.current = p.target
		}
		bus.Set(p.out, p.current)
	}
}

// envGenProcessor drives an envelope from the voice trigger and gate signals
// and raises the voice off signal once the envelope has finished.
type envGenProcessor struct {
	eg      *envgen.EnvGen
	outputs program.EnvGenOutputs

	trigger, gate                   signal.Cursor
	attack, decay, sustain, release signal.Cursor
	mode, legato, resetToZero       signal.Cursor
}

func newEnvGenProcessor(sampleRate float64, voice program.VoiceSignals, b program.EnvGen) *envGenProcessor {
	in := b.Inputs
	return &envGenProcessor{
		eg:          envgen.New(sampleRate),
		outputs:     b.Outputs,
		trigger:     signal.NewCursor(voice.Trigger),
		gate:        signal.NewCursor(voice.Gate),
		attack:      signal.NewCursor(in.Attack),
		decay:       signal.NewCursor(in.Decay),
		sustain:     signal.NewCursor(in.Sustain),
		release:     signal.NewCursor(in.Release),
		mode:        signal.NewCursor(in.Mode),
		legato:      signal.NewCursor(in.Legato),
		resetToZero: signal.NewCursor(in.ResetToZero),
	}
}

func (p *envGenProcessor) reset() {
	p.eg.Reset()
	for _, c := range []*signal.Cursor{
		&p.trigger, &p.gate, &p.attack, &p.decay, &p.sustain,
		&p.release, &p.mode, &p.legato, &p.resetToZero,
	} {
		c.Reset()
	}
}

func (p *envGenProcessor) process(bus, _ *signal.Bus, _ *program.Program) {
	if v, ok := p.mode.Changed(bus); ok {
		p.eg.SetMode(envgen.Mode(int(math.Round(v))))
	}
	if v, ok := p.attack.Changed(bus); ok {
		p.eg.SetAttackTimeSec(v)
	}
	if v, ok := p.decay.Changed(bus); ok {
		p.eg.SetDecayTimeSec(v)
	}
	if v, ok := p.sustain.Changed(bus); ok {
		p.eg.SetSustainLevel(v)
	}
	if v, ok := p.release.Changed(bus); ok {
		p.eg.SetReleaseTimeSec(v)
	}
	if v, ok := p.legato.Changed(bus); ok {
		p.eg.SetLegato(v >= 0.5)
	}
	if v, ok := p.resetToZero.Changed(bus); ok {
		p.eg.SetResetToZero(v >= 0.5)
	}

	if v, ok := p.trigger.Changed(bus); ok && v > 0 {
		p.eg.Start()
	}
	if v, ok := p.gate.Changed(bus); ok && v == 0 {
		p.eg.NoteOff()
	}

	p.eg.Generate()
	bus.Set(p.outputs.Normal, p.eg.Output())
	bus.Set(p.outputs.Biased, p.eg.BiasedOutput())
	if p.eg.IsOff() {
		bus.Set(p.outputs.VoiceOff, 1)
	}
}

// oscProcessor's amp mod adds to the amplitude and its freq mod adds
// semitones to the pitch.
type oscProcessor struct {
	osc    *osc.Osc
	output signal.Ref

	shape, amplitude, ampMod             signal.Cursor
	octaves, semitones, cents            signal.Cursor
	notePitch, pitchBend, freqMod        signal.Cursor
	amp, amod, oct, semi, cent, note, pb float64
	fmod                                 float64
}

func newOscProcessor(sampleRate float64, b program.Osc) *oscProcessor {
	in := b.Inputs
	return &oscProcessor{
		osc:       osc.New(sampleRate),
		output:    b.Output,
		shape:     signal.NewCursor(in.Shape),
		amplitude: signal.NewCursor(in.Amplitude),
		ampMod:    signal.NewCursor(in.AmpMod),
		octaves:   signal.NewCursor(in.Octaves),
		semitones: signal.NewCursor(in.Semitones),
		cents:     signal.NewCursor(in.Cents),
		notePitch: signal.NewCursor(in.NotePitch),
		pitchBend: signal.NewCursor(in.PitchBend),
		freqMod:   signal.NewCursor(in.FreqMod),
	}
}

func (p *oscProcessor) reset() {
	p.osc.Reset()
	for _, c := range []*signal.Cursor{
		&p.shape, &p.amplitude, &p.ampMod, &p.octaves, &p.semitones,
		&p.cents, &p.notePitch, &p.pitchBend, &p.freqMod,
	} {
		c.Reset()
	}
}

func (p *oscProcessor) process(bus, _ *signal.Bus, _ *program.Program) {
	if v, ok := p.shape.Changed(bus); ok {
		p.osc.SetShape(osc.Shape(int(math.Round(v))))
	}

	ampChanged := false
	if v, ok := p.amplitude.Changed(bus); ok {
		p.amp, ampChanged = v, true
	}
	if v, ok := p.ampMod.Changed(bus); ok {
		p.amod, ampChanged = v, true
	}
	if ampChanged {
		p.osc.SetAmplitude(p.amp + p.amod)
	}

	pitchChanged := false
	for _, in := range [...]struct {
		c   *signal.Cursor
		dst *float64
	}{
		{&p.octaves, &p.oct},
		{&p.semitones, &p.semi},
		{&p.cents, &p.cent},
		{&p.notePitch, &p.note},
		{&p.pitchBend, &p.pb},
		{&p.freqMod, &p.fmod},
	} {
		if v, ok := in.c.Changed(bus); ok {
			*in.dst = v
			pitchChanged = true
		}
	}
	if pitchChanged {
		p.osc.SetFrequency(osc.PitchToFreq(p.note, p.oct, p.semi, p.cent, p.pb+p.fmod))
	}

	bus.Set(p.output, p.osc.Generate())
}

type lfoProcessor struct {
	lfo        lfo.LFO
	sampleRate float64
	output     signal.Ref

	shape, rate, phase, depth signal.Cursor
}

func newLfoProcessor(sampleRate float64, b program.Lfo) *lfoProcessor {
	return &lfoProcessor{
		sampleRate: sampleRate,
		output:     b.Output,
		shape:      signal.NewCursor(b.Inputs.Shape),
		rate:       signal.NewCursor(b.Inputs.Rate),
		phase:      signal.NewCursor(b.Inputs.Phase),
		depth:      signal.NewCursor(b.Inputs.Depth),
	}
}

func (p *lfoProcessor) reset() {
	p.lfo.Reset()
	p.shape.Reset()
	p.rate.Reset()
	p.phase.Reset()
	p.depth.Reset()
}

func (p *lfoProcessor) process(bus, _ *signal.Bus, _ *program.Program) {
	if v, ok := p.shape.Changed(bus); ok {
		p.lfo.SetWaveform(int(math.Round(v)))
	}
	if v, ok := p.rate.Changed(bus); ok {
		p.lfo.SetRate(v)
	}
	if v, ok := p.phase.Changed(bus); ok {
		p.lfo.SetPhase(v)
	}
	if v, ok := p.depth.Changed(bus); ok {
		p.lfo.SetDepth(v)
	}
	bus.Set(p.output, p.lfo.Sample(p.sampleRate))
}

// filterProcessor's freq mod is in octaves relative to the cutoff.
type filterProcessor struct {
	svf    *filter.SVF
	input  signal.Ref
	output signal.Ref

	mode, freq, freqMod, q signal.Cursor
	hz, octaves            float64
}

func newFilterProcessor(sampleRate float64, b program.Filter) *filterProcessor {
	return &filterProcessor{
		svf:     filter.New(sampleRate),
		input:   b.Input,
		output:  b.Output,
		mode:    signal.NewCursor(b.Params.Mode),
		freq:    signal.NewCursor(b.Params.Freq),
		freqMod: signal.NewCursor(b.Params.FreqMod),
		q:       signal.NewCursor(b.Params.Q),
	}
}

func (p *filterProcessor) reset() {
	p.svf.Reset()
	p.mode.Reset()
	p.freq.Reset()
	p.freqMod.Reset()
	p.q.Reset()
}

func (p *filterProcessor) process(bus, _ *signal.Bus, _ *program.Program) {
	if v, ok := p.mode.Changed(bus); ok {
		p.svf.SetMode(filter.Mode(int(math.Round(v))))
	}
	freqChanged := false
	if v, ok := p.freq.Changed(bus); ok {
		p.hz, freqChanged = v, true
	}
	if v, ok := p.freqMod.Changed(bus); ok {
		p.octaves, freqChanged = v, true
	}
	if freqChanged {
		p.svf.SetFrequency(p.hz * math.Exp2(p.octaves))
	}
	if v, ok := p.q.Changed(bus); ok {
		p.svf.SetQ(v)
	}
	bus.Set(p.output, p.svf.Process(bus.Get(p.input)))
}

// dcaProcessor applies amplitude (dB, plus amp mod in dB), velocity and the
// envelope gain, then pans by pan + pan mod.
type dcaProcessor struct {
	dca     *dca.DCA
	inputs  program.DCAInputs
	outputs program.DCAOutputs

	amplitude, ampMod, pan, panMod signal.Cursor
	db, dbMod, pos, posMod         float64
}

func newDCAProcessor(b program.DCA) *dcaProcessor {
	return &dcaProcessor{
		dca:       dca.New(),
		inputs:    b.Inputs,
		outputs:   b.Outputs,
		amplitude: signal.NewCursor(b.Inputs.Amplitude),
		ampMod:    signal.NewCursor(b.Inputs.AmpMod),
		pan:       signal.NewCursor(b.Inputs.Pan),
		panMod:    signal.NewCursor(b.Inputs.PanMod),
	}
}

func (p *dcaProcessor) reset() {
	p.amplitude.Reset()
	p.ampMod.Reset()
	p.pan.Reset()
	p.panMod.Reset()
}

func (p *dcaProcessor) process(bus, _ *signal.Bus, _ *program.Program) {
	gainChanged := false
	if v, ok := p.amplitude.Changed(bus); ok {
		p.db, gainChanged = v, true
	}
	if v, ok := p.ampMod.Changed(bus); ok {
		p.dbMod, gainChanged = v, true
	}
	if gainChanged {
		p.dca.SetAmplitudeDB(p.db + p.dbMod)
	}
	panChanged := false
	if v, ok := p.pan.Changed(bus); ok {
		p.pos, panChanged = v, true
	}
	if v, ok := p.panMod.Changed(bus); ok {
		p.posMod, panChanged = v, true
	}
	if panChanged {
		p.dca.SetPan(p.pos + p.posMod)
	}

	mod := bus.Get(p.inputs.Velocity) * bus.Get(p.inputs.EgMod)
	l, r := p.dca.Process(bus.Get(p.inputs.Left), bus.Get(p.inputs.Right), mod)
	bus.Set(p.outputs.Left, l)
	bus.Set(p.outputs.Right, r)
}

type exprProcessor struct {
	expr  program.Expr
	stack []float64
}

func newExprProcessor(b program.Expr) *exprProcessor {
	return &exprProcessor{expr: b, stack: make([]float64, b.Depth)}
}

func (p *exprProcessor) reset() {}

func (p *exprProcessor) process(bus, _ *signal.Bus, _ *program.Program) {
	bus.Set(p.expr.Output, p.expr.Eval(bus, p.stack))
}
