package kirosynth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"golang.org/x/sync/errgroup"

	intaudio "github.com/cbegin/kirosynth-go/internal/audio"
	"github.com/cbegin/kirosynth-go/internal/control"
	"github.com/cbegin/kirosynth-go/internal/diag"
	"github.com/cbegin/kirosynth-go/internal/effects"
	"github.com/cbegin/kirosynth-go/internal/event"
	"github.com/cbegin/kirosynth-go/internal/instrument"
	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/synth"
)

var (
	ErrQueueFull     = errors.New("event queue full")
	ErrUnknownParam  = errors.New("unknown param")
	ErrUnknownSource = errors.New("unknown modulation source")
)

type (
	Message    = event.Message
	ParamRef   = program.ParamRef
	SourceRef  = program.SourceRef
	Diagnostic = diag.Record

	DelayConfig  = effects.DelayConfig
	ReverbConfig = effects.ReverbConfig
)

// Diagnostic kinds reported on Watch().
const (
	DiagNoteOn            = diag.NoteOn
	DiagNoteOff           = diag.NoteOff
	DiagNoteDropped       = diag.NoteDropped
	DiagVoiceFreed        = diag.VoiceFreed
	DiagParamValue        = diag.ParamValue
	DiagModulationUpdated = diag.ModulationUpdated
	DiagModulationDeleted = diag.ModulationDeleted
	DiagRejected          = diag.Rejected
)

type PlayerOption func(*playerConfig)

type playerConfig struct {
	polyphony    int
	eventCap     int
	diagCap      int
	watchCap     int
	backend      string
	sampleTap    func([]float32)
	stages       []func(sampleRate int) effects.Stage
	instrument   instrument.Config
	pumpInterval time.Duration
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		polyphony:    synth.DefaultConfig().Polyphony,
		eventCap:     1024,
		diagCap:      1024,
		watchCap:     64,
		backend:      intaudio.BackendEbiten,
		instrument:   instrument.DefaultConfig(),
		pumpInterval: 10 * time.Millisecond,
	}
}

// WithPolyphony sets the number of voices. Notes beyond it are dropped.
func WithPolyphony(n int) PlayerOption {
	return func(cfg *playerConfig) { cfg.polyphony = n }
}

// WithEventCapacity sizes the queue between the caller and the audio thread.
func WithEventCapacity(n int) PlayerOption {
	return func(cfg *playerConfig) { cfg.eventCap = n }
}

// WithDiagnosticCapacity sizes the ring the audio thread reports into.
func WithDiagnosticCapacity(n int) PlayerOption {
	return func(cfg *playerConfig) { cfg.diagCap = n }
}

// WithBackend selects the live output, "ebiten" or "oto".
func WithBackend(name string) PlayerOption {
	return func(cfg *playerConfig) { cfg.backend = name }
}

// WithDelay appends a stereo feedback delay to the master effects chain.
func WithDelay(d DelayConfig) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.stages = append(cfg.stages, func(sr int) effects.Stage { return effects.NewDelay(sr, d) })
	}
}

// WithReverb appends a reverb to the master effects chain.
func WithReverb(r ReverbConfig) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.stages = append(cfg.stages, func(sr int) effects.Stage { return effects.NewReverb(sr, r) })
	}
}

// WithSampleTap installs a callback invoked with each generated stereo buffer.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) { cfg.sampleTap = tap }
}

// ParamInfo describes one instrument param.
type ParamInfo struct {
	Ref     ParamRef
	ID      string
	Min     float64
	Max     float64
	Initial float64
}

// Player is the control-side handle of a Kiro synth. Its methods are safe for
// concurrent use; they reach the audio thread only through the event queue.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	cfg        playerConfig
	prog       *program.Program
	midi       *control.MIDI
	synth      *synth.Synth
	fx         effects.Chain
	events     *event.Producer
	diags      *diag.Reader
	audio      intaudio.Backend
	started    time.Time

	diagMu    sync.Mutex
	eventCh   chan Diagnostic
	eventChMu sync.Mutex

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.polyphony <= 0 {
		return nil, errors.New("polyphony must be positive")
	}
	prog, _, err := instrument.NewProgram(cfg.instrument)
	if err != nil {
		return nil, fmt.Errorf("build instrument: %w", err)
	}
	translator := control.NewMIDI(prog, control.WithPitchBend("pitch-bend"))
	for cc, id := range instrument.Controllers() {
		if err := translator.MapCC(cc, id); err != nil {
			return nil, err
		}
	}
	prod, cons := event.NewQueue(cfg.eventCap)
	w, r := diag.New(cfg.diagCap)
	s := synth.New(synth.Config{SampleRate: float64(sampleRate), Polyphony: cfg.polyphony}, prog, cons, w)
	fx := make(effects.Chain, 0, len(cfg.stages))
	for _, newStage := range cfg.stages {
		fx = append(fx, newStage(sampleRate))
	}
	return &Player{
		sampleRate: sampleRate,
		cfg:        cfg,
		prog:       prog,
		midi:       translator,
		synth:      s,
		fx:         fx,
		events:     prod,
		diags:      r,
		started:    time.Now(),
	}, nil
}

func (p *Player) SampleRate() int { return p.sampleRate }

// Render pulls the next buffer of interleaved stereo frames. Backends call
// it from the audio thread; offline hosts may call it directly, but never
// both at once.
func (p *Player) Render(dst []float32) {
	p.synth.Render(dst)
	p.fx.Process(dst)
	if p.cfg.sampleTap != nil {
		p.cfg.sampleTap(dst)
	}
}

// Send queues a message for the next processing cycle.
func (p *Player) Send(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := event.Event{Timestamp: uint64(time.Since(p.started)), Message: msg}
	if !p.events.Push(ev) {
		return ErrQueueFull
	}
	return nil
}

func (p *Player) NoteOn(key uint8, velocity float64) error {
	return p.Send(event.NoteOn(key, velocity))
}

func (p *Player) NoteOff(key uint8) error {
	return p.Send(event.NoteOff(key, 0))
}

// SendMIDI translates a MIDI channel message and queues it. Messages the
// instrument has no mapping for are ignored.
func (p *Player) SendMIDI(msg midi.Message) error {
	ev, ok := p.midi.Translate(msg)
	if !ok {
		return nil
	}
	return p.Send(ev)
}

// SetParam sets a param by id; the synth clamps it to its bounds.
func (p *Player) SetParam(id string, value float64) error {
	ref, err := p.ParamRef(id)
	if err != nil {
		return err
	}
	return p.Send(event.ParamValue(ref, value))
}

// ChangeParam moves a param by delta.
func (p *Player) ChangeParam(id string, delta float64) error {
	ref, err := p.ParamRef(id)
	if err != nil {
		return err
	}
	return p.Send(event.ParamChange(ref, delta))
}

// UpdateModulation routes source into param with amount, replacing any
// existing amount.
func (p *Player) UpdateModulation(source, param string, amount float64) error {
	src, ref, err := p.route(source, param)
	if err != nil {
		return err
	}
	return p.Send(event.ModulationUpdate(src, ref, amount))
}

func (p *Player) DeleteModulation(source, param string) error {
	src, ref, err := p.route(source, param)
	if err != nil {
		return err
	}
	return p.Send(event.ModulationDelete(src, ref))
}

func (p *Player) route(source, param string) (SourceRef, ParamRef, error) {
	ref, err := p.ParamRef(param)
	if err != nil {
		return 0, 0, err
	}
	src, err := p.SourceRef(source)
	if err != nil {
		return 0, 0, err
	}
	return src, ref, nil
}

// ParamRef resolves a param id. Ids and bounds never change after build, so
// this does not touch audio-thread state.
func (p *Player) ParamRef(id string) (ParamRef, error) {
	ref, ok := p.prog.ParamByName(id)
	if !ok {
		return 0, fmt.Errorf("%q: %w", id, ErrUnknownParam)
	}
	return ref, nil
}

func (p *Player) SourceRef(id string) (SourceRef, error) {
	ref, ok := p.prog.SourceByName(id)
	if !ok {
		return 0, fmt.Errorf("%q: %w", id, ErrUnknownSource)
	}
	return ref, nil
}

// Params lists the instrument params in ref order.
func (p *Player) Params() []ParamInfo {
	params := p.prog.Params()
	out := make([]ParamInfo, len(params))
	for i := range params {
		v := params[i].Values
		out[i] = ParamInfo{Ref: ParamRef(i), ID: params[i].ID, Min: v.Min, Max: v.Max, Initial: v.Initial}
	}
	return out
}

// Sources lists the modulation source ids in ref order.
func (p *Player) Sources() []string {
	srcs := p.prog.Sources()
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = s.ID
	}
	return out
}

// Watch returns a channel receiving diagnostics from the audio thread. The
// channel is buffered; records are dropped when it is full. Only the most
// recent Watch() channel receives records.
func (p *Player) Watch() <-chan Diagnostic {
	ch := make(chan Diagnostic, p.cfg.watchCap)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

// DroppedDiagnostics counts records lost because the audio-side ring was full.
func (p *Player) DroppedDiagnostics() uint64 { return p.diags.Dropped() }

func (p *Player) sendEvent(rec Diagnostic) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- rec:
		default:
		}
	}
}

// flushDiagnostics forwards pending audio-side records to the Watch channel.
func (p *Player) flushDiagnostics() {
	p.diagMu.Lock()
	defer p.diagMu.Unlock()
	p.diags.Drain(p.sendEvent)
}

// Start opens the audio backend and begins playback.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
		return nil
	}
	backend, err := intaudio.Open(p.cfg.backend, p.sampleRate, p)
	if err != nil {
		return err
	}
	p.audio = backend

	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.NewTicker(p.cfg.pumpInterval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				p.flushDiagnostics()
				return nil
			case <-t.C:
				p.flushDiagnostics()
			}
		}
	})
	p.cancel, p.group = cancel, g
	p.audio.Play()
	return nil
}

func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

// Stop closes the backend and waits for the diagnostics pump to exit.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.audio == nil {
		p.mu.Unlock()
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	cancel, g := p.cancel, p.group
	p.cancel, p.group = nil, nil
	p.mu.Unlock()

	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	return err
}
