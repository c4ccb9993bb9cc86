package program

import (
	"fmt"

	"github.com/cbegin/kirosynth-go/internal/signal"
)

// Builder assembles a Program once, before any audio is processed.
type Builder struct {
	initial  []float64
	external map[signal.Ref]bool
	params   []Param
	sources  []Source
	blocks   []Block
	voice    VoiceSignals
	zero     signal.Ref
	one      signal.Ref
	out      [2]signal.Ref
	hasOut   bool
	err      error
}

func NewBuilder() *Builder {
	b := &Builder{external: make(map[signal.Ref]bool), zero: -1, one: -1}
	b.voice = VoiceSignals{
		Trigger:   b.externalSignal(0),
		Gate:      b.externalSignal(0),
		NotePitch: b.externalSignal(0),
		Velocity:  b.externalSignal(0),
		Off:       b.externalSignal(0),
	}
	return b
}

// Voice returns the well-known voice-level signals.
func (b *Builder) Voice() VoiceSignals { return b.voice }

// Signal allocates an anonymous signal slot.
func (b *Builder) Signal() signal.Ref {
	b.initial = append(b.initial, 0)
	return signal.Ref(len(b.initial) - 1)
}

// Const allocates a signal that holds v and is never written.
func (b *Builder) Const(v float64) signal.Ref { return b.externalSignal(v) }

func (b *Builder) ConstZero() signal.Ref {
	if b.zero < 0 {
		b.zero = b.Const(0)
	}
	return b.zero
}

func (b *Builder) ConstOne() signal.Ref {
	if b.one < 0 {
		b.one = b.Const(1)
	}
	return b.one
}

func (b *Builder) externalSignal(v float64) signal.Ref {
	ref := b.Signal()
	b.initial[ref] = v
	b.external[ref] = true
	return ref
}

// Param registers a param and allocates the voice signal its ParamStage writes.
func (b *Builder) Param(id string, values ValueSpec) ParamBlock {
	for i := range b.params {
		if b.params[i].ID == id {
			b.fail(fmt.Errorf("param %q: %w", id, ErrDuplicateID))
		}
	}
	values = values.normalized()
	out := b.Signal()
	b.initial[out] = values.Initial
	ref := ParamRef(len(b.params))
	b.params = append(b.params, Param{
		ID:     id,
		Values: values,
		global: signal.Ref(ref),
		out:    out,
		base:   values.Initial,
	})
	return ParamBlock{Ref: ref, Out: out}
}

// Source registers a named modulation source.
func (b *Builder) Source(id string, ref signal.Ref) SourceRef {
	for i := range b.sources {
		if b.sources[i].ID == id {
			b.fail(fmt.Errorf("source %q: %w", id, ErrDuplicateID))
		}
	}
	b.sources = append(b.sources, Source{ID: id, Signal: ref})
	return SourceRef(len(b.sources) - 1)
}

// Modulation adds or replaces a route from source to param.
func (b *Builder) Modulation(pb ParamBlock, source SourceRef, amount float64) {
	if int(pb.Ref) >= len(b.params) || pb.Ref < 0 {
		b.fail(fmt.Errorf("modulation to param %d: %w", pb.Ref, ErrParamNotFound))
		return
	}
	if int(source) >= len(b.sources) || source < 0 {
		b.fail(fmt.Errorf("modulation from source %d: %w", source, ErrSourceNotFound))
		return
	}
	b.params[pb.Ref].upsertRoute(source, amount)
}

// Block appends a block; the order of calls is the evaluation order.
func (b *Builder) Block(blk Block) { b.blocks = append(b.blocks, blk) }

// ParamStage appends the block publishing pb's modulated value.
func (b *Builder) ParamStage(pb ParamBlock) {
	b.Block(ParamStage{Param: pb.Ref, Out: pb.Out})
}

// Expr compiles an expression into a block writing a fresh signal. The block
// still has to be appended with Block.
func (b *Builder) Expr(fn func(e ExprBuilder) ExprNode) Expr {
	node := fn(ExprBuilder{})
	return Expr{Code: node.code, Depth: max(node.depth, 1), Output: b.Signal()}
}

// Out declares the signals a voice's stereo output is read from.
func (b *Builder) Out(left, right signal.Ref) {
	b.out = [2]signal.Ref{left, right}
	b.hasOut = true
}

// Build freezes the builder. It fails if any block reads a signal that is
// neither a voice signal, a constant, nor written by an earlier block.
func (b *Builder) Build() (*Program, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.hasOut {
		return nil, ErrNoOutput
	}
	if err := b.checkOrder(); err != nil {
		return nil, err
	}
	params := make([]Param, len(b.params))
	copy(params, b.params)
	for i := range params {
		routes := make([]Route, len(params[i].routes), len(b.sources))
		copy(routes, params[i].routes)
		params[i].routes = routes
	}
	return &Program{
		blocks:       append([]Block(nil), b.blocks...),
		params:       params,
		sources:      append([]Source(nil), b.sources...),
		voice:        b.voice,
		outLeft:      b.out[0],
		outRight:     b.out[1],
		voiceInitial: append([]float64(nil), b.initial...),
	}, nil
}

func (b *Builder) checkOrder() error {
	written := make(map[signal.Ref]bool, len(b.initial))
	for i, blk := range b.blocks {
		for _, ref := range blk.Reads() {
			if int(ref) < 0 || int(ref) >= len(b.initial) {
				return fmt.Errorf("block %d (%s): signal %d out of range", i, blk.Kind(), ref)
			}
			if !b.external[ref] && !written[ref] {
				return fmt.Errorf("block %d (%s) reads signal %d: %w", i, blk.Kind(), ref, ErrBlockOrder)
			}
		}
		for _, ref := range blk.Writes() {
			written[ref] = true
		}
	}
	for _, ref := range b.out {
		if !b.external[ref] && !written[ref] {
			return fmt.Errorf("output signal %d: %w", ref, ErrBlockOrder)
		}
	}
	return nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}
