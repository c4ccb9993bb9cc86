package program

import (
	"math"

	"github.com/cbegin/kirosynth-go/internal/signal"
)

// ValueSpec bounds a param.
type ValueSpec struct {
	Min     float64
	Max     float64
	Initial float64
}

func Values(min, max, initial float64) ValueSpec {
	return ValueSpec{Min: min, Max: max, Initial: initial}.normalized()
}

func (v ValueSpec) WithInitial(initial float64) ValueSpec {
	v.Initial = initial
	return v.normalized()
}

// Clamp bounds x to [Min, Max]. NaN maps to Initial.
func (v ValueSpec) Clamp(x float64) float64 {
	if math.IsNaN(x) {
		return v.Initial
	}
	if x < v.Min {
		return v.Min
	}
	if x > v.Max {
		return v.Max
	}
	return x
}

func (v ValueSpec) normalized() ValueSpec {
	if v.Min > v.Max {
		v.Min, v.Max = v.Max, v.Min
	}
	v.Initial = v.Clamp(v.Initial)
	return v
}

// Param is a bounded control value. Blocks never read it directly; a
// ParamStage block publishes its modulated value on the Out signal.
type Param struct {
	ID     string
	Values ValueSpec

	global signal.Ref
	out    signal.Ref
	base   float64
	dirty  bool

	routes        []Route
	routesVersion uint64
}

// Value returns the unmodulated base value.
func (p *Param) Value() float64 { return p.base }

// Global is the param's slot in the synth's global bus.
func (p *Param) Global() signal.Ref { return p.global }

// Out is the per-voice signal carrying the modulated value.
func (p *Param) Out() signal.Ref { return p.out }

// Routes returns the param's modulation routes. The slice is owned by the
// program and only valid until the next route update.
func (p *Param) Routes() []Route { return p.routes }

// RoutesVersion changes every time the route set is modified.
func (p *Param) RoutesVersion() uint64 { return p.routesVersion }

// setBase ignores NaN and keeps the current base.
func (p *Param) setBase(v float64) float64 {
	if math.IsNaN(v) {
		return p.base
	}
	p.base = p.Values.Clamp(v)
	p.dirty = true
	return p.base
}

// ParamBlock is the builder's handle to a param.
type ParamBlock struct {
	Ref ParamRef
	Out signal.Ref
}
