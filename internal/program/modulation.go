package program

import "github.com/cbegin/kirosynth-go/internal/signal"

// Route is one weighted connection from a source to a param.
type Route struct {
	Source SourceRef
	Amount float64
}

// UpdateModulation inserts a route or replaces the amount of an existing one.
// It never allocates: each param's route slice is sized for every source at
// build time.
func (p *Program) UpdateModulation(param ParamRef, source SourceRef, amount float64) error {
	target, ok := p.Param(param)
	if !ok {
		return ErrParamNotFound
	}
	if _, ok := p.Source(source); !ok {
		return ErrSourceNotFound
	}
	target.upsertRoute(source, amount)
	return nil
}

// DeleteModulation removes a route.
func (p *Program) DeleteModulation(param ParamRef, source SourceRef) error {
	target, ok := p.Param(param)
	if !ok {
		return ErrParamNotFound
	}
	if _, ok := p.Source(source); !ok {
		return ErrSourceNotFound
	}
	for i := range target.routes {
		if target.routes[i].Source == source {
			last := len(target.routes) - 1
			target.routes[i] = target.routes[last]
			target.routes[last] = Route{}
			target.routes = target.routes[:last]
			target.routesVersion++
			return nil
		}
	}
	return ErrModulationNotFound
}

// Modulation returns the amount routed from source to param.
func (p *Program) Modulation(param ParamRef, source SourceRef) (float64, bool) {
	target, ok := p.Param(param)
	if !ok {
		return 0, false
	}
	for _, r := range target.routes {
		if r.Source == source {
			return r.Amount, true
		}
	}
	return 0, false
}

// ModulatedValue computes clamp(base + sum(source * amount)) reading source
// values from a voice bus. It is a pure function of its inputs.
func (p *Program) ModulatedValue(param *Param, base float64, bus *signal.Bus) float64 {
	v := base
	for _, r := range param.routes {
		v += bus.Get(p.sources[r.Source].Signal) * r.Amount
	}
	return param.Values.Clamp(v)
}

func (p *Param) upsertRoute(source SourceRef, amount float64) {
	for i := range p.routes {
		if p.routes[i].Source == source {
			p.routes[i].Amount = amount
			p.routesVersion++
			return
		}
	}
	p.routes = append(p.routes, Route{Source: source, Amount: amount})
	p.routesVersion++
}
