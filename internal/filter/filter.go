// Package filter implements a zero-delay-feedback state variable filter with
// selectable response.
package filter

import "math"

type Mode int

const (
	ModeLowPass Mode = iota
	ModeBandPass
	ModeHighPass
	ModeNotch
	NumModes = 4
)

const (
	MinFreq = 20.0
	MinQ    = 0.5
	MaxQ    = 25.0
)

type SVF struct {
	sampleRate float64
	mode       Mode
	freq       float64
	q          float64

	g, k         float64
	a1, a2, a3   float64
	ic1eq, ic2eq float64
}

func New(sampleRate float64) *SVF {
	s := &SVF{sampleRate: sampleRate, freq: 8000, q: math.Sqrt2 / 2}
	s.update()
	return s
}

func (s *SVF) SetMode(m Mode) {
	if m < 0 || m >= NumModes {
		m = ModeLowPass
	}
	s.mode = m
}

// SetFrequency sets the cutoff in Hz, kept between MinFreq and just below Nyquist.
func (s *SVF) SetFrequency(hz float64) {
	s.freq = clamp(hz, MinFreq, s.sampleRate*0.49)
	s.update()
}

func (s *SVF) SetQ(q float64) {
	s.q = clamp(q, MinQ, MaxQ)
	s.update()
}

func (s *SVF) Frequency() float64 { return s.freq }

func (s *SVF) Process(x float64) float64 {
	v3 := x - s.ic2eq
	v1 := s.a1*s.ic1eq + s.a2*v3
	v2 := s.ic2eq + s.a2*s.ic1eq + s.a3*v3
	s.ic1eq = 2*v1 - s.ic1eq
	s.ic2eq = 2*v2 - s.ic2eq

	switch s.mode {
	case ModeBandPass:
		return v1
	case ModeHighPass:
		return x - s.k*v1 - v2
	case ModeNotch:
		return x - s.k*v1
	default:
		return v2
	}
}

func (s *SVF) Reset() {
	s.ic1eq = 0
	s.ic2eq = 0
}

func (s *SVF) update() {
	s.g = math.Tan(math.Pi * s.freq / s.sampleRate)
	s.k = 1 / s.q
	s.a1 = 1 / (1 + s.g*(s.g+s.k))
	s.a2 = s.g * s.a1
	s.a3 = s.g * s.a2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
