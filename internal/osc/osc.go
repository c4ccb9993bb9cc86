// Package osc implements the audio-rate oscillator used by osc blocks.
package osc

import "math"

const twoPi = math.Pi * 2

type Shape int

const (
	ShapeSine Shape = iota
	ShapeSaw
	ShapeTriangle
	ShapeSquare
	ShapePulse25
	ShapePulse12
	ShapeHalfSine
	ShapeNoise
	NumShapes = 8
)

type Osc struct {
	sampleRate float64
	shape      Shape
	freq       float64
	amplitude  float64
	phase      float64 // radians in [0, 2π)
	lfsr       uint32
}

func New(sampleRate float64) *Osc {
	return &Osc{sampleRate: sampleRate, amplitude: 1, lfsr: 0x7FFF}
}

func (o *Osc) SetShape(s Shape) {
	if s < 0 || s >= NumShapes {
		s = ShapeSine
	}
	o.shape = s
}

func (o *Osc) SetFrequency(hz float64) {
	o.freq = clamp(hz, 0, o.sampleRate/2)
}

func (o *Osc) Frequency() float64 { return o.freq }

func (o *Osc) SetAmplitude(a float64) { o.amplitude = clamp(a, 0, 1) }

// Generate returns the current sample and advances the phase.
func (o *Osc) Generate() float64 {
	s := o.sample() * o.amplitude
	o.phase += twoPi * o.freq / o.sampleRate
	if o.phase >= twoPi {
		o.phase -= twoPi
	}
	return s
}

// Reset restarts the waveform at phase zero.
func (o *Osc) Reset() {
	o.phase = 0
	o.lfsr = 0x7FFF
}

func (o *Osc) sample() float64 {
	phase := o.phase
	switch o.shape {
	case ShapeSaw:
		return 1.0 - 2.0*phase/twoPi
	case ShapeTriangle:
		return 2.0*math.Abs(2.0*phase/twoPi-1.0) - 1.0
	case ShapeSquare:
		if phase < math.Pi {
			return 1.0
		}
		return -1.0
	case ShapePulse25:
		if phase < math.Pi/2 {
			return 1.0
		}
		return -1.0
	case ShapePulse12:
		if phase < math.Pi/4 {
			return 1.0
		}
		return -1.0
	case ShapeHalfSine:
		if s := math.Sin(phase); s > 0 {
			return s
		}
		return 0
	case ShapeNoise:
		o.lfsr = (o.lfsr >> 1) ^ (-(o.lfsr & 1) & 0xB400)
		return float64(o.lfsr)/float64(0x7FFF)*2.0 - 1.0
	default:
		return math.Sin(phase)
	}
}

// PitchToFreq converts a MIDI note number plus offsets to Hz. Octaves,
// semitones and bend are in their own units; cents are hundredths of a
// semitone.
func PitchToFreq(note, octaves, semitones, cents, bend float64) float64 {
	pitch := note + 12*octaves + semitones + cents/100 + bend
	return 440 * math.Pow(2, (pitch-69)/12)
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
