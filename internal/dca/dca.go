// Package dca is the output amplifier: gain in dB, a modulation gain factor
// and constant-power panning.
package dca

import "math"

const MinDB = -96.0

type DCA struct {
	gain float64
	pan  float64
	panL float64
	panR float64
}

func New() *DCA {
	d := &DCA{gain: 1}
	d.SetPan(0)
	return d
}

// SetAmplitudeDB sets the static gain. Values at or below MinDB are silent.
func (d *DCA) SetAmplitudeDB(db float64) { d.gain = DBToGain(db) }

// SetPan sets the stereo position in [-1, 1], -1 being hard left.
func (d *DCA) SetPan(pan float64) {
	d.pan = clamp(pan, -1, 1)
	angle := (d.pan + 1) / 2 * (math.Pi / 2)
	d.panL = math.Cos(angle)
	d.panR = math.Sin(angle)
}

func (d *DCA) Pan() float64 { return d.pan }

// Process applies the static gain, the per-sample mod gain and the pan law.
func (d *DCA) Process(left, right, mod float64) (float64, float64) {
	g := d.gain * mod
	return left * g * d.panL, right * g * d.panR
}

func DBToGain(db float64) float64 {
	if db <= MinDB {
		return 0
	}
	return math.Pow(10, db/20)
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
