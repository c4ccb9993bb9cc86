package lfo

import "math"

// Waveform constants, in the order the lfo shape param enumerates them.
const (
	WaveSaw      = 0
	WaveSquare   = 1
	WaveTriangle = 2
	WaveRandom   = 3
	WaveSine     = 4
	NumWaves     = 5
)

// LFO is a low-frequency oscillator that produces per-sample modulation.
// Each voice owns its own instance so phase restarts with the note.
type LFO struct {
	depth    float64 // output is in [-depth, +depth]
	rateHz   float64
	waveform int
	offset   float64 // start phase [0, 1)
	phase    float64 // current phase [0, 1)
	randVal  float64 // held random value for sample-and-hold
	running  bool    // Sample has run since the last Reset
}

func (l *LFO) SetDepth(depth float64) { l.depth = depth }

func (l *LFO) SetRate(rateHz float64) { l.rateHz = math.Max(rateHz, 0) }

func (l *LFO) SetWaveform(waveform int) {
	if waveform < 0 || waveform >= NumWaves {
		waveform = WaveTriangle
	}
	l.waveform = waveform
}

// SetPhase sets the start phase. Before the first Sample it also moves the
// current phase; afterwards it takes effect on the next Reset.
func (l *LFO) SetPhase(offset float64) {
	offset -= math.Floor(offset)
	l.offset = offset
	if !l.running {
		l.phase = offset
	}
}

// Sample advances the LFO by one sample and returns a value in [-depth, +depth].
// Returns 0 if depth or rate is zero.
func (l *LFO) Sample(sampleRate float64) float64 {
	l.running = true
	if l.depth == 0 || l.rateHz == 0 || sampleRate == 0 {
		return 0
	}

	var waveVal float64
	switch l.waveform {
	case WaveSaw:
		waveVal = 1.0 - 2.0*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			waveVal = 1.0
		} else {
			waveVal = -1.0
		}
	case WaveRandom:
		waveVal = l.randVal
	case WaveSine:
		waveVal = math.Sin(2 * math.Pi * l.phase)
	default: // WaveTriangle
		if l.phase < 0.5 {
			waveVal = 4.0*l.phase - 1.0
		} else {
			waveVal = 3.0 - 4.0*l.phase
		}
	}

	oldPhase := l.phase
	l.phase += l.rateHz / sampleRate
	for l.phase >= 1.0 {
		l.phase -= 1.0
	}

	// New held value at each cycle boundary.
	if l.waveform == WaveRandom && l.phase < oldPhase {
		l.randVal = math.Sin(l.phase*12345.6789+l.randVal*67890.1234) * 2.0
		l.randVal -= math.Floor(l.randVal)
		l.randVal = l.randVal*2.0 - 1.0
	}

	return waveVal * l.depth
}

// Reset moves the LFO back to its start phase.
func (l *LFO) Reset() {
	l.phase = l.offset
	l.randVal = 0
	l.running = false
}
