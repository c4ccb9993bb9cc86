package instrument

import "github.com/cbegin/kirosynth-go/internal/program"

// Value ranges shared by the instrument's params.

func adsr(initial float64) program.ValueSpec { return program.Values(0, 20, initial) }

func amplitude() program.ValueSpec { return program.Values(0, 1, 1) }

func octave() program.ValueSpec { return program.Values(-4, 4, 0) }

func semitones() program.ValueSpec { return program.Values(-12, 12, 0) }

func cents() program.ValueSpec { return program.Values(-100, 100, 0) }

func filtFreq() program.ValueSpec { return program.Values(20, 20000, 2000) }

func filtQ() program.ValueSpec { return program.Values(0.5, 10, 0.707) }

func amplitudeDB() program.ValueSpec { return program.Values(-96, 12, 0) }

func pan() program.ValueSpec { return program.Values(-1, 1, 0) }

func lfoRate() program.ValueSpec { return program.Values(0, 20, 1) }

func lfoPhase() program.ValueSpec { return program.Values(0, 1, 0) }

func pitchBend() program.ValueSpec { return program.Values(-2, 2, 0) }

func egDCAMod() program.ValueSpec { return program.Values(-1, 1, 1) }

// enumeration covers the indices 0..n-1 of a discrete choice.
func enumeration(n int) program.ValueSpec {
	return program.Values(0, float64(max(n-1, 0)), 0)
}

func boolean(on bool) program.ValueSpec {
	if on {
		return program.Values(0, 1, 1)
	}
	return program.Values(0, 1, 0)
}

func egMode() program.ValueSpec { return enumeration(2) }
