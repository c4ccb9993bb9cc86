package osc

import (
	"math"
	"testing"
)

func TestPitchToFreq(t *testing.T) {
	for _, tc := range []struct {
		name                            string
		note, oct, semi, cents, bend, want float64
	}{
		{"A4", 69, 0, 0, 0, 0, 440},
		{"A5 by octave", 69, 1, 0, 0, 0, 880},
		{"A3 by semitones", 69, 0, -12, 0, 0, 220},
		{"cents", 69, 0, 0, 1200, 0, 880},
		{"bend", 57, 0, 0, 0, 12, 440},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := PitchToFreq(tc.note, tc.oct, tc.semi, tc.cents, tc.bend)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("freq = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShapesProduceBoundedOutput(t *testing.T) {
	for s := Shape(0); s < NumShapes; s++ {
		o := New(48000)
		o.SetShape(s)
		o.SetFrequency(440)
		var maxAbs float64
		for i := 0; i < 2000; i++ {
			v := o.Generate()
			if math.Abs(v) > 1.0+1e-9 {
				t.Fatalf("shape %d out of range: %v", s, v)
			}
			maxAbs = math.Max(maxAbs, math.Abs(v))
		}
		if maxAbs < 0.1 {
			t.Errorf("shape %d produced no output", s)
		}
	}
}

func TestAmplitudeScalesAndClamps(t *testing.T) {
	o := New(48000)
	o.SetShape(ShapeSquare)
	o.SetFrequency(100)
	o.SetAmplitude(0.25)
	if v := o.Generate(); v != 0.25 {
		t.Fatalf("square at amplitude 0.25 = %v", v)
	}
	o.SetAmplitude(7)
	if v := o.Generate(); v != 1 {
		t.Fatalf("amplitude should clamp to 1, got %v", v)
	}
}

func TestFrequencyClampsToNyquist(t *testing.T) {
	o := New(48000)
	o.SetFrequency(1e6)
	if o.Frequency() != 24000 {
		t.Fatalf("freq = %v, want 24000", o.Frequency())
	}
}
