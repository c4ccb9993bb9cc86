package dca

import (
	"math"
	"testing"
)

func TestPanLaw(t *testing.T) {
	d := New()
	for _, tc := range []struct {
		pan         float64
		left, right float64
	}{
		{-1, 1, 0},
		{0, math.Sqrt2 / 2, math.Sqrt2 / 2},
		{1, 0, 1},
		{5, 0, 1},
	} {
		d.SetPan(tc.pan)
		l, r := d.Process(1, 1, 1)
		if math.Abs(l-tc.left) > 1e-9 || math.Abs(r-tc.right) > 1e-9 {
			t.Errorf("pan %v: got (%v,%v), want (%v,%v)", tc.pan, l, r, tc.left, tc.right)
		}
	}
}

func TestGain(t *testing.T) {
	d := New()
	d.SetPan(-1)
	d.SetAmplitudeDB(-6)
	l, _ := d.Process(1, 1, 0.5)
	want := math.Pow(10, -6.0/20) * 0.5
	if math.Abs(l-want) > 1e-9 {
		t.Fatalf("left = %v, want %v", l, want)
	}
	d.SetAmplitudeDB(MinDB)
	if l, _ := d.Process(1, 1, 1); l != 0 {
		t.Fatalf("gain at MinDB should be silent, got %v", l)
	}
}
