package effects

import (
	"math"
	"testing"
)

func impulse(frames int) []float32 {
	buf := make([]float32, 2*frames)
	buf[0], buf[1] = 1, 1
	return buf
}

func TestDelayRepeatsAfterDelayTime(t *testing.T) {
	d := NewDelay(1000, DelayConfig{TimeMs: 10, Feedback: 0.5, Wet: 1})
	buf := impulse(40)
	d.Process(buf)
	tests := []struct {
		frame int
		want  float32
	}{
		{0, 0},
		{10, 1},
		{20, 0.5},
		{30, 0.25},
	}
	for _, tt := range tests {
		if got := buf[2*tt.frame]; math.Abs(float64(got-tt.want)) > 1e-6 {
			t.Fatalf("frame %d = %v, want %v", tt.frame, got, tt.want)
		}
	}
}

func TestDelayCrossFeedbackPingPongs(t *testing.T) {
	d := NewDelay(1000, DelayConfig{TimeMs: 10, Feedback: 0.5, Cross: 1, Wet: 1})
	buf := make([]float32, 2*30)
	buf[0] = 1 // left only
	d.Process(buf)
	if buf[20] != 1 || buf[21] != 0 {
		t.Fatalf("first repeat l=%v r=%v, want left only", buf[20], buf[21])
	}
	if buf[40] != 0 || buf[41] != 0.5 {
		t.Fatalf("second repeat l=%v r=%v, want right only", buf[40], buf[41])
	}
}

func TestReverbProducesTail(t *testing.T) {
	r := NewReverb(44100, ReverbConfig{Room: 0.5, Decay: 0.7, Wet: 0.5})
	buf := impulse(10000)
	r.Process(buf)
	var tail float64
	for _, s := range buf[2*2000:] {
		tail = math.Max(tail, math.Abs(float64(s)))
	}
	if tail < 0.001 {
		t.Fatal("expected reverb tail")
	}
	r.Reset()
	silent := make([]float32, 2*1000)
	r.Process(silent)
	for i, s := range silent {
		if s != 0 {
			t.Fatalf("sample %d = %v after reset", i, s)
		}
	}
}

func TestChainAppliesStagesInOrder(t *testing.T) {
	c := Chain{
		NewDelay(1000, DelayConfig{TimeMs: 1, Wet: 1}),
		NewDelay(1000, DelayConfig{TimeMs: 2, Wet: 1}),
	}
	buf := impulse(5)
	c.Process(buf)
	if buf[2*3] != 1 {
		t.Fatalf("impulse should arrive at frame 3, got %v", buf)
	}
	var empty Chain
	empty.Process(buf)
}

func TestStagesDoNotAllocate(t *testing.T) {
	c := Chain{
		NewDelay(48000, DelayConfig{TimeMs: 250, Feedback: 0.4, Wet: 0.3}),
		NewReverb(48000, ReverbConfig{Room: 0.6, Decay: 0.8, Wet: 0.2}),
	}
	buf := make([]float32, 512)
	if n := testing.AllocsPerRun(100, func() { c.Process(buf) }); n != 0 {
		t.Fatalf("allocs = %v", n)
	}
}
