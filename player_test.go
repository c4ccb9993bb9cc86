package kirosynth

import (
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

func TestNewPlayerValidation(t *testing.T) {
	if _, err := NewPlayer(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := NewPlayer(48000, WithPolyphony(0)); err == nil {
		t.Fatal("expected error for zero polyphony")
	}
}

func TestPlayerDescribesInstrument(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	params := pl.Params()
	if len(params) == 0 {
		t.Fatal("no params")
	}
	for i, p := range params {
		if int(p.Ref) != i || p.Initial < p.Min || p.Initial > p.Max {
			t.Fatalf("param %d = %+v", i, p)
		}
	}
	srcs := pl.Sources()
	if len(srcs) != 8 || srcs[0] != "lfo1" {
		t.Fatalf("sources = %v", srcs)
	}
}

func TestPlayerRejectsUnknownNames(t *testing.T) {
	pl, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if err := pl.SetParam("nope", 1); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("SetParam err = %v", err)
	}
	if err := pl.ChangeParam("nope", 1); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("ChangeParam err = %v", err)
	}
	if err := pl.UpdateModulation("nope", "filt1-freq", 1); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("UpdateModulation err = %v", err)
	}
	if err := pl.DeleteModulation("lfo1", "nope"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("DeleteModulation err = %v", err)
	}
}

func TestPlayerQueueFull(t *testing.T) {
	pl, err := NewPlayer(48000, WithEventCapacity(2))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := pl.NoteOn(60, 1); err != nil {
			t.Fatalf("NoteOn %d: %v", i, err)
		}
	}
	if err := pl.NoteOn(62, 1); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("err = %v, want ErrQueueFull", err)
	}
	pl.Render(make([]float32, 64))
	if err := pl.NoteOff(60); err != nil {
		t.Fatalf("queue not drained by Render: %v", err)
	}
}

func TestPlayerWatchReportsDiagnostics(t *testing.T) {
	pl, err := NewPlayer(48000, WithPolyphony(1))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	ch := pl.Watch()
	if err := pl.SendMIDI(midi.NoteOn(0, 60, 127)); err != nil {
		t.Fatal(err)
	}
	if err := pl.SendMIDI(midi.NoteOn(0, 64, 127)); err != nil {
		t.Fatal(err)
	}
	if err := pl.SendMIDI(midi.ProgramChange(0, 3)); err != nil {
		t.Fatalf("ignored message returned %v", err)
	}
	if err := pl.SetParam("filt1-freq", 1e6); err != nil {
		t.Fatal(err)
	}
	if _, err := pl.RenderEvents(nil, 256, 0); err != nil {
		t.Fatal(err)
	}

	var kinds []string
	seen := map[string]bool{}
	for len(ch) > 0 {
		rec := <-ch
		kinds = append(kinds, rec.Kind.String())
		seen[rec.Kind.String()] = true
		if rec.Kind == DiagParamValue && rec.Value != 20000 {
			t.Fatalf("param value not clamped: %v", rec)
		}
	}
	for _, want := range []string{"note-on", "note-dropped", "param-value"} {
		if !seen[want] {
			t.Fatalf("diagnostics %v missing %s", kinds, want)
		}
	}
}

func TestSampleTap(t *testing.T) {
	var frames int
	pl, err := NewPlayer(48000, WithSampleTap(func(buf []float32) { frames += len(buf) / 2 }))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	pl.Render(make([]float32, 128))
	if frames != 64 {
		t.Fatalf("tap saw %d frames, want 64", frames)
	}
}

func TestPlayerEffectsChain(t *testing.T) {
	dry, err := NewPlayer(48000)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	wet, err := NewPlayer(48000, WithDelay(DelayConfig{TimeMs: 100, Feedback: 0.5, Wet: 0.5}))
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	for _, pl := range []*Player{dry, wet} {
		if err := pl.SetParam("eg1-release", 0.01); err != nil {
			t.Fatal(err)
		}
	}
	notes := []TimedEvent{NoteOnAt(0, 60, 1), NoteOffAt(2400, 60)}
	plain, err := dry.RenderEvents(notes, 48000, 0)
	if err != nil {
		t.Fatal(err)
	}
	echoed, err := wet.RenderEvents(notes, 48000, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Past the release the dry render is silent; the delay still repeats.
	window := 2 * 24000
	if p := peak(plain[window : window+2*4800]); p > 1e-4 {
		t.Fatalf("dry render not silent: %v", p)
	}
	if p := peak(echoed[window : window+2*4800]); p < 1e-3 {
		t.Fatalf("delay produced no repeats: %v", p)
	}
}
