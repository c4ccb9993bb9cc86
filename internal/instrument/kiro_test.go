package instrument

import (
	"math"
	"testing"

	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/synth"
)

func TestNewProgram(t *testing.T) {
	prog, m, err := NewProgram(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	if got := prog.NumSources(); got != 8 {
		t.Fatalf("sources = %d, want 8", got)
	}
	for _, id := range []string{"pitch-bend", "lfo1-rate", "eg1-attack", "osc4-cents", "filt1-q", "dca-pan"} {
		if _, ok := prog.ParamByName(id); !ok {
			t.Fatalf("param %q not registered", id)
		}
	}
	if ref, _ := prog.ParamByName("osc2-octaves"); ref != m.Params.Osc[1].Octaves.Ref {
		t.Fatalf("osc2-octaves ref = %d, want %d", ref, m.Params.Osc[1].Octaves.Ref)
	}
	if l, r := prog.Output(); l != m.Signals.DCALeft || r != m.Signals.DCARight {
		t.Fatal("output not wired to the dca")
	}
}

func TestDefaultRoutes(t *testing.T) {
	prog, m, err := NewProgram(Config{})
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	p, s := m.Params, m.Sources
	for _, tc := range []struct {
		name   string
		param  program.ParamRef
		source program.SourceRef
		amount float64
	}{
		{"lfo1 to filter freq", p.Filter1.Freq.Ref, s.Lfo1, 800},
		{"eg1 to filter freq", p.Filter1.Freq.Ref, s.Eg1Normal, 700},
		{"lfo2 to filter q", p.Filter1.Q.Ref, s.Lfo2, 0.09},
		{"lfo2 to osc1 amplitude", p.Osc[0].Amplitude.Ref, s.Lfo2, 0.1},
		{"lfo1 to pan", p.DCA.Pan.Ref, s.Lfo1, 0.1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := prog.Modulation(tc.param, tc.source)
			if !ok || got != tc.amount {
				t.Fatalf("amount = %v (%v), want %v", got, ok, tc.amount)
			}
		})
	}
	if _, ok := prog.Modulation(p.Osc[1].Amplitude.Ref, s.Lfo2); ok {
		t.Fatal("unexpected route to osc2 amplitude")
	}
}

func TestInitialValues(t *testing.T) {
	prog, m, err := NewProgram(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	for _, tc := range []struct {
		pb   program.ParamBlock
		want float64
	}{
		{m.Params.Eg1.Attack, 0.02},
		{m.Params.Eg1.Release, 1.5},
		{m.Params.Osc[1].Amplitude, 0.25},
		{m.Params.Osc[1].Octaves, -1},
		{m.Params.Osc[2].Amplitude, 0},
		{m.Params.DCA.Amplitude, -3},
		{m.Params.Filter1.Q, 0.707},
	} {
		param, _ := prog.Param(tc.pb.Ref)
		if param.Value() != tc.want {
			t.Fatalf("%s = %v, want %v", param.ID, param.Value(), tc.want)
		}
	}
}

func TestPlaysAndReleases(t *testing.T) {
	prog, m, err := NewProgram(DefaultConfig())
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	if _, err := prog.SetParamValue(m.Params.Eg1.Release.Ref, 0.05); err != nil {
		t.Fatal(err)
	}
	s := synth.New(synth.DefaultConfig(), prog, nil, nil)
	s.Prepare()
	s.NoteOn(69, 1)

	var peak float64
	for i := 0; i < 4800; i++ {
		l, r := s.Process()
		if math.IsNaN(l) || math.IsNaN(r) {
			t.Fatalf("sample %d is NaN", i)
		}
		peak = math.Max(peak, math.Max(math.Abs(l), math.Abs(r)))
	}
	if peak < 0.05 {
		t.Fatalf("peak %v, expected an audible note", peak)
	}

	s.NoteOff(69, 0)
	for i := 0; s.NumActiveVoices() > 0; i++ {
		if i > 48000 {
			t.Fatal("voice never finished")
		}
		s.Process()
	}
	if free := s.FreeVoices(); free[len(free)-1] != 0 {
		t.Fatalf("voice 0 not back on top of the free stack: %v", free)
	}
}

func TestEnumerationBounds(t *testing.T) {
	v := enumeration(5)
	if v.Min != 0 || v.Max != 4 {
		t.Fatalf("enumeration(5) = %+v", v)
	}
	if v := enumeration(0); v.Max != 0 {
		t.Fatalf("enumeration(0) = %+v", v)
	}
}
