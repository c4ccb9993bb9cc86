package program

import (
	"errors"
	"math"
	"testing"

	"github.com/cbegin/kirosynth-go/internal/signal"
)

// buildModulated returns a program with one param "p" and one source "src"
// whose signal is written by a preceding expression block.
func buildModulated(t *testing.T, spec ValueSpec) (*Program, ParamBlock, SourceRef, signal.Ref) {
	t.Helper()
	b := NewBuilder()
	src := b.Signal()
	b.Block(Expr{Code: []ExprOp{{Code: OpConst, Value: 1}}, Depth: 1, Output: src})
	p := b.Param("p", spec)
	s := b.Source("src", src)
	b.ParamStage(p)
	b.Out(p.Out, p.Out)
	prog, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return prog, p, s, src
}

func TestModulatedValueClamps(t *testing.T) {
	for _, tc := range []struct {
		name     string
		spec     ValueSpec
		amount   float64
		srcValue float64
		want     float64
	}{
		{"inside bounds", Values(0, 1, 0.5), 0.2, 1.0, 0.7},
		{"clamped at max", Values(0, 0.6, 0.5), 0.2, 1.0, 0.6},
		{"clamped at min", Values(0.4, 1, 0.5), -0.5, 1.0, 0.4},
		{"negative source", Values(-1, 1, 0.5), 0.5, -1.0, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			prog, p, s, src := buildModulated(t, tc.spec)
			if err := prog.UpdateModulation(p.Ref, s, tc.amount); err != nil {
				t.Fatalf("update: %v", err)
			}
			bus := prog.NewVoiceBus()
			bus.Set(src, tc.srcValue)
			param, _ := prog.Param(p.Ref)
			got := prog.ModulatedValue(param, param.Value(), bus)
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("modulated value = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestUpdateModulationReplacesAmount(t *testing.T) {
	prog, p, s, src := buildModulated(t, Values(0, 2, 0.5))
	bus := prog.NewVoiceBus()
	bus.Set(src, 1)
	param, _ := prog.Param(p.Ref)

	if err := prog.UpdateModulation(p.Ref, s, 0.2); err != nil {
		t.Fatal(err)
	}
	if got := prog.ModulatedValue(param, param.Value(), bus); math.Abs(got-0.7) > 1e-12 {
		t.Fatalf("value = %v, want 0.7", got)
	}
	v := param.RoutesVersion()
	if err := prog.UpdateModulation(p.Ref, s, 0.5); err != nil {
		t.Fatal(err)
	}
	if n := len(param.Routes()); n != 1 {
		t.Fatalf("routes = %d, want 1 (replace, not insert)", n)
	}
	if param.RoutesVersion() == v {
		t.Fatal("replacing a route should bump the routes version")
	}
	if got := prog.ModulatedValue(param, param.Value(), bus); got != 1.0 {
		t.Fatalf("value = %v, want 1.0", got)
	}
}

func TestModulationErrors(t *testing.T) {
	prog, p, s, _ := buildModulated(t, Values(0, 1, 0))
	if err := prog.UpdateModulation(99, s, 1); !errors.Is(err, ErrParamNotFound) {
		t.Fatalf("unknown param: %v", err)
	}
	if err := prog.UpdateModulation(p.Ref, 42, 1); !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("unknown source: %v", err)
	}
	if err := prog.DeleteModulation(p.Ref, s); !errors.Is(err, ErrModulationNotFound) {
		t.Fatalf("delete absent route: %v", err)
	}
	if err := prog.UpdateModulation(p.Ref, s, 1); err != nil {
		t.Fatal(err)
	}
	if err := prog.DeleteModulation(p.Ref, s); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := prog.Modulation(p.Ref, s); ok {
		t.Fatal("route should be gone")
	}
}

func TestUpdateModulationDoesNotAllocate(t *testing.T) {
	prog, p, s, _ := buildModulated(t, Values(0, 1, 0))
	allocs := testing.AllocsPerRun(100, func() {
		_ = prog.UpdateModulation(p.Ref, s, 0.3)
		_ = prog.DeleteModulation(p.Ref, s)
		_ = prog.DeleteModulation(p.Ref, s)
	})
	if allocs != 0 {
		t.Fatalf("allocs = %v, want 0", allocs)
	}
}

func TestParamValuesStayInBounds(t *testing.T) {
	prog, p, _, _ := buildModulated(t, Values(-1, 1, 0))
	steps := []float64{0.7, 0.7, -5, 0.3, 100, -0.25}
	for i, d := range steps {
		var v float64
		var err error
		if i%2 == 0 {
			v, err = prog.ChangeParamValue(p.Ref, d)
		} else {
			v, err = prog.SetParamValue(p.Ref, d)
		}
		if err != nil {
			t.Fatal(err)
		}
		if v < -1 || v > 1 {
			t.Fatalf("step %d: value %v escaped [-1,1]", i, v)
		}
	}
	if _, err := prog.SetParamValue(7, 1); !errors.Is(err, ErrParamNotFound) {
		t.Fatalf("unknown param: %v", err)
	}
}

func TestParamValuesRejectNonFinite(t *testing.T) {
	prog, p, _, _ := buildModulated(t, Values(0, 1, 0.5))
	tests := []struct {
		name  string
		set   bool
		value float64
		want  float64
	}{
		{"set nan keeps base", true, math.NaN(), 0.5},
		{"change nan keeps base", false, math.NaN(), 0.5},
		{"change after nan", false, 0.1, 0.6},
		{"set +inf clamps", true, math.Inf(1), 1},
		{"change -inf clamps", false, math.Inf(-1), 0},
		{"change +inf clamps", false, math.Inf(1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v float64
			var err error
			if tt.set {
				v, err = prog.SetParamValue(p.Ref, tt.value)
			} else {
				v, err = prog.ChangeParamValue(p.Ref, tt.value)
			}
			if err != nil {
				t.Fatal(err)
			}
			if v != tt.want {
				t.Fatalf("value = %v, want %v", v, tt.want)
			}
		})
	}
	if got := Values(0, 1, 0.25).Clamp(math.NaN()); got != 0.25 {
		t.Fatalf("Clamp(NaN) = %v, want initial", got)
	}
}

func TestUpdateParamsPublishesDirtyBases(t *testing.T) {
	prog, p, _, _ := buildModulated(t, Values(0, 1, 0.25))
	globals := prog.NewGlobalBus()
	param, _ := prog.Param(p.Ref)
	if got := globals.Get(param.Global()); got != 0.25 {
		t.Fatalf("initial global = %v", got)
	}
	globals.Consume(param.Global())

	prog.UpdateParams(globals)
	if globals.Updated(param.Global()) {
		t.Fatal("clean params should not be republished")
	}
	prog.SetParamValue(p.Ref, 0.75)
	prog.UpdateParams(globals)
	if v, ok := globals.Consume(param.Global()); !ok || v != 0.75 {
		t.Fatalf("global = %v,%v want 0.75,true", v, ok)
	}
}

func TestBuildRejectsOutOfOrderBlocks(t *testing.T) {
	b := NewBuilder()
	a := b.Signal()
	c := b.Signal()
	b.Block(Expr{Code: []ExprOp{{Code: OpSignal, Ref: a}}, Depth: 1, Output: c})
	b.Block(Expr{Code: []ExprOp{{Code: OpConst, Value: 1}}, Depth: 1, Output: a})
	b.Out(c, c)
	if _, err := b.Build(); !errors.Is(err, ErrBlockOrder) {
		t.Fatalf("build error = %v, want ErrBlockOrder", err)
	}
}

func TestBuildRequiresOutput(t *testing.T) {
	if _, err := NewBuilder().Build(); !errors.Is(err, ErrNoOutput) {
		t.Fatalf("build error = %v, want ErrNoOutput", err)
	}
}

func TestBuildRejectsDuplicateParam(t *testing.T) {
	b := NewBuilder()
	b.Param("x", Values(0, 1, 0))
	b.Param("x", Values(0, 1, 0))
	b.Out(b.ConstZero(), b.ConstZero())
	if _, err := b.Build(); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("build error = %v, want ErrDuplicateID", err)
	}
}

func TestExprEval(t *testing.T) {
	b := NewBuilder()
	x := b.Const(3)
	y := b.Const(4)
	gain := b.Param("gain", Values(0, 10, 2))
	b.ParamStage(gain)
	sum := b.Expr(func(e ExprBuilder) ExprNode {
		return e.Sub(e.Mul(e.AddSignals(x, y), e.Param(gain)), e.Const(1))
	})
	b.Block(sum)
	b.Out(sum.Output, sum.Output)
	prog, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	bus := prog.NewVoiceBus()
	stack := make([]float64, sum.Depth)
	if got := sum.Eval(bus, stack); got != 13 {
		t.Fatalf("(3+4)*2-1 = %v, want 13", got)
	}
}

func TestLookupsByName(t *testing.T) {
	prog, p, s, _ := buildModulated(t, Values(0, 1, 0))
	if ref, ok := prog.ParamByName("p"); !ok || ref != p.Ref {
		t.Fatalf("ParamByName = %v,%v", ref, ok)
	}
	if ref, ok := prog.SourceByName("src"); !ok || ref != s {
		t.Fatalf("SourceByName = %v,%v", ref, ok)
	}
	if _, ok := prog.ParamByName("missing"); ok {
		t.Fatal("expected missing param")
	}
}
