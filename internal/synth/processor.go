package synth

import (
	"fmt"

	"github.com/cbegin/kirosynth-go/internal/program"
	"github.com/cbegin/kirosynth-go/internal/signal"
)

// processor is the per-voice state of one block. process runs once per
// sample and must not allocate.
type processor interface {
	reset()
	process(bus, globals *signal.Bus, prog *program.Program)
}

func newProcessor(sampleRate float64, prog *program.Program, block program.Block) processor {
	switch b := block.(type) {
	case program.ParamStage:
		return newParamProcessor(sampleRate, prog, b)
	case program.EnvGen:
		return newEnvGenProcessor(sampleRate, prog.Voice(), b)
	case program.Osc:
		return newOscProcessor(sampleRate, b)
	case program.Lfo:
		return newLfoProcessor(sampleRate, b)
	case program.Filter:
		return newFilterProcessor(sampleRate, b)
	case program.DCA:
		return newDCAProcessor(b)
	case program.Expr:
		return newExprProcessor(b)
	default:
		panic(fmt.Sprintf("synth: unsupported block %T", block))
	}
}
