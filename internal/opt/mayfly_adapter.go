package opt

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/mayfly"
)

// MayflyAdapter exposes the external mayfly optimizer behind the Optimizer
// interface. It serves as a population-based baseline to compare annealing
// runs against on the benchmark objectives.
type MayflyAdapter struct {
	maxIters int
	popSize  int
	seed     int64
}

// NewMayfly creates a mayfly optimizer baseline.
func NewMayfly(maxIters, popSize int, seed int64) *MayflyAdapter {
	return &MayflyAdapter{
		maxIters: maxIters,
		popSize:  popSize,
		seed:     seed,
	}
}

// Run executes the mayfly optimization. The external library only supports a
// single scalar bound pair, so all dimensions must share the same range.
func (m *MayflyAdapter) Run(eval ObjectiveFunc, lower, upper []float64) (Result, error) {
	for i := 1; i < len(lower); i++ {
		if lower[i] != lower[0] || upper[i] != upper[0] {
			return Result{}, fmt.Errorf("mayfly requires uniform bounds, dimension %d differs", i)
		}
	}

	config := mayfly.NewDefaultConfig()
	config.ObjectiveFunc = func(x []float64) float64 { return eval(x) }
	config.ProblemSize = len(lower)
	config.MaxIterations = m.maxIters
	config.NPop = m.popSize
	config.LowerBound = lower[0]
	config.UpperBound = upper[0]
	config.Rand = rand.New(rand.NewSource(m.seed))

	result, err := mayfly.Optimize(config)
	if err != nil {
		return Result{}, fmt.Errorf("mayfly optimization: %w", err)
	}

	return Result{
		Best:        result.GlobalBest.Position,
		Cost:        result.GlobalBest.Cost,
		Evaluations: m.maxIters * m.popSize,
		StopReason:  "iteration-limit",
	}, nil
}
