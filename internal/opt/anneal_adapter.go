package opt

import (
	"fmt"

	"github.com/cwbudde/asaopt/internal/anneal"
)

// AnnealAdapter drives an adaptive simulated annealing run to completion,
// evaluating the objective whenever the annealer asks for it.
type AnnealAdapter struct {
	cfg      anneal.Config
	maxSteps int
}

// NewAnneal creates an ASA optimizer. maxSteps bounds the number of protocol
// steps in case the configured stop conditions take too long; <= 0 means no
// ceiling.
func NewAnneal(cfg anneal.Config, maxSteps int) *AnnealAdapter {
	return &AnnealAdapter{cfg: cfg, maxSteps: maxSteps}
}

// Run starts the search from the centre of the box and loops the pull
// protocol: evaluate the candidate or the reanneal probe, feed the value
// back, step. It returns the best point found and the stop reason.
func (o *AnnealAdapter) Run(eval ObjectiveFunc, lower, upper []float64) (Result, error) {
	return o.RunFrom(eval, midpoint(lower, upper), lower, upper)
}

// RunFrom is Run with an explicit starting point.
func (o *AnnealAdapter) RunFrom(eval ObjectiveFunc, initial, lower, upper []float64) (Result, error) {
	a, err := anneal.New(initial, anneal.Bounds{Lower: lower, Upper: upper}, o.cfg)
	if err != nil {
		return Result{}, fmt.Errorf("create annealer: %w", err)
	}
	if err := a.Init(); err != nil {
		return Result{}, fmt.Errorf("init annealer: %w", err)
	}

	evals := 0
	for a.State() != anneal.StateReadyToStop {
		if o.maxSteps > 0 && a.Stats().Steps >= o.maxSteps {
			break
		}
		switch a.State() {
		case anneal.StateNeedsObjective:
			if err := a.SetObjective(eval(a.Candidate())); err != nil {
				return Result{}, err
			}
		case anneal.StateNeedsObjectiveSet:
			if err := a.SetProbeObjective(eval(a.Probe())); err != nil {
				return Result{}, err
			}
		}
		evals++
		if err := a.Step(); err != nil {
			return Result{}, fmt.Errorf("annealing step %d: %w", a.Stats().Steps, err)
		}
	}

	best, cost := a.Best()
	return Result{
		Best:        best,
		Cost:        cost,
		Evaluations: evals,
		StopReason:  a.StopReason().String(),
	}, nil
}

func midpoint(lower, upper []float64) []float64 {
	mid := make([]float64, len(lower))
	for i := range mid {
		mid[i] = (lower[i] + upper[i]) / 2
	}
	return mid
}
