// Package opt runs complete optimizations behind a common interface. It owns
// the objective-evaluation loop the annealer's pull protocol expects, and
// offers the external mayfly optimizer as a comparison baseline.
package opt

// ObjectiveFunc computes the cost of a parameter vector.
type ObjectiveFunc func(x []float64) float64

// Result reports the outcome of an optimization run.
type Result struct {
	Best        []float64
	Cost        float64
	Evaluations int
	StopReason  string
}

// Optimizer defines an optimization algorithm. Run searches the box given by
// lower/upper (one pair per dimension) for a minimizer of eval.
type Optimizer interface {
	Run(eval ObjectiveFunc, lower, upper []float64) (Result, error)
}
