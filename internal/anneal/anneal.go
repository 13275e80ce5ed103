// Package anneal implements Lester Ingber's Adaptive Simulated Annealing
// (ASA) as described in Ingber, L. (1989), "Very fast simulated re-annealing",
// Mathematical and Computer Modelling 12, 967-973.
//
// The Annealer is a pull-based state machine: it never evaluates the
// objective function itself. The caller watches State(), evaluates the
// objective at Candidate() or Probe() as requested, feeds the value back with
// SetObjective or SetProbeObjective, and calls Step to advance:
//
//	a, _ := anneal.New(initial, bounds, anneal.DefaultConfig())
//	a.Init()
//	for a.State() != anneal.StateReadyToStop {
//	    switch a.State() {
//	    case anneal.StateNeedsObjective:
//	        a.SetObjective(f(a.Candidate()))
//	    case anneal.StateNeedsObjectiveSet:
//	        a.SetProbeObjective(f(a.Probe()))
//	    }
//	    if err := a.Step(); err != nil {
//	        // pathological objective or inconsistent configuration
//	    }
//	}
//	best, fBest := a.Best()
package anneal

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// epsilon is the double-precision machine epsilon. It is the numeric floor
// for all temperatures and the regularizer in the acceptance and sensitivity
// formulas.
const epsilon = 0x1p-52

var (
	// ErrBadState is returned when an operation is invoked in a state that
	// does not permit it (stepping before Init, feeding an objective value
	// the annealer did not ask for, stepping a stopped annealer).
	ErrBadState = errors.New("anneal: operation not valid in current state")

	// ErrNonFiniteTangent is returned when a reanneal sensitivity estimate
	// contains NaN or Inf. The objective function or bounds are pathological;
	// the run is aborted.
	ErrNonFiniteTangent = errors.New("anneal: non-finite sensitivity estimate")

	// ErrNonPositiveTemperature is returned when reannealing rescales a
	// temperature to a non-positive value, which indicates inconsistent
	// configuration. The run is aborted.
	ErrNonPositiveTemperature = errors.New("anneal: rescaled temperature is non-positive")
)

// Sample pairs a parameter vector with its objective value.
type Sample struct {
	X []float64
	F float64
}

// Stats is a snapshot of the annealer's bookkeeping counters.
type Stats struct {
	Steps            int // calls to Step
	K                int // temperature-schedule step index
	KCost            int // acceptance-temperature step index
	NumGenerated     int
	NumAccepted      int
	NumImproved      int
	NumWorse         int
	NumWorseAccepted int
	// Values of NumAccepted/NumGenerated when the best point was found.
	NumAcceptedBest  int
	NumGeneratedBest int
	BestRepeats      int
}

// Annealer holds all search state for one optimization run. It is not safe
// for concurrent use; it is meant to be owned by a single caller for its
// entire lifetime.
type Annealer struct {
	cfg    Config
	dim    int
	bounds Bounds
	rng    *rand.Rand

	state  State
	reason StopCondition
	// fed records that the caller supplied the objective value the current
	// state asked for, so Step can refuse to run on stale data.
	fed bool

	x     []float64
	xCand []float64
	xBest []float64

	fX     float64
	fXCand float64
	fXBest float64

	// Reanneal probe point and its objective value.
	xProbe []float64
	fProbe float64
	// Live copy of Config.DeltaParam; doubled when a probe lands on a flat
	// patch of the objective.
	deltaParam float64

	// Temperatures and the control constants derived at Init.
	tK       []float64
	t0       []float64
	tF       []float64
	m        []float64
	n        []float64
	c        []float64
	cCost    []float64
	tCost0   []float64
	tCost    []float64
	tangents []float64

	k     int
	kF    int
	kR    int // steps since the last reanneal
	kCost int

	steps                int
	numGenerated         int
	numGeneratedBest     int
	numGeneratedRecently int
	numImproved          int
	numWorse             int
	numWorseAccepted     int
	numAccepted          int
	numAcceptedBest      int
	numAcceptedRecently  int
	bestRepeats          int

	accepted []Sample
	rejected []Sample
}

// New creates an annealer searching the box defined by bounds, starting at
// initial. The dimensionality is fixed by len(initial). The returned annealer
// is in StateUninitialized; call Init to derive the temperature schedule.
func New(initial []float64, bounds Bounds, cfg Config) (*Annealer, error) {
	if len(initial) == 0 {
		return nil, fmt.Errorf("initial parameter vector is empty")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := bounds.Validate(len(initial)); err != nil {
		return nil, fmt.Errorf("invalid bounds: %w", err)
	}
	if !bounds.Contains(initial) {
		return nil, fmt.Errorf("initial parameters lie outside the bounds")
	}

	a := &Annealer{
		cfg:        cfg,
		dim:        len(initial),
		bounds:     bounds,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		state:      StateUninitialized,
		deltaParam: cfg.DeltaParam,
		x:          append([]float64(nil), initial...),
		xCand:      append([]float64(nil), initial...),
		xBest:      append([]float64(nil), initial...),
	}
	return a, nil
}

// Init derives the temperature schedule and control constants from the
// tunables and moves the annealer to StateNeedsObjective. The first candidate
// the caller is asked to evaluate is the initial parameter vector.
func (a *Annealer) Init() error {
	if a.state != StateUninitialized {
		return fmt.Errorf("init called twice: %w", ErrBadState)
	}

	worst := math.Inf(1)
	if !a.cfg.Downhill {
		worst = math.Inf(-1)
	}
	a.fX = worst
	a.fXCand = worst
	a.fXBest = worst

	D := float64(a.dim)
	a.t0 = fill(a.dim, 1)
	a.tK = fill(a.dim, 1)
	a.m = fill(a.dim, -math.Log(a.cfg.TemperatureRatioScale))
	a.n = fill(a.dim, math.Log(a.cfg.TemperatureAnnealScale))

	a.c = make([]float64, a.dim)
	a.tF = make([]float64, a.dim)
	a.cCost = make([]float64, a.dim)
	for i := 0; i < a.dim; i++ {
		a.c[i] = a.m[i] * math.Exp(-a.n[i]/D)
		a.tF[i] = a.t0[i] * math.Exp(-a.m[i])
		a.cCost[i] = a.c[i] * a.cfg.CostParameterScaleRatio
	}
	a.kF = int(math.Exp(stat.Mean(a.n, nil)))

	a.tangents = fill(a.dim, 1)
	a.tCost0 = append([]float64(nil), a.cCost...)
	a.tCost = append([]float64(nil), a.cCost...)

	a.k = 1
	a.kCost = 0
	a.kR = 0

	a.state = StateNeedsObjective
	a.fed = false
	slog.Debug("annealer initialized",
		"dim", a.dim,
		"expected_final_steps", a.kF,
		"t_final_mean", stat.Mean(a.tF, nil),
	)
	return nil
}

// SetObjective stores the objective value computed for Candidate. Valid only
// in StateNeedsObjective.
func (a *Annealer) SetObjective(f float64) error {
	if a.state != StateNeedsObjective {
		return fmt.Errorf("set objective in state %v: %w", a.state, ErrBadState)
	}
	a.fXCand = f
	a.fed = true
	return nil
}

// SetProbeObjective stores the objective value computed for Probe. Valid only
// in StateNeedsObjectiveSet.
func (a *Annealer) SetProbeObjective(f float64) error {
	if a.state != StateNeedsObjectiveSet {
		return fmt.Errorf("set probe objective in state %v: %w", a.state, ErrBadState)
	}
	a.fProbe = f
	a.fed = true
	return nil
}

// Step advances the annealer by one step: stop check, reanneal completion if
// one is pending, cooling, acceptance check, candidate generation, reanneal
// test. The caller must have fed the objective value the current state asked
// for. Fatal reanneal errors abort the run.
func (a *Annealer) Step() error {
	switch a.state {
	case StateUninitialized:
		return fmt.Errorf("step before init: %w", ErrBadState)
	case StateReadyToStop:
		return fmt.Errorf("step after stop: %w", ErrBadState)
	}
	if !a.fed {
		return fmt.Errorf("objective value not set in state %v: %w", a.state, ErrBadState)
	}

	a.steps++

	if cond := a.stopCheck(); cond != StopNone {
		a.reason = cond
		a.state = StateReadyToStop
		slog.Info("annealing stopped",
			"reason", cond.String(),
			"steps", a.steps,
			"f_x_best", a.fXBest,
			"num_accepted", a.numAccepted,
		)
		return nil
	}

	if a.state == StateNeedsObjectiveSet {
		if err := a.completeReanneal(); err != nil {
			a.state = StateReadyToStop
			return err
		}
	}

	a.coolingSchedule()
	a.acceptanceCheck()
	a.generateNext()
	a.k++
	a.kR++

	if a.cfg.EnableReanneal && a.reannealTest() {
		a.state = StateNeedsObjectiveSet
	} else {
		a.state = StateNeedsObjective
	}
	a.fed = false
	return nil
}

// stopCheck evaluates the stop conditions in priority order and returns the
// first that holds.
func (a *Annealer) stopCheck() StopCondition {
	if a.cfg.ExitAtFinalTemperature && stat.Mean(a.tK, nil) < stat.Mean(a.tF, nil) {
		return StopAtFinalTemperature
	}
	if floats.Min(a.tK) <= epsilon {
		return StopTemperatureFloor
	}
	if floats.Min(a.tCost) <= epsilon {
		return StopCostTemperatureFloor
	}
	if a.bestRepeats >= a.cfg.BestRepeatMax {
		return StopBestRepeated
	}
	return StopNone
}

// coolingSchedule recomputes both temperature vectors. The generation
// temperature decays with the step index k, the acceptance temperature with
// the count of accepted points, so acceptance only cools as real progress
// accumulates.
func (a *Annealer) coolingSchedule() {
	D := float64(a.dim)
	kRoot := math.Pow(float64(a.k), 1/D)
	kCostRoot := math.Pow(float64(a.kCost), 1/D)
	for i := 0; i < a.dim; i++ {
		a.tK[i] = math.Max(a.t0[i]*math.Exp(-a.c[i]*kRoot), epsilon)
		a.tCost[i] = math.Max(a.tCost0[i]*math.Exp(-a.cCost[i]*kCostRoot), epsilon)
	}
}

// acceptanceCheck applies the Metropolis rule to the candidate, updating the
// accepted point, the best point and the histories.
func (a *Annealer) acceptanceCheck() {
	improved := a.isImprovement(a.fXCand, a.fX)
	if improved {
		a.numImproved++
	} else {
		a.numWorse++
	}

	delta := a.fXCand - a.fX
	if !a.cfg.Downhill {
		delta = -delta
	}
	p := math.Min(1, math.Exp(-delta/(epsilon+stat.Mean(a.tCost, nil))))
	accepted := p >= a.rng.Float64()

	if !improved && accepted {
		a.numWorseAccepted++
	}

	if !accepted {
		a.rejected = append(a.rejected, Sample{X: append([]float64(nil), a.x...), F: a.fX})
		return
	}

	a.kCost++
	a.numAccepted++
	a.numAcceptedRecently++

	if math.Abs(a.fXCand-a.fXBest) <= a.cfg.ObjectiveRepeatPrecision {
		a.bestRepeats++
	}
	if a.beatsBest(a.fXCand) {
		a.bestRepeats = 0
		copy(a.xBest, a.xCand)
		a.fXBest = a.fXCand
		a.numAcceptedBest = a.numAccepted
		a.numGeneratedBest = a.numGenerated
		a.numAcceptedRecently = 0
		a.numGeneratedRecently = 0
	}

	copy(a.x, a.xCand)
	a.fX = a.fXCand
	a.accepted = append(a.accepted, Sample{X: append([]float64(nil), a.x...), F: a.fX})
}

// isImprovement reports whether fCand is strictly better than fCur under the
// configured search direction.
func (a *Annealer) isImprovement(fCand, fCur float64) bool {
	if a.cfg.Downhill {
		return fCand < fCur
	}
	return fCand > fCur
}

// beatsBest reports whether f improves on the best objective by more than the
// repeat precision.
func (a *Annealer) beatsBest(f float64) bool {
	if a.cfg.Downhill {
		return f-a.fXBest+a.cfg.ObjectiveRepeatPrecision < 0
	}
	return f-a.fXBest-a.cfg.ObjectiveRepeatPrecision > 0
}

// State reports what the annealer needs the caller to do next.
func (a *Annealer) State() State { return a.state }

// StopReason reports which condition ended the run, or StopNone while the
// annealer is still running.
func (a *Annealer) StopReason() StopCondition { return a.reason }

// Dim returns the dimensionality of the search space.
func (a *Annealer) Dim() int { return a.dim }

// Candidate returns the parameter vector the caller must evaluate when the
// state is StateNeedsObjective.
func (a *Annealer) Candidate() []float64 {
	return append([]float64(nil), a.xCand...)
}

// Probe returns the perturbed parameter vector the caller must evaluate when
// the state is StateNeedsObjectiveSet.
func (a *Annealer) Probe() []float64 {
	return append([]float64(nil), a.xProbe...)
}

// Current returns the currently accepted point and its objective value.
func (a *Annealer) Current() ([]float64, float64) {
	return append([]float64(nil), a.x...), a.fX
}

// Best returns the best point observed so far and its objective value.
func (a *Annealer) Best() ([]float64, float64) {
	return append([]float64(nil), a.xBest...), a.fXBest
}

// AcceptedHistory returns the accepted points in acceptance order.
func (a *Annealer) AcceptedHistory() []Sample {
	return append([]Sample(nil), a.accepted...)
}

// RejectedHistory returns, for every rejected candidate, the point that was
// retained instead.
func (a *Annealer) RejectedHistory() []Sample {
	return append([]Sample(nil), a.rejected...)
}

// Stats returns a snapshot of the bookkeeping counters.
func (a *Annealer) Stats() Stats {
	return Stats{
		Steps:            a.steps,
		K:                a.k,
		KCost:            a.kCost,
		NumGenerated:     a.numGenerated,
		NumAccepted:      a.numAccepted,
		NumImproved:      a.numImproved,
		NumWorse:         a.numWorse,
		NumWorseAccepted: a.numWorseAccepted,
		NumAcceptedBest:  a.numAcceptedBest,
		NumGeneratedBest: a.numGeneratedBest,
		BestRepeats:      a.bestRepeats,
	}
}

// Temperatures returns a copy of the per-dimension generation temperatures.
func (a *Annealer) Temperatures() []float64 {
	return append([]float64(nil), a.tK...)
}

// CostTemperatures returns a copy of the per-dimension acceptance
// temperatures.
func (a *Annealer) CostTemperatures() []float64 {
	return append([]float64(nil), a.tCost...)
}

// MeanTemperature returns the mean generation temperature.
func (a *Annealer) MeanTemperature() float64 { return stat.Mean(a.tK, nil) }

// DeltaParam returns the current probe perturbation fraction. It grows from
// Config.DeltaParam when probes land on flat patches of the objective.
func (a *Annealer) DeltaParam() float64 { return a.deltaParam }

func fill(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
