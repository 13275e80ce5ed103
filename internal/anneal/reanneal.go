package anneal

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// reannealTest decides whether a reanneal is due. A reanneal never happens
// within MinStepsToReanneal steps of the previous one; after that it triggers
// when the recently-accepted to recently-generated ratio falls below the
// configured threshold, or unconditionally once ReannealAfterSteps steps have
// passed. On trigger the accepted point is reset to the best one and the
// probe point is prepared for the caller.
func (a *Annealer) reannealTest() bool {
	if a.kR < a.cfg.MinStepsToReanneal {
		return false
	}
	ratio := a.acceptedVsGenerated()
	if a.kR < a.cfg.ReannealAfterSteps && ratio >= a.cfg.AccGenReannealRatio {
		return false
	}

	if ratio < a.cfg.AccGenReannealRatio {
		a.numAcceptedRecently = 0
		a.numGeneratedRecently = 0
	}

	copy(a.x, a.xBest)
	a.fX = a.fXBest
	a.xProbe = a.generateProbe(a.x)

	slog.Debug("reannealing",
		"step", a.steps,
		"k", a.k,
		"accepted_vs_generated", ratio,
		"f_x_best", a.fXBest,
	)
	return true
}

// acceptedVsGenerated returns the smoothed ratio of recently accepted to
// recently generated candidates. Both counts reset on reanneal and whenever a
// new best point is found.
func (a *Annealer) acceptedVsGenerated() float64 {
	return (float64(a.numAcceptedRecently) + 1) / (float64(a.numGeneratedRecently) + 1)
}

// completeReanneal consumes the probe objective the caller supplied:
// estimates per-dimension sensitivities by finite differences, rescales the
// generation temperatures so that more sensitive dimensions cool faster,
// back-solves a consistent step index from the rescaled temperatures, and
// rescales the acceptance temperature from the spread between the current and
// best objective values.
func (a *Annealer) completeReanneal() error {
	hasZero := false
	for i := range a.tangents {
		t := (a.fProbe - a.fX) / (a.xProbe[i] - a.x[i] + epsilon)
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("sensitivity for dimension %d from probe objective %g: %w",
				i, a.fProbe, ErrNonFiniteTangent)
		}
		if t == 0 {
			hasZero = true
		}
		a.tangents[i] = t
	}

	if hasZero {
		// The probe perturbation was too small to move the objective. Widen
		// it and let a later cycle retry; temperatures stay untouched.
		a.deltaParam *= 2
		slog.Debug("flat probe, widening perturbation", "delta_param", a.deltaParam)
		return nil
	}

	absTangents := make([]float64, a.dim)
	for i, t := range a.tangents {
		absTangents[i] = math.Abs(t)
	}
	maxTangent := floats.Max(absTangents)

	D := float64(a.dim)
	tRe := make([]float64, a.dim)
	for i := range tRe {
		tRe[i] = math.Abs(a.tK[i] * maxTangent / a.tangents[i])
	}
	if floats.Min(tRe) <= 0 {
		return fmt.Errorf("reanneal with tangents spanning %g..%g: %w",
			floats.Min(absTangents), maxTangent, ErrNonPositiveTemperature)
	}

	// Back-solve k from T_re via the inverse of the cooling schedule,
	// T(k) = T_0 * exp(-c * k^(1/D)).
	var kSum float64
	for i := range tRe {
		kSum += math.Pow(math.Log(a.t0[i]/tRe[i])/a.c[i], D)
	}
	kRe := int(kSum / D)
	if kRe < 0 {
		kRe = 0
	}

	slog.Debug("reanneal complete",
		"t_mean_before", stat.Mean(a.tK, nil),
		"t_mean_after", stat.Mean(tRe, nil),
		"k_before", a.k,
		"k_after", kRe,
	)
	a.k = kRe
	copy(a.tK, tRe)

	a.rescaleCostTemperature()
	a.kR = 0
	return nil
}

// rescaleCostTemperature resets the acceptance temperature's base and step
// count from the spread between the current and best objective values, then
// recomputes the acceptance temperature from the schedule.
func (a *Annealer) rescaleCostTemperature() {
	spread := math.Abs(a.fXBest - a.fX)
	base := math.Max(math.Abs(a.fX), math.Abs(a.fXBest))
	base = math.Max(base, math.Max(spread, epsilon))
	cur := math.Max(spread, math.Max(floats.Max(a.tCost), epsilon))

	D := float64(a.dim)
	var kSum float64
	for i := range a.tCost0 {
		a.tCost0[i] = math.Min(a.tCost0[i], base)
		scale := math.Abs(math.Log((a.tCost0[i] + epsilon) / math.Min(a.tCost0[i], cur)))
		kSum += math.Pow(scale/a.cCost[i], D)
	}
	a.kCost = int(epsilon + kSum/D)

	kCostRoot := math.Pow(float64(a.kCost), 1/D)
	for i := range a.tCost {
		a.tCost[i] = math.Max(a.tCost0[i]*math.Exp(-a.cCost[i]*kCostRoot), epsilon)
	}
}
