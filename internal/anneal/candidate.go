package anneal

import "math"

// generateNext draws the next candidate around the currently accepted point
// and records the generation counters.
func (a *Annealer) generateNext() {
	a.xCand = a.generateFrom(a.x)
	a.numGenerated++
	a.numGeneratedRecently++
}

// generateFrom draws a point near x0 using Ingber's generating distribution:
// per dimension, a uniform draw u in [0,1) maps to an offset with sign
// sgn(u-0.5) and magnitude T_i*((1+1/T_i)^|2u-1| - 1). The tails are
// Cauchy-like and shrink with the temperature. Draws falling outside the
// bounds are discarded and redrawn, so every returned point is in-bounds.
func (a *Annealer) generateFrom(x0 []float64) []float64 {
	xNew := make([]float64, a.dim)
	for {
		for i := range xNew {
			u := a.rng.Float64()
			y := a.tK[i] * (math.Pow(1+1/a.tK[i], math.Abs(2*u-1)) - 1)
			if u < 0.5 {
				y = -y
			}
			xNew[i] = x0[i] + y
		}
		if a.bounds.Contains(xNew) {
			return xNew
		}
	}
}

// generateProbe perturbs every coordinate of x0 by the relative fraction
// deltaParam for sensitivity estimation, flipping the sign of the
// perturbation wherever it would leave the bounds. A box narrower than the
// relative perturbation can reject both signs, so the coordinate is clamped
// into the box as a final guard.
func (a *Annealer) generateProbe(x0 []float64) []float64 {
	probe := make([]float64, a.dim)
	for i := range probe {
		v := x0[i] * (1 + a.deltaParam)
		if v > a.bounds.Upper[i] || v < a.bounds.Lower[i] {
			v = x0[i] * (1 - a.deltaParam)
		}
		probe[i] = math.Min(math.Max(v, a.bounds.Lower[i]), a.bounds.Upper[i])
	}
	return probe
}
