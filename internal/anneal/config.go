package anneal

import "fmt"

// Config holds the tunable parameters of the annealer. All fields must be set
// before Init; changing them afterwards has no effect. The names follow
// Ingber's ASA paper and C code where one exists.
type Config struct {
	// Downhill selects the search direction: true descends to the minimum of
	// the objective, false ascends to the maximum.
	Downhill bool

	// TemperatureRatioScale shapes the per-dimension cooling exponent,
	// m = -log(TemperatureRatioScale). Ingber's Temperature_Ratio_Scale.
	TemperatureRatioScale float64

	// TemperatureAnnealScale shapes the expected run length,
	// n = log(TemperatureAnnealScale). Ingber's Temperature_Anneal_Scale.
	TemperatureAnnealScale float64

	// CostParameterScaleRatio scales the acceptance-temperature decay
	// constant relative to the generation one.
	CostParameterScaleRatio float64

	// AccGenReannealRatio triggers a reanneal when the ratio of recently
	// accepted to recently generated candidates drops below it.
	AccGenReannealRatio float64

	// DeltaParam is the relative perturbation used for the reanneal probe
	// point, x*(1±DeltaParam). Doubled automatically when a probe produces
	// all-zero sensitivities.
	DeltaParam float64

	// ObjectiveRepeatPrecision is the tolerance within which a candidate
	// objective counts as a repeat of the best one.
	ObjectiveRepeatPrecision float64

	// BestRepeatMax stops the run once the best objective has repeated this
	// many times.
	BestRepeatMax int

	// EnableReanneal turns the adaptive reannealing step on or off.
	EnableReanneal bool

	// MinStepsToReanneal is the grace period: no reanneal happens within this
	// many steps of the previous one.
	MinStepsToReanneal int

	// ReannealAfterSteps forces a reanneal once this many steps have passed
	// since the last one, even if the accepted/generated ratio is healthy.
	ReannealAfterSteps int

	// ExitAtFinalTemperature stops the run when the mean generation
	// temperature falls below the precomputed expected final temperature.
	ExitAtFinalTemperature bool

	// Seed initializes the annealer's own random number generator. Runs with
	// the same seed, objective and tunables produce identical trajectories.
	Seed int64
}

// DefaultConfig returns the tunables Ingber recommends for a first run,
// searching downhill with reannealing enabled.
func DefaultConfig() Config {
	return Config{
		Downhill:                 true,
		TemperatureRatioScale:    1e-5,
		TemperatureAnnealScale:   100,
		CostParameterScaleRatio:  1,
		AccGenReannealRatio:      1e-6,
		DeltaParam:               0.01,
		ObjectiveRepeatPrecision: epsilon,
		BestRepeatMax:            10,
		EnableReanneal:           true,
		MinStepsToReanneal:       10,
		ReannealAfterSteps:       100,
		ExitAtFinalTemperature:   false,
		Seed:                     1,
	}
}

// Validate reports the first invalid tunable, if any.
func (c Config) Validate() error {
	if c.TemperatureRatioScale <= 0 || c.TemperatureRatioScale >= 1 {
		return fmt.Errorf("temperature ratio scale must be in (0,1), got %g", c.TemperatureRatioScale)
	}
	if c.TemperatureAnnealScale <= 1 {
		return fmt.Errorf("temperature anneal scale must be > 1, got %g", c.TemperatureAnnealScale)
	}
	if c.CostParameterScaleRatio <= 0 {
		return fmt.Errorf("cost parameter scale ratio must be positive, got %g", c.CostParameterScaleRatio)
	}
	if c.DeltaParam <= 0 {
		return fmt.Errorf("delta param must be positive, got %g", c.DeltaParam)
	}
	if c.ObjectiveRepeatPrecision < 0 {
		return fmt.Errorf("objective repeat precision must be non-negative, got %g", c.ObjectiveRepeatPrecision)
	}
	if c.BestRepeatMax < 1 {
		return fmt.Errorf("best repeat max must be >= 1, got %d", c.BestRepeatMax)
	}
	if c.MinStepsToReanneal < 0 {
		return fmt.Errorf("min steps to reanneal must be non-negative, got %d", c.MinStepsToReanneal)
	}
	if c.ReannealAfterSteps < 1 {
		return fmt.Errorf("reanneal after steps must be >= 1, got %d", c.ReannealAfterSteps)
	}
	return nil
}
