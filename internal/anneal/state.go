package anneal

// State tells the caller what the annealer needs next.
type State int

const (
	// StateUninitialized means Init has not been called yet. Tunables may
	// still be changed.
	StateUninitialized State = iota

	// StateNeedsObjective means the caller must evaluate the objective at
	// Candidate() and feed the result back via SetObjective before Step.
	StateNeedsObjective

	// StateNeedsObjectiveSet means the caller must evaluate the objective at
	// the reanneal probe point Probe() and feed the result back via
	// SetProbeObjective before Step.
	StateNeedsObjectiveSet

	// StateReadyToStop is terminal; further Step calls are errors.
	StateReadyToStop
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateNeedsObjective:
		return "needs-objective"
	case StateNeedsObjectiveSet:
		return "needs-objective-set"
	case StateReadyToStop:
		return "ready-to-stop"
	}
	return "unknown"
}

// StopCondition records which stopping rule ended the run.
type StopCondition int

const (
	// StopNone means the run has not stopped.
	StopNone StopCondition = iota

	// StopAtFinalTemperature: mean generation temperature fell below the
	// expected final temperature (only when ExitAtFinalTemperature is set).
	StopAtFinalTemperature

	// StopTemperatureFloor: a generation temperature decayed to the numeric
	// floor.
	StopTemperatureFloor

	// StopCostTemperatureFloor: the acceptance temperature decayed to the
	// numeric floor.
	StopCostTemperatureFloor

	// StopBestRepeated: the best objective value repeated BestRepeatMax
	// times. The primary practical convergence criterion.
	StopBestRepeated
)

func (c StopCondition) String() string {
	switch c {
	case StopNone:
		return "none"
	case StopAtFinalTemperature:
		return "final-temperature-reached"
	case StopTemperatureFloor:
		return "temperature-floor"
	case StopCostTemperatureFloor:
		return "cost-temperature-floor"
	case StopBestRepeated:
		return "best-objective-repeated"
	}
	return "unknown"
}
