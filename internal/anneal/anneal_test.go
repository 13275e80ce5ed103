package anneal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bowl(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += (v - 3) * (v - 3)
	}
	return sum
}

// runToStop drives the pull protocol with the given objective until the
// annealer stops or maxSteps is exceeded.
func runToStop(t *testing.T, a *Annealer, f func([]float64) float64, maxSteps int) {
	t.Helper()
	for a.State() != StateReadyToStop {
		require.Less(t, a.Stats().Steps, maxSteps, "annealer did not terminate")
		feed(t, a, f)
		require.NoError(t, a.Step())
	}
}

func feed(t *testing.T, a *Annealer, f func([]float64) float64) {
	t.Helper()
	switch a.State() {
	case StateNeedsObjective:
		require.NoError(t, a.SetObjective(f(a.Candidate())))
	case StateNeedsObjectiveSet:
		require.NoError(t, a.SetProbeObjective(f(a.Probe())))
	default:
		t.Fatalf("unexpected state %v", a.State())
	}
}

func newBowl1D(t *testing.T, cfg Config) *Annealer {
	t.Helper()
	a, err := New([]float64{5}, NewBounds([2]float64{0, 10}), cfg)
	require.NoError(t, err)
	return a
}

func TestNewValidation(t *testing.T) {
	cfg := DefaultConfig()

	_, err := New(nil, Bounds{}, cfg)
	assert.Error(t, err, "empty initial vector")

	_, err = New([]float64{1}, NewBounds([2]float64{5, 0}), cfg)
	assert.Error(t, err, "empty bounds interval")

	_, err = New([]float64{1, 2}, NewBounds([2]float64{0, 10}), cfg)
	assert.Error(t, err, "dimension mismatch")

	_, err = New([]float64{-1}, NewBounds([2]float64{0, 10}), cfg)
	assert.Error(t, err, "initial point out of bounds")

	bad := cfg
	bad.TemperatureRatioScale = 2
	_, err = New([]float64{5}, NewBounds([2]float64{0, 10}), bad)
	assert.Error(t, err, "invalid tunable")
}

func TestProtocolStates(t *testing.T) {
	a := newBowl1D(t, DefaultConfig())
	assert.Equal(t, StateUninitialized, a.State())

	// Stepping or feeding before Init is a protocol violation.
	assert.ErrorIs(t, a.Step(), ErrBadState)
	assert.ErrorIs(t, a.SetObjective(1), ErrBadState)

	require.NoError(t, a.Init())
	assert.Equal(t, StateNeedsObjective, a.State())
	assert.ErrorIs(t, a.Init(), ErrBadState)

	// The first candidate is the initial point.
	assert.Equal(t, []float64{5}, a.Candidate())

	// The probe setter is not valid outside NeedsObjectiveSet, and Step
	// refuses to run on a stale objective value.
	assert.ErrorIs(t, a.SetProbeObjective(1), ErrBadState)
	assert.ErrorIs(t, a.Step(), ErrBadState)

	require.NoError(t, a.SetObjective(bowl(a.Candidate())))
	require.NoError(t, a.Step())
	assert.Equal(t, StateNeedsObjective, a.State())
}

func TestStepAfterStopFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BestRepeatMax = 1
	cfg.EnableReanneal = false
	a := newBowl1D(t, cfg)
	require.NoError(t, a.Init())

	runToStop(t, a, func([]float64) float64 { return 7 }, 1000)
	assert.ErrorIs(t, a.Step(), ErrBadState)
}

func TestConstantObjectiveStopsOnFirstRepeat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BestRepeatMax = 1
	cfg.EnableReanneal = false
	a := newBowl1D(t, cfg)
	require.NoError(t, a.Init())

	runToStop(t, a, func([]float64) float64 { return 7 }, 1000)

	assert.Equal(t, StopBestRepeated, a.StopReason())
	_, fBest := a.Best()
	assert.Equal(t, 7.0, fBest)
	// The first acceptance establishes the best; the next repeats it.
	assert.Equal(t, 2, a.Stats().NumAccepted)
}

func TestBowlConvergence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 7
	a := newBowl1D(t, cfg)
	require.NoError(t, a.Init())

	runToStop(t, a, bowl, 500000)

	xBest, fBest := a.Best()
	assert.InDelta(t, 3.0, xBest[0], 0.1, "should converge near the minimum at 3")
	assert.Less(t, fBest, 0.05)
	assert.NotEqual(t, StopNone, a.StopReason())
}

func TestDeterminism(t *testing.T) {
	run := func() ([]Sample, []float64, float64, Stats) {
		cfg := DefaultConfig()
		cfg.Seed = 1234
		a := newBowl1D(t, cfg)
		require.NoError(t, a.Init())
		runToStop(t, a, bowl, 500000)
		x, f := a.Best()
		return a.AcceptedHistory(), x, f, a.Stats()
	}

	acc1, x1, f1, s1 := run()
	acc2, x2, f2, s2 := run()

	assert.Equal(t, s1, s2)
	assert.Equal(t, x1, x2)
	assert.Equal(t, f1, f2)
	assert.Equal(t, acc1, acc2)
}

func TestBestNeverWorsens(t *testing.T) {
	t.Run("downhill", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Seed = 5
		a := newBowl1D(t, cfg)
		require.NoError(t, a.Init())

		prev := math.Inf(1)
		for a.State() != StateReadyToStop {
			require.Less(t, a.Stats().Steps, 500000)
			feed(t, a, bowl)
			require.NoError(t, a.Step())
			_, fBest := a.Best()
			assert.LessOrEqual(t, fBest, prev)
			prev = fBest
		}
	})

	t.Run("uphill", func(t *testing.T) {
		hill := func(x []float64) float64 { return -bowl(x) }
		cfg := DefaultConfig()
		cfg.Seed = 5
		cfg.Downhill = false
		a := newBowl1D(t, cfg)
		require.NoError(t, a.Init())

		prev := math.Inf(-1)
		for a.State() != StateReadyToStop {
			require.Less(t, a.Stats().Steps, 500000)
			feed(t, a, hill)
			require.NoError(t, a.Step())
			_, fBest := a.Best()
			assert.GreaterOrEqual(t, fBest, prev)
			prev = fBest
		}

		xBest, _ := a.Best()
		assert.InDelta(t, 3.0, xBest[0], 0.1, "ascent should find the maximum of -bowl")
	})
}

func TestHistoryAccounting(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	a := newBowl1D(t, cfg)
	require.NoError(t, a.Init())

	runToStop(t, a, bowl, 500000)

	// Every step but the final stop-only one runs exactly one acceptance
	// check, and each check appends to exactly one history.
	checks := a.Stats().Steps - 1
	assert.Equal(t, checks, len(a.AcceptedHistory())+len(a.RejectedHistory()))
	assert.Equal(t, a.Stats().NumAccepted, len(a.AcceptedHistory()))
}

func TestCandidatesStayInBounds(t *testing.T) {
	bounds := NewBounds([2]float64{-2, 4}, [2]float64{0, 1})
	cfg := DefaultConfig()
	cfg.Seed = 3
	a, err := New([]float64{1, 0.5}, bounds, cfg)
	require.NoError(t, err)
	require.NoError(t, a.Init())

	for a.State() != StateReadyToStop {
		require.Less(t, a.Stats().Steps, 500000)
		switch a.State() {
		case StateNeedsObjective:
			x := a.Candidate()
			require.True(t, bounds.Contains(x), "candidate %v escaped bounds", x)
			require.NoError(t, a.SetObjective(sphereish(x)))
		case StateNeedsObjectiveSet:
			x := a.Probe()
			require.True(t, bounds.Contains(x), "probe %v escaped bounds", x)
			require.NoError(t, a.SetProbeObjective(sphereish(x)))
		}
		require.NoError(t, a.Step())
	}
}

// sphereish is a plain quadratic used where any smooth objective will do.
func sphereish(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func TestTemperaturesDecayToFloorNotBelow(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 11
	cfg.EnableReanneal = false
	a := newBowl1D(t, cfg)
	require.NoError(t, a.Init())

	prevMean := math.Inf(1)
	for a.State() != StateReadyToStop {
		require.Less(t, a.Stats().Steps, 500000)
		feed(t, a, bowl)
		require.NoError(t, a.Step())

		mean := a.MeanTemperature()
		assert.LessOrEqual(t, mean, prevMean, "temperature increased without a reanneal")
		prevMean = mean
		for _, temp := range a.Temperatures() {
			assert.GreaterOrEqual(t, temp, epsilon)
		}
		for _, temp := range a.CostTemperatures() {
			assert.GreaterOrEqual(t, temp, epsilon)
		}
	}
}

func TestExitAtFinalTemperature(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 17
	cfg.EnableReanneal = false
	cfg.ExitAtFinalTemperature = true
	// Large repeat budget so the temperature condition fires first.
	cfg.BestRepeatMax = 1 << 30
	a := newBowl1D(t, cfg)
	require.NoError(t, a.Init())

	runToStop(t, a, bowl, 500000)
	assert.Equal(t, StopAtFinalTemperature, a.StopReason())
}
