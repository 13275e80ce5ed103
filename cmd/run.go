package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/asaopt/internal/anneal"
	"github.com/cwbudde/asaopt/internal/objective"
	"github.com/cwbudde/asaopt/internal/opt"
	"github.com/spf13/cobra"
)

var (
	objectiveName string
	optimizerName string
	dim           int
	seed          int64
	maxSteps      int
	popSize       int

	ratioScale  float64
	annealScale float64
	costScale   float64
	repeatMax   int
	noReanneal  bool
	exitAtFinal bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an optimizer against a benchmark objective",
	Long:  `Runs adaptive simulated annealing (or the mayfly baseline) on a named benchmark objective and prints the best point found.`,
	RunE:  runOptimization,
}

func init() {
	runCmd.Flags().StringVar(&objectiveName, "objective", "rosenbrock", "Benchmark objective (sphere, rosenbrock, bowl, himmelblau)")
	runCmd.Flags().StringVar(&optimizerName, "optimizer", "asa", "Optimizer: asa, mayfly")
	runCmd.Flags().IntVar(&dim, "dim", 2, "Search-space dimensionality")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 100000, "Step ceiling (asa) / iterations (mayfly)")
	runCmd.Flags().IntVar(&popSize, "pop", 30, "Population size (mayfly only)")

	runCmd.Flags().Float64Var(&ratioScale, "temperature-ratio-scale", 1e-5, "ASA temperature ratio scale")
	runCmd.Flags().Float64Var(&annealScale, "temperature-anneal-scale", 100, "ASA temperature anneal scale")
	runCmd.Flags().Float64Var(&costScale, "cost-scale-ratio", 1, "ASA cost parameter scale ratio")
	runCmd.Flags().IntVar(&repeatMax, "repeat-max", 10, "Stop after the best objective repeats this many times")
	runCmd.Flags().BoolVar(&noReanneal, "no-reanneal", false, "Disable adaptive reannealing")
	runCmd.Flags().BoolVar(&exitAtFinal, "exit-at-final-temp", false, "Stop when the mean temperature reaches the expected final temperature")

	rootCmd.AddCommand(runCmd)
}

func runOptimization(cmd *cobra.Command, args []string) error {
	bench, err := objective.ByName(objectiveName, dim)
	if err != nil {
		return err
	}

	slog.Info("Starting optimization",
		"objective", bench.Name,
		"optimizer", optimizerName,
		"dim", dim,
		"seed", seed,
	)

	start := time.Now()
	var result opt.Result

	switch optimizerName {
	case "asa":
		cfg := anneal.DefaultConfig()
		cfg.Seed = seed
		cfg.TemperatureRatioScale = ratioScale
		cfg.TemperatureAnnealScale = annealScale
		cfg.CostParameterScaleRatio = costScale
		cfg.BestRepeatMax = repeatMax
		cfg.EnableReanneal = !noReanneal
		cfg.ExitAtFinalTemperature = exitAtFinal
		result, err = opt.NewAnneal(cfg, maxSteps).RunFrom(opt.ObjectiveFunc(bench.Fn), bench.Initial, bench.Lower, bench.Upper)
	case "mayfly":
		result, err = opt.NewMayfly(maxSteps, popSize, seed).Run(opt.ObjectiveFunc(bench.Fn), bench.Lower, bench.Upper)
	default:
		return fmt.Errorf("unknown optimizer %q (available: asa, mayfly)", optimizerName)
	}
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	elapsed := time.Since(start)
	slog.Info("Optimization complete",
		"cost", result.Cost,
		"known_optimum", bench.Optimum,
		"evaluations", result.Evaluations,
		"stop_reason", result.StopReason,
		"elapsed", elapsed.String(),
	)

	fmt.Printf("objective: %s\n", bench.Name)
	fmt.Printf("best cost: %g (known optimum %g)\n", result.Cost, bench.Optimum)
	fmt.Printf("best point: %v\n", result.Best)
	fmt.Printf("stop reason: %s\n", result.StopReason)
	return nil
}
