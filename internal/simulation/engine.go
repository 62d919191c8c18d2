package simulation

import (
	"context"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"bondmc/internal/bond"
	"bondmc/internal/errs"
	"bondmc/internal/rates"
	"bondmc/internal/scheduler"
)

// DefaultStepsPerYear is the number of simulated trading days per year.
const DefaultStepsPerYear = 252

// Mode names the execution strategy of a run.
type Mode string

const (
	ModeParallel   Mode = "parallel"
	ModeSequential Mode = "sequential"
)

// Options parameterise a run.
type Options struct {
	Trials   int
	Parallel bool
	// Workers caps the parallel pool. Zero means GOMAXPROCS.
	Workers int
	// Seed is the run seed. Zero draws one from the entropy source.
	Seed         uint64
	StepsPerYear int
	// RecordTrials keeps every trial price on the Outcome.
	RecordTrials bool
}

// Validate checks run-level parameters.
func (o Options) Validate() error {
	if o.Trials <= 0 {
		return errs.Invalid("trials must be greater than zero, got %d", o.Trials)
	}
	if o.StepsPerYear <= 0 {
		return errs.Invalid("steps per year must be greater than zero, got %d", o.StepsPerYear)
	}
	if o.Workers < 0 {
		return errs.Invalid("workers cannot be negative, got %d", o.Workers)
	}
	return nil
}

// Outcome summarises a completed run.
type Outcome struct {
	RunID     string
	MeanPrice float64
	StdDev    float64
	StdError  float64
	Trials    int
	Mode      Mode
	Workers   int
	Seed      uint64
	Elapsed   time.Duration
	Prices    []float64
}

// Engine runs Monte Carlo bond pricings.
type Engine struct {
	pricer  *bond.Pricer
	logger  zerolog.Logger
	entropy io.Reader
}

// NewEngine wires a pricer into an Engine.
func NewEngine(pricer *bond.Pricer, logger zerolog.Logger) *Engine {
	return &Engine{pricer: pricer, logger: logger.With().Str("component", "simulation").Logger()}
}

// Run prices spec over opts.Trials independent short-rate paths and averages
// the results. Every trial gets its own process seeded by TrialSeed, so
// parallel and sequential runs with the same seed agree exactly. Any trial
// error aborts the whole run.
func (e *Engine) Run(ctx context.Context, spec bond.Spec, params rates.ProcessParams, opts Options) (Outcome, error) {
	if err := spec.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := params.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := opts.Validate(); err != nil {
		return Outcome{}, err
	}

	seed := opts.Seed
	if seed == 0 {
		var err error
		if seed, err = entropySeed(e.entropy); err != nil {
			return Outcome{}, err
		}
	}

	out := Outcome{RunID: uuid.NewString(), Trials: opts.Trials, Seed: seed}
	logger := e.logger.With().Str("run_id", out.RunID).Logger()
	logger.Debug().Int("trials", opts.Trials).Bool("parallel", opts.Parallel).Uint64("seed", seed).Msg("simulation started")

	t := trial{pricer: e.pricer, spec: spec, params: params, seed: seed, stepsPerYear: opts.StepsPerYear}
	prices := make([]float64, opts.Trials)
	start := time.Now()

	if opts.Parallel {
		sched := scheduler.New(scheduler.Options{Workers: opts.Workers}, e.logger)
		out.Mode = ModeParallel
		out.Workers = min(sched.Workers(), opts.Trials)

		err := sched.Run(ctx, opts.Trials, func(ctx context.Context, i int) error {
			price, err := t.run(i)
			if err != nil {
				return err
			}
			prices[i] = price
			return nil
		})
		if err != nil {
			return Outcome{}, err
		}
	} else {
		out.Mode = ModeSequential
		out.Workers = 1
		for i := range prices {
			if err := ctx.Err(); err != nil {
				return Outcome{}, err
			}
			price, err := t.run(i)
			if err != nil {
				return Outcome{}, err
			}
			prices[i] = price
		}
	}

	out.Elapsed = time.Since(start)
	out.MeanPrice, out.StdDev = summarize(prices)
	out.StdError = stat.StdErr(out.StdDev, float64(len(prices)))
	if opts.RecordTrials {
		out.Prices = prices
	}

	logger.Info().
		Str("mode", string(out.Mode)).
		Int("workers", out.Workers).
		Float64("mean_price", out.MeanPrice).
		Float64("std_error", out.StdError).
		Dur("elapsed", out.Elapsed).
		Msg("simulation finished")
	return out, nil
}

// trial carries the read-only inputs shared by every trial of a run.
type trial struct {
	pricer       *bond.Pricer
	spec         bond.Spec
	params       rates.ProcessParams
	seed         uint64
	stepsPerYear int
}

func (t trial) run(i int) (float64, error) {
	curve, err := SampleCurve(t.params, t.spec.YearsRemaining, t.stepsPerYear, t.seed, i)
	if err != nil {
		return 0, err
	}
	return t.pricer.Price(curve, t.spec)
}

// summarize returns the mean and sample standard deviation of the trial
// prices in trial order. A single trial has no spread.
func summarize(prices []float64) (mean, stddev float64) {
	if len(prices) < 2 {
		return stat.Mean(prices, nil), 0
	}
	return stat.MeanStdDev(prices, nil)
}

// SampleCurve simulates the yield curve of trial index in a run with seed,
// without pricing it.
func SampleCurve(params rates.ProcessParams, years, stepsPerYear int, seed uint64, index int) (rates.Curve, error) {
	if years <= 0 {
		return nil, errs.Invalid("years must be greater than zero, got %d", years)
	}
	if stepsPerYear <= 0 {
		return nil, errs.Invalid("steps per year must be greater than zero, got %d", stepsPerYear)
	}
	proc, err := rates.NewProcess(params, rand.NewPCG(TrialSeed(seed, index), pcgStream))
	if err != nil {
		return nil, err
	}
	path, err := proc.GeneratePath(years*stepsPerYear, 1/float64(stepsPerYear))
	if err != nil {
		return nil, err
	}
	return rates.BuildCurve(path, stepsPerYear)
}
