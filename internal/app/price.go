package app

import (
	"context"

	"bondmc/internal/errs"
	"bondmc/internal/report"
	"bondmc/internal/service"
	"bondmc/internal/simulation"
	"bondmc/internal/storage"
)

// Price runs one Monte Carlo valuation and reports it.
func (a *App) Price(ctx context.Context, opts PriceOptions) (simulation.Outcome, error) {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return simulation.Outcome{}, err
	}
	if closeStore != nil {
		defer closeStore()
	}

	var catalog storage.BondCatalog
	if store != nil {
		catalog = store
	} else if opts.BondCode != "" {
		a.Logger.Warn().Msg("database.dsn not configured; bond catalog unavailable")
	}

	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = a.Config.Report.MaxDataPoints
	}

	svc := service.New(a.newEngine(), catalog, a.newReporter(), a.Logger)
	return svc.Price(ctx, service.Request{
		BondCode: opts.BondCode,
		Bond:     opts.Bond,
		Process:  opts.Process,
		Options: simulation.Options{
			Trials:       opts.Simulation.Trials,
			Parallel:     opts.Simulation.Parallel,
			Workers:      opts.Simulation.Workers,
			Seed:         opts.Simulation.Seed,
			StepsPerYear: opts.Simulation.StepsPerYear,
		},
		CSVPath:   opts.CSVPath,
		PNGPath:   opts.PNGPath,
		MaxPoints: maxPoints,
	})
}

// Curve prints the yield curve one trial of a seeded run would price against.
// Seed must be non-zero.
func (a *App) Curve(ctx context.Context, opts CurveOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if opts.Seed == 0 {
		return errs.Invalid("curve needs a non-zero seed; price draws a random one for seed 0")
	}

	steps := opts.StepsPerYear
	if steps == 0 {
		steps = a.Config.Simulation.StepsPerYear
	}
	curve, err := simulation.SampleCurve(opts.Process, opts.Years, steps, opts.Seed, opts.Trial)
	if err != nil {
		return err
	}

	a.Logger.Debug().Int("years", opts.Years).Uint64("seed", opts.Seed).Int("trial", opts.Trial).Msg("curve sampled")
	return report.RenderCurve(a.Out, curve)
}
