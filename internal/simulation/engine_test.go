package simulation

import (
	"context"
	"errors"
	"math"
	"testing"
	"testing/iotest"
	"time"

	"github.com/rs/zerolog"

	"bondmc/internal/bond"
	"bondmc/internal/errs"
	"bondmc/internal/rates"
)

func testEngine() *Engine {
	clock := bond.FixedClock(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
	return NewEngine(bond.NewPricer(clock), zerolog.Nop())
}

func testSpec() bond.Spec {
	return bond.Spec{PaymentFrequency: 2, CouponRate: 0.05, FaceValue: 1000, YearsRemaining: 2}
}

func testParams() rates.ProcessParams {
	return rates.ProcessParams{MeanReversionSpeed: 0.03, LongTermMean: 0.03, Volatility: 0.1, InitialRate: 0.03}
}

func TestParallelMatchesSequential(t *testing.T) {
	opts := Options{Trials: 300, Seed: 539, StepsPerYear: DefaultStepsPerYear, Workers: 4, RecordTrials: true}

	opts.Parallel = true
	par, err := testEngine().Run(context.Background(), testSpec(), testParams(), opts)
	if err != nil {
		t.Fatalf("parallel run: %v", err)
	}
	opts.Parallel = false
	seq, err := testEngine().Run(context.Background(), testSpec(), testParams(), opts)
	if err != nil {
		t.Fatalf("sequential run: %v", err)
	}

	if par.MeanPrice != seq.MeanPrice || par.StdDev != seq.StdDev {
		t.Fatalf("parallel %v/%v != sequential %v/%v", par.MeanPrice, par.StdDev, seq.MeanPrice, seq.StdDev)
	}
	for i := range par.Prices {
		if par.Prices[i] != seq.Prices[i] {
			t.Fatalf("trial %d: parallel %v != sequential %v", i, par.Prices[i], seq.Prices[i])
		}
	}
	if par.Mode != ModeParallel || seq.Mode != ModeSequential || seq.Workers != 1 {
		t.Fatalf("unexpected modes: %s/%s workers %d", par.Mode, seq.Mode, seq.Workers)
	}
}

func TestPoolSizeDoesNotChangeResult(t *testing.T) {
	base := Options{Trials: 64, Seed: 7, StepsPerYear: 52, Parallel: true}

	var means []float64
	for _, workers := range []int{1, 3, 16} {
		opts := base
		opts.Workers = workers
		out, err := testEngine().Run(context.Background(), testSpec(), testParams(), opts)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		means = append(means, out.MeanPrice)
	}
	if means[0] != means[1] || means[1] != means[2] {
		t.Fatalf("mean depends on pool size: %v", means)
	}
}

func TestSeedReproducibility(t *testing.T) {
	opts := Options{Trials: 50, Seed: 11, StepsPerYear: 52, Parallel: true}
	a, _ := testEngine().Run(context.Background(), testSpec(), testParams(), opts)
	b, _ := testEngine().Run(context.Background(), testSpec(), testParams(), opts)
	if a.MeanPrice != b.MeanPrice {
		t.Fatalf("same seed gave %v and %v", a.MeanPrice, b.MeanPrice)
	}
	if a.RunID == b.RunID {
		t.Fatal("run IDs should be unique")
	}

	opts.Seed = 12
	c, _ := testEngine().Run(context.Background(), testSpec(), testParams(), opts)
	if c.MeanPrice == a.MeanPrice {
		t.Fatal("different seeds should give different estimates")
	}
}

func TestZeroVolatilityIsDeterministic(t *testing.T) {
	params := rates.ProcessParams{MeanReversionSpeed: 0.03, LongTermMean: 0.04, Volatility: 0, InitialRate: 0.04}
	out, err := testEngine().Run(context.Background(), testSpec(), params, Options{Trials: 20, Seed: 1, StepsPerYear: 12, Parallel: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want, err := bond.NewPricer(nil).Price(rates.Curve{0.04, 0.04}, testSpec())
	if err != nil {
		t.Fatalf("reference price: %v", err)
	}
	if math.Abs(out.MeanPrice-want) > 1e-9 {
		t.Fatalf("mean = %.10f, want %.10f", out.MeanPrice, want)
	}
	if out.StdDev > 1e-9 {
		t.Fatalf("stddev = %g, want 0", out.StdDev)
	}
}

func TestStdErrorShrinksWithTrials(t *testing.T) {
	spec := testSpec()
	params := rates.ProcessParams{MeanReversionSpeed: 0.5, LongTermMean: 0.04, Volatility: 0.3, InitialRate: 0.04}

	small, err := testEngine().Run(context.Background(), spec, params, Options{Trials: 200, Seed: 99, StepsPerYear: 52, Parallel: true})
	if err != nil {
		t.Fatalf("small run: %v", err)
	}
	large, err := testEngine().Run(context.Background(), spec, params, Options{Trials: 3200, Seed: 99, StepsPerYear: 52, Parallel: true})
	if err != nil {
		t.Fatalf("large run: %v", err)
	}

	// 16x the trials should cut the standard error by about 4x.
	ratio := small.StdError / large.StdError
	if ratio < 2.5 || ratio > 6 {
		t.Fatalf("std error ratio = %.3f, want about 4", ratio)
	}
	if math.Abs(small.MeanPrice-large.MeanPrice) > 4*small.StdError {
		t.Fatalf("estimates disagree: %v vs %v (stderr %v)", small.MeanPrice, large.MeanPrice, small.StdError)
	}
}

func TestRecordedPricesAverageToMean(t *testing.T) {
	out, err := testEngine().Run(context.Background(), testSpec(), testParams(), Options{Trials: 40, Seed: 3, StepsPerYear: 52, RecordTrials: true})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Prices) != 40 {
		t.Fatalf("recorded %d prices, want 40", len(out.Prices))
	}
	sum := 0.0
	for _, p := range out.Prices {
		sum += p
	}
	if math.Abs(sum/40-out.MeanPrice) > 1e-9 {
		t.Fatalf("mean of prices %v != %v", sum/40, out.MeanPrice)
	}
}

func TestRunValidatesBeforeWork(t *testing.T) {
	cases := map[string]struct {
		spec bond.Spec
		opts Options
	}{
		"zero trials":      {testSpec(), Options{Trials: 0, StepsPerYear: 252, Seed: 1}},
		"zero steps":       {testSpec(), Options{Trials: 1, StepsPerYear: 0, Seed: 1}},
		"negative workers": {testSpec(), Options{Trials: 1, StepsPerYear: 252, Seed: 1, Workers: -1}},
		"zero frequency":   {bond.Spec{FaceValue: 1000, YearsRemaining: 1}, Options{Trials: 1, StepsPerYear: 252, Seed: 1}},
	}
	for name, tc := range cases {
		_, err := testEngine().Run(context.Background(), tc.spec, testParams(), tc.opts)
		if !errors.Is(err, errs.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestEntropyFailure(t *testing.T) {
	e := testEngine()
	e.entropy = iotest.ErrReader(errors.New("no entropy"))

	_, err := e.Run(context.Background(), testSpec(), testParams(), Options{Trials: 1, StepsPerYear: 12})
	if !errors.Is(err, errs.ErrRandomSource) {
		t.Fatalf("expected ErrRandomSource, got %v", err)
	}
}

func TestEntropySeedIsReported(t *testing.T) {
	out, err := testEngine().Run(context.Background(), testSpec(), testParams(), Options{Trials: 2, StepsPerYear: 12})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Seed == 0 {
		t.Fatal("drawn seed should be reported")
	}
}

func TestCancelledRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, parallel := range []bool{true, false} {
		_, err := testEngine().Run(ctx, testSpec(), testParams(), Options{Trials: 10, Seed: 1, StepsPerYear: 12, Parallel: parallel})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("parallel=%v: expected context.Canceled, got %v", parallel, err)
		}
	}
}

func TestTrialSeedsDiffer(t *testing.T) {
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		s := TrialSeed(539, i)
		if seen[s] {
			t.Fatalf("trial %d reuses seed %d", i, s)
		}
		seen[s] = true
	}
	if TrialSeed(539, 0) != TrialSeed(539, 0) {
		t.Fatal("TrialSeed must be deterministic")
	}
	if TrialSeed(1, 0) == TrialSeed(2, 0) {
		t.Fatal("run seed should change trial seeds")
	}
}

func TestSampleCurveMatchesTrial(t *testing.T) {
	curve, err := SampleCurve(testParams(), 3, 52, 539, 4)
	if err != nil {
		t.Fatalf("sample curve: %v", err)
	}
	if len(curve) != 3 {
		t.Fatalf("len = %d, want 3", len(curve))
	}

	spec := bond.Spec{PaymentFrequency: 1, CouponRate: 0.05, FaceValue: 100, YearsRemaining: 3}
	want, _ := bond.NewPricer(nil).Price(curve, spec)
	tr := trial{pricer: bond.NewPricer(nil), spec: spec, params: testParams(), seed: 539, stepsPerYear: 52}
	got, err := tr.run(4)
	if err != nil {
		t.Fatalf("trial: %v", err)
	}
	if got != want {
		t.Fatalf("trial 4 priced %v, sampled curve prices %v", got, want)
	}

	if _, err := SampleCurve(testParams(), 0, 52, 1, 0); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero years: expected ErrInvalidInput, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	mean, sd := summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if mean != 5 {
		t.Fatalf("mean = %v, want 5", mean)
	}
	// Sample variance 32/7.
	if want := math.Sqrt(32.0 / 7); math.Abs(sd-want) > 1e-12 {
		t.Fatalf("stddev = %v, want %v", sd, want)
	}

	mean, sd = summarize([]float64{101.5})
	if mean != 101.5 || sd != 0 {
		t.Fatalf("single trial: mean %v stddev %v, want 101.5 and 0", mean, sd)
	}
}

func TestSingleTrialHasNoSpread(t *testing.T) {
	out, err := testEngine().Run(context.Background(), testSpec(), testParams(), Options{Trials: 1, Seed: 5, StepsPerYear: 12})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.StdDev != 0 || out.StdError != 0 || math.IsNaN(out.MeanPrice) {
		t.Fatalf("unexpected single-trial outcome: %+v", out)
	}
}
