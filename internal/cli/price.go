package cli

import (
	"github.com/spf13/cobra"

	"bondmc/internal/app"
	"bondmc/internal/bond"
	"bondmc/internal/config"
)

var (
	priceFrequency   int
	priceCoupon      float64
	priceFace        float64
	priceYears       int
	priceDirty       bool
	priceCompounding string

	priceKappa     float64
	priceRiskFree  float64
	priceSigma     float64
	priceInitial   float64
	priceTrials    int
	priceParallel  bool
	priceWorkers   int
	priceSeed      uint64
	priceStepsYear int

	priceBondCode  string
	priceCSVPath   string
	pricePNGPath   string
	priceMaxPoints int
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Estimate a bond price over simulated rate paths",
	Long: `Estimate the price of a fixed-coupon bond as the mean of its prices over
independently simulated short-rate paths. Flags override the config file;
--bond loads the bond terms from the catalog database instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		if err := applyPriceFlags(cmd, a.Config); err != nil {
			return err
		}

		_, err := a.Price(cmd.Context(), app.PriceOptions{
			BondCode:   priceBondCode,
			Bond:       a.Config.Bond,
			Process:    a.Config.Process,
			Simulation: a.Config.Simulation,
			CSVPath:    priceCSVPath,
			PNGPath:    pricePNGPath,
			MaxPoints:  priceMaxPoints,
		})
		return err
	},
}

// applyPriceFlags copies explicitly set flags over the loaded config and
// revalidates it.
func applyPriceFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("frequency") {
		cfg.Bond.PaymentFrequency = priceFrequency
	}
	if flags.Changed("coupon") {
		cfg.Bond.CouponRate = priceCoupon
	}
	if flags.Changed("face") {
		cfg.Bond.FaceValue = priceFace
	}
	if flags.Changed("years") {
		cfg.Bond.YearsRemaining = priceYears
	}
	if flags.Changed("dirty") {
		cfg.Bond.DirtyPrice = priceDirty
	}
	if flags.Changed("compounding") {
		c, err := bond.ParseCompounding(priceCompounding)
		if err != nil {
			return err
		}
		cfg.Bond.Compounding = c
	}

	if flags.Changed("mean-reversion") {
		cfg.Process.MeanReversionSpeed = priceKappa
	}
	if flags.Changed("risk-free-rate") {
		cfg.Process.LongTermMean = priceRiskFree
	}
	if flags.Changed("volatility") {
		cfg.Process.Volatility = priceSigma
	}
	if flags.Changed("initial-rate") {
		cfg.Process.InitialRate = priceInitial
	}

	if flags.Changed("trials") {
		cfg.Simulation.Trials = priceTrials
	}
	if flags.Changed("parallel") {
		cfg.Simulation.Parallel = priceParallel
	}
	if flags.Changed("workers") {
		cfg.Simulation.Workers = priceWorkers
	}
	if flags.Changed("seed") {
		cfg.Simulation.Seed = priceSeed
	}
	if flags.Changed("steps-per-year") {
		cfg.Simulation.StepsPerYear = priceStepsYear
	}

	if priceBondCode != "" {
		// Catalogued terms replace the bond section; run choices still apply.
		return cfg.ValidateRun()
	}
	return cfg.Validate()
}

func init() {
	f := priceCmd.Flags()
	f.IntVar(&priceFrequency, "frequency", 0, "Coupon payments per year")
	f.Float64Var(&priceCoupon, "coupon", 0, "Annual coupon rate as a fraction (0.05 = 5%)")
	f.Float64Var(&priceFace, "face", 0, "Face value")
	f.IntVar(&priceYears, "years", 0, "Whole years to maturity")
	f.BoolVar(&priceDirty, "dirty", true, "Add accrued interest to the price")
	f.StringVar(&priceCompounding, "compounding", "", "Discounting convention: periodic or legacy")

	f.Float64Var(&priceKappa, "mean-reversion", 0, "Mean-reversion speed")
	f.Float64Var(&priceRiskFree, "risk-free-rate", 0, "Long-term mean rate")
	f.Float64Var(&priceSigma, "volatility", 0, "Rate volatility")
	f.Float64Var(&priceInitial, "initial-rate", 0, "Starting short rate")

	f.IntVar(&priceTrials, "trials", 0, "Number of simulated paths")
	f.BoolVar(&priceParallel, "parallel", true, "Run trials on a worker pool")
	f.IntVar(&priceWorkers, "workers", 0, "Worker pool size (0 = GOMAXPROCS)")
	f.Uint64Var(&priceSeed, "seed", 0, "Run seed (0 draws a random seed)")
	f.IntVar(&priceStepsYear, "steps-per-year", 0, "Simulation steps per year")

	f.StringVar(&priceBondCode, "bond", "", "Price a catalogued bond by code")
	f.StringVar(&priceCSVPath, "csv", "", "Path to write per-trial prices as CSV")
	f.StringVar(&pricePNGPath, "png", "", "Path to write a convergence chart")
	f.IntVar(&priceMaxPoints, "max-points", 0, "Maximum chart points (defaults to config)")
}
