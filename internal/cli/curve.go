package cli

import (
	"github.com/spf13/cobra"

	"bondmc/internal/app"
)

var (
	curveYears int
	curveSeed  uint64
	curveTrial int
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the simulated yield curve of one trial",
	Long: `Print the yearly yield curve that trial --trial of a price run with the
same non-zero seed prices against. Seed 0 is rejected because price draws a
random seed in that case.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()

		opts := app.CurveOptions{
			Years:   a.Config.Bond.YearsRemaining,
			Seed:    a.Config.Simulation.Seed,
			Trial:   curveTrial,
			Process: a.Config.Process,
		}
		if cmd.Flags().Changed("years") {
			opts.Years = curveYears
		}
		if cmd.Flags().Changed("seed") {
			opts.Seed = curveSeed
		}

		return a.Curve(cmd.Context(), opts)
	},
}

func init() {
	curveCmd.Flags().IntVar(&curveYears, "years", 0, "Curve length in years (defaults to bond.years_remaining)")
	curveCmd.Flags().Uint64Var(&curveSeed, "seed", 0, "Run seed, non-zero (defaults to simulation.seed)")
	curveCmd.Flags().IntVar(&curveTrial, "trial", 0, "Trial index within the run")
}
