package report

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"bondmc/internal/bond"
	"bondmc/internal/rates"
)

// Console prints a run summary as an aligned table.
type Console struct {
	out io.Writer
}

// NewConsole builds a console reporter writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Report writes the summary table.
func (c *Console) Report(ctx context.Context, r Report) error {
	o := r.Outcome
	writer := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)

	rows := [][2]string{
		{"Bond", r.Label},
		{"Terms", r.Bond.String()},
		{"Price type", priceType(r.Bond.DirtyPrice)},
		{"Compounding", compoundingLabel(r.Bond)},
		{"Process", fmt.Sprintf("kappa=%g theta=%g sigma=%g r0=%g", r.Process.MeanReversionSpeed, r.Process.LongTermMean, r.Process.Volatility, r.Process.InitialRate)},
		{"Bond price", formatMoney(o.MeanPrice, 4)},
		{"Std error", formatMoney(o.StdError, 4)},
		{"Trials", fmt.Sprintf("%d", o.Trials)},
		{"Mode", fmt.Sprintf("%s (%d workers)", o.Mode, o.Workers)},
		{"Seed", fmt.Sprintf("%d", o.Seed)},
		{"Elapsed", fmt.Sprintf("%d ms", o.Elapsed.Milliseconds())},
		{"Run ID", o.RunID},
	}
	for _, row := range rows {
		fmt.Fprintf(writer, "%s\t%s\n", row[0], row[1])
	}
	return writer.Flush()
}

// RenderCurve prints one simulated yield curve, a row per year.
func RenderCurve(out io.Writer, curve rates.Curve) error {
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Year\tYield")
	for i, y := range curve {
		fmt.Fprintf(writer, "%d\t%s%%\n", i+1, decimal.NewFromFloat(y*100).StringFixed(4))
	}
	return writer.Flush()
}

func priceType(dirty bool) string {
	if dirty {
		return "dirty (with accrued interest)"
	}
	return "clean"
}

// compoundingLabel flags runs whose discounting differs from the legacy
// (1+y)^i convention. The two only coincide for annual coupons.
func compoundingLabel(spec bond.Spec) string {
	c, err := bond.ParseCompounding(string(spec.Compounding))
	if err != nil {
		return string(spec.Compounding)
	}
	if c == bond.CompoundingPeriodic && spec.PaymentFrequency > 1 {
		return fmt.Sprintf("%s (1+y/%d)^i [differs from legacy (1+y)^i]", c, spec.PaymentFrequency)
	}
	return string(c)
}

func formatMoney(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

var _ Reporter = (*Console)(nil)
