package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"bondmc/internal/app"
	"bondmc/internal/storage"
)

var (
	bondsLimit int

	bondAddDescription string
	bondAddFrequency   int
	bondAddCoupon      string
	bondAddFace        string
	bondAddYears       int
)

var bondsCmd = &cobra.Command{
	Use:   "bonds",
	Short: "Manage the bond catalog",
}

var bondsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalogued bonds",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bondsLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}
		return getApp().ListBonds(cmd.Context(), app.ListOptions{Limit: bondsLimit})
	},
}

var bondsAddCmd = &cobra.Command{
	Use:   "add CODE",
	Short: "Add or replace a catalogued bond",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coupon, err := decimal.NewFromString(bondAddCoupon)
		if err != nil {
			return fmt.Errorf("invalid --coupon value: %w", err)
		}
		face, err := decimal.NewFromString(bondAddFace)
		if err != nil {
			return fmt.Errorf("invalid --face value: %w", err)
		}

		return getApp().AddBond(cmd.Context(), storage.BondRecord{
			Code:             strings.TrimSpace(args[0]),
			Description:      bondAddDescription,
			PaymentFrequency: bondAddFrequency,
			CouponRate:       coupon,
			FaceValue:        face,
			YearsRemaining:   bondAddYears,
		})
	},
}

func init() {
	bondsListCmd.Flags().IntVar(&bondsLimit, "limit", 50, "Number of bonds to display")

	f := bondsAddCmd.Flags()
	f.StringVar(&bondAddDescription, "description", "", "Free-form description")
	f.IntVar(&bondAddFrequency, "frequency", 2, "Coupon payments per year")
	f.StringVar(&bondAddCoupon, "coupon", "", "Annual coupon rate as a fraction (0.05 = 5%)")
	f.StringVar(&bondAddFace, "face", "1000", "Face value")
	f.IntVar(&bondAddYears, "years", 0, "Whole years to maturity")
	_ = bondsAddCmd.MarkFlagRequired("coupon")
	_ = bondsAddCmd.MarkFlagRequired("years")

	bondsCmd.AddCommand(bondsListCmd)
	bondsCmd.AddCommand(bondsAddCmd)
}
