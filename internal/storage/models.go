package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bondmc/internal/bond"
	"bondmc/internal/errs"
)

// BondRecord is a catalogued bond. Monetary terms are kept as decimals to
// match the NUMERIC columns.
type BondRecord struct {
	Code             string
	Description      string
	PaymentFrequency int
	CouponRate       decimal.Decimal
	FaceValue        decimal.Decimal
	YearsRemaining   int
	CreatedAt        time.Time
}

// Validate checks a record before it is written.
func (r BondRecord) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return errs.Invalid("bond code is required")
	}
	if err := r.Spec(false, bond.CompoundingPeriodic).Validate(); err != nil {
		return fmt.Errorf("bond %s: %w", r.Code, err)
	}
	return nil
}

// Spec converts the record into pricing terms. Dirty pricing and
// compounding are run choices, not catalogue data.
func (r BondRecord) Spec(dirty bool, compounding bond.Compounding) bond.Spec {
	return bond.Spec{
		PaymentFrequency: r.PaymentFrequency,
		CouponRate:       r.CouponRate.InexactFloat64(),
		FaceValue:        r.FaceValue.InexactFloat64(),
		YearsRemaining:   r.YearsRemaining,
		DirtyPrice:       dirty,
		Compounding:      compounding,
	}
}
