package bond

import (
	"fmt"
	"math"
	"strings"

	"bondmc/internal/errs"
)

// Compounding selects how an annual curve yield discounts a payment period.
type Compounding string

const (
	// CompoundingPeriodic discounts payment i at (1 + y/frequency)^i.
	CompoundingPeriodic Compounding = "periodic"
	// CompoundingLegacy discounts payment i at (1 + y)^i regardless of frequency.
	CompoundingLegacy Compounding = "legacy"
)

// ParseCompounding maps a config value onto a Compounding. Empty means periodic.
func ParseCompounding(v string) (Compounding, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", string(CompoundingPeriodic):
		return CompoundingPeriodic, nil
	case string(CompoundingLegacy):
		return CompoundingLegacy, nil
	default:
		return "", errs.Invalid("unknown compounding %q (want periodic or legacy)", v)
	}
}

// Spec describes a fixed-coupon bond. It is read-only for the life of a pricing run.
type Spec struct {
	PaymentFrequency int         `mapstructure:"payment_frequency"`
	CouponRate       float64     `mapstructure:"coupon_rate"`
	FaceValue        float64     `mapstructure:"face_value"`
	YearsRemaining   int         `mapstructure:"years_remaining"`
	DirtyPrice       bool        `mapstructure:"dirty_price"`
	Compounding      Compounding `mapstructure:"compounding"`
}

// Validate checks the fields every pricing relies on.
func (s Spec) Validate() error {
	if s.PaymentFrequency <= 0 {
		return errs.Invalid("payment frequency must be greater than zero, got %d", s.PaymentFrequency)
	}
	if s.YearsRemaining <= 0 {
		return errs.Invalid("years remaining must be greater than zero, got %d", s.YearsRemaining)
	}
	if s.FaceValue <= 0 || math.IsInf(s.FaceValue, 0) || math.IsNaN(s.FaceValue) {
		return errs.Invalid("face value must be a positive finite number, got %g", s.FaceValue)
	}
	if s.CouponRate < 0 || math.IsInf(s.CouponRate, 0) || math.IsNaN(s.CouponRate) {
		return errs.Invalid("coupon rate must be a non-negative finite number, got %g", s.CouponRate)
	}
	if _, err := ParseCompounding(string(s.Compounding)); err != nil {
		return err
	}
	return nil
}

// CouponPayment is the cash paid each period.
func (s Spec) CouponPayment() float64 {
	return s.FaceValue * s.CouponRate / float64(s.PaymentFrequency)
}

// TotalPayments is the number of coupon periods left.
func (s Spec) TotalPayments() int {
	return s.YearsRemaining * s.PaymentFrequency
}

// RequiredCurveYears is the number of yearly curve points a pricing reads.
func (s Spec) RequiredCurveYears() int {
	return s.YearsRemaining
}

func (s Spec) String() string {
	return fmt.Sprintf("%.2f face, %.4f coupon, %dx/yr, %dy", s.FaceValue, s.CouponRate, s.PaymentFrequency, s.YearsRemaining)
}
