package bond

import (
	"math"
	"time"

	"bondmc/internal/errs"
	"bondmc/internal/rates"
)

// daysPerYear is the fixed accrual basis.
const daysPerYear = 365

// Pricer discounts a bond's cash flows against a simulated yield curve.
type Pricer struct {
	clock Clock
}

// NewPricer builds a Pricer. A nil clock falls back to SystemClock.
func NewPricer(clock Clock) *Pricer {
	if clock == nil {
		clock = SystemClock
	}
	return &Pricer{clock: clock}
}

// Price returns the present value of the remaining coupons and redemption,
// plus accrued interest when spec.DirtyPrice is set. Payment i reads the
// yield of year (i-1)/frequency; the redemption uses the last curve point.
func (p *Pricer) Price(curve rates.Curve, spec Spec) (float64, error) {
	if err := spec.Validate(); err != nil {
		return 0, err
	}
	if need := spec.RequiredCurveYears(); len(curve) < need {
		return 0, &errs.CurveLengthError{Have: len(curve), Need: need}
	}

	compounding, _ := ParseCompounding(string(spec.Compounding))
	coupon := spec.CouponPayment()
	total := spec.TotalPayments()

	price := 0.0
	for i := 1; i <= total; i++ {
		yield := curve[(i-1)/spec.PaymentFrequency]
		price += coupon * discountFactor(yield, i, spec.PaymentFrequency, compounding)
	}
	price += spec.FaceValue * discountFactor(curve.Last(), total, spec.PaymentFrequency, compounding)

	if spec.DirtyPrice {
		price += AccruedInterest(spec, DaysSinceLastCoupon(p.clock.Now(), spec.PaymentFrequency))
	}
	return price, nil
}

func discountFactor(yield float64, periods, frequency int, compounding Compounding) float64 {
	rate := yield
	if compounding == CompoundingPeriodic {
		rate = yield / float64(frequency)
	}
	return 1 / math.Pow(1+rate, float64(periods))
}

// AccruedInterest is couponPerPeriod · days / 365.
func AccruedInterest(spec Spec, daysSinceLastCoupon int) float64 {
	return spec.CouponPayment() * float64(daysSinceLastCoupon) / daysPerYear
}

// DaysSinceLastCoupon assumes coupons fall on the first of the month, every
// 12/frequency months, with the last one 12/frequency months before now's
// month. Months before January roll back into the previous year.
func DaysSinceLastCoupon(now time.Time, frequency int) int {
	months := 12 / frequency
	last := time.Date(now.Year(), now.Month()-time.Month(months), 1, 0, 0, 0, 0, now.Location())
	return int(now.Sub(last).Hours() / 24)
}
