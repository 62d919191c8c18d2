package rates

import (
	"gonum.org/v1/gonum/stat"

	"bondmc/internal/errs"
)

// Curve holds one annualised yield per year.
type Curve []float64

// Last returns the final yearly point. The curve must not be empty.
func (c Curve) Last() float64 {
	return c[len(c)-1]
}

// BuildCurve averages consecutive blocks of stepsPerYear path entries into
// yearly yields. A trailing partial block is dropped.
func BuildCurve(path Path, stepsPerYear int) (Curve, error) {
	if stepsPerYear <= 0 {
		return nil, errs.Invalid("steps per year must be greater than zero, got %d", stepsPerYear)
	}

	years := len(path) / stepsPerYear
	curve := make(Curve, years)
	for year := range curve {
		curve[year] = stat.Mean(path[year*stepsPerYear:(year+1)*stepsPerYear], nil)
	}
	return curve, nil
}
