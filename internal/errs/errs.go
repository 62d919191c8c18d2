package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a parameter that fails validation before any simulation work starts.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientCurveLength marks a yield curve shorter than the payment horizon.
	ErrInsufficientCurveLength = errors.New("insufficient yield curve length")
	// ErrRandomSource marks an unavailable entropy source.
	ErrRandomSource = errors.New("random source unavailable")
)

// Invalid wraps ErrInvalidInput with a field-specific message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// CurveLengthError reports how many annual points a pricing needed and how many it got.
type CurveLengthError struct {
	Have int
	Need int
}

func (e *CurveLengthError) Error() string {
	return fmt.Sprintf("%s: curve has %d yearly points, payments need %d", ErrInsufficientCurveLength, e.Have, e.Need)
}

// Unwrap lets errors.Is match ErrInsufficientCurveLength.
func (e *CurveLengthError) Unwrap() error {
	return ErrInsufficientCurveLength
}
