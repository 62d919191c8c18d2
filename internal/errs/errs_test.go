package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestInvalidWrapsSentinel(t *testing.T) {
	err := Invalid("trials must be greater than zero, got %d", 0)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "trials") {
		t.Fatalf("message should name the field: %q", err.Error())
	}
}

func TestCurveLengthErrorUnwraps(t *testing.T) {
	var err error = &CurveLengthError{Have: 2, Need: 5}
	if !errors.Is(err, ErrInsufficientCurveLength) {
		t.Fatalf("expected ErrInsufficientCurveLength, got %v", err)
	}

	var cle *CurveLengthError
	if !errors.As(err, &cle) || cle.Need != 5 {
		t.Fatalf("errors.As should recover the lengths: %#v", cle)
	}
}
