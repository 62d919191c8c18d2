package rates

import (
	"errors"
	"math"
	"testing"

	"bondmc/internal/errs"
)

func TestBuildCurveTwoYears(t *testing.T) {
	path := make(Path, 504)
	for i := range path {
		path[i] = float64(i)
	}

	curve, err := BuildCurve(path, 252)
	if err != nil {
		t.Fatalf("build curve: %v", err)
	}
	if len(curve) != 2 {
		t.Fatalf("len = %d, want 2", len(curve))
	}
	// Mean of 0..251 and 252..503.
	if curve[0] != 125.5 || curve[1] != 377.5 {
		t.Fatalf("curve = %v, want [125.5 377.5]", curve)
	}
	if curve.Last() != 377.5 {
		t.Fatalf("last = %g", curve.Last())
	}
}

func TestBuildCurveDropsPartialYear(t *testing.T) {
	path := Path{0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07}
	curve, err := BuildCurve(path, 3)
	if err != nil {
		t.Fatalf("build curve: %v", err)
	}
	if len(curve) != 2 {
		t.Fatalf("len = %d, want 2", len(curve))
	}
	if math.Abs(curve[0]-0.02) > 1e-15 || math.Abs(curve[1]-0.05) > 1e-15 {
		t.Fatalf("curve = %v", curve)
	}
}

func TestBuildCurveShortPath(t *testing.T) {
	curve, err := BuildCurve(Path{0.01, 0.02}, 252)
	if err != nil {
		t.Fatalf("build curve: %v", err)
	}
	if len(curve) != 0 {
		t.Fatalf("path shorter than a year should give an empty curve, got %v", curve)
	}
}

func TestBuildCurveRejectsNonPositiveStepsPerYear(t *testing.T) {
	for _, n := range []int{0, -252} {
		if _, err := BuildCurve(Path{0.01}, n); !errors.Is(err, errs.ErrInvalidInput) {
			t.Fatalf("stepsPerYear=%d: expected ErrInvalidInput, got %v", n, err)
		}
	}
}
