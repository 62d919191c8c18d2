package report

import (
	"context"
	"errors"

	"bondmc/internal/bond"
	"bondmc/internal/rates"
	"bondmc/internal/simulation"
)

// Report is everything a reporter needs to describe one pricing run.
type Report struct {
	Label   string
	Bond    bond.Spec
	Process rates.ProcessParams
	Outcome simulation.Outcome
}

// Reporter delivers a finished run somewhere.
type Reporter interface {
	Report(ctx context.Context, r Report) error
}

// Multi fans a report out to several reporters and joins their errors.
type Multi []Reporter

// Report calls every reporter even when an earlier one fails.
func (m Multi) Report(ctx context.Context, r Report) error {
	var errs []error
	for _, rep := range m {
		if rep == nil {
			continue
		}
		if err := rep.Report(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Reporter = Multi(nil)
