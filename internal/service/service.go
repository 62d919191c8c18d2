package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bondmc/internal/bond"
	"bondmc/internal/rates"
	"bondmc/internal/report"
	"bondmc/internal/simulation"
	"bondmc/internal/storage"
)

// Request describes one pricing run.
type Request struct {
	// BondCode selects a catalogued bond. When empty, Bond is priced as given.
	BondCode string
	Bond     bond.Spec
	Process  rates.ProcessParams
	Options  simulation.Options

	CSVPath   string
	PNGPath   string
	MaxPoints int
}

// Service orchestrates parameter lookup, simulation, and reporting.
type Service struct {
	engine   *simulation.Engine
	catalog  storage.BondCatalog
	reporter report.Reporter
	logger   zerolog.Logger
}

// New constructs the pricing service. catalog and reporter may be nil.
func New(engine *simulation.Engine, catalog storage.BondCatalog, reporter report.Reporter, logger zerolog.Logger) *Service {
	return &Service{
		engine:   engine,
		catalog:  catalog,
		reporter: reporter,
		logger:   logger.With().Str("component", "service").Logger(),
	}
}

// Price resolves the bond, runs the simulation, writes any requested
// exports, and hands the outcome to the reporter. Reporter failures are
// logged; they do not fail the run.
func (s *Service) Price(ctx context.Context, req Request) (simulation.Outcome, error) {
	spec, label, err := s.resolveBond(ctx, req)
	if err != nil {
		return simulation.Outcome{}, err
	}

	opts := req.Options
	opts.RecordTrials = opts.RecordTrials || req.CSVPath != "" || req.PNGPath != ""

	out, err := s.engine.Run(ctx, spec, req.Process, opts)
	if err != nil {
		return simulation.Outcome{}, fmt.Errorf("simulate %s: %w", label, err)
	}

	if req.CSVPath != "" {
		if err := report.WriteTrialsCSV(req.CSVPath, out.Prices); err != nil {
			return out, fmt.Errorf("write csv: %w", err)
		}
		s.logger.Info().Str("path", req.CSVPath).Int("rows", len(out.Prices)).Msg("trial prices exported")
	}
	if req.PNGPath != "" {
		if err := report.WriteTrialsPNG(req.PNGPath, out.Prices, req.MaxPoints); err != nil {
			return out, fmt.Errorf("write png: %w", err)
		}
		s.logger.Info().Str("path", req.PNGPath).Msg("convergence chart exported")
	}

	if s.reporter != nil {
		rep := report.Report{Label: label, Bond: spec, Process: req.Process, Outcome: out}
		if err := s.reporter.Report(ctx, rep); err != nil {
			s.logger.Error().Err(err).Str("run_id", out.RunID).Msg("failed to deliver report")
		}
	}
	return out, nil
}

func (s *Service) resolveBond(ctx context.Context, req Request) (bond.Spec, string, error) {
	if req.BondCode == "" {
		return req.Bond, "ad hoc", nil
	}
	if s.catalog == nil {
		return bond.Spec{}, "", errors.New("database not configured; cannot look up --bond")
	}

	rec, err := s.catalog.GetBond(ctx, req.BondCode)
	if err != nil {
		return bond.Spec{}, "", err
	}
	s.logger.Debug().Str("code", rec.Code).Msg("bond loaded from catalog")
	return rec.Spec(req.Bond.DirtyPrice, req.Bond.Compounding), rec.Code, nil
}
