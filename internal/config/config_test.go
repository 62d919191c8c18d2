package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bondmc/internal/bond"
	"bondmc/internal/errs"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  name: test\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.Trials != 10000 || !cfg.Simulation.Parallel || cfg.Simulation.Seed != 539 {
		t.Fatalf("unexpected simulation defaults: %+v", cfg.Simulation)
	}
	if cfg.Simulation.StepsPerYear != 252 || cfg.Process.MeanReversionSpeed != 0.03 {
		t.Fatalf("unexpected process defaults: %+v %+v", cfg.Simulation, cfg.Process)
	}
	if !cfg.Bond.DirtyPrice || cfg.Bond.Compounding != bond.CompoundingPeriodic {
		t.Fatalf("unexpected bond defaults: %+v", cfg.Bond)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	body := `
bond:
  payment_frequency: 4
  coupon_rate: 0.07
  years_remaining: 10
  compounding: legacy
process:
  volatility: 0.2
simulation:
  trials: 500
  parallel: false
database:
  conn_max_lifetime: 5m
`
	path := filepath.Join(t.TempDir(), "bondmc.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Bond.PaymentFrequency != 4 || cfg.Bond.YearsRemaining != 10 || cfg.Bond.Compounding != bond.CompoundingLegacy {
		t.Fatalf("bond overrides not applied: %+v", cfg.Bond)
	}
	if cfg.Process.Volatility != 0.2 || cfg.Simulation.Trials != 500 || cfg.Simulation.Parallel {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Process, cfg.Simulation)
	}
	if cfg.Database.ConnMaxLifetime.Minutes() != 5 {
		t.Fatalf("duration not decoded: %v", cfg.Database.ConnMaxLifetime)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BONDMC_SIMULATION_TRIALS", "42")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Simulation.Trials != 42 {
		t.Fatalf("trials = %d, want 42", cfg.Simulation.Trials)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Bond:       bond.Spec{PaymentFrequency: 2, CouponRate: 0.05, FaceValue: 1000, YearsRemaining: 5},
			Simulation: SimulationConfig{Trials: 10, StepsPerYear: 252},
			Report:     ReportConfig{MaxDataPoints: 100},
		}
	}

	cfg := valid()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg = valid()
	cfg.Bond.YearsRemaining = 0
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero years: expected ErrInvalidInput, got %v", err)
	}

	cfg = valid()
	cfg.Process.Volatility = -1
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("negative volatility: expected ErrInvalidInput, got %v", err)
	}

	cfg = valid()
	cfg.Simulation.Trials = 0
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero trials: expected ErrInvalidInput, got %v", err)
	}

	cfg = valid()
	cfg.Simulation.StepsPerYear = 0
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("zero steps per year: expected ErrInvalidInput, got %v", err)
	}

	cfg = valid()
	cfg.Simulation.Workers = -2
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("negative workers: expected ErrInvalidInput, got %v", err)
	}

	cfg = valid()
	cfg.Report.Telegram.Enabled = true
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("telegram without token: expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateRunIgnoresBondTerms(t *testing.T) {
	cfg := Config{
		Simulation: SimulationConfig{Trials: 10, StepsPerYear: 252},
		Report:     ReportConfig{MaxDataPoints: 100},
	}
	if err := cfg.ValidateRun(); err != nil {
		t.Fatalf("run settings are valid: %v", err)
	}
	if err := cfg.Validate(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("empty bond: expected ErrInvalidInput, got %v", err)
	}

	cfg.Bond.Compounding = "weekly"
	if err := cfg.ValidateRun(); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("bad compounding: expected ErrInvalidInput, got %v", err)
	}
}
