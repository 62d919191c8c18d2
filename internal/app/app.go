package app

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"bondmc/internal/bond"
	"bondmc/internal/config"
	"bondmc/internal/rates"
	"bondmc/internal/report"
	"bondmc/internal/simulation"
	"bondmc/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
	// Clock drives the dirty price day count. Nil means the system clock.
	Clock bond.Clock
}

// NewApp constructs a new application handle. Reports go to out, which
// defaults to stdout.
func NewApp(cfg *config.Config, logger zerolog.Logger, out io.Writer) *App {
	if out == nil {
		out = os.Stdout
	}
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: out}
}

func (a *App) newReporter() report.Reporter {
	reporters := report.Multi{report.NewConsole(a.Out)}
	if a.Config.Report.Telegram.Enabled {
		cfg := a.Config.Report.Telegram
		reporters = append(reporters, report.NewTelegram(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger))
	}
	return reporters
}

func (a *App) newEngine() *simulation.Engine {
	clock := a.Clock
	if clock == nil {
		clock = bond.SystemClock
	}
	return simulation.NewEngine(bond.NewPricer(clock), a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// PriceOptions override the configured inputs of one pricing run.
type PriceOptions struct {
	BondCode   string
	Bond       bond.Spec
	Process    rates.ProcessParams
	Simulation config.SimulationConfig
	CSVPath    string
	PNGPath    string
	MaxPoints  int
}

// CurveOptions configure the curve command.
type CurveOptions struct {
	Years   int
	Seed    uint64
	Trial   int
	Process rates.ProcessParams
	// StepsPerYear falls back to the simulation config when zero.
	StepsPerYear int
}

// ListOptions configure the bonds list command.
type ListOptions struct {
	Limit int
}
