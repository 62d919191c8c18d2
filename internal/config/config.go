package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"bondmc/internal/bond"
	"bondmc/internal/errs"
	"bondmc/internal/logging"
	"bondmc/internal/rates"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig           `mapstructure:"app"`
	Logging    logging.Config      `mapstructure:"logging"`
	Bond       bond.Spec           `mapstructure:"bond"`
	Process    rates.ProcessParams `mapstructure:"process"`
	Simulation SimulationConfig    `mapstructure:"simulation"`
	Database   DatabaseConfig      `mapstructure:"database"`
	Report     ReportConfig        `mapstructure:"report"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// SimulationConfig controls the Monte Carlo run.
type SimulationConfig struct {
	Trials       int    `mapstructure:"trials"`
	Parallel     bool   `mapstructure:"parallel"`
	Workers      int    `mapstructure:"workers"`
	Seed         uint64 `mapstructure:"seed"`
	StepsPerYear int    `mapstructure:"steps_per_year"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the bond catalog.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ReportConfig sets how outcomes are rendered and delivered.
type ReportConfig struct {
	MaxDataPoints int            `mapstructure:"max_data_points"`
	Telegram      TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram reporter.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BONDMC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bondmc")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.service", "bondmc")

	v.SetDefault("bond.payment_frequency", 2)
	v.SetDefault("bond.coupon_rate", 0.05)
	v.SetDefault("bond.face_value", 1000.0)
	v.SetDefault("bond.years_remaining", 5)
	v.SetDefault("bond.dirty_price", true)
	v.SetDefault("bond.compounding", string(bond.CompoundingPeriodic))

	v.SetDefault("process.mean_reversion_speed", 0.03)
	v.SetDefault("process.long_term_mean", 0.03)
	v.SetDefault("process.volatility", 0.01)
	v.SetDefault("process.initial_rate", 0.03)

	v.SetDefault("simulation.trials", 10000)
	v.SetDefault("simulation.parallel", true)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 539)
	v.SetDefault("simulation.steps_per_year", 252)

	v.SetDefault("database.max_open_conns", 4)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("report.max_data_points", 2000)
	v.SetDefault("report.telegram.enabled", false)
	v.SetDefault("report.telegram.api_base", "https://api.telegram.org")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if err := c.Bond.Validate(); err != nil {
		return fmt.Errorf("bond: %w", err)
	}
	return c.ValidateRun()
}

// ValidateRun checks everything except the bond terms, which may come from
// the catalog instead. The compounding choice is still checked.
func (c *Config) ValidateRun() error {
	if _, err := bond.ParseCompounding(string(c.Bond.Compounding)); err != nil {
		return fmt.Errorf("bond: %w", err)
	}
	if err := c.Process.Validate(); err != nil {
		return fmt.Errorf("process: %w", err)
	}
	if c.Simulation.Trials <= 0 {
		return errs.Invalid("simulation.trials must be greater than zero, got %d", c.Simulation.Trials)
	}
	if c.Simulation.StepsPerYear <= 0 {
		return errs.Invalid("simulation.steps_per_year must be greater than zero, got %d", c.Simulation.StepsPerYear)
	}
	if c.Simulation.Workers < 0 {
		return errs.Invalid("simulation.workers cannot be negative, got %d", c.Simulation.Workers)
	}
	if c.Report.MaxDataPoints <= 1 {
		return errs.Invalid("report.max_data_points must be greater than one, got %d", c.Report.MaxDataPoints)
	}
	if c.Report.Telegram.Enabled {
		if c.Report.Telegram.BotToken == "" {
			return errs.Invalid("report.telegram.bot_token must be set")
		}
		if c.Report.Telegram.ChatID == "" {
			return errs.Invalid("report.telegram.chat_id must be set")
		}
	}
	return nil
}
