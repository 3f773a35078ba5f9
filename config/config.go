// Package config loads the YAML (or JSON) file that drives the tradebt
// commands.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tradebt/backtest"
	"github.com/rustyeddy/tradebt/journal"
	"github.com/rustyeddy/tradebt/metrics"
	"github.com/rustyeddy/tradebt/optimize"
	"github.com/rustyeddy/tradebt/strategies"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvConfig   = "TRADEBT_CONFIG"
	EnvDB       = "TRADEBT_DB"
	EnvLogLevel = "TRADEBT_LOG_LEVEL"
)

// Config is the complete tradebt configuration.
type Config struct {
	Data     DataConfig        `json:"data" yaml:"data"`
	Account  AccountConfig     `json:"account" yaml:"account"`
	Rule     string            `json:"rule" yaml:"rule"` // rsi | ema | macd | vote
	Params   strategies.Params `json:"params" yaml:"params"`
	Search   optimize.Space    `json:"search" yaml:"search"`
	Optimize OptimizeConfig    `json:"optimize" yaml:"optimize"`
	Journal  JournalConfig     `json:"journal" yaml:"journal"`
	LogLevel string            `json:"log_level,omitempty" yaml:"log_level,omitempty"`
}

// DataConfig describes the input bars and how they are split.
type DataConfig struct {
	Path           string  `json:"path" yaml:"path"`
	TrainFrac      float64 `json:"train_frac" yaml:"train_frac"`
	TestFrac       float64 `json:"test_frac" yaml:"test_frac"`
	PeriodsPerYear float64 `json:"periods_per_year" yaml:"periods_per_year"`
}

// AccountConfig contains the simulated account terms.
type AccountConfig struct {
	Cash       float64 `json:"cash" yaml:"cash"`
	Commission float64 `json:"commission" yaml:"commission"`
}

// OptimizeConfig controls the parameter search.
type OptimizeConfig struct {
	Trials      int   `json:"trials" yaml:"trials"`
	Workers     int   `json:"workers" yaml:"workers"` // 0 = GOMAXPROCS
	Seed        int64 `json:"seed" yaml:"seed"`
	WalkForward bool  `json:"walk_forward" yaml:"walk_forward"`
	Folds       int   `json:"folds" yaml:"folds"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // sqlite | csv | none
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	OrgDir     string `json:"org_dir,omitempty" yaml:"org_dir,omitempty"`
}

func (j JournalConfig) Options() journal.Options {
	return journal.Options{
		Type:       j.Type,
		DBPath:     j.DBPath,
		TradesFile: j.TradesFile,
		EquityFile: j.EquityFile,
	}
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			TrainFrac:      0.6,
			TestFrac:       0.2,
			PeriodsPerYear: metrics.HourlyPeriods,
		},
		Account: AccountConfig{
			Cash:       1_000_000,
			Commission: backtest.DefaultCommission,
		},
		Rule:   "vote",
		Params: strategies.DefaultParams(),
		Search: optimize.DefaultSpace(),
		Optimize: OptimizeConfig{
			Trials:      100,
			Seed:        1,
			WalkForward: true,
			Folds:       5,
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./tradebt.db",
		},
	}
}

// LoadFromFile reads path over the defaults: keys missing from the file keep
// their default values. YAML is tried first, then JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	var probe sizingProbe
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", errors.Join(err, jerr))
		}
		_ = json.Unmarshal(data, &probe)
	} else {
		_ = yaml.Unmarshal(data, &probe)
	}
	probe.apply(&cfg.Params)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// sizingProbe records which sizing key the file itself set, so a file
// choosing n_shares does not inherit the default available_cash_pct.
type sizingProbe struct {
	Params map[string]any `json:"params" yaml:"params"`
}

func (p sizingProbe) apply(params *strategies.Params) {
	_, shares := p.Params[strategies.KeyNShares]
	_, cash := p.Params[strategies.KeyCashPct]
	if shares && !cash {
		params.CashPct = 0
	}
}

// SaveToFile writes YAML for .yaml/.yml paths and indented JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate reports every invalid setting, keyed by its dotted path.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Data.TrainFrac <= 0 || c.Data.TestFrac < 0 || c.Data.TrainFrac+c.Data.TestFrac > 1 {
		add("data.train_frac and data.test_frac must satisfy 0 < train, 0 <= test, train+test <= 1 (got %v/%v)",
			c.Data.TrainFrac, c.Data.TestFrac)
	}
	if c.Data.PeriodsPerYear < 0 {
		add("data.periods_per_year must not be negative")
	}

	if c.Account.Cash <= 0 {
		add("account.cash must be positive")
	}
	if c.Account.Commission < 0 || c.Account.Commission >= 1 {
		add("account.commission must be in [0,1)")
	}

	if _, err := strategies.RuleByName(c.Rule, c.Params); err != nil {
		add("rule: %v", err)
	}
	if err := c.Params.Validate(); err != nil {
		for _, e := range unjoin(err) {
			msg := e.Error()
			if key, _, _ := strings.Cut(msg, " "); slices.Contains(strategies.Keys(), key) {
				add("params.%s", msg)
			} else {
				add("params: %s", msg)
			}
		}
	}
	if err := c.Search.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Optimize.Trials < 1 {
		add("optimize.trials must be positive")
	}
	if c.Optimize.Workers < 0 {
		add("optimize.workers must not be negative")
	}
	if c.Optimize.WalkForward && c.Optimize.Folds < 1 {
		add("optimize.folds must be positive when walk_forward is set")
	}

	switch c.Journal.Type {
	case "sqlite":
		if c.Journal.DBPath == "" {
			add("journal.db_path required for sqlite type")
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			add("journal.trades_file and journal.equity_file required for csv type")
		}
	case "none":
	default:
		add("journal.type must be 'sqlite', 'csv' or 'none'")
	}

	return errors.Join(errs...)
}

// unjoin splits an errors.Join result back into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// LoadDotEnv loads KEY=value pairs from the given files (".env" when none
// are named) into the process environment. Missing files are ignored and
// variables already set are left alone.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvDB); v != "" {
		c.Journal.Type = "sqlite"
		c.Journal.DBPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}
