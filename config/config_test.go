package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rustyeddy/tradebt/strategies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, 1_000_000.0, cfg.Account.Cash)
	assert.Equal(t, 0.00125, cfg.Account.Commission)
	assert.Equal(t, 0.6, cfg.Data.TrainFrac)
	assert.Equal(t, strategies.DefaultParams(), cfg.Params)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"no cash", func(c *Config) { c.Account.Cash = 0 }, "account.cash must be positive"},
		{"commission", func(c *Config) { c.Account.Commission = 1 }, "account.commission must be in [0,1)"},
		{"split", func(c *Config) { c.Data.TrainFrac, c.Data.TestFrac = 0.8, 0.3 }, "data.train_frac"},
		{"stop loss", func(c *Config) { c.Params.StopLoss = 0 }, "params.stop_loss must be in (0,1)"},
		{"ema order", func(c *Config) { c.Params.EMAShortWindow = 500 }, "params: require 0 < ema_short_window"},
		{"rule", func(c *Config) { c.Rule = "bollinger" }, `rule: unknown rule "bollinger"`},
		{"search", func(c *Config) { c.Search.StopLoss.Max = 2 }, "search.stop_loss"},
		{"trials", func(c *Config) { c.Optimize.Trials = 0 }, "optimize.trials must be positive"},
		{"folds", func(c *Config) { c.Optimize.Folds = 0 }, "optimize.folds must be positive"},
		{"journal type", func(c *Config) { c.Journal.Type = "mongo" }, "journal.type must be"},
		{"csv files", func(c *Config) { c.Journal.Type = "csv" }, "journal.trades_file and journal.equity_file required"},
		{"sqlite path", func(c *Config) { c.Journal.DBPath = "" }, "journal.db_path required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"cfg.yaml", "cfg.yml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Data.Path = "data/aapl_5m_train.csv"
			cfg.Params.RSIWindow = 21
			cfg.Optimize.Trials = 250

			path := filepath.Join(dir, name)
			require.NoError(t, cfg.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data:
  path: prices.csv
account:
  cash: 50000
params:
  n_shares: 100
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "prices.csv", cfg.Data.Path)
	assert.Equal(t, 50_000.0, cfg.Account.Cash)
	assert.Equal(t, 0.00125, cfg.Account.Commission)
	assert.Equal(t, 14, cfg.Params.RSIWindow)
	assert.Equal(t, 100.0, cfg.Params.NShares)
	assert.Zero(t, cfg.Params.CashPct, "n_shares replaces the default sizing")
	assert.Equal(t, 0.2, cfg.Data.TestFrac)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("account: [1, 2\n"), 0o644))
	_, err = LoadFromFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("account:\n  cash: -5\n"), 0o644))
	_, err = LoadFromFile(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rule": "ema", "journal": {"type": "none"}}`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ema", cfg.Rule)
	assert.Equal(t, "none", cfg.Journal.Type)
}

func TestEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TRADEBT_DB="+filepath.Join(dir, "env.db")+"\nTRADEBT_LOG_LEVEL=debug\n"), 0o644))

	t.Setenv(EnvDB, "")
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvDB)
	os.Unsetenv(EnvLogLevel)

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))

	cfg := Default()
	cfg.Journal.Type = "none"
	cfg.ApplyEnv()
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.Equal(t, filepath.Join(dir, "env.db"), cfg.Journal.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "nothing-here")))
}

func TestJournalOptions(t *testing.T) {
	j := JournalConfig{Type: "csv", TradesFile: "t.csv", EquityFile: "e.csv", OrgDir: "org"}
	o := j.Options()
	assert.Equal(t, "csv", o.Type)
	assert.Equal(t, "t.csv", o.TradesFile)
	assert.Equal(t, "e.csv", o.EquityFile)
}
