package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tfgen/market"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, "BTCUSDT", cfg.Session.Symbol)
	assert.Equal(t, "Wallex", cfg.Session.Exchange)
	assert.Equal(t, "15min", cfg.Session.Timeframe)
	assert.Equal(t, 1000, cfg.Session.Candles)
	assert.Equal(t, "data", cfg.Store.Dir)
	assert.Equal(t, "none", cfg.Store.Compress)
	assert.Equal(t, "@every 1m", cfg.Schedule.Cron)
	assert.NoError(t, cfg.Validate())

	d, err := cfg.Fetch.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing symbol", func(c *Config) { c.Session.Symbol = "" }, "session.symbol is required"},
		{"zero candles", func(c *Config) { c.Session.Candles = 0 }, "session.candles must be greater than 0"},
		{"bad compression", func(c *Config) { c.Store.Compress = "zip" }, "store.compress must be one of: none, xz"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level must be one of"},
		{"bad timeframe", func(c *Config) { c.Session.Timeframe = "60min" }, "session.timeframe"},
		{"bad extra timeframe", func(c *Config) { c.Session.ExtraTimeframes = []string{"1H", "5X"} }, "session.extra_timeframes"},
		{"unknown exchange", func(c *Config) { c.Session.Exchange = "Kraken" }, "session.exchange"},
		{"bad timeout", func(c *Config) { c.Fetch.Timeout = "soon" }, "fetch.timeout"},
		{"bad cron", func(c *Config) { c.Schedule.Cron = "every minute" }, "schedule.cron"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.ErrorIs(t, err, market.ErrConfig)
		})
	}
}

func TestLoadFromFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tfgen.yaml")
	body := `
session:
  symbol: BTC-USDT
  exchange: bingx
  timeframe: 4H
  extra_timeframes: [1D]
store:
  compress: xz
fetch:
  base_urls:
    bingx: http://localhost:9999
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT", cfg.Session.Symbol)
	assert.Equal(t, "4H", cfg.Session.Timeframe)
	assert.Equal(t, []string{"1D"}, cfg.Session.ExtraTimeframes)
	assert.Equal(t, "xz", cfg.Store.Compress)
	assert.Equal(t, "http://localhost:9999", cfg.Fetch.BaseURLs["bingx"])

	// unset fields pick up defaults
	assert.Equal(t, 1000, cfg.Session.Candles)
	assert.Equal(t, "data", cfg.Store.Dir)
	assert.Equal(t, "30s", cfg.Fetch.Timeout)
}

func TestLoadFromFile_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tfgen.json")
	body := `{"session": {"symbol": "ETHUSDT", "exchange": "Binance", "timeframe": "1H", "candles": 48}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Binance", cfg.Session.Exchange)
	assert.Equal(t, 48, cfg.Session.Candles)
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("session: [unterminated"), 0o644))
	_, err = LoadFromFile(bad)
	assert.ErrorContains(t, err, "parse config")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("session:\n  timeframe: 7D\n"), 0o644))
	_, err = LoadFromFile(invalid)
	assert.ErrorContains(t, err, "invalid config")
	assert.ErrorIs(t, err, market.ErrInvalidTimeframe)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"tfgen.yaml", "tfgen.json"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			cfg.Session.Symbol = "SOLUSDT"
			cfg.Journal.DBPath = "runs.db"

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, cfg.SaveToFile(path))

			got, err := LoadFromFile(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvSymbol, "XRPUSDT")
	t.Setenv(EnvExchange, "Nobitex")
	t.Setenv(EnvTimeframe, "")
	t.Setenv(EnvDataDir, "/tmp/tfgen")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "XRPUSDT", cfg.Session.Symbol)
	assert.Equal(t, "Nobitex", cfg.Session.Exchange)
	assert.Equal(t, "15min", cfg.Session.Timeframe)
	assert.Equal(t, "/tmp/tfgen", cfg.Store.Dir)
}
