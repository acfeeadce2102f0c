package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tfgen/config"
	"github.com/rustyeddy/tfgen/market"
)

var rootCmd = &cobra.Command{
	Use:   "tfgen",
	Short: "Incremental OHLCV candle cache and timeframe generator",
	Long: `tfgen keeps a local cache of fine grained candles for one symbol on one
exchange, brings it up to date incrementally and derives coarser
timeframes from it.

Supported exchanges: Wallex, Nobitex, Binance, BingX, Coinbase.

Timeframes are a number followed by a unit:
  min (1-59), H (1-23), D (1-6), W (1-3), M (1-11)

Examples:
  tfgen sync --exchange wallex --symbol BTCUSDT --timeframe 15min
  tfgen resample --to 4H
  tfgen watch --config tfgen.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// IsConfigError reports whether err came from bad configuration rather
// than a failed run.
func IsConfigError(err error) bool {
	return errors.Is(err, market.ErrConfig)
}

type globalFlags struct {
	configPath string
	symbol     string
	exchange   string
	timeframe  string
	candles    int
	dataDir    string
	logLevel   string
}

var flags globalFlags

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (YAML or JSON)")
	pf.StringVarP(&flags.symbol, "symbol", "s", "", "market symbol, e.g. BTCUSDT")
	pf.StringVarP(&flags.exchange, "exchange", "e", "", "exchange name")
	pf.StringVarP(&flags.timeframe, "timeframe", "t", "", "session timeframe, e.g. 15min")
	pf.IntVarP(&flags.candles, "candles", "n", 0, "number of timeframe candles to keep")
	pf.StringVar(&flags.dataDir, "data-dir", "", "cache directory")
	pf.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
}

// loadConfig reads the config file (or defaults), then environment
// overrides, then flags the user set, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(flags.configPath); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	changed := cmd.Flags().Changed
	if changed("symbol") {
		cfg.Session.Symbol = flags.symbol
	}
	if changed("exchange") {
		cfg.Session.Exchange = flags.exchange
	}
	if changed("timeframe") {
		cfg.Session.Timeframe = flags.timeframe
	}
	if changed("candles") {
		cfg.Session.Candles = flags.candles
	}
	if changed("data-dir") {
		cfg.Store.Dir = flags.dataDir
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
