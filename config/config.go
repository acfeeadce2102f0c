// Package config loads and validates the tfgen configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/tfgen/exchange"
	"github.com/rustyeddy/tfgen/logger"
	"github.com/rustyeddy/tfgen/market"
)

// Config is the complete tfgen configuration.
type Config struct {
	Session  SessionConfig  `json:"session" yaml:"session"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Metrics  MetricsConfig  `json:"metrics" yaml:"metrics"`
}

// SessionConfig names the series to maintain.
type SessionConfig struct {
	Symbol    string `json:"symbol" yaml:"symbol" default:"BTCUSDT" validate:"required"`
	Exchange  string `json:"exchange" yaml:"exchange" default:"Wallex" validate:"required"`
	Timeframe string `json:"timeframe" yaml:"timeframe" default:"15min" validate:"required"`
	Candles   int    `json:"candles" yaml:"candles" default:"1000" validate:"gt=0"`

	// Extra timeframes resampled and saved on every cycle.
	ExtraTimeframes []string `json:"extra_timeframes,omitempty" yaml:"extra_timeframes,omitempty"`
}

// StoreConfig locates the CSV cache.
type StoreConfig struct {
	Dir      string `json:"dir" yaml:"dir" default:"data" validate:"required"`
	Compress string `json:"compress" yaml:"compress" default:"none" validate:"oneof=none xz"`
}

// JournalConfig enables the sync journal. An empty DBPath disables it.
type JournalConfig struct {
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `json:"output" yaml:"output" default:"stderr"`
}

type FetchConfig struct {
	Timeout string `json:"timeout" yaml:"timeout" default:"30s"` // e.g. "30s", "1m"

	// BaseURLs overrides exchange API hosts, keyed by exchange name.
	BaseURLs map[string]string `json:"base_urls,omitempty" yaml:"base_urls,omitempty"`
}

// ScheduleConfig drives the watch command.
type ScheduleConfig struct {
	Cron string `json:"cron" yaml:"cron" default:"@every 1m"`
}

// MetricsConfig enables the Prometheus textfile. Empty disables it.
type MetricsConfig struct {
	Textfile string `json:"textfile,omitempty" yaml:"textfile,omitempty"`
}

// TimeoutDuration parses Fetch.Timeout.
func (f FetchConfig) TimeoutDuration() (time.Duration, error) {
	if f.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(f.Timeout)
}

// Logger converts the log section for logger.New.
func (l LogConfig) Logger() logger.Config {
	return logger.Config{Level: l.Level, Format: l.Format, Output: l.Output}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their yaml names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	defaults.MustSet(cfg)
	return cfg
}

// LoadFromFile reads a YAML or JSON file, fills unset fields with
// defaults and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = &Config{}
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile writes YAML for .yaml/.yml paths and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

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

// Environment overrides read by ApplyEnv.
const (
	EnvSymbol    = "TFGEN_SYMBOL"
	EnvExchange  = "TFGEN_EXCHANGE"
	EnvTimeframe = "TFGEN_TIMEFRAME"
	EnvDataDir   = "TFGEN_DATA_DIR"
)

// ApplyEnv overrides fields from the environment when the variables are
// set and non-empty.
func (c *Config) ApplyEnv() {
	for env, dst := range map[string]*string{
		EnvSymbol:    &c.Session.Symbol,
		EnvExchange:  &c.Session.Exchange,
		EnvTimeframe: &c.Session.Timeframe,
		EnvDataDir:   &c.Store.Dir,
	} {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

// Validate checks struct constraints, then the values that need domain
// knowledge: timeframes, the exchange name, the timeout and the cron
// schedule. Every error wraps market.ErrConfig.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", market.ErrConfig, fieldMessage(verrs[0]))
		}
		return fmt.Errorf("%w: %v", market.ErrConfig, err)
	}

	if _, err := market.ParseTimeframe(c.Session.Timeframe); err != nil {
		return fmt.Errorf("session.timeframe: %w", err)
	}
	for _, tf := range c.Session.ExtraTimeframes {
		if _, err := market.ParseTimeframe(tf); err != nil {
			return fmt.Errorf("session.extra_timeframes: %w", err)
		}
	}
	if _, err := exchange.Lookup(c.Session.Exchange); err != nil {
		return fmt.Errorf("session.exchange: %w", err)
	}

	d, err := c.Fetch.TimeoutDuration()
	if err != nil || d < 0 {
		return fmt.Errorf("%w: fetch.timeout %q is not a valid duration", market.ErrConfig, c.Fetch.Timeout)
	}

	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("%w: schedule.cron: %v", market.ErrConfig, err)
		}
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	// Namespace is Config.section.field; drop the root type.
	_, field, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
