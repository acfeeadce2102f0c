package market

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks fatal configuration problems.
	ErrConfig = errors.New("configuration error")
	// ErrInvalidTimeframe is returned for malformed or out of range timeframes.
	ErrInvalidTimeframe = fmt.Errorf("%w: invalid timeframe", ErrConfig)
	// ErrIncompatibleTimeframe is returned when a series cannot be resampled
	// to the requested timeframe.
	ErrIncompatibleTimeframe = errors.New("incompatible timeframe")
)

// ConfigError is a user facing configuration failure. Sessions abort on it.
type ConfigError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Reason, e.Input)
	if errors.Is(e.Err, ErrInvalidTimeframe) {
		msg += "\n" + TimeframeGrammar
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	if e.Err == nil {
		return ErrConfig
	}
	return e.Err
}

// IncompatibleError explains why a resample was refused.
type IncompatibleError struct {
	Have   Unit
	Want   Unit
	Reason string
}

func (e *IncompatibleError) Error() string {
	if e.Reason != "" {
		return "incompatible timeframe: " + e.Reason
	}
	return fmt.Sprintf("incompatible timeframe: series unit %s, target unit %s", e.Have, e.Want)
}

func (e *IncompatibleError) Unwrap() error { return ErrIncompatibleTimeframe }
