// Package exchange holds the static per-exchange tables: how raw timeframe
// units map onto canonical units, the native interval tokens, how a raw
// response is laid out, and how a history request is addressed. Adding an
// exchange means adding a Profile, not a code branch.
package exchange

import (
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/rustyeddy/tfgen/market"
)

// ErrUnsupportedExchange is returned by Lookup for unknown exchanges.
var ErrUnsupportedExchange = fmt.Errorf("%w: unsupported exchange", market.ErrConfig)

// maxCandles caps the retained series length per canonical unit,
// whatever the caller asked for.
var maxCandles = map[market.Unit]int{
	market.Minute: 50000,
	market.Hour:   15000,
	market.Day:    5000,
	market.Week:   1000,
	market.Month:  250,
}

// MaxCandles is the hard cap on cached candles for unit.
func MaxCandles(u market.Unit) int {
	return maxCandles[u]
}

// Profile describes one exchange.
type Profile struct {
	Name string

	// Units maps the unit of a requested timeframe onto the unit of the
	// base candles actually fetched and cached.
	Units map[market.Unit]market.Unit

	// Coefficients is how many base candles one raw unit spans.
	Coefficients map[market.Unit]int

	// Intervals is the exchange's interval token for one base candle.
	Intervals map[market.Unit]string

	Rule     Rule
	Endpoint Endpoint
}

// Unit resolves the canonical (cached) unit for tf.
func (p *Profile) Unit(tf market.Timeframe) market.Unit {
	if u, ok := p.Units[tf.Unit]; ok {
		return u
	}
	return tf.Unit
}

// Coefficient converts one tf candle into base candles.
func (p *Profile) Coefficient(tf market.Timeframe) int {
	c, ok := p.Coefficients[tf.Unit]
	if !ok {
		c = 1
	}
	return tf.Multiplier * c
}

// Interval is the native interval token used to fetch base candles for tf.
func (p *Profile) Interval(tf market.Timeframe) string {
	return p.Intervals[tf.Unit]
}

// Same shape, different tokens; W and M are built from day candles.
var dayFolded = map[market.Unit]market.Unit{
	market.Minute: market.Minute,
	market.Hour:   market.Hour,
	market.Day:    market.Day,
	market.Week:   market.Day,
	market.Month:  market.Day,
}

var dayFoldedCoefficients = map[market.Unit]int{
	market.Minute: 1,
	market.Hour:   1,
	market.Day:    1,
	market.Week:   7,
	market.Month:  31,
}

var native = map[market.Unit]market.Unit{
	market.Minute: market.Minute,
	market.Hour:   market.Hour,
	market.Day:    market.Day,
	market.Week:   market.Week,
	market.Month:  market.Month,
}

var nativeCoefficients = map[market.Unit]int{
	market.Minute: 1,
	market.Hour:   1,
	market.Day:    1,
	market.Week:   1,
	market.Month:  1,
}

var klineIntervals = map[market.Unit]string{
	market.Minute: "1m",
	market.Hour:   "1h",
	market.Day:    "1d",
	market.Week:   "1w",
	market.Month:  "1M",
}

var udfIntervals = map[market.Unit]string{
	market.Minute: "1",
	market.Hour:   "60",
	market.Day:    "1D",
	market.Week:   "1D",
	market.Month:  "1D",
}

var profiles = map[string]*Profile{
	"wallex": {
		Name:         "Wallex",
		Units:        dayFolded,
		Coefficients: dayFoldedCoefficients,
		Intervals:    udfIntervals,
		Rule:         udfRule,
		Endpoint: Endpoint{
			BaseURL:       "https://api.wallex.ir",
			Path:          "/v1/udf/history",
			SymbolParam:   "symbol",
			IntervalParam: "resolution",
			StartParam:    "from",
			EndParam:      "to",
		},
	},
	"nobitex": {
		Name:         "Nobitex",
		Units:        dayFolded,
		Coefficients: dayFoldedCoefficients,
		Intervals:    udfIntervals,
		Rule:         udfRule,
		Endpoint: Endpoint{
			BaseURL:       "https://api.nobitex.ir",
			Path:          "/market/udf/history",
			SymbolParam:   "symbol",
			IntervalParam: "resolution",
			StartParam:    "from",
			EndParam:      "to",
		},
	},
	"binance": {
		Name:         "Binance",
		Units:        native,
		Coefficients: nativeCoefficients,
		Intervals:    klineIntervals,
		Rule: Rule{
			Layout:    LayoutRows,
			Positions: [6]int{0, 1, 2, 3, 4, 5},
			Millis:    true,
		},
		Endpoint: Endpoint{
			BaseURL:       "https://api.binance.com",
			Path:          "/api/v3/uiKlines",
			SymbolParam:   "symbol",
			IntervalParam: "interval",
			StartParam:    "startTime",
			EndParam:      "endTime",
			Millis:        true,
			Limit:         1000,
			LimitParam:    "limit",
		},
	},
	"bingx": {
		Name:         "BingX",
		Units:        native,
		Coefficients: nativeCoefficients,
		Intervals:    klineIntervals,
		Rule: Rule{
			Layout:   LayoutRecords,
			Envelope: "data",
			Status:   "code",
			StatusOK: "0",
			Fields:   [6]string{"time", "open", "high", "low", "close", "volume"},
			Millis:   true,
		},
		Endpoint: Endpoint{
			BaseURL:       "https://open-api.bingx.com",
			Path:          "/openApi/swap/v3/quote/klines",
			SymbolParam:   "symbol",
			IntervalParam: "interval",
			StartParam:    "startTime",
			EndParam:      "endTime",
			Millis:        true,
			Limit:         1440,
			LimitParam:    "limit",
		},
	},
	"coinbase": {
		Name:         "Coinbase",
		Units:        dayFolded,
		Coefficients: dayFoldedCoefficients,
		Intervals: map[market.Unit]string{
			market.Minute: "60",
			market.Hour:   "3600",
			market.Day:    "86400",
			market.Week:   "86400",
			market.Month:  "86400",
		},
		// [time, low, high, open, close, volume]
		Rule: Rule{
			Layout:    LayoutRows,
			Positions: [6]int{0, 3, 2, 1, 4, 5},
		},
		Endpoint: Endpoint{
			BaseURL:       "https://api.exchange.coinbase.com",
			Path:          "/products/{symbol}/candles",
			IntervalParam: "granularity",
			StartParam:    "start",
			EndParam:      "end",
			Limit:         300,
		},
	},
}

var udfRule = Rule{
	Layout:   LayoutColumnar,
	Fields:   [6]string{"t", "o", "h", "l", "c", "v"},
	Status:   "s",
	StatusOK: "ok",
}

// Lookup returns a copy of the profile for an exchange name, matched
// case insensitively. Changing the copy does not affect other callers.
func Lookup(name string) (*Profile, error) {
	p, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &market.ConfigError{
			Input:  name,
			Reason: "unsupported exchange (use one of " + strings.Join(Names(), ", ") + ")",
			Err:    ErrUnsupportedExchange,
		}
	}
	return p.clone(), nil
}

func (p *Profile) clone() *Profile {
	c := *p
	c.Units = maps.Clone(p.Units)
	c.Coefficients = maps.Clone(p.Coefficients)
	c.Intervals = maps.Clone(p.Intervals)
	c.Endpoint.Extra = maps.Clone(p.Endpoint.Extra)
	return &c
}

// Names lists the supported exchanges.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Name)
	}
	sort.Strings(out)
	return out
}
