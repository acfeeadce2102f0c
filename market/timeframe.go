package market

import (
	"fmt"
	"regexp"
	"strconv"
)

// Unit is a canonical time granularity, independent of any exchange.
type Unit int

const (
	Minute Unit = iota + 1
	Hour
	Day
	Week
	Month
)

var unitTokens = map[Unit]string{
	Minute: "min",
	Hour:   "H",
	Day:    "D",
	Week:   "W",
	Month:  "M",
}

var unitSeconds = map[Unit]int64{
	Minute: 60,
	Hour:   3600,
	Day:    86400,
	Week:   7 * 86400,
	Month:  30 * 86400,
}

// multiplier ranges per unit, inclusive
var unitRanges = map[Unit][2]int{
	Minute: {1, 59},
	Hour:   {1, 23},
	Day:    {1, 6},
	Week:   {1, 3},
	Month:  {1, 11},
}

// Units lists every canonical unit, finest first.
var Units = []Unit{Minute, Hour, Day, Week, Month}

func (u Unit) String() string {
	if s, ok := unitTokens[u]; ok {
		return s
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// Seconds is the fixed length of one unit. Months count as 30 days.
func (u Unit) Seconds() int64 {
	return unitSeconds[u]
}

// Valid reports whether u is one of the canonical units.
func (u Unit) Valid() bool {
	_, ok := unitTokens[u]
	return ok
}

// ParseUnit maps a unit token (min, H, D, W, M) to its Unit.
func ParseUnit(tok string) (Unit, error) {
	for u, s := range unitTokens {
		if s == tok {
			return u, nil
		}
	}
	return 0, &ConfigError{Input: tok, Reason: "unknown time unit", Err: ErrInvalidTimeframe}
}

// Timeframe is a parsed timeframe such as 15min or 2H.
type Timeframe struct {
	Multiplier int
	Unit       Unit
}

func (tf Timeframe) String() string {
	return strconv.Itoa(tf.Multiplier) + tf.Unit.String()
}

// IsZero reports whether tf is the zero value.
func (tf Timeframe) IsZero() bool {
	return tf.Multiplier == 0 && tf.Unit == 0
}

// Seconds is the nominal length of one tf candle.
func (tf Timeframe) Seconds() int64 {
	return int64(tf.Multiplier) * tf.Unit.Seconds()
}

var timeframeRE = regexp.MustCompile(`^(\d+)(min|H|D|W|M)$`)

// TimeframeGrammar describes the accepted timeframe strings.
const TimeframeGrammar = "a timeframe starts with a number and ends with one of (min, H, D, W, M):\n" +
	"  minute (ex: '1min'), numeric value 1-59, unit 'min'\n" +
	"  hour   (ex: '2H'),   numeric value 1-23, unit 'H'\n" +
	"  day    (ex: '1D'),   numeric value 1-6,  unit 'D'\n" +
	"  week   (ex: '3W'),   numeric value 1-3,  unit 'W'\n" +
	"  month  (ex: '1M'),   numeric value 1-11, unit 'M'"

// ParseTimeframe parses and validates s. The only failure is a
// *ConfigError; an invalid string never yields a Timeframe.
func ParseTimeframe(s string) (Timeframe, error) {
	m := timeframeRE.FindStringSubmatch(s)
	if m == nil {
		return Timeframe{}, &ConfigError{Input: s, Reason: "invalid timeframe format", Err: ErrInvalidTimeframe}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Timeframe{}, &ConfigError{Input: s, Reason: "invalid numeric value", Err: ErrInvalidTimeframe}
	}
	u, err := ParseUnit(m[2])
	if err != nil {
		return Timeframe{}, err
	}

	r := unitRanges[u]
	if n < r[0] || n > r[1] {
		return Timeframe{}, &ConfigError{
			Input:  s,
			Reason: fmt.Sprintf("numeric value %d out of range %d-%d for unit %s", n, r[0], r[1], u),
			Err:    ErrInvalidTimeframe,
		}
	}
	return Timeframe{Multiplier: n, Unit: u}, nil
}

// MustParseTimeframe is like ParseTimeframe but panics on error.
func MustParseTimeframe(s string) Timeframe {
	tf, err := ParseTimeframe(s)
	if err != nil {
		panic(err)
	}
	return tf
}
