package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle represents OHLCV candlestick data for one interval. Timestamp is
// the candle open in unix seconds (UTC).
type Candle struct {
	Timestamp int64
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// Time returns the candle open as a UTC time.
func (c Candle) Time() time.Time {
	return time.Unix(c.Timestamp, 0).UTC()
}

// Series is an ordered run of candles for one symbol, exchange and
// timeframe. Timestamps are strictly increasing.
type Series []Candle

func (s Series) Len() int { return len(s) }

// First returns the oldest candle. ok is false for an empty series.
func (s Series) First() (c Candle, ok bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[0], true
}

// Last returns the newest candle. ok is false for an empty series.
func (s Series) Last() (c Candle, ok bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Sorted reports whether timestamps are strictly increasing.
func (s Series) Sorted() bool {
	for i := 1; i < len(s); i++ {
		if s[i].Timestamp <= s[i-1].Timestamp {
			return false
		}
	}
	return true
}

// Between returns the candles with start <= Timestamp < end. The returned
// slice shares memory with s.
func (s Series) Between(start, end int64) Series {
	lo, hi := 0, len(s)
	for lo < len(s) && s[lo].Timestamp < start {
		lo++
	}
	for hi > lo && s[hi-1].Timestamp >= end {
		hi--
	}
	return s[lo:hi]
}

// Tail returns the newest n candles, or the whole series if it is shorter.
func (s Series) Tail(n int) Series {
	if n <= 0 {
		return nil
	}
	if n >= len(s) {
		return s
	}
	return s[len(s)-n:]
}
