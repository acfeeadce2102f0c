package market

import (
	"fmt"
	"time"
)

// inferWindow is how many trailing candles InferUnit inspects.
const inferWindow = 10

// 1970-01-05 00:00:00 UTC, the first Monday after the epoch
const epochMonday = 4 * 86400

// InferUnit guesses the unit of s from the largest gap between its last
// few timestamps. Only Minute, Hour and Day are ever returned; a series
// with fewer than two candles is reported as Minute.
func InferUnit(s Series) Unit {
	s = s.Tail(inferWindow)
	if len(s) < 2 {
		return Minute
	}

	var maxDelta int64
	for i := 1; i < len(s); i++ {
		if d := s[i].Timestamp - s[i-1].Timestamp; d > maxDelta {
			maxDelta = d
		}
	}

	minutes := maxDelta / 60
	switch {
	case minutes < 60:
		return Minute
	case minutes < 24*60:
		return Hour
	default:
		return Day
	}
}

// CanConvert checks that s can be resampled into target, whose canonical
// unit on the active exchange is want. Multiplier differences within a
// unit are always fine. A coarser unit is accepted only when s already
// spans at least one full target period; a finer unit never is.
func CanConvert(s Series, target Timeframe, want Unit) error {
	have := InferUnit(s)
	switch {
	case have == want:
		return nil
	case want < have:
		return &IncompatibleError{Have: have, Want: want}
	}

	first, _ := s.First()
	last, _ := s.Last()
	span := last.Timestamp - first.Timestamp + have.Seconds()
	if span < target.Seconds() {
		return &IncompatibleError{
			Have:   have,
			Want:   want,
			Reason: fmt.Sprintf("series spans %ds, %s needs at least %ds", span, target, target.Seconds()),
		}
	}
	return nil
}

// Resample aggregates s into target sized buckets. want is the canonical
// unit target resolves to on the active exchange, which may differ from
// target.Unit (e.g. a week built from day candles). Buckets are labeled
// by their start and empty buckets are dropped, so gaps in s stay gaps.
func Resample(s Series, target Timeframe, want Unit) (Series, error) {
	if target.IsZero() || target.Multiplier <= 0 || !target.Unit.Valid() {
		return nil, &IncompatibleError{Reason: "no target timeframe"}
	}
	if len(s) < 2 {
		return nil, &IncompatibleError{Reason: "insufficient data in series"}
	}
	if err := CanConvert(s, target, want); err != nil {
		return nil, err
	}

	var out Series
	var cur Candle
	open := false

	for _, c := range s {
		start := BucketStart(c.Timestamp, target)
		if open && start == cur.Timestamp {
			if c.High.GreaterThan(cur.High) {
				cur.High = c.High
			}
			if c.Low.LessThan(cur.Low) {
				cur.Low = c.Low
			}
			cur.Close = c.Close
			cur.Volume = cur.Volume.Add(c.Volume)
			continue
		}
		if open {
			out = append(out, cur)
		}
		cur = Candle{
			Timestamp: start,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		}
		open = true
	}
	if open {
		out = append(out, cur)
	}
	return out, nil
}

// BucketStart returns the start of the tf bucket containing ts.
// Minute, hour and day buckets are multiples of tf.Seconds() from the
// epoch. Weeks start on Monday and months on the 1st, both UTC.
func BucketStart(ts int64, tf Timeframe) int64 {
	mult := int64(tf.Multiplier)
	switch tf.Unit {
	case Week:
		size := mult * Week.Seconds()
		return epochMonday + floorDiv(ts-epochMonday, size)*size
	case Month:
		months := floorDiv(monthIndex(ts), mult) * mult
		return time.Date(1970, time.Month(months+1), 1, 0, 0, 0, 0, time.UTC).Unix()
	default:
		size := tf.Seconds()
		return floorDiv(ts, size) * size
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
