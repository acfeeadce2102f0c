package market

import "time"

// Truncate returns the start of the u period containing ts. Weeks start
// on Monday and months on the 1st, both UTC.
func (u Unit) Truncate(ts int64) int64 {
	if !u.Valid() {
		return ts
	}
	return BucketStart(ts, Timeframe{Multiplier: 1, Unit: u})
}

// Aligned reports whether ts opens a u period.
func (u Unit) Aligned(ts int64) bool {
	return u.Valid() && u.Truncate(ts) == ts
}

// Add moves ts by n periods of u. Months follow the calendar, so
// adding one month to 2024-01-01 gives 2024-02-01.
func (u Unit) Add(ts int64, n int) int64 {
	if u == Month {
		return time.Unix(ts, 0).UTC().AddDate(0, n, 0).Unix()
	}
	return ts + int64(n)*u.Seconds()
}

// Periods counts the whole u periods from start to end. It is zero or
// negative when end does not come after start.
func (u Unit) Periods(start, end int64) int64 {
	switch {
	case !u.Valid():
		return 0
	case u == Month:
		n := monthIndex(end) - monthIndex(start)
		if n > 0 && u.Add(start, int(n)) > end {
			n--
		}
		return n
	default:
		return (end - start) / u.Seconds()
	}
}

// monthIndex counts calendar months from 1970-01.
func monthIndex(ts int64) int64 {
	t := time.Unix(ts, 0).UTC()
	return int64(t.Year()-1970)*12 + int64(t.Month()-1)
}
