package market

// Gap is a run of missing candles in a series.
type Gap struct {
	Start   int64 // timestamp of the first missing candle
	Missing int   // number of missing candles
	Kind    string
}

// Gap kinds.
const (
	GapMinor      = "minor"
	GapSuspicious = "suspicious"
)

// suspiciousGap is how many consecutive missing candles are worth
// flagging.
const suspiciousGap = 10

// GapStats summarizes the gaps of a series.
type GapStats struct {
	Expected       int // candles between first and last, inclusive
	Present        int
	Missing        int
	GapCount       int
	SuspiciousGaps int
	LongestGap     int
}

// Gaps lists the holes in s, assuming one candle per u period.
// Resampling keeps these holes; they are reported, never filled.
func Gaps(s Series, u Unit) []Gap {
	if !u.Valid() {
		return nil
	}
	var out []Gap
	for i := 1; i < len(s); i++ {
		missing := int(u.Periods(s[i-1].Timestamp, s[i].Timestamp)) - 1
		if missing <= 0 {
			continue
		}
		kind := GapMinor
		if missing >= suspiciousGap {
			kind = GapSuspicious
		}
		out = append(out, Gap{
			Start:   u.Add(s[i-1].Timestamp, 1),
			Missing: missing,
			Kind:    kind,
		})
	}
	return out
}

// Stats computes GapStats for s.
func Stats(s Series, u Unit) GapStats {
	st := GapStats{Present: len(s)}
	if len(s) == 0 || !u.Valid() {
		return st
	}
	first, _ := s.First()
	last, _ := s.Last()
	st.Expected = int(u.Periods(first.Timestamp, last.Timestamp)) + 1

	for _, g := range Gaps(s, u) {
		st.GapCount++
		st.Missing += g.Missing
		st.LongestGap = max(st.LongestGap, g.Missing)
		if g.Kind == GapSuspicious {
			st.SuspiciousGaps++
		}
	}
	return st
}
