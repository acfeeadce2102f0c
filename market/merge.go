package market

import "sort"

// Merge combines an existing series with freshly fetched candles. On a
// timestamp collision the fresh candle wins, since exchanges revise the
// candle that is still forming. The result is sorted, duplicate free and
// holds at most budget candles (the newest ones). A budget <= 0 keeps
// everything. Neither input is modified.
func Merge(existing, fresh Series, budget int) Series {
	byTS := make(map[int64]int, len(existing)+len(fresh))
	out := make(Series, 0, len(existing)+len(fresh))

	for _, batch := range []Series{existing, fresh} {
		for _, c := range batch {
			if i, ok := byTS[c.Timestamp]; ok {
				out[i] = c
				continue
			}
			byTS[c.Timestamp] = len(out)
			out = append(out, c)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	if budget > 0 && len(out) > budget {
		out = append(Series(nil), out[len(out)-budget:]...)
	}
	return out
}
