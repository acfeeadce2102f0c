package market

import "github.com/shopspring/decimal"

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func bar(ts int64, o, h, l, c, v float64) Candle {
	return Candle{Timestamp: ts, Open: d(o), High: d(h), Low: d(l), Close: d(c), Volume: d(v)}
}

// flat builds n candles spaced step seconds apart starting at start.
func flat(start, step int64, n int) Series {
	s := make(Series, n)
	for i := range s {
		p := float64(100 + i)
		s[i] = bar(start+int64(i)*step, p, p+1, p-1, p, 1)
	}
	return s
}
