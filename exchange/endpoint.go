package exchange

import (
	"net/url"
	"strconv"
	"strings"
)

// Endpoint describes how to address an exchange's candle history API.
type Endpoint struct {
	BaseURL string
	// Path may contain {symbol}, which is replaced with the escaped symbol.
	Path          string
	SymbolParam   string // empty when the symbol travels in Path
	IntervalParam string
	StartParam    string
	EndParam      string
	Millis        bool // start and end are sent in milliseconds

	// Limit is the most candles one response holds, counted from the
	// start of the range. Zero means the whole range is served.
	Limit      int
	LimitParam string // empty when the exchange takes no limit argument

	Extra map[string]string
}

// URL builds the request URL for one history fetch. base overrides
// BaseURL when non-empty. start and end are unix seconds.
func (e Endpoint) URL(base, symbol, interval string, start, end int64) (string, error) {
	if base == "" {
		base = e.BaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/") + strings.ReplaceAll(e.Path, "{symbol}", url.PathEscape(symbol)))
	if err != nil {
		return "", err
	}

	scale := int64(1)
	if e.Millis {
		scale = 1000
	}

	q := u.Query()
	if e.SymbolParam != "" {
		q.Set(e.SymbolParam, symbol)
	}
	q.Set(e.IntervalParam, interval)
	q.Set(e.StartParam, strconv.FormatInt(start*scale, 10))
	q.Set(e.EndParam, strconv.FormatInt(end*scale, 10))
	if e.LimitParam != "" && e.Limit > 0 {
		q.Set(e.LimitParam, strconv.Itoa(e.Limit))
	}
	for k, v := range e.Extra {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
