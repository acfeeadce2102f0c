package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rustyeddy/tfgen/market"
	"github.com/shopspring/decimal"
)

// ErrNormalization marks a raw response that could not be turned into
// candles. Callers treat it as "no new candles".
var ErrNormalization = errors.New("normalization failed")

// NormalizeError carries the exchange and the reason a response was rejected.
type NormalizeError struct {
	Exchange string
	Reason   string
	Err      error
}

func (e *NormalizeError) Error() string {
	msg := fmt.Sprintf("normalize %s: %s", e.Exchange, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NormalizeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNormalization}
	}
	return []error{ErrNormalization, e.Err}
}

// Layout is the shape of a candle history payload.
type Layout int

const (
	// LayoutColumnar is the UDF style: one array per field,
	// e.g. {"s":"ok","t":[...],"o":[...],...}.
	LayoutColumnar Layout = iota + 1
	// LayoutRows is one positional array per candle, e.g. [[t,o,h,l,c,v],...].
	LayoutRows
	// LayoutRecords is one object per candle, e.g. [{"time":..,"open":..},...].
	LayoutRecords
)

// field order used by Rule.Fields and Rule.Positions
const (
	fTime = iota
	fOpen
	fHigh
	fLow
	fClose
	fVolume
)

// Rule maps one exchange's response shape onto the canonical candle.
type Rule struct {
	Layout Layout

	// Envelope names the key holding the payload; empty means the
	// document itself is the payload.
	Envelope string

	// Fields names the time, open, high, low, close and volume keys for
	// LayoutColumnar and LayoutRecords.
	Fields [6]string

	// Positions indexes the same six values for LayoutRows.
	Positions [6]int

	// Status, when set, is a top level key that must equal StatusOK.
	Status   string
	StatusOK string

	// Millis is set when timestamps are in milliseconds.
	Millis bool
}

// Normalize decodes raw according to p.Rule and returns a sorted,
// duplicate free series. Every failure is a *NormalizeError.
func Normalize(p *Profile, raw []byte) (market.Series, error) {
	fail := func(reason string, err error) (market.Series, error) {
		return nil, &NormalizeError{Exchange: p.Name, Reason: reason, Err: err}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return fail("empty response", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fail("decode response", err)
	}

	r := p.Rule
	if r.Status != "" {
		obj, ok := doc.(map[string]any)
		if !ok {
			return fail("response is not an object", nil)
		}
		if got := fmt.Sprint(obj[r.Status]); got != r.StatusOK {
			return fail(fmt.Sprintf("status %s=%q", r.Status, got), nil)
		}
	}

	payload := doc
	if r.Envelope != "" {
		obj, ok := doc.(map[string]any)
		if !ok {
			return fail("response is not an object", nil)
		}
		if payload, ok = obj[r.Envelope]; !ok {
			return fail(fmt.Sprintf("missing %q", r.Envelope), nil)
		}
	}

	var (
		out market.Series
		err error
	)
	switch r.Layout {
	case LayoutColumnar:
		out, err = r.columnar(payload)
	case LayoutRows:
		out, err = r.rows(payload)
	case LayoutRecords:
		out, err = r.records(payload)
	default:
		err = fmt.Errorf("unknown layout %d", r.Layout)
	}
	if err != nil {
		return fail("locate fields", err)
	}
	if len(out) == 0 {
		return fail("no candles in response", nil)
	}

	return market.Merge(nil, out, 0), nil
}

func (r Rule) columnar(payload any) (market.Series, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, errors.New("payload is not an object")
	}

	var cols [6][]any
	for i, name := range r.Fields {
		col, ok := obj[name].([]any)
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		if i > 0 && len(col) != len(cols[0]) {
			return nil, fmt.Errorf("column %q has %d values, want %d", name, len(col), len(cols[0]))
		}
		cols[i] = col
	}

	out := make(market.Series, 0, len(cols[0]))
	for i := range cols[0] {
		var vals [6]any
		for f := range cols {
			vals[f] = cols[f][i]
		}
		c, err := r.candle(vals)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r Rule) rows(payload any) (market.Series, error) {
	list, ok := payload.([]any)
	if !ok {
		return nil, errors.New("payload is not an array")
	}

	need := 0
	for _, pos := range r.Positions {
		need = max(need, pos+1)
	}

	out := make(market.Series, 0, len(list))
	for i, item := range list {
		row, ok := item.([]any)
		if !ok || len(row) < need {
			return nil, fmt.Errorf("row %d: want an array of at least %d values", i, need)
		}
		var vals [6]any
		for f, pos := range r.Positions {
			vals[f] = row[pos]
		}
		c, err := r.candle(vals)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r Rule) records(payload any) (market.Series, error) {
	list, ok := payload.([]any)
	if !ok {
		return nil, errors.New("payload is not an array")
	}

	out := make(market.Series, 0, len(list))
	for i, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		var vals [6]any
		for f, name := range r.Fields {
			v, ok := rec[name]
			if !ok {
				return nil, fmt.Errorf("record %d: missing %q", i, name)
			}
			vals[f] = v
		}
		c, err := r.candle(vals)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r Rule) candle(vals [6]any) (market.Candle, error) {
	var nums [6]decimal.Decimal
	for i, v := range vals {
		n, err := toDecimal(v)
		if err != nil {
			return market.Candle{}, fmt.Errorf("field %d: %w", i, err)
		}
		nums[i] = n
	}

	ts := nums[fTime]
	if r.Millis {
		ts = ts.Div(decimal.NewFromInt(1000))
	}
	if ts.IsNegative() {
		return market.Candle{}, fmt.Errorf("negative timestamp %s", ts)
	}

	return market.Candle{
		Timestamp: ts.IntPart(),
		Open:      nums[fOpen],
		High:      nums[fHigh],
		Low:       nums[fLow],
		Close:     nums[fClose],
		Volume:    nums[fVolume],
	}, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case string:
		return decimal.NewFromString(x)
	case float64:
		return decimal.NewFromFloat(x), nil
	case nil:
		return decimal.Decimal{}, errors.New("null value")
	default:
		return decimal.Decimal{}, fmt.Errorf("unexpected %T", v)
	}
}
