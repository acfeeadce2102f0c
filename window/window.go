// Package window decides what to fetch to bring a cached series up to
// date, and how many candles the cache may keep.
package window

import (
	"time"

	"github.com/rustyeddy/tfgen/exchange"
	"github.com/rustyeddy/tfgen/logger"
	"github.com/rustyeddy/tfgen/market"
)

// Window is the [Start, End) range to request, in unix seconds, plus the
// retention budget to apply after merging.
type Window struct {
	Start  int64
	End    int64
	Budget int
	Unit   market.Unit
}

// Candles is how many base candles the window spans. Zero or less means
// the cache is current and nothing should be fetched.
func (w Window) Candles() int64 {
	return w.Unit.Periods(w.Start, w.End)
}

// Empty reports whether there is nothing to fetch.
func (w Window) Empty() bool {
	return w.Candles() <= 0
}

// Calculator computes fetch windows for one session.
type Calculator struct {
	Profile   *exchange.Profile
	Timeframe market.Timeframe
	Candles   int // requested count of Timeframe candles

	Now func() time.Time
	Log logger.Observer
}

// New returns a Calculator using the wall clock.
func New(p *exchange.Profile, tf market.Timeframe, candles int, log logger.Observer) *Calculator {
	return &Calculator{
		Profile:   p,
		Timeframe: tf,
		Candles:   candles,
		Now:       time.Now,
		Log:       logger.OrNop(log),
	}
}

// Unit is the canonical unit of the cached base series.
func (c *Calculator) Unit() market.Unit {
	return c.Profile.Unit(c.Timeframe)
}

// Budget is the most base candles the cache may hold after a merge:
// the requested count scaled to base candles, capped per unit.
func (c *Calculator) Budget() int {
	want := c.Candles * c.Profile.Coefficient(c.Timeframe)
	return min(want, exchange.MaxCandles(c.Unit()))
}

// AlignedNow is the open of the base candle that is still forming, so a
// window never reaches into it. Weeks open on Monday and months on the
// 1st, both UTC.
func (c *Calculator) AlignedNow() int64 {
	return c.Unit().Truncate(c.Now().Unix())
}

// Fresh is the window used when there is no cache.
func (c *Calculator) Fresh() Window {
	end := c.AlignedNow()
	budget := c.Budget()
	unit := c.Unit()

	w := c.clamp(Window{
		Start:  unit.Add(end, -budget),
		End:    end,
		Budget: budget,
		Unit:   unit,
	})
	c.Log.Debug("fresh fetch window",
		logger.Time("start", w.Start),
		logger.Time("end", w.End),
		logger.Int64("candles", w.Candles()),
	)
	return w
}

// Incremental resumes at the period after the last cached candle. first
// is only used for diagnostics: when the cache starts later than a fresh
// window would, that is logged but the resume point is unchanged.
func (c *Calculator) Incremental(first, last int64) Window {
	end := c.AlignedNow()
	unit := c.Unit()
	budget := c.Budget()

	freshStart := unit.Add(end, -budget)
	c.Log.Debug("cache coverage",
		logger.Time("first", first),
		logger.Time("last", last),
		logger.Int64("lag", unit.Periods(last, end)),
		logger.Bool("thin", unit.Add(freshStart, 1) < first),
	)

	w := Window{
		Start:  unit.Add(unit.Truncate(last), 1),
		End:    end,
		Budget: budget,
		Unit:   unit,
	}
	if w.Empty() {
		c.Log.Debug("cache is current", logger.Time("last", last))
		return w
	}
	w = c.clamp(w)
	c.Log.Debug("incremental fetch window",
		logger.Time("start", w.Start),
		logger.Time("end", w.End),
		logger.Int64("candles", w.Candles()),
	)
	return w
}

// clamp moves the start of w forward so that one response covers it.
// Exchanges with a response limit serve the oldest candles of a range,
// which would leave the newest ones unfetched.
func (c *Calculator) clamp(w Window) Window {
	limit := c.Profile.Endpoint.Limit
	if limit <= 0 || w.Candles() <= int64(limit) {
		return w
	}
	start := w.Unit.Add(w.End, -limit)
	c.Log.Debug("window clamped to response limit",
		logger.Time("from", w.Start),
		logger.Time("to", start),
		logger.Int("limit", limit),
	)
	w.Start = start
	return w
}

// For picks Fresh or Incremental depending on whether s has candles.
func (c *Calculator) For(s market.Series) Window {
	first, ok := s.First()
	if !ok {
		return c.Fresh()
	}
	last, _ := s.Last()
	return c.Incremental(first.Timestamp, last.Timestamp)
}
