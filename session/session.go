// Package session keeps one (symbol, exchange, timeframe) cache up to
// date and derives resampled series from it.
//
// A Session is not safe for concurrent use. Separate sessions share
// nothing except the metrics recorder.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/tfgen/exchange"
	"github.com/rustyeddy/tfgen/fetch"
	"github.com/rustyeddy/tfgen/journal"
	"github.com/rustyeddy/tfgen/logger"
	"github.com/rustyeddy/tfgen/market"
	"github.com/rustyeddy/tfgen/metrics"
	"github.com/rustyeddy/tfgen/pkg/id"
	"github.com/rustyeddy/tfgen/store"
	"github.com/rustyeddy/tfgen/window"
)

// Params selects the series a session maintains.
type Params struct {
	Symbol    string
	Timeframe string
	Exchange  string
	Candles   int // how many Timeframe candles the caller wants
}

// Storage loads and saves cached series.
type Storage interface {
	Load(store.Key) (market.Series, error)
	Save(store.Key, market.Series) error
}

// Options carries the collaborators. Every field is optional: a nil
// Fetcher uses an HTTP client, a nil Storage keeps the cache in memory
// only, and nil Journal, Log and Metrics discard.
type Options struct {
	Fetcher fetch.Fetcher
	Storage Storage
	Journal journal.Recorder
	Metrics *metrics.Recorder
	Log     logger.Observer
	Now     func() time.Time
}

type Session struct {
	params  Params
	tf      market.Timeframe
	profile *exchange.Profile
	calc    *window.Calculator

	fetcher fetch.Fetcher
	storage Storage
	journal journal.Recorder
	metrics *metrics.Recorder
	log     logger.Observer
	now     func() time.Time

	base    market.Series
	derived map[market.Timeframe]market.Series
	closed  bool
}

// Open validates params, resolves the exchange profile and loads the
// base cache. Configuration problems are returned as *market.ConfigError.
func Open(ctx context.Context, params Params, opts Options) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params.Symbol = strings.TrimSpace(params.Symbol)
	if params.Symbol == "" {
		return nil, &market.ConfigError{Input: params.Symbol, Reason: "missing symbol"}
	}
	if params.Candles <= 0 {
		return nil, &market.ConfigError{
			Input:  fmt.Sprint(params.Candles),
			Reason: "candle count must be positive",
		}
	}
	tf, err := market.ParseTimeframe(params.Timeframe)
	if err != nil {
		return nil, err
	}
	profile, err := exchange.Lookup(params.Exchange)
	if err != nil {
		return nil, err
	}

	s := &Session{
		params:  params,
		tf:      tf,
		profile: profile,
		fetcher: opts.Fetcher,
		storage: opts.Storage,
		journal: opts.Journal,
		metrics: opts.Metrics,
		log:     logger.OrNop(opts.Log),
		now:     opts.Now,
		derived: make(map[market.Timeframe]market.Series),
	}
	if s.fetcher == nil {
		s.fetcher = fetch.NewClient(0)
	}
	if s.journal == nil {
		s.journal = journal.Nop()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.calc = window.New(profile, tf, params.Candles, s.log)
	s.calc.Now = s.now

	if s.storage != nil {
		base, err := s.storage.Load(s.baseKey())
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", s, err)
		}
		s.base = base
	}

	s.log.Info("session opened", s.fields(
		logger.Int("cached", len(s.base)),
		logger.Int("budget", s.calc.Budget()),
	)...)
	return s, nil
}

// Run opens a session, hands it to fn and always closes it. Errors from
// fn and from Close are both returned.
func Run(ctx context.Context, params Params, opts Options, fn func(*Session) error) error {
	s, err := Open(ctx, params, opts)
	if err != nil {
		return err
	}
	fnErr := fn(s)
	return errors.Join(fnErr, s.Close())
}

func (s *Session) String() string {
	return fmt.Sprintf("%s/%s/%s", s.profile.Name, s.params.Symbol, s.tf)
}

func (s *Session) Profile() *exchange.Profile  { return s.profile }
func (s *Session) Timeframe() market.Timeframe { return s.tf }
func (s *Session) Symbol() string              { return s.params.Symbol }

// Series returns the current base series. Callers must not modify it.
func (s *Session) Series() market.Series { return s.base }

// Derived returns the last resample produced for tf, if any.
func (s *Session) Derived(tf market.Timeframe) (market.Series, bool) {
	out, ok := s.derived[tf]
	return out, ok
}

// Gaps reports the holes in the base series.
func (s *Session) Gaps() market.GapStats {
	return market.Stats(s.base, s.calc.Unit())
}

func (s *Session) baseKey() store.Key {
	return store.BaseKey(s.profile.Name, s.params.Symbol, s.calc.Unit())
}

func (s *Session) fields(extra ...logger.Field) []logger.Field {
	return append([]logger.Field{
		logger.String("exchange", s.profile.Name),
		logger.String("symbol", s.params.Symbol),
		logger.String("timeframe", s.tf.String()),
	}, extra...)
}

// Base runs one sync cycle and returns the updated base series. Fetch
// and normalization failures are logged and treated as zero new
// candles; only context cancellation is returned as an error.
func (s *Session) Base(ctx context.Context) (market.Series, error) {
	if err := ctx.Err(); err != nil {
		return s.base, err
	}

	started := s.now()
	run := journal.SyncRun{
		ID:        id.NewAt(started),
		Symbol:    s.params.Symbol,
		Exchange:  s.profile.Name,
		Timeframe: s.tf.String(),
		Started:   started,
	}

	w := s.calc.For(s.base)
	var fresh market.Series

	if w.Empty() {
		run.Skipped = true
		s.log.Debug("cache is current, nothing to fetch", s.fields()...)
	} else {
		run.WindowStart, run.WindowEnd = w.Start, w.End

		var err error
		fresh, err = s.pull(ctx, w)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return s.base, ctxErr
		}
		if err != nil {
			run.Error = err.Error()
		}
		run.Fetched = len(fresh)
	}

	s.base = market.Merge(s.base, fresh, w.Budget)
	run.Length = len(s.base)
	run.Finished = s.now()

	gaps := s.Gaps()
	s.log.Info("sync cycle", s.fields(
		logger.String("result", run.Result()),
		logger.Int("fetched", run.Fetched),
		logger.Int("length", run.Length),
		logger.Int("gaps", gaps.GapCount),
		logger.Duration("took", run.Duration()),
	)...)
	if gaps.SuspiciousGaps > 0 {
		s.log.Debug("cache has long gaps", s.fields(
			logger.Int("count", gaps.SuspiciousGaps),
			logger.Int("longest", gaps.LongestGap),
		)...)
	}

	s.metrics.RecordSync(s.profile.Name, s.params.Symbol, run.Result(),
		run.Fetched, run.Length, run.Duration().Seconds())
	if err := s.journal.RecordSync(run); err != nil {
		s.log.Warn("journal write failed", s.fields(logger.Err(err))...)
	}
	return s.base, nil
}

// pull fetches and normalizes one window. Candles at or after the window
// end are still forming and are dropped, as are candles that do not open
// on a base unit boundary.
func (s *Session) pull(ctx context.Context, w window.Window) (market.Series, error) {
	raw, err := s.fetcher.Fetch(ctx, fetch.Request{
		Profile:  s.profile,
		Symbol:   s.params.Symbol,
		Interval: s.profile.Interval(s.tf),
		Start:    w.Start,
		End:      w.End,
	})
	if err != nil {
		s.log.Warn("fetch failed", s.fields(
			logger.Err(err),
			logger.Time("start", w.Start),
			logger.Time("end", w.End),
		)...)
		return nil, err
	}

	fresh, err := exchange.Normalize(s.profile, raw)
	if err != nil {
		s.metrics.RecordNormalizeError(s.profile.Name)
		s.log.Warn("response rejected", s.fields(logger.Err(err))...)
		return nil, err
	}

	unit := s.calc.Unit()
	out := make(market.Series, 0, len(fresh))
	for _, c := range fresh.Between(math.MinInt64, w.End) {
		if unit.Aligned(c.Timestamp) {
			out = append(out, c)
		}
	}
	if dropped := len(fresh) - len(out); dropped > 0 {
		s.log.Debug("candles dropped", s.fields(
			logger.Int("dropped", dropped),
			logger.Int("kept", len(out)),
		)...)
	}
	return out, nil
}

// Resample aggregates the base series into tf, or into the session
// timeframe when tf is empty. The base series is not modified.
func (s *Session) Resample(tf string) (market.Series, error) {
	target := s.tf
	if tf != "" {
		var err error
		if target, err = market.ParseTimeframe(tf); err != nil {
			return nil, err
		}
	}

	out, err := market.Resample(s.base, target, s.profile.Unit(target))
	if err != nil {
		s.metrics.RecordResample("incompatible")
		s.log.Warn("cannot resample", s.fields(
			logger.String("target", target.String()),
			logger.Int("length", len(s.base)),
			logger.Err(err),
		)...)
		return nil, err
	}

	s.derived[target] = out
	s.metrics.RecordResample("ok")
	s.log.Debug("resampled", s.fields(
		logger.String("target", target.String()),
		logger.Int("candles", len(out)),
	)...)
	return out, nil
}

// Release syncs the base series and resamples it into the session
// timeframe.
func (s *Session) Release(ctx context.Context) (market.Series, error) {
	if _, err := s.Base(ctx); err != nil {
		return nil, err
	}
	return s.Resample("")
}

// Close persists the base series and every derived series once. Later
// calls do nothing.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.storage == nil {
		return nil
	}

	var errs []error
	if len(s.base) > 0 {
		if err := s.storage.Save(s.baseKey(), s.base); err != nil {
			errs = append(errs, err)
		}
	}
	for tf, series := range s.derived {
		k := store.DerivedKey(s.profile.Name, s.params.Symbol, tf)
		if err := s.storage.Save(k, series); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		s.log.Error("persist failed", s.fields(logger.Err(err))...)
		return err
	}
	s.log.Info("session closed", s.fields(
		logger.Int("length", len(s.base)),
		logger.Int("derived", len(s.derived)),
	)...)
	return nil
}
