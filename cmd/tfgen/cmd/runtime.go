package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/tfgen/config"
	"github.com/rustyeddy/tfgen/fetch"
	"github.com/rustyeddy/tfgen/journal"
	"github.com/rustyeddy/tfgen/logger"
	"github.com/rustyeddy/tfgen/market"
	"github.com/rustyeddy/tfgen/metrics"
	"github.com/rustyeddy/tfgen/session"
	"github.com/rustyeddy/tfgen/store"
)

// runtime holds the collaborators built from a config for one command.
type runtime struct {
	cfg     *config.Config
	log     *logger.Logger
	journal journal.Recorder
	metrics *metrics.Recorder
	opts    session.Options
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	log, err := logger.New(cfg.Log.Logger())
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.Store.Dir, cfg.Store.Compress)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.Fetch.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	client := fetch.NewClient(timeout)
	client.BaseURLs = cfg.Fetch.BaseURLs

	var rec journal.Recorder = journal.Nop()
	if cfg.Journal.DBPath != "" {
		j, err := journal.NewSQLite(cfg.Journal.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		rec = j
	}

	m := metrics.New()
	return &runtime{
		cfg:     cfg,
		log:     log,
		journal: rec,
		metrics: m,
		opts: session.Options{
			Fetcher: client,
			Storage: st,
			Journal: rec,
			Metrics: m,
			Log:     log,
		},
	}, nil
}

func (r *runtime) params() session.Params {
	return session.Params{
		Symbol:    r.cfg.Session.Symbol,
		Timeframe: r.cfg.Session.Timeframe,
		Exchange:  r.cfg.Session.Exchange,
		Candles:   r.cfg.Session.Candles,
	}
}

// flush writes the metrics textfile when one is configured.
func (r *runtime) flush() {
	if err := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); err != nil {
		r.log.Warn("metrics textfile", logger.Err(err))
	}
}

func (r *runtime) Close() error {
	r.flush()
	return r.journal.Close()
}

// resampleExtra derives the configured extra timeframes. Failures are
// logged by the session and do not stop the others.
func resampleExtra(s *session.Session, tfs []string) map[string]market.Series {
	out := make(map[string]market.Series, len(tfs))
	for _, tf := range tfs {
		series, err := s.Resample(tf)
		if err != nil {
			continue
		}
		out[tf] = series
	}
	return out
}

func printSeries(w io.Writer, title string, s market.Series, tail int) error {
	fmt.Fprintf(w, "%s (%d candles)\n", title, len(s))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Datetime\tOpen\tHigh\tLow\tClose\tVolume\t")
	for _, c := range s.Tail(tail) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			c.Time().Format("2006-01-02 15:04"),
			c.Open, c.High, c.Low, c.Close, c.Volume)
	}
	return tw.Flush()
}
