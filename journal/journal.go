// Package journal keeps an audit trail of sync cycles.
package journal

import "time"

// SyncRun is one sync cycle of one session.
type SyncRun struct {
	ID        string
	Symbol    string
	Exchange  string
	Timeframe string

	Started  time.Time
	Finished time.Time

	// Requested window in unix seconds. Zero when the cache was current.
	WindowStart int64
	WindowEnd   int64

	Fetched int  // candles returned by the exchange after normalization
	Length  int  // base series length after merging
	Skipped bool // cache was current, nothing requested
	Error   string
}

// Result classifies the run for reporting.
func (r SyncRun) Result() string {
	switch {
	case r.Error != "":
		return "error"
	case r.Skipped:
		return "skipped"
	case r.Fetched == 0:
		return "empty"
	default:
		return "fetched"
	}
}

// Duration is how long the cycle took.
func (r SyncRun) Duration() time.Duration {
	if r.Finished.Before(r.Started) {
		return 0
	}
	return r.Finished.Sub(r.Started)
}

type Recorder interface {
	RecordSync(SyncRun) error
	Close() error
}

type nop struct{}

func (nop) RecordSync(SyncRun) error { return nil }
func (nop) Close() error             { return nil }

// Nop returns a Recorder that drops every run.
func Nop() Recorder { return nop{} }
