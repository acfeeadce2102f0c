package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field is one structured key/value on a log event.
type Field interface {
	AddTo(event *zerolog.Event)
	addToContext(ctx zerolog.Context) zerolog.Context
}

type stringField struct {
	key, value string
}

func (f stringField) AddTo(e *zerolog.Event) { e.Str(f.key, f.value) }
func (f stringField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Str(f.key, f.value)
}

type int64Field struct {
	key   string
	value int64
}

func (f int64Field) AddTo(e *zerolog.Event) { e.Int64(f.key, f.value) }
func (f int64Field) addToContext(c zerolog.Context) zerolog.Context {
	return c.Int64(f.key, f.value)
}

type boolField struct {
	key   string
	value bool
}

func (f boolField) AddTo(e *zerolog.Event) { e.Bool(f.key, f.value) }
func (f boolField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Bool(f.key, f.value)
}

type errField struct {
	err error
}

func (f errField) AddTo(e *zerolog.Event) { e.Err(f.err) }
func (f errField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Err(f.err)
}

type anyField struct {
	key   string
	value any
}

func (f anyField) AddTo(e *zerolog.Event) { e.Interface(f.key, f.value) }
func (f anyField) addToContext(c zerolog.Context) zerolog.Context {
	return c.Interface(f.key, f.value)
}

func String(key, value string) Field { return stringField{key, value} }
func Int(key string, value int) Field { return int64Field{key, int64(value)} }
func Int64(key string, value int64) Field { return int64Field{key, value} }
func Bool(key string, value bool) Field { return boolField{key, value} }
func Err(err error) Field { return errField{err} }
func Any(key string, value any) Field { return anyField{key, value} }

// Duration logs d in milliseconds.
func Duration(key string, d time.Duration) Field {
	return int64Field{key, d.Milliseconds()}
}

// Time logs a unix seconds timestamp as RFC3339.
func Time(key string, unix int64) Field {
	return stringField{key, time.Unix(unix, 0).UTC().Format(time.RFC3339)}
}
