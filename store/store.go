// Package store persists candle series as CSV files, one file per
// (exchange, symbol, timeframe), optionally xz compressed.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ulikunitz/xz"

	"github.com/rustyeddy/tfgen/market"
)

// Header is the column layout of every cache file.
var Header = []string{"Datetime", "TimeStamp", "Open", "High", "Low", "Close", "Volume"}

const (
	CompressNone = "none"
	CompressXZ   = "xz"
)

// Key names one cached series.
type Key struct {
	Exchange string
	Name     string // file stem without extension
}

// BaseKey is the key of the fine-grained cache, e.g. BTCUSDT-1min_df.
func BaseKey(exchange, symbol string, unit market.Unit) Key {
	return Key{Exchange: exchange, Name: fmt.Sprintf("%s-1%s_df", symbol, unit)}
}

// DerivedKey is the key of a resampled series, e.g. BTCUSDT-15min_tf.
func DerivedKey(exchange, symbol string, tf market.Timeframe) Key {
	return Key{Exchange: exchange, Name: fmt.Sprintf("%s-%s_tf", symbol, tf)}
}

// Store reads and writes series under Dir/<exchange>/.
type Store struct {
	Dir      string
	Compress string
}

// New validates the compression mode and returns a Store.
func New(dir, compress string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store: empty directory")
	}
	switch compress {
	case "", CompressNone:
		compress = CompressNone
	case CompressXZ:
	default:
		return nil, fmt.Errorf("store: unknown compression %q", compress)
	}
	return &Store{Dir: dir, Compress: compress}, nil
}

func (s *Store) ext() string {
	if s.Compress == CompressXZ {
		return ".csv.xz"
	}
	return ".csv"
}

// Path is where key is written.
func (s *Store) Path(k Key) string {
	return filepath.Join(s.Dir, k.Exchange, k.Name+s.ext())
}

// Load reads the series for k. A missing file is not an error: it
// returns a nil series. A file written with the other compression mode
// is read too, so toggling compression keeps the cache.
func (s *Store) Load(k Key) (market.Series, error) {
	primary := s.Path(k)
	alt := filepath.Join(s.Dir, k.Exchange, k.Name+".csv")
	if s.Compress != CompressXZ {
		alt += ".xz"
	}

	for _, p := range []string{primary, alt} {
		series, err := loadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("store: load %s: %w", p, err)
		}
		return series, nil
	}
	return nil, nil
}

// Save writes the series for k atomically.
func (s *Store) Save(k Key, series market.Series) error {
	dst := s.Path(k)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	tmp := dst + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	writeErr := s.write(out, series)
	closeErr := out.Close()
	if writeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: write %s: %w", dst, writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: write %s: %w", dst, closeErr)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

func (s *Store) write(w io.Writer, series market.Series) error {
	if s.Compress != CompressXZ {
		return writeCSV(w, series)
	}
	zw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	if err := writeCSV(zw, series); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func writeCSV(w io.Writer, series market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, c := range series {
		err := cw.Write([]string{
			c.Time().Format(time.RFC3339),
			strconv.FormatInt(c.Timestamp, 10),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			c.Volume.String(),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func loadFile(path string) (market.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		zr, err := xz.NewReader(f)
		if err != nil {
			return nil, err
		}
		r = zr
	}
	return ReadCSV(r)
}

// ReadCSV parses cache rows. The header row is optional. Rows are
// returned sorted and deduplicated.
func ReadCSV(r io.Reader) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out market.Series
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), Header[0]) {
			continue
		}
		c, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, c)
	}
	return market.Merge(nil, out, 0), nil
}

func parseRow(row []string) (market.Candle, error) {
	if len(row) < len(Header) {
		return market.Candle{}, fmt.Errorf("want %d columns, got %d", len(Header), len(row))
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
	if err != nil {
		t, perr := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
		if perr != nil {
			return market.Candle{}, fmt.Errorf("bad timestamp %q: %w", row[1], err)
		}
		ts = t.Unix()
	}

	var vals [5]decimal.Decimal
	for i := range vals {
		v, err := decimal.NewFromString(strings.TrimSpace(row[2+i]))
		if err != nil {
			return market.Candle{}, fmt.Errorf("bad %s %q: %w", Header[2+i], row[2+i], err)
		}
		vals[i] = v
	}

	return market.Candle{
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}
