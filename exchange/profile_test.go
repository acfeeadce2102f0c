package exchange

import (
	"errors"
	"net/url"
	"testing"

	"github.com/rustyeddy/tfgen/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"Wallex", "nobitex", "BINANCE", "BingX", " Coinbase "} {
		p, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, p.Name)
	}
}

func TestLookup_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := Lookup("Kraken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedExchange))
	assert.True(t, errors.Is(err, market.ErrConfig))
	assert.Contains(t, err.Error(), "Binance")
}

func TestLookup_ReturnsIndependentCopies(t *testing.T) {
	t.Parallel()

	a, err := Lookup("Binance")
	require.NoError(t, err)
	b, err := Lookup("binance")
	require.NoError(t, err)
	require.NotSame(t, a, b)

	a.Units[market.Week] = market.Day
	a.Intervals[market.Minute] = "3m"
	a.Endpoint.Limit = 5

	assert.Equal(t, market.Week, b.Units[market.Week])
	assert.Equal(t, "1m", b.Intervals[market.Minute])
	assert.Equal(t, 1000, b.Endpoint.Limit)

	c, err := Lookup("Binance")
	require.NoError(t, err)
	assert.Equal(t, market.Week, c.Unit(market.MustParseTimeframe("1W")))
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"Binance", "BingX", "Coinbase", "Nobitex", "Wallex"}, Names())
}

func TestProfileTables(t *testing.T) {
	t.Parallel()

	wallex, err := Lookup("Wallex")
	require.NoError(t, err)
	bingx, err := Lookup("BingX")
	require.NoError(t, err)

	tests := []struct {
		name     string
		p        *Profile
		tf       string
		unit     market.Unit
		coeff    int
		interval string
	}{
		{"wallex minutes", wallex, "15min", market.Minute, 15, "1"},
		{"wallex hours", wallex, "2H", market.Hour, 2, "60"},
		{"wallex week folds to days", wallex, "1W", market.Day, 7, "1D"},
		{"wallex month folds to days", wallex, "2M", market.Day, 62, "1D"},
		{"bingx native week", bingx, "1W", market.Week, 1, "1w"},
		{"bingx minutes", bingx, "5min", market.Minute, 5, "1m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := market.MustParseTimeframe(tt.tf)
			assert.Equal(t, tt.unit, tt.p.Unit(tf))
			assert.Equal(t, tt.coeff, tt.p.Coefficient(tf))
			assert.Equal(t, tt.interval, tt.p.Interval(tf))
		})
	}
}

func TestMaxCandles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50000, MaxCandles(market.Minute))
	assert.Equal(t, 15000, MaxCandles(market.Hour))
	assert.Equal(t, 5000, MaxCandles(market.Day))
}

func TestEndpointURL(t *testing.T) {
	t.Parallel()

	binance, err := Lookup("Binance")
	require.NoError(t, err)

	raw, err := binance.Endpoint.URL("", "BTCUSDT", "1m", 1700000000, 1700000600)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "api.binance.com", u.Host)
	assert.Equal(t, "/api/v3/uiKlines", u.Path)
	assert.Equal(t, "BTCUSDT", u.Query().Get("symbol"))
	assert.Equal(t, "1m", u.Query().Get("interval"))
	assert.Equal(t, "1700000000000", u.Query().Get("startTime"))
	assert.Equal(t, "1700000600000", u.Query().Get("endTime"))
	assert.Equal(t, "1000", u.Query().Get("limit"))
}

func TestEndpointURL_SymbolInPath(t *testing.T) {
	t.Parallel()

	coinbase, err := Lookup("Coinbase")
	require.NoError(t, err)

	raw, err := coinbase.Endpoint.URL("http://127.0.0.1:9999/", "BTC-USD", "60", 100, 200)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", u.Host)
	assert.Equal(t, "/products/BTC-USD/candles", u.Path)
	assert.Equal(t, "60", u.Query().Get("granularity"))
	assert.Equal(t, "100", u.Query().Get("start"))
	assert.Equal(t, "200", u.Query().Get("end"))
	assert.False(t, u.Query().Has("symbol"))
	assert.False(t, u.Query().Has("limit"))
	assert.Equal(t, 300, coinbase.Endpoint.Limit)
}
