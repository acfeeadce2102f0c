package exchange

import (
	"errors"
	"testing"

	"github.com/rustyeddy/tfgen/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, name string) *Profile {
	t.Helper()
	p, err := Lookup(name)
	require.NoError(t, err)
	return p
}

func assertCandle(t *testing.T, c market.Candle, ts int64, o, h, l, cl, v string) {
	t.Helper()
	assert.Equal(t, ts, c.Timestamp)
	assert.Equal(t, o, c.Open.String())
	assert.Equal(t, h, c.High.String())
	assert.Equal(t, l, c.Low.String())
	assert.Equal(t, cl, c.Close.String())
	assert.Equal(t, v, c.Volume.String())
}

func TestNormalize_Wallex(t *testing.T) {
	t.Parallel()

	raw := `{"s":"ok",
		"t":[1700000060,1700000000],
		"o":["10.5","10"],
		"h":["11","10.8"],
		"l":["10.1","9.9"],
		"c":["10.9","10.5"],
		"v":["3.25","1"]}`

	got, err := Normalize(mustLookup(t, "Wallex"), []byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assertCandle(t, got[0], 1700000000, "10", "10.8", "9.9", "10.5", "1")
	assertCandle(t, got[1], 1700000060, "10.5", "11", "10.1", "10.9", "3.25")
}

func TestNormalize_NobitexNumbers(t *testing.T) {
	t.Parallel()

	raw := `{"s":"ok","t":[1700000000],"o":[100],"h":[120.5],"l":[99],"c":[110],"v":[0.5]}`
	got, err := Normalize(mustLookup(t, "Nobitex"), []byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assertCandle(t, got[0], 1700000000, "100", "120.5", "99", "110", "0.5")
}

func TestNormalize_UDFNoData(t *testing.T) {
	t.Parallel()

	_, err := Normalize(mustLookup(t, "Wallex"), []byte(`{"s":"no_data"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNormalization))
	assert.Contains(t, err.Error(), "no_data")
}

func TestNormalize_Binance(t *testing.T) {
	t.Parallel()

	raw := `[
		[1700000000000,"35000.1","35010","34990","35005","12.5",1700000059999,"0",10,"0","0","0"],
		[1700000060000,"35005","35020","35000","35015","3",1700000119999,"0",5,"0","0","0"]
	]`
	got, err := Normalize(mustLookup(t, "Binance"), []byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assertCandle(t, got[0], 1700000000, "35000.1", "35010", "34990", "35005", "12.5")
	assertCandle(t, got[1], 1700000060, "35005", "35020", "35000", "35015", "3")
}

func TestNormalize_BingX(t *testing.T) {
	t.Parallel()

	raw := `{"code":0,"msg":"","data":[
		{"open":"1.5","close":"1.7","high":"1.8","low":"1.4","volume":"100","time":1700000060000},
		{"open":"1.2","close":"1.5","high":"1.6","low":"1.1","volume":"50","time":1700000000000}
	]}`
	got, err := Normalize(mustLookup(t, "BingX"), []byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assertCandle(t, got[0], 1700000000, "1.2", "1.6", "1.1", "1.5", "50")
	assertCandle(t, got[1], 1700000060, "1.5", "1.8", "1.4", "1.7", "100")
}

func TestNormalize_BingXErrorCode(t *testing.T) {
	t.Parallel()

	_, err := Normalize(mustLookup(t, "BingX"), []byte(`{"code":100400,"msg":"bad symbol","data":null}`))
	assert.ErrorIs(t, err, ErrNormalization)
}

func TestNormalize_Coinbase(t *testing.T) {
	t.Parallel()

	// newest first, [time, low, high, open, close, volume]
	raw := `[[1700000060, 9, 12, 10, 11, 4.5],[1700000000, 8, 11, 9, 10, 2]]`
	got, err := Normalize(mustLookup(t, "Coinbase"), []byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assertCandle(t, got[0], 1700000000, "9", "11", "8", "10", "2")
	assertCandle(t, got[1], 1700000060, "10", "12", "9", "11", "4.5")
}

func TestNormalize_DuplicatesLastWins(t *testing.T) {
	t.Parallel()

	raw := `[[1700000000000,"1","1","1","1","1"],[1700000000000,"2","2","2","2","2"]]`
	got, err := Normalize(mustLookup(t, "Binance"), []byte(raw))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Close.String())
}

func TestNormalize_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		exchange string
		raw      string
	}{
		{"nil body", "Binance", ""},
		{"whitespace", "Binance", "  \n"},
		{"not json", "Binance", "<html>"},
		{"empty array", "Binance", "[]"},
		{"short row", "Binance", `[[1700000000000,"1","1"]]`},
		{"bad number", "Binance", `[[1700000000000,"x","1","1","1","1"]]`},
		{"null value", "Coinbase", `[[1700000000,null,1,1,1,1]]`},
		{"missing column", "Wallex", `{"s":"ok","t":[1],"o":[1],"h":[1],"l":[1],"c":[1]}`},
		{"ragged columns", "Wallex", `{"s":"ok","t":[1,2],"o":[1],"h":[1],"l":[1],"c":[1],"v":[1]}`},
		{"missing envelope", "BingX", `{"code":0}`},
		{"missing field", "BingX", `{"code":0,"data":[{"open":"1","high":"1","low":"1","close":"1","time":1}]}`},
		{"object for rows", "Coinbase", `{"message":"NotFound"}`},
		{"negative time", "Coinbase", `[[-60,1,1,1,1,1]]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(mustLookup(t, tt.exchange), []byte(tt.raw))
			require.Error(t, err)
			assert.Nil(t, got)

			var ne *NormalizeError
			require.True(t, errors.As(err, &ne))
			assert.True(t, errors.Is(err, ErrNormalization))
		})
	}
}
