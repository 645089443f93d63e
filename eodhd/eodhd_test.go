package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/etnz/dca"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, fundamentals string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/eod/SPY.US", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "key", r.URL.Query().Get("api_token"))
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-01-05", r.URL.Query().Get("to"))
		w.Write([]byte(`[
			{"date":"2024-01-02","open":1,"close":470.123},
			{"date":"2024-01-03","open":1,"close":468.5},
			{"date":"2024-01-04","open":1,"close":null},
			{"date":"2024-01-05","open":1,"close":467}
		]`))
	})
	mux.HandleFunc("/api/fundamentals/SPY.US", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fundamentals == "" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(fundamentals))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Prices(t *testing.T) {
	srv, calls := newTestServer(t, `{"General":{"Code":"SPY"},"ETF_Data":{"NetExpenseRatio":"0.00090"}}`)
	c := New("key", t.TempDir(), zerolog.Nop())
	c.BaseURL = srv.URL

	r := dca.NewRange(dca.NewDate(2024, 1, 1), dca.NewDate(2024, 1, 5))
	s, err := c.Prices(context.Background(), "SPY", r)
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, dca.NewDate(2024, 1, 3), s[0].Date)
	assert.Equal(t, 470.12, s[0].PrevClose)
	assert.Equal(t, 468.5, s[0].Close)
	assert.Equal(t, 0.0009, s[0].Fee)
	assert.Equal(t, dca.NewDate(2024, 1, 5), s[1].Date)
	assert.Equal(t, 468.5, s[1].PrevClose)

	// served from the disk cache
	before := calls.Load()
	_, err = c.Prices(context.Background(), "SPY", r)
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

func TestClient_PricesWithoutFee(t *testing.T) {
	srv, _ := newTestServer(t, "")
	c := New("key", t.TempDir(), zerolog.Nop())
	c.BaseURL = srv.URL

	s, err := c.Prices(context.Background(), "SPY", dca.NewRange(dca.NewDate(2024, 1, 1), dca.NewDate(2024, 1, 5)))
	require.NoError(t, err)
	require.NotEmpty(t, s)
	assert.Zero(t, s[0].Fee)
}

func TestClient_PricesError(t *testing.T) {
	srv, _ := newTestServer(t, "")
	c := New("key", t.TempDir(), zerolog.Nop())
	c.BaseURL = srv.URL

	_, err := c.Prices(context.Background(), "QQQ", dca.NewRange(dca.NewDate(2024, 1, 1), dca.NewDate(2024, 1, 5)))
	assert.Error(t, err)
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "SPY.US", Symbol("SPY"))
	assert.Equal(t, "IWDA.AS", Symbol("IWDA.AS"))
}

func TestRatio(t *testing.T) {
	f, err := ratio("0.0035")
	require.NoError(t, err)
	assert.Equal(t, 0.0035, f)

	f, err = ratio(0.002)
	require.NoError(t, err)
	assert.Equal(t, 0.002, f)

	_, err = ratio("n/a")
	assert.Error(t, err)
	_, err = ratio(-1.0)
	assert.Error(t, err)
	_, err = ratio(nil)
	assert.Error(t, err)
}
