package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/dca"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opening returns the unix time of 9:30 New York on day.
func opening(day dca.Date) int64 {
	return day.Time().Add(9*time.Hour + 30*time.Minute + 5*time.Hour).Unix()
}

func chartHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, `{"chart":{"result":[{
			"meta":{"gmtoffset":-18000,"timezone":"EST"},
			"timestamp":[%d,%d,%d,%d],
			"indicators":{"quote":[{"close":[100.004,101.456,null,99.5]}]}
		}],"error":null}}`,
			opening(dca.NewDate(2024, 1, 2)), opening(dca.NewDate(2024, 1, 3)),
			opening(dca.NewDate(2024, 1, 4)), opening(dca.NewDate(2024, 1, 5)))
	}
}

func newTestClient(hosts ...string) *Client {
	c := NewClient(zerolog.Nop())
	c.Hosts = hosts
	c.Backoffs = []time.Duration{time.Millisecond}
	return c
}

func TestClient_Prices(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/SPY", chartHandler(t))
	mux.HandleFunc("/v10/finance/quoteSummary/SPY", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteSummary":{"result":[{"defaultKeyStatistics":{"annualReportExpenseRatio":{"raw":0.0009,"fmt":"0.09%"}}}]}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s, err := newTestClient(srv.URL).Prices(context.Background(), "SPY", dca.NewRange(dca.NewDate(2024, 1, 1), dca.NewDate(2024, 1, 5)))
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, dca.NewDate(2024, 1, 3), s[0].Date)
	assert.Equal(t, 100.0, s[0].PrevClose)
	assert.Equal(t, 101.46, s[0].Close)
	assert.Equal(t, 0.0009, s[0].Fee)
	// the null close of the 4th is dropped
	assert.Equal(t, dca.NewDate(2024, 1, 5), s[1].Date)
	assert.Equal(t, 101.46, s[1].PrevClose)
}

func TestClient_HostFallback(t *testing.T) {
	var failed atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		failed.Add(1)
		http.Error(w, "Edge: Too Many Requests", http.StatusTooManyRequests)
	}))
	defer down.Close()
	mux := http.NewServeMux()
	mux.HandleFunc("/v8/finance/chart/SPY", chartHandler(t))
	up := httptest.NewServer(mux)
	defer up.Close()

	s, err := newTestClient(down.URL, up.URL).Prices(context.Background(), "SPY", dca.NewRange(dca.NewDate(2024, 1, 1), dca.NewDate(2024, 1, 5)))
	require.NoError(t, err)
	assert.Len(t, s, 2)
	assert.Zero(t, s[0].Fee, "quoteSummary is missing")
	assert.Positive(t, failed.Load())
}

func TestClient_AllHostsDown(t *testing.T) {
	var calls atomic.Int32
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html>consent</html>"))
	}))
	defer down.Close()

	c := newTestClient(down.URL)
	c.Backoffs = []time.Duration{time.Millisecond, time.Millisecond}
	_, err := c.Prices(context.Background(), "SPY", dca.NewRange(dca.NewDate(2024, 1, 1), dca.NewDate(2024, 1, 5)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-json")
	assert.Equal(t, int32(3), calls.Load())
}
