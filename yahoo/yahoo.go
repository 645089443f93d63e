// Package yahoo provides daily prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/dca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultHosts are tried in order on every attempt.
var DefaultHosts = []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"}

// DefaultBackoffs are the pauses between attempts.
var DefaultBackoffs = []time.Duration{200 * time.Millisecond, 500 * time.Millisecond, 1 * time.Second}

// Client implements dca.MarketData on Yahoo Finance.
type Client struct {
	Hosts    []string
	Backoffs []time.Duration

	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		Hosts:    DefaultHosts,
		Backoffs: DefaultBackoffs,
		client:   &http.Client{Timeout: 30 * time.Second},
		log:      log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResp mirrors Yahoo v8 chart response (trimmed to needed fields)
type chartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GmtOffset int64  `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"` // null on halted days
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// Prices implements dca.MarketData.
//
// Days without a close are dropped and closes are rounded to the cent. A
// missing expense ratio is logged and the fee is 0.
func (c *Client) Prices(ctx context.Context, ticker string, r dca.Range) (dca.PriceSeries, error) {
	closes, err := c.fetchCloses(ctx, ticker, r)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch yahoo prices of %s: %w", ticker, err)
	}
	fee, err := c.fetchFee(ctx, ticker)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("no expense ratio, using 0")
		fee = 0
	}
	return dca.NewPriceSeries(closes, fee), nil
}

func (c *Client) fetchCloses(ctx context.Context, ticker string, r dca.Range) ([]dca.Close, error) {
	query := url.Values{
		"period1":  {fmt.Sprint(r.From.Time().Unix())},
		"period2":  {fmt.Sprint(r.To.Add(1).Time().Unix())},
		"interval": {"1d"},
		"events":   {"div,splits"},
	}
	var yc chartResp
	if err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(ticker)+"?"+query.Encode(), ticker, &yc); err != nil {
		return nil, err
	}
	if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.New("no data")
	}
	res := yc.Chart.Result[0]
	quotes := res.Indicators.Quote[0].Close
	closes := make([]dca.Close, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(quotes) || quotes[i] == nil || *quotes[i] <= 0 {
			continue
		}
		// timestamps are the exchange opening, shifted into the exchange day
		day := dca.DateOf(time.Unix(ts+res.Meta.GmtOffset, 0).UTC())
		if !r.Contains(day) {
			continue
		}
		v := decimal.NewFromFloat(*quotes[i]).Round(2).InexactFloat64()
		closes = append(closes, dca.Close{Date: day, Value: v})
	}
	return closes, nil
}

// fetchFee returns the annual report expense ratio of a fund, as a fraction.
func (c *Client) fetchFee(ctx context.Context, ticker string) (float64, error) {
	var content any
	path := "/v10/finance/quoteSummary/" + url.PathEscape(ticker) + "?modules=defaultKeyStatistics"
	if err := c.getJSON(ctx, path, ticker, &content); err != nil {
		return 0, err
	}
	v, err := jsonpath.Get("$.quoteSummary.result[0].defaultKeyStatistics.annualReportExpenseRatio.raw", content)
	if err != nil {
		return 0, fmt.Errorf("no expense ratio for %s: %w", ticker, err)
	}
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, fmt.Errorf("invalid expense ratio %v for %s", v, ticker)
	}
	return f, nil
}

// getJSON tries every host, pausing between rounds, until one returns a JSON body.
func (c *Client) getJSON(ctx context.Context, path, ticker string, data any) error {
	var lastErr error
	for attempt := 0; attempt < len(c.Backoffs)+1; attempt++ {
		for _, host := range c.Hosts {
			lastErr = c.get(ctx, host+path, ticker, data)
			if lastErr == nil {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Debug().Err(lastErr).Str("host", host).Int("attempt", attempt).Msg("yahoo request failed")
		}
		if attempt < len(c.Backoffs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.Backoffs[attempt]):
			}
		}
	}
	return lastErr
}

func (c *Client) get(ctx context.Context, addr, ticker string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(ticker)))
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read yahoo response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests") {
		return fmt.Errorf("yahoo %s returned 429: Too Many Requests", req.URL.Host)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo %s returned %d: %s", req.URL.Host, resp.StatusCode, preview(body))
	}
	if strings.HasPrefix(string(body), "<") {
		return fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}
	if err := json.Unmarshal(body, data); err != nil {
		return fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
	}
	return nil
}

func preview(body []byte) string {
	if len(body) > 120 {
		return string(body[:120])
	}
	return string(body)
}
