// Package eodhd provides daily prices and expense ratios from eodhd.com.
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/dca"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the EODHD API root.
const DefaultBaseURL = "https://eodhd.com"

// Client implements dca.MarketData on the EODHD API.
type Client struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL

	prices       *http.Client // daily cache
	fundamentals *http.Client // monthly cache
	log          zerolog.Logger
}

// New returns a client caching responses in cacheDir, os.TempDir() if empty.
func New(apiKey, cacheDir string, log zerolog.Logger) *Client {
	log = log.With().Str("client", "eodhd").Logger()
	return &Client{
		APIKey:       apiKey,
		BaseURL:      DefaultBaseURL,
		prices:       &http.Client{Transport: &diskCache{base: http.DefaultTransport, dir: cacheDir, log: log}},
		fundamentals: &http.Client{Transport: &diskCache{base: http.DefaultTransport, dir: cacheDir, period: dca.Monthly, log: log}},
		log:          log,
	}
}

// Symbol returns the EODHD symbol of ticker: US listing unless an exchange is given.
func Symbol(ticker string) string {
	if strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + ".US"
}

// Prices implements dca.MarketData.
//
// A missing expense ratio is not an error, the fee is 0.
func (c *Client) Prices(ctx context.Context, ticker string, r dca.Range) (dca.PriceSeries, error) {
	symbol := Symbol(ticker)
	closes, err := c.fetchPrices(ctx, symbol, r.From, r.To)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch eodhd prices of %s: %w", symbol, err)
	}
	fee, err := c.fetchFee(ctx, symbol)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", ticker).Msg("no expense ratio, using 0")
		fee = 0
	}
	return dca.NewPriceSeries(closes, fee), nil
}

func (c *Client) url(path string, query url.Values) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	query.Set("api_token", c.APIKey)
	query.Set("fmt", "json")
	return strings.TrimRight(base, "/") + path + "?" + query.Encode()
}

// fetchPrices returns the daily closes of a symbol, bounds included.
func (c *Client) fetchPrices(ctx context.Context, symbol string, from, to dca.Date) ([]dca.Close, error) {
	// https://eodhd.com/api/eod/MCD.US?api_token=demo&fmt=json&from=2017-01-05&to=2017-02-10
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	},
	addr := c.url("/api/eod/"+url.PathEscape(symbol), url.Values{"from": {from.String()}, "to": {to.String()}})
	type Info struct {
		Date  dca.Date         `json:"date"`
		Close *decimal.Decimal `json:"close"`
	}

	content := make([]Info, 0)
	if err := jwget(ctx, c.prices, addr, &content); err != nil {
		return nil, err
	}
	closes := make([]dca.Close, 0, len(content))
	for _, info := range content {
		if info.Close == nil {
			continue
		}
		closes = append(closes, dca.Close{Date: info.Date, Value: info.Close.Round(2).InexactFloat64()})
	}
	return closes, nil
}

// fetchFee returns the net expense ratio of an ETF.
func (c *Client) fetchFee(ctx context.Context, symbol string) (float64, error) {
	// https://eodhd.com/api/fundamentals/VTI.US?api_token=demo&fmt=json
	// { "General": {...}, "ETF_Data": { "NetExpenseRatio": "0.00030", ... } }
	addr := c.url("/api/fundamentals/"+url.PathEscape(symbol), url.Values{})

	var content any
	if err := jwget(ctx, c.fundamentals, addr, &content); err != nil {
		return 0, err
	}
	v, err := jsonpath.Get("$.ETF_Data.NetExpenseRatio", content)
	if err != nil {
		return 0, fmt.Errorf("no expense ratio for %s: %w", symbol, err)
	}
	return ratio(v)
}

// ratio converts a JSON number or numeric string into a nonnegative fraction.
func ratio(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, fmt.Errorf("invalid expense ratio %q: %w", x, err)
		}
	default:
		return 0, fmt.Errorf("invalid expense ratio %v", v)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative expense ratio %v", f)
	}
	return f, nil
}

// jwget performs an HTTP GET request to the given address and unmarshals the
// JSON response body into the provided data structure. It uses the provided
// http.Client for the request.
func jwget(ctx context.Context, client *http.Client, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Errorf("cannot http GET %v%v: %v", resp.Request.URL.Host, resp.Request.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	return json.Unmarshal(buf.Bytes(), data)
}
