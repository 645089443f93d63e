package server

import (
	"github.com/etnz/dca"
)

// SimulateRequest is the body of POST /simulate.
type SimulateRequest struct {
	dca.Plan
	Benchmark string        `json:"benchmark,omitempty"`
	Evolution dca.Frequency `json:"evolution,omitempty"` // periods of the report evolution table
}

// Result is a simulation with its errors spelled out.
type Result struct {
	*dca.Result
	Errors map[string]string `json:"errors,omitempty"` // keyed by "asset:T", "cagr:T", "volatility:T" or "sharpe"
}

func newResult(res *dca.Result) *Result {
	r := &Result{Result: res}
	set := func(key string, err error) {
		if err == nil {
			return
		}
		if r.Errors == nil {
			r.Errors = make(map[string]string)
		}
		r.Errors[key] = err.Error()
	}
	for _, a := range res.Assets {
		set("asset:"+a.Ticker, a.Err)
	}
	for _, row := range res.Metrics.Rows {
		set("cagr:"+row.Ticker, row.Err)
	}
	for _, v := range res.Metrics.Volatility {
		set("volatility:"+v.Ticker, v.Err)
	}
	set("sharpe", res.Metrics.SharpeErr)
	return r
}

// Benchmark is the reference simulation of a comparison.
type Benchmark struct {
	Ticker    string   `json:"ticker"`
	From      dca.Date `json:"from"`
	Reference *Result  `json:"reference"`
}

// SimulateResponse is the body returned by POST /simulate.
type SimulateResponse struct {
	*Result
	Benchmark *Benchmark `json:"benchmark,omitempty"`
	Report    string     `json:"report"` // markdown
}

// OptimizeRequest is the body of POST /optimize. The plan allocation is
// ignored.
type OptimizeRequest struct {
	dca.Plan
	TopN    int             `json:"topN,omitempty"`
	Catalog []dca.Candidate `json:"catalog,omitempty"`
}

// Skip is a candidate excluded from the ranking.
type Skip struct {
	dca.Candidate
	Error string `json:"error"`
}

// OptimizeResponse is the body returned by POST /optimize.
type OptimizeResponse struct {
	Ranking     []dca.Score    `json:"ranking"`
	Skipped     []Skip         `json:"skipped,omitempty"`
	Composition dca.Allocation `json:"composition"`
	Result      *Result        `json:"result"`
	Report      string         `json:"report"`
}

// ForecastRequest is the body of POST /forecast.
type ForecastRequest struct {
	Tickers []string `json:"tickers"`
	From    dca.Date `json:"from"`
	To      dca.Date `json:"to"`
}
