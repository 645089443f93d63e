package dca

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
)

// Candidate is an asset the search may select.
type Candidate struct {
	Category string `json:"category"`
	Ticker   string `json:"ticker"`
}

// DefaultCatalog has one representative ETF per category.
var DefaultCatalog = []Candidate{
	{"US Large Cap", "SPY"},
	{"US Growth", "QQQ"},
	{"US Value", "VTV"},
	{"US Small Cap", "IWM"},
	{"International Developed", "VEA"},
	{"Emerging Markets", "VWO"},
	{"Sector", "XLK"},
	{"Fixed Income", "BND"},
	{"Real Estate", "VNQ"},
	{"Commodities", "GLD"},
	{"Alternative", "ARKK"},
	{"Thematic", "SOXX"},
	{"Factor", "MTUM"},
	{"Dividend", "SCHD"},
}

// DefaultTopN is the number of candidates selected by default.
const DefaultTopN = 5

// SearchOptions configures Search. The zero value searches DefaultCatalog for
// the DefaultTopN candidates, without logging.
type SearchOptions struct {
	TopN    int
	Catalog []Candidate
	Log     *zerolog.Logger
}

// Score is the outcome of a candidate simulated alone.
type Score struct {
	Candidate
	NetWorth   float64 `json:"netWorth"`
	Invested   float64 `json:"invested"`
	PnLPercent Percent `json:"pnlPercent"`
}

// Skip is a candidate excluded from the ranking.
type Skip struct {
	Candidate
	Err error `json:"-"`
}

// SearchResult is the outcome of Search.
type SearchResult struct {
	Ranking     []Score    `json:"ranking"` // best first
	Skipped     []Skip     `json:"skipped"`
	Composition Allocation `json:"composition"`
	Result      *Result    `json:"result"`
}

// Search simulates the plan terms on every candidate alone, ranks them by
// terminal PnL%, and simulates an equal-weight portfolio of the best ones.
//
// The plan allocation is ignored. A candidate that cannot be fetched or
// simulated is skipped. Ties keep the catalog order.
func Search(ctx context.Context, md MarketData, p Plan, opts SearchOptions) (*SearchResult, error) {
	if err := p.validateTerms(); err != nil {
		return nil, err
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = *opts.Log
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = DefaultCatalog
	}
	n := opts.TopN
	if n <= 0 {
		n = DefaultTopN
	}

	res := &SearchResult{}
	prices := make(Memory, len(catalog))
	var errs []error
	skip := func(c Candidate, err error) {
		log.Warn().Err(err).Str("ticker", c.Ticker).Str("category", c.Category).Msg("skipping candidate")
		res.Skipped = append(res.Skipped, Skip{Candidate: c, Err: err})
		errs = append(errs, err)
	}
	for _, c := range catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := md.Prices(ctx, c.Ticker, p.FetchRange())
		if err != nil {
			skip(c, fmt.Errorf("cannot fetch prices of %s: %w", c.Ticker, err))
			continue
		}
		prices[c.Ticker] = s
		single, err := simulate(p.With(Allocation{{Ticker: c.Ticker, Weight: 1}}), prices, p.Duration())
		if err != nil {
			skip(c, err)
			continue
		}
		last := single.Terminal()
		res.Ranking = append(res.Ranking, Score{
			Candidate:  c,
			NetWorth:   last.NetWorth,
			Invested:   last.Invested,
			PnLPercent: last.PnLPercent,
		})
		log.Debug().Str("ticker", c.Ticker).Stringer("pnl", last.PnLPercent).Msg("candidate simulated")
	}
	if len(res.Ranking) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoCandidates, errors.Join(errs...))
	}

	slices.SortStableFunc(res.Ranking, func(a, b Score) int { return cmp.Compare(b.PnLPercent, a.PnLPercent) })
	top := res.Ranking[:min(n, len(res.Ranking))]
	tickers := make([]string, len(top))
	for i, s := range top {
		tickers[i] = s.Ticker
	}
	res.Composition = EqualWeight(tickers...)

	var err error
	res.Result, err = simulate(p.With(res.Composition), prices, p.Duration())
	if err != nil {
		return nil, err
	}
	return res, nil
}
