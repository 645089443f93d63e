package dca

import (
	"context"
	"fmt"
)

// Dated is a row of a date-indexed series.
type Dated interface {
	When() Date
}

// AlignFrom returns the rows dated on or after from, in their original order.
func AlignFrom[T Dated](rows []T, from Date) []T {
	aligned := make([]T, 0, len(rows))
	for _, row := range rows {
		if !row.When().Before(from) {
			aligned = append(aligned, row)
		}
	}
	return aligned
}

// AlignToBenchmark drops the portfolio rows earlier than the first day of the
// benchmark.
func AlignToBenchmark(portfolio, benchmark []PortfolioSnapshot) ([]PortfolioSnapshot, error) {
	if len(benchmark) == 0 {
		return nil, ErrEmptyBenchmark
	}
	from := benchmark[0].Date
	for _, b := range benchmark[1:] {
		if b.Date.Before(from) {
			from = b.Date
		}
	}
	return AlignFrom(portfolio, from), nil
}

// Comparison is a plan simulated next to a benchmark.
type Comparison struct {
	Benchmark string  `json:"benchmark"`
	From      Date    `json:"from"` // first day both simulations cover
	Portfolio *Result `json:"portfolio"`
	Reference *Result `json:"reference"` // the plan invested entirely in the benchmark
}

// Compare simulates the plan and the same plan invested entirely in
// benchmark.
//
// When the benchmark starts trading after the plan assets, the plan is
// simulated from the first day of the benchmark, up to the same end, so that
// both start investing together. Both results keep the plan duration for
// their CAGR, and the portfolio result keeps the plan as requested.
func Compare(ctx context.Context, md MarketData, p Plan, benchmark string) (*Comparison, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	tickers := append(p.Allocation.Tickers(), benchmark)
	prices, err := Fetch(ctx, md, p.FetchRange(), tickers...)
	if err != nil {
		return nil, err
	}

	ref, err := simulate(p.With(Allocation{{Ticker: benchmark, Weight: 1}}), prices, p.Duration())
	if err != nil {
		return nil, fmt.Errorf("cannot simulate benchmark %s: %w", benchmark, err)
	}
	cmp := &Comparison{Benchmark: benchmark, From: ref.Portfolio[0].Date, Reference: ref}

	user := p
	if cmp.From.After(firstDay(prices, p)) {
		// prices are already bounded by the plan end
		aligned := make(Memory, len(prices))
		for t, s := range prices {
			aligned[t] = AlignFrom(s, cmp.From)
		}
		prices = aligned
		user.Start = cmp.From
	}

	res, err := simulate(user, prices, p.Duration())
	if err != nil {
		return nil, err
	}
	res.Plan = p
	res.Portfolio, err = AlignToBenchmark(res.Portfolio, ref.Portfolio)
	if err != nil {
		return nil, err
	}
	cmp.Portfolio = res
	return cmp, nil
}

// firstDay returns the earliest trading day on or after the plan start among
// the plan assets.
func firstDay(prices Memory, p Plan) Date {
	var first Date
	for _, t := range p.Allocation.Tickers() {
		s := AlignFrom(prices[t], p.Start)
		if len(s) > 0 && (first.IsZero() || s[0].Date.Before(first)) {
			first = s[0].Date
		}
	}
	return first
}
