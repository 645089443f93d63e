package dca

import (
	"context"
	"fmt"
)

// MarketData provides price series for tickers.
//
// Implementations return trading days within the range, bounds included,
// ordered and deduplicated, with PrevClose derived and the fee attached.
type MarketData interface {
	Prices(ctx context.Context, ticker string, r Range) (PriceSeries, error)
}

// Memory is an in-memory MarketData, mostly used in tests and offline runs.
type Memory map[string]PriceSeries

// Prices implements MarketData.
func (m Memory) Prices(ctx context.Context, ticker string, r Range) (PriceSeries, error) {
	s, ok := m[ticker]
	if !ok {
		return nil, fmt.Errorf("unknown ticker %q", ticker)
	}
	return s.Between(r), nil
}

// Fetch loads the series of every ticker into a Memory.
//
// It stops on the first error.
func Fetch(ctx context.Context, md MarketData, r Range, tickers ...string) (Memory, error) {
	m := make(Memory, len(tickers))
	for _, t := range tickers {
		if _, ok := m[t]; ok {
			continue
		}
		s, err := md.Prices(ctx, t, r)
		if err != nil {
			return nil, fmt.Errorf("cannot fetch prices of %s: %w", t, err)
		}
		m[t] = s
	}
	return m, nil
}
