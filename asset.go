package dca

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// AllocationTolerance is the accepted distance between the sum of weights and 1.
const AllocationTolerance = 0.001

// Asset is a position of a plan: a ticker and the fraction of every
// contribution it receives.
type Asset struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Allocation is the list of assets of a plan.
type Allocation []Asset

// Validate checks that every weight is in [0,1], that tickers are unique and
// that weights sum to 1 within AllocationTolerance.
func (a Allocation) Validate() error {
	if len(a) == 0 {
		return fmt.Errorf("%w: no assets", ErrInvalidAllocation)
	}
	seen := make(map[string]struct{}, len(a))
	sum := 0.0
	for _, asset := range a {
		if asset.Ticker == "" {
			return fmt.Errorf("%w: empty ticker", ErrInvalidAllocation)
		}
		if _, ok := seen[asset.Ticker]; ok {
			return fmt.Errorf("%w: duplicate ticker %s", ErrInvalidAllocation, asset.Ticker)
		}
		seen[asset.Ticker] = struct{}{}
		if math.IsNaN(asset.Weight) || asset.Weight < 0 || asset.Weight > 1 {
			return fmt.Errorf("%w: weight of %s is %v, want a value in [0,1]", ErrInvalidAllocation, asset.Ticker, asset.Weight)
		}
		sum += asset.Weight
	}
	if math.Abs(sum-1) > AllocationTolerance {
		return fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidAllocation, sum)
	}
	return nil
}

// Tickers returns the tickers in allocation order.
func (a Allocation) Tickers() []string {
	tickers := make([]string, len(a))
	for i, asset := range a {
		tickers[i] = asset.Ticker
	}
	return tickers
}

// EqualWeight returns an allocation giving 1/N to each ticker.
func EqualWeight(tickers ...string) Allocation {
	a := make(Allocation, len(tickers))
	for i, t := range tickers {
		a[i] = Asset{Ticker: t, Weight: 1 / float64(len(tickers))}
	}
	return a
}

// ParseAllocation parses "SPY=0.6,BND=0.4". Tickers are upper-cased.
func ParseAllocation(s string) (Allocation, error) {
	var a Allocation
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ticker, weight, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q want TICKER=WEIGHT", ErrInvalidAllocation, part)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: weight of %q: %w", ErrInvalidAllocation, ticker, err)
		}
		a = append(a, Asset{Ticker: strings.ToUpper(strings.TrimSpace(ticker)), Weight: w})
	}
	return a, a.Validate()
}

func (a Allocation) String() string {
	parts := make([]string, len(a))
	for i, asset := range a {
		parts[i] = fmt.Sprintf("%s=%s", asset.Ticker, strconv.FormatFloat(asset.Weight, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}
