package dca

import (
	"context"
	"errors"
	"fmt"
)

// AssetLedger is the simulation of one asset of a plan.
type AssetLedger struct {
	Asset
	Contributions []Contribution `json:"contributions"`
	Snapshots     []Snapshot     `json:"snapshots"`
	Err           error          `json:"-"` // the asset could not be simulated
}

// Terminal returns the last snapshot of the asset.
func (a AssetLedger) Terminal() (Snapshot, bool) {
	if len(a.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return a.Snapshots[len(a.Snapshots)-1], true
}

// Result is the outcome of a simulation.
type Result struct {
	Plan      Plan                `json:"plan"`
	Assets    []AssetLedger       `json:"assets"`
	Portfolio []PortfolioSnapshot `json:"portfolio"`
	Metrics   Metrics             `json:"metrics"`
}

// Terminal returns the last portfolio snapshot.
func (r *Result) Terminal() PortfolioSnapshot {
	if len(r.Portfolio) == 0 {
		return PortfolioSnapshot{}
	}
	return r.Portfolio[len(r.Portfolio)-1]
}

// Run simulates the plan on prices from md.
func Run(ctx context.Context, md MarketData, p Plan) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	prices, err := Fetch(ctx, md, p.FetchRange(), p.Allocation.Tickers()...)
	if err != nil {
		return nil, err
	}
	return simulate(p, prices, p.Duration())
}

// simulate runs the whole pipeline on already fetched prices.
//
// An asset without any contribution, because it does not trade in the plan
// range, is reported unavailable in its ledger. Any other failure of an asset
// fails the simulation, as does having no asset at all to simulate.
func simulate(p Plan, prices Memory, years float64) (*Result, error) {
	res := &Result{Plan: p}
	var ledgers [][]Snapshot
	var errs []error
	for _, a := range p.Allocation {
		ledger := AssetLedger{Asset: a}
		series := prices[a.Ticker]
		ledger.Contributions, ledger.Err = Schedule(p, a, series.Dates())
		if ledger.Err == nil {
			ledger.Snapshots, ledger.Err = Simulate(ledger.Contributions, series)
		}
		switch {
		case ledger.Err == nil:
			ledgers = append(ledgers, ledger.Snapshots)
		case errors.Is(ledger.Err, ErrNoContributions):
			errs = append(errs, ledger.Err)
		default:
			return nil, fmt.Errorf("cannot simulate %s: %w", a.Ticker, ledger.Err)
		}
		res.Assets = append(res.Assets, ledger)
	}
	if len(ledgers) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoContributions, errors.Join(errs...))
	}

	var err error
	res.Portfolio, err = Consolidate(ledgers...)
	if err != nil {
		return nil, err
	}
	res.Metrics = ComputeMetrics(res.Assets, res.Portfolio, years)
	return res, nil
}
