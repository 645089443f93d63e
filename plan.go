package dca

import (
	"fmt"
	"math"
)

// DefaultCurrency is used when a plan does not name one.
const DefaultCurrency = "USD"

// Plan describes a periodic investment.
type Plan struct {
	Initial    float64    `json:"initial"`  // invested on the start date
	Periodic   float64    `json:"periodic"` // invested on every period after the first one
	Start      Date       `json:"start"`
	Years      int        `json:"years"`
	Frequency  Frequency  `json:"frequency"`
	Allocation Allocation `json:"allocation"`
	Currency   string     `json:"currency,omitempty"`
}

// Range returns the simulated days, from the start to the same day Years later.
func (p Plan) Range() Range { return Range{From: p.Start, To: p.Start.AddYear(p.Years)} }

// FetchRange returns the days of market data needed to simulate the plan.
//
// It begins a week before the start so that the first trading day has a
// previous close.
func (p Plan) FetchRange() Range {
	r := p.Range()
	r.From = r.From.Add(-7)
	return r
}

// Duration returns the plan duration in years.
func (p Plan) Duration() float64 { return float64(p.Years) }

// Money returns v in the plan currency.
func (p Plan) Money(v float64) Money {
	cur := p.Currency
	if cur == "" {
		cur = DefaultCurrency
	}
	return M(v, cur)
}

// validateTerms validates everything but the allocation.
func (p Plan) validateTerms() error {
	switch {
	case math.IsNaN(p.Initial) || p.Initial < 0:
		return fmt.Errorf("%w: initial amount %v, want >= 0", ErrInvalidPlan, p.Initial)
	case math.IsNaN(p.Periodic) || p.Periodic < 0:
		return fmt.Errorf("%w: periodic amount %v, want >= 0", ErrInvalidPlan, p.Periodic)
	case p.Initial == 0 && p.Periodic == 0:
		return fmt.Errorf("%w: nothing to invest", ErrInvalidPlan)
	case p.Start.IsZero():
		return fmt.Errorf("%w: missing start date", ErrInvalidPlan)
	case p.Years < 1:
		return fmt.Errorf("%w: duration %d years, want >= 1", ErrInvalidPlan, p.Years)
	case !p.Frequency.Valid():
		return fmt.Errorf("%w: %d", ErrUnknownFrequency, int(p.Frequency))
	}
	return nil
}

// Validate checks the plan before any simulation.
func (p Plan) Validate() error {
	if err := p.validateTerms(); err != nil {
		return err
	}
	return p.Allocation.Validate()
}

// With returns a copy of the plan investing in allocation.
func (p Plan) With(allocation Allocation) Plan {
	p.Allocation = allocation
	return p
}
