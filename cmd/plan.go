package cmd

import (
	"flag"
	"fmt"

	"github.com/etnz/dca"
)

// planFlags are the flags describing a plan.
type planFlags struct {
	initial    float64
	periodic   float64
	start      string
	years      int
	frequency  string
	allocation string
	currency   string
}

// SetFlags declares the plan flags, the allocation one only if withAllocation.
func (p *planFlags) SetFlags(f *flag.FlagSet, withAllocation bool) {
	f.Float64Var(&p.initial, "i", 10000, "Initial investment, on the start date.")
	f.Float64Var(&p.periodic, "p", 500, "Periodic investment, on the first trading day of every following period.")
	f.StringVar(&p.start, "s", "-10y", "Start date, or a relative date like -10y (see the dates topic).")
	f.IntVar(&p.years, "y", 10, "Duration in years.")
	f.StringVar(&p.frequency, "f", "monthly", "Contribution frequency (monthly, quarterly, semiannual, annual).")
	f.StringVar(&p.currency, "c", dca.DefaultCurrency, "Currency of the amounts, for display.")
	if withAllocation {
		f.StringVar(&p.allocation, "a", "SPY=1", "Allocation as TICKER=WEIGHT pairs summing to 1, e.g. SPY=0.6,BND=0.4.")
	}
}

// plan returns the plan described by the flags.
//
// The allocation is parsed only if set, search commands do without it.
func (p *planFlags) plan() (dca.Plan, error) {
	start, err := dca.ParseDate(p.start)
	if err != nil {
		return dca.Plan{}, fmt.Errorf("parsing start date: %w", err)
	}
	freq, err := dca.ParseFrequency(p.frequency)
	if err != nil {
		return dca.Plan{}, fmt.Errorf("parsing frequency: %w", err)
	}
	plan := dca.Plan{
		Initial:   p.initial,
		Periodic:  p.periodic,
		Start:     start,
		Years:     p.years,
		Frequency: freq,
		Currency:  p.currency,
	}
	if p.allocation != "" {
		if plan.Allocation, err = dca.ParseAllocation(p.allocation); err != nil {
			return dca.Plan{}, err
		}
	}
	return plan, nil
}
