package dca

import "fmt"

// Contribution is an amount of cash invested in one asset on one trading day.
type Contribution struct {
	Date   Date    `json:"date"`
	Ticker string  `json:"ticker"`
	Amount float64 `json:"amount"`
}

// When returns the day of the contribution.
func (c Contribution) When() Date { return c.Date }

// Schedule returns the contributions of one asset of the plan, in date order.
//
// days is the asset's trading-day index, in increasing order. The initial
// contribution lands on the plan start, or on the first trading day after
// it. The periodic contribution lands on the first trading day of every
// calendar period starting on or after one period past that effective start.
// Contributions falling on the same day are summed, and zero amounts are not
// emitted.
func Schedule(p Plan, a Asset, days []Date) ([]Contribution, error) {
	f := p.Frequency
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFrequency, int(f))
	}
	end := p.Range().To

	first := -1
	for i, day := range days {
		if !day.Before(p.Start) {
			first = i
			break
		}
	}
	if first < 0 || days[first].After(end) {
		return nil, fmt.Errorf("%w: %s has no trading day in %s", ErrNoContributions, a.Ticker, p.Range())
	}

	var amounts History[float64]
	effective := days[first]
	if v := p.Initial * a.Weight; v > 0 {
		amounts.AppendAdd(effective, v)
	}

	boundary := effective.AddMonth(f.Months())
	var period Date
	for _, day := range days[first:] {
		if day.After(end) {
			break
		}
		start := day.StartOf(f)
		if start == period {
			continue // not the first trading day of its period
		}
		period = start
		if start.Before(boundary) {
			continue
		}
		if v := p.Periodic * a.Weight; v > 0 {
			amounts.AppendAdd(day, v)
		}
	}

	if amounts.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has a zero amount to invest", ErrNoContributions, a.Ticker)
	}
	contributions := make([]Contribution, 0, amounts.Len())
	for day, v := range amounts.Values() {
		contributions = append(contributions, Contribution{Date: day, Ticker: a.Ticker, Amount: v})
	}
	return contributions, nil
}
