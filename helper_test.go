package dca

import "time"

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// weekdays returns the closes of every weekday in [from, to], priced by price.
func weekdays(from, to Date, price func(Date) float64) []Close {
	var closes []Close
	for d := range NewRange(from, to).Days() {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		closes = append(closes, Close{Date: d, Value: price(d)})
	}
	return closes
}

// flat returns a constant price.
func flat(v float64) func(Date) float64 { return func(Date) float64 { return v } }

// flatSeries is a $10 asset trading every weekday of 2020.
func flatSeries() PriceSeries {
	return NewPriceSeries(weekdays(NewDate(2019, 12, 31), NewDate(2021, 1, 1), flat(10)), 0)
}

// flatPlan is $1000 then $100 monthly during one year, from 2020-01-01.
func flatPlan(allocation ...Asset) Plan {
	return Plan{
		Initial:    1000,
		Periodic:   100,
		Start:      NewDate(2020, 1, 1),
		Years:      1,
		Frequency:  Monthly,
		Allocation: allocation,
	}
}
