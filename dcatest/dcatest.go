// Package dcatest provides synthetic markets for tests.
package dcatest

import (
	"math"
	"time"

	"github.com/etnz/dca"
)

// Weekdays returns the closes of every weekday in [from, to], priced by price.
func Weekdays(from, to dca.Date, price func(dca.Date) float64) []dca.Close {
	var closes []dca.Close
	for d := range dca.NewRange(from, to).Days() {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		closes = append(closes, dca.Close{Date: d, Value: price(d)})
	}
	return closes
}

// Series is a fee-less asset trading every weekday in [from, to].
func Series(from, to dca.Date, price func(dca.Date) float64) dca.PriceSeries {
	return dca.NewPriceSeries(Weekdays(from, to, price), 0)
}

// Flat returns a constant price.
func Flat(v float64) func(dca.Date) float64 { return func(dca.Date) float64 { return v } }

// Growth returns a price starting at v on from and growing by rate every year,
// rounded to cents.
func Growth(from dca.Date, v, rate float64) func(dca.Date) float64 {
	return func(d dca.Date) float64 {
		years := float64(from.DaysTo(d)) / 365.25
		return math.Round(v*math.Pow(1+rate, years)*100) / 100
	}
}

// Market returns a market of 2020 and 2021 with four assets: UP grows by 20%
// a year, DOWN loses 10% a year, FLAT stays at $10 and WAVE oscillates
// around $50.
func Market() dca.Memory {
	from, to := dca.NewDate(2019, 12, 31), dca.NewDate(2022, 1, 3)
	return dca.Memory{
		"UP":   Series(from, to, Growth(from, 20, 0.2)),
		"DOWN": Series(from, to, Growth(from, 40, -0.1)),
		"FLAT": Series(from, to, Flat(10)),
		"WAVE": Series(from, to, func(d dca.Date) float64 {
			return math.Round((50+5*math.Sin(float64(from.DaysTo(d))/20))*100) / 100
		}),
	}
}

// Plan is $1000 then $100 monthly during two years from 2020-01-01.
func Plan(allocation ...dca.Asset) dca.Plan {
	return dca.Plan{
		Initial:    1000,
		Periodic:   100,
		Start:      dca.NewDate(2020, 1, 1),
		Years:      2,
		Frequency:  dca.Monthly,
		Allocation: allocation,
	}
}
