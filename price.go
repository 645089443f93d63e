package dca

import (
	"fmt"
	"slices"
)

// PriceRecord is the market data of one asset on one trading day.
type PriceRecord struct {
	Date      Date    `json:"date"`
	Close     float64 `json:"close"`
	PrevClose float64 `json:"prevClose"` // close of the previous trading day
	Fee       float64 `json:"fee"`       // expense ratio as a fraction, 0 when unknown
}

// When returns the trading day of the record.
func (p PriceRecord) When() Date { return p.Date }

// UnitPrice is the price paid for one unit on that day: the previous close
// increased by the fee ratio.
func (p PriceRecord) UnitPrice() float64 { return p.PrevClose * (1 + p.Fee) }

// PriceSeries is the ordered list of an asset's trading days.
//
// Dates are strictly increasing.
type PriceSeries []PriceRecord

// Close is a raw daily close as returned by market data sources.
type Close struct {
	Date  Date
	Value float64
}

// NewPriceSeries builds a series from daily closes.
//
// Closes are sorted, and on duplicate dates the last one wins. PrevClose is the
// close of the previous entry, so the first day, which has none, is dropped.
func NewPriceSeries(closes []Close, fee float64) PriceSeries {
	var h History[float64]
	for _, c := range closes {
		h.Append(c.Date, c.Value)
	}
	if h.Len() < 2 {
		return nil
	}
	series := make(PriceSeries, 0, h.Len()-1)
	var prev float64
	first := true
	for day, v := range h.Values() {
		if !first {
			series = append(series, PriceRecord{Date: day, Close: v, PrevClose: prev, Fee: fee})
		}
		first = false
		prev = v
	}
	return series
}

func (s PriceSeries) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(s, day, func(p PriceRecord, d Date) int { return p.Date.Compare(d) })
}

// Get returns the record of that trading day.
func (s PriceSeries) Get(day Date) (PriceRecord, bool) {
	if i, found := s.search(day); found {
		return s[i], true
	}
	return PriceRecord{}, false
}

// Dates returns the trading-day index of the series.
func (s PriceSeries) Dates() []Date {
	days := make([]Date, len(s))
	for i, p := range s {
		days[i] = p.Date
	}
	return days
}

// First returns the first trading day, or the zero date.
func (s PriceSeries) First() Date {
	if len(s) == 0 {
		return Date{}
	}
	return s[0].Date
}

// Last returns the last trading day, or the zero date.
func (s PriceSeries) Last() Date {
	if len(s) == 0 {
		return Date{}
	}
	return s[len(s)-1].Date
}

// Between returns the records in r, bounds included.
func (s PriceSeries) Between(r Range) PriceSeries {
	from, _ := s.search(r.From)
	to, found := s.search(r.To)
	if found {
		to++
	}
	if from >= to {
		return nil
	}
	return s[from:to]
}

// Check reports whether the series is ordered, deduplicated and priced.
func (s PriceSeries) Check() error {
	for i, p := range s {
		if i > 0 && !s[i-1].Date.Before(p.Date) {
			return fmt.Errorf("price series not strictly increasing at %s", p.Date)
		}
		if p.Fee < 0 {
			return fmt.Errorf("negative fee %v on %s", p.Fee, p.Date)
		}
	}
	return nil
}
