package dca

import (
	"fmt"
	"math"
)

// Snapshot is the state of one asset right after a contribution.
type Snapshot struct {
	Date         Date    `json:"date"`
	Ticker       string  `json:"ticker"`
	Contribution float64 `json:"contribution"`
	UnitPrice    float64 `json:"unitPrice"`
	Units        float64 `json:"units"` // bought on that day
	TotalUnits   float64 `json:"totalUnits"`
	Leftover     float64 `json:"leftover"` // uninvested cash carried to the next contribution
	Invested     float64 `json:"invested"` // cumulative contributions
	NetWorth     float64 `json:"netWorth"`
	PnL          float64 `json:"pnl"`
	PnLPercent   Percent `json:"pnlPercent"`
}

// When returns the day of the snapshot.
func (s Snapshot) When() Date { return s.Date }

// holding is the state carried from one contribution to the next.
type holding struct {
	leftover float64
	units    float64
	invested float64
}

// buy returns the holding after investing c at the unit price, and the
// number of units bought.
func (h holding) buy(c Contribution, price float64) (holding, float64) {
	available := c.Amount + h.leftover
	bought := math.Floor(available / price)
	leftover := available - bought*price
	// float division may be one unit off around exact multiples.
	if leftover < 0 {
		bought--
		leftover += price
	} else if leftover >= price {
		bought++
		leftover -= price
	}
	return holding{
		leftover: leftover,
		units:    h.units + bought,
		invested: h.invested + c.Amount,
	}, bought
}

// Simulate buys whole units of the asset on every contribution date, carrying
// the uninvested cash forward, and returns one snapshot per contribution.
//
// Contributions must be in date order and dated on trading days of prices.
func Simulate(contributions []Contribution, prices PriceSeries) ([]Snapshot, error) {
	snapshots := make([]Snapshot, 0, len(contributions))
	var h holding
	var last Date
	for i, c := range contributions {
		if i > 0 && !last.Before(c.Date) {
			return nil, fmt.Errorf("contributions of %s out of order at %s", c.Ticker, c.Date)
		}
		last = c.Date
		if c.Amount < 0 {
			return nil, fmt.Errorf("negative contribution %v to %s on %s", c.Amount, c.Ticker, c.Date)
		}
		record, ok := prices.Get(c.Date)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrMissingPrice, c.Ticker, c.Date)
		}
		price := record.UnitPrice()
		if !(price > 0) {
			return nil, fmt.Errorf("%w: %s on %s has unit price %v", ErrMissingPrice, c.Ticker, c.Date, price)
		}

		var bought float64
		h, bought = h.buy(c, price)
		if h.invested <= 0 {
			return nil, fmt.Errorf("%w: %s on %s", ErrZeroInvestment, c.Ticker, c.Date)
		}
		netWorth := h.units*price + h.leftover
		snapshots = append(snapshots, Snapshot{
			Date:         c.Date,
			Ticker:       c.Ticker,
			Contribution: c.Amount,
			UnitPrice:    price,
			Units:        bought,
			TotalUnits:   h.units,
			Leftover:     h.leftover,
			Invested:     h.invested,
			NetWorth:     netWorth,
			PnL:          netWorth - h.invested,
			PnLPercent:   pnlPercent(netWorth, h.invested),
		})
	}
	return snapshots, nil
}

// pnlPercent returns the gain of netWorth over invested, in percent with two
// decimals. invested must be positive.
func pnlPercent(netWorth, invested float64) Percent {
	return Percent(round((netWorth/invested-1)*100, 2))
}
