package dca

import (
	"fmt"
	"slices"
)

// PortfolioSnapshot is the portfolio on a day where at least one asset
// received a contribution.
type PortfolioSnapshot struct {
	Date         Date    `json:"date"`
	Contribution float64 `json:"contribution"` // sum of the day's contributions
	Invested     float64 `json:"invested"`     // running sum of daily contributions
	NetWorth     float64 `json:"netWorth"`     // of the assets present that day
	PnL          float64 `json:"pnl"`
	PnLPercent   Percent `json:"pnlPercent"`
	Assets       int     `json:"assets"`
}

// When returns the day of the snapshot.
func (p PortfolioSnapshot) When() Date { return p.Date }

// Consolidate merges per-asset ledgers into one ledger indexed by date.
//
// A day only sums the assets that have a snapshot on that day: there is no
// calendar reindexing nor carrying of values of other assets.
func Consolidate(ledgers ...[]Snapshot) ([]PortfolioSnapshot, error) {
	byDate := make(map[Date]*PortfolioSnapshot)
	for _, ledger := range ledgers {
		for _, s := range ledger {
			p, ok := byDate[s.Date]
			if !ok {
				p = &PortfolioSnapshot{Date: s.Date}
				byDate[s.Date] = p
			}
			p.Contribution += s.Contribution
			p.NetWorth += s.NetWorth
			p.PnL += s.PnL
			p.Assets++
		}
	}

	portfolio := make([]PortfolioSnapshot, 0, len(byDate))
	for _, p := range byDate {
		portfolio = append(portfolio, *p)
	}
	slices.SortFunc(portfolio, func(a, b PortfolioSnapshot) int { return a.Date.Compare(b.Date) })

	invested := 0.0
	for i := range portfolio {
		invested += portfolio[i].Contribution
		if invested <= 0 {
			return nil, fmt.Errorf("%w: portfolio on %s", ErrZeroInvestment, portfolio[i].Date)
		}
		portfolio[i].Invested = invested
		portfolio[i].PnLPercent = pnlPercent(portfolio[i].NetWorth, invested)
	}
	return portfolio, nil
}
