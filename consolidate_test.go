package dca

import (
	"context"
	"math"
	"slices"
	"testing"
)

func TestConsolidate(t *testing.T) {
	d1, d2, d3 := NewDate(2024, 1, 2), NewDate(2024, 2, 1), NewDate(2024, 3, 1)
	a := []Snapshot{
		{Date: d1, Ticker: "A", Contribution: 500, Invested: 500, NetWorth: 500},
		{Date: d2, Ticker: "A", Contribution: 50, Invested: 550, NetWorth: 600, PnL: 50},
	}
	b := []Snapshot{
		{Date: d1, Ticker: "B", Contribution: 500, Invested: 500, NetWorth: 500},
		{Date: d3, Ticker: "B", Contribution: 50, Invested: 550, NetWorth: 495, PnL: -55},
	}
	got, err := Consolidate(a, b)
	if err != nil {
		t.Fatalf("Consolidate() error = %v", err)
	}
	want := []PortfolioSnapshot{
		{Date: d1, Contribution: 1000, Invested: 1000, NetWorth: 1000, PnL: 0, PnLPercent: 0, Assets: 2},
		{Date: d2, Contribution: 50, Invested: 1050, NetWorth: 600, PnL: 50, PnLPercent: -42.86, Assets: 1},
		{Date: d3, Contribution: 50, Invested: 1100, NetWorth: 495, PnL: -55, PnLPercent: -55, Assets: 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Consolidate() = %+v\nwant %+v", got, want)
	}
}

func TestConsolidate_ClosedMarket(t *testing.T) {
	closed := NewDate(2020, 2, 3)
	aCloses := weekdays(NewDate(2019, 12, 31), NewDate(2021, 1, 1), flat(10))
	bCloses := slices.DeleteFunc(slices.Clone(aCloses), func(c Close) bool { return c.Date == closed })
	md := Memory{
		"A": NewPriceSeries(aCloses, 0),
		"B": NewPriceSeries(bCloses, 0),
	}
	res, err := Run(context.Background(), md, flatPlan(Asset{"A", 0.5}, Asset{"B", 0.5}))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	i := slices.IndexFunc(res.Portfolio, func(p PortfolioSnapshot) bool { return p.Date == closed })
	if i < 0 {
		t.Fatalf("no portfolio snapshot on %v", closed)
	}
	aOnClosed := res.Assets[0].Snapshots[1]
	if aOnClosed.Date != closed {
		t.Fatalf("A second contribution on %v, want %v", aOnClosed.Date, closed)
	}
	p := res.Portfolio[i]
	if p.Assets != 1 || p.Contribution != 50 || p.NetWorth != aOnClosed.NetWorth {
		t.Errorf("portfolio on %v = %+v, want only A: %+v", closed, p, aOnClosed)
	}
	if next := res.Portfolio[i+1]; next.Date != closed.Add(1) || next.Assets != 1 || next.Contribution != 50 {
		t.Errorf("portfolio the next day = %+v, want only B", next)
	}

	// the terminal day has both assets
	last := res.Terminal()
	var sum float64
	for _, l := range res.Assets {
		s, _ := l.Terminal()
		sum += s.NetWorth
	}
	if last.Assets != 2 || math.Abs(last.NetWorth-sum) > 1e-9 {
		t.Errorf("terminal net worth %v, want the sum of assets %v", last.NetWorth, sum)
	}
}
