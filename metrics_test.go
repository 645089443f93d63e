package dca

import (
	"errors"
	"math"
	"testing"
)

func TestCAGR(t *testing.T) {
	testCases := []struct {
		name                    string
		netWorth, invested, yrs float64
		want                    Percent
		err                     error
	}{
		{"ten percent", 2420, 2000, 2, 10, nil},
		{"flat", 2200, 2200, 1, 0, nil},
		{"loss", 900, 1000, 1, -10, nil},
		{"zero duration", 1100, 1000, 0, 0, ErrZeroDuration},
		{"zero investment", 1100, 0, 1, 0, ErrZeroInvestment},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CAGR(tc.netWorth, tc.invested, tc.yrs)
			if !errors.Is(err, tc.err) {
				t.Fatalf("CAGR() error = %v, want %v", err, tc.err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("CAGR() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCAGR_RoundTrip(t *testing.T) {
	for _, tc := range []struct{ n, i, d float64 }{
		{1500, 1000, 3},
		{5321.17, 4800, 5},
		{812, 1000, 2.5},
		{12000, 6000, 10},
	} {
		got, err := CAGR(tc.n, tc.i, tc.d)
		if err != nil {
			t.Fatalf("CAGR(%v, %v, %v) error = %v", tc.n, tc.i, tc.d, err)
		}
		rate := math.Pow(tc.n/tc.i, 1/tc.d) - 1
		want := math.Round(rate*10000) / 100
		if math.Abs(float64(got)-want) > 1e-9 {
			t.Errorf("CAGR(%v, %v, %v) = %v, want %v", tc.n, tc.i, tc.d, got, want)
		}
	}
}

func TestVolatility(t *testing.T) {
	got, err := Volatility([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Volatility() error = %v", err)
	}
	// sample standard deviation: sqrt(5/3)
	if got != 1.29 {
		t.Errorf("Volatility() = %v, want 1.29", got)
	}
	if got, err := Volatility([]float64{3, 3, 3}); err != nil || got != 0 {
		t.Errorf("Volatility(flat) = %v, %v, want 0, nil", got, err)
	}
	for _, series := range [][]float64{nil, {1}} {
		if _, err := Volatility(series); !errors.Is(err, ErrUndefinedVolatility) {
			t.Errorf("Volatility(%v) error = %v, want ErrUndefinedVolatility", series, err)
		}
	}
}

func TestSharpe(t *testing.T) {
	if got, err := Sharpe(12, 4); err != nil || got != 2.5 {
		t.Errorf("Sharpe(12, 4) = %v, %v, want 2.5", got, err)
	}
	if got, err := Sharpe(-1, 3); err != nil || got != -1 {
		t.Errorf("Sharpe(-1, 3) = %v, %v, want -1", got, err)
	}
	if got, err := Sharpe(7, 3); err != nil || got != 1.67 {
		t.Errorf("Sharpe(7, 3) = %v, %v, want 1.67", got, err)
	}
	if _, err := Sharpe(12, 0); !errors.Is(err, ErrUndefinedVolatility) {
		t.Errorf("Sharpe(12, 0) error = %v, want ErrUndefinedVolatility", err)
	}
}

func TestComputeMetrics(t *testing.T) {
	assets := []AssetLedger{
		{
			Asset: Asset{"A", 0.5},
			Snapshots: []Snapshot{
				{Ticker: "A", Invested: 500, NetWorth: 500, PnLPercent: 0},
				{Ticker: "A", Invested: 1000, NetWorth: 1210, PnLPercent: 21},
			},
		},
		{
			Asset:     Asset{"B", 0.5},
			Snapshots: []Snapshot{{Ticker: "B", Invested: 1000, NetWorth: 1000}},
		},
		{Asset: Asset{"C", 0}, Err: ErrNoContributions},
	}
	portfolio := []PortfolioSnapshot{
		{PnLPercent: 0},
		{PnLPercent: 6},
		{PnLPercent: 10.5},
	}
	m := ComputeMetrics(assets, portfolio, 2)

	if len(m.Rows) != 4 || len(m.Volatility) != 4 {
		t.Fatalf("ComputeMetrics() = %+v, want 3 assets and a total", m)
	}
	if r := m.Rows[0]; r.Err != nil || !r.CAGR.Equal(10) {
		t.Errorf("A row = %+v, want 10%%", r)
	}
	if r := m.Rows[1]; r.Err != nil || !r.CAGR.Equal(0) {
		t.Errorf("B row = %+v, want 0%%", r)
	}
	if r := m.Rows[2]; !errors.Is(r.Err, ErrNoContributions) {
		t.Errorf("C row = %+v, want ErrNoContributions", r)
	}
	// (2210/2000)^(1/2) - 1 = 0.05119...
	if total := m.Total(); total.Ticker != Total || total.NetWorth != 2210 || total.Invested != 2000 || !total.CAGR.Equal(5.12) {
		t.Errorf("total row = %+v, want 5.12%% on 2210/2000", total)
	}
	if total := m.Total(); !errors.Is(total.Err, ErrPartialPortfolio) {
		t.Errorf("total row error = %v, want ErrPartialPortfolio without C", total.Err)
	}

	if v := m.Volatility[0]; v.Err != nil || v.Value != 14.85 {
		t.Errorf("A volatility = %+v, want 14.85", v)
	}
	if v := m.Volatility[1]; !errors.Is(v.Err, ErrUndefinedVolatility) {
		t.Errorf("B volatility = %+v, want ErrUndefinedVolatility", v)
	}
	if v := m.TotalVolatility(); v.Err != nil || v.Value != 5.27 {
		t.Errorf("total volatility = %+v, want 5.27", v)
	}
	// (10.5 - 2) / 5.27
	if m.SharpeErr != nil || m.Sharpe != 1.61 {
		t.Errorf("Sharpe = %v, %v, want 1.61", m.Sharpe, m.SharpeErr)
	}
}
