package dca

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// RiskFreeRate is the return, in percentage points, subtracted in Sharpe.
const RiskFreeRate = 2

// Total is the ticker of the rows aggregating every asset.
const Total = "TOTAL"

// Row is the terminal state and growth rate of an asset, or of the portfolio
// when Ticker is Total.
type Row struct {
	Ticker   string  `json:"ticker"`
	NetWorth float64 `json:"netWorth"`
	Invested float64 `json:"invested"`
	CAGR     Percent `json:"cagr"`
	Err      error   `json:"-"` // CAGR is not available, or ErrPartialPortfolio on a Total row leaving assets out
}

// VolatilityRow is the volatility of the PnL% series of an asset, or of the
// portfolio when Ticker is Total.
type VolatilityRow struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
	Err    error   `json:"-"`
}

// Metrics summarizes a simulation. The Total rows come last.
type Metrics struct {
	Rows       []Row           `json:"rows"`
	Volatility []VolatilityRow `json:"volatility"`
	Sharpe     float64         `json:"sharpe"`
	SharpeErr  error           `json:"-"`
}

// Total returns the portfolio row.
func (m Metrics) Total() Row {
	if len(m.Rows) == 0 {
		return Row{Ticker: Total, Err: ErrNoContributions}
	}
	return m.Rows[len(m.Rows)-1]
}

// TotalVolatility returns the portfolio volatility row.
func (m Metrics) TotalVolatility() VolatilityRow {
	if len(m.Volatility) == 0 {
		return VolatilityRow{Ticker: Total, Err: ErrUndefinedVolatility}
	}
	return m.Volatility[len(m.Volatility)-1]
}

// CAGR returns the compound annual growth rate of invested growing to
// netWorth in years.
//
// The rate is rounded to 4 decimals before being expressed in percent.
func CAGR(netWorth, invested, years float64) (Percent, error) {
	if !(years > 0) {
		return 0, fmt.Errorf("%w: %v years", ErrZeroDuration, years)
	}
	if !(invested > 0) {
		return 0, fmt.Errorf("%w: invested %v", ErrZeroInvestment, invested)
	}
	if netWorth < 0 {
		return 0, fmt.Errorf("negative net worth %v", netWorth)
	}
	rate := math.Pow(netWorth/invested, 1/years) - 1
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, fmt.Errorf("undefined growth from %v to %v in %v years", invested, netWorth, years)
	}
	return Percent(round(round(rate, 4)*100, 2)), nil
}

// Volatility returns the sample standard deviation of a PnL% series, rounded
// to 2 decimals.
func Volatility(pnl []float64) (float64, error) {
	if len(pnl) < 2 {
		return 0, fmt.Errorf("%w: %d observations", ErrUndefinedVolatility, len(pnl))
	}
	sd := stat.StdDev(pnl, nil)
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0, fmt.Errorf("%w: non finite series", ErrUndefinedVolatility)
	}
	return round(sd, 2), nil
}

// Sharpe returns (pnl − RiskFreeRate) / volatility rounded to 2 decimals.
//
// pnl is the terminal cumulative PnL% of the portfolio, not an annualized
// return, so this ratio is not comparable with a conventional Sharpe ratio.
func Sharpe(pnl Percent, volatility float64) (float64, error) {
	if !(volatility > 0) {
		return 0, fmt.Errorf("%w: volatility is %v", ErrUndefinedVolatility, volatility)
	}
	return round((float64(pnl)-RiskFreeRate)/volatility, 2), nil
}

// ComputeMetrics computes the per-asset and portfolio metrics of a
// simulation lasting years.
//
// Assets without snapshots get a row carrying their error, and the Total row
// then carries ErrPartialPortfolio next to its CAGR. The portfolio
// CAGR is computed on the sum of the terminal values of the assets, and the
// portfolio volatility on the consolidated PnL% series.
func ComputeMetrics(assets []AssetLedger, portfolio []PortfolioSnapshot, years float64) Metrics {
	var m Metrics
	var netWorth, invested float64
	var missing []string
	for _, a := range assets {
		row := Row{Ticker: a.Ticker}
		vol := VolatilityRow{Ticker: a.Ticker}
		switch {
		case a.Err != nil:
			row.Err, vol.Err = a.Err, a.Err
			missing = append(missing, a.Ticker)
		case len(a.Snapshots) == 0:
			row.Err = fmt.Errorf("%w: %s", ErrNoContributions, a.Ticker)
			vol.Err = row.Err
			missing = append(missing, a.Ticker)
		default:
			last := a.Snapshots[len(a.Snapshots)-1]
			row.NetWorth, row.Invested = last.NetWorth, last.Invested
			row.CAGR, row.Err = CAGR(last.NetWorth, last.Invested, years)
			netWorth += last.NetWorth
			invested += last.Invested
			series := make([]float64, len(a.Snapshots))
			for i, s := range a.Snapshots {
				series[i] = float64(s.PnLPercent)
			}
			vol.Value, vol.Err = Volatility(series)
		}
		m.Rows = append(m.Rows, row)
		m.Volatility = append(m.Volatility, vol)
	}

	total := Row{Ticker: Total, NetWorth: netWorth, Invested: invested}
	total.CAGR, total.Err = CAGR(netWorth, invested, years)
	if total.Err == nil && len(missing) > 0 {
		total.Err = fmt.Errorf("%w: without %s", ErrPartialPortfolio, strings.Join(missing, ", "))
	}
	m.Rows = append(m.Rows, total)

	series := make([]float64, len(portfolio))
	for i, p := range portfolio {
		series[i] = float64(p.PnLPercent)
	}
	totalVol := VolatilityRow{Ticker: Total}
	totalVol.Value, totalVol.Err = Volatility(series)
	m.Volatility = append(m.Volatility, totalVol)

	switch {
	case len(portfolio) == 0:
		m.SharpeErr = fmt.Errorf("%w: empty portfolio", ErrNoContributions)
	case totalVol.Err != nil:
		m.SharpeErr = totalVol.Err
	default:
		m.Sharpe, m.SharpeErr = Sharpe(portfolio[len(portfolio)-1].PnLPercent, totalVol.Value)
	}
	return m
}
