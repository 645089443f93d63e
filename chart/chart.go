// Package chart draws simulations as PNG charts.
package chart

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/dca"
	"github.com/vicanso/go-charts/v2"
)

// Point is a value on a day.
type Point struct {
	Date  dca.Date
	Value float64
}

// Series is a named curve.
type Series struct {
	Name   string
	Points []Point // in date order
}

// Portfolio returns the PnL% curve of a consolidated portfolio.
func Portfolio(name string, rows []dca.PortfolioSnapshot) Series {
	s := Series{Name: name, Points: make([]Point, len(rows))}
	for i, r := range rows {
		s.Points[i] = Point{r.Date, float64(r.PnLPercent)}
	}
	return s
}

// Asset returns the PnL% curve of an asset.
func Asset(a dca.AssetLedger) Series {
	s := Series{Name: a.Ticker, Points: make([]Point, len(a.Snapshots))}
	for i, r := range a.Snapshots {
		s.Points[i] = Point{r.Date, float64(r.PnLPercent)}
	}
	return s
}

// Align returns the union of the dates of every series, and the value of each
// series on each of these dates.
//
// A series is carried forward on the dates it lacks, and is 0 before its
// first point.
func Align(series ...Series) ([]dca.Date, [][]float64) {
	var dates []dca.Date
	for _, s := range series {
		for _, p := range s.Points {
			dates = append(dates, p.Date)
		}
	}
	slices.SortFunc(dates, dca.Date.Compare)
	dates = slices.Compact(dates)

	values := make([][]float64, len(series))
	for i, s := range series {
		var h dca.History[float64]
		for _, p := range s.Points {
			h.Append(p.Date, p.Value)
		}
		values[i] = make([]float64, len(dates))
		for k, d := range dates {
			values[i][k], _ = h.ValueAsOf(d)
		}
	}
	return dates, values
}

// PnLChart renders the series on a common date axis as a PNG.
func PnLChart(series ...Series) ([]byte, error) { return lineChart("PnL %", series...) }

// NetWorthChart renders the net worth of a portfolio next to the cumulative
// investment as a PNG.
func NetWorthChart(rows []dca.PortfolioSnapshot) ([]byte, error) {
	worth := Series{Name: "Net Worth", Points: make([]Point, len(rows))}
	invested := Series{Name: "Invested", Points: make([]Point, len(rows))}
	for i, r := range rows {
		worth.Points[i] = Point{r.Date, r.NetWorth}
		invested.Points[i] = Point{r.Date, r.Invested}
	}
	return lineChart("Net worth vs invested", worth, invested)
}

// CAGRChart renders the CAGR of every asset and of the portfolio as a bar
// chart. Rows without a CAGR are left out, partial portfolio totals are kept.
func CAGRChart(m dca.Metrics) ([]byte, error) {
	var tickers []string
	var values []float64
	for _, r := range m.Rows {
		if r.Err != nil && !errors.Is(r.Err, dca.ErrPartialPortfolio) {
			continue
		}
		tickers = append(tickers, r.Ticker)
		values = append(values, float64(r.CAGR))
	}
	if len(values) == 0 {
		return nil, errors.New("no CAGR to draw")
	}
	seriesList := charts.NewSeriesListDataFromValues([][]float64{values}, charts.ChartTypeBar)
	seriesList[0].Name = "CAGR %"
	p, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc("CAGR %"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: tickers}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render CAGR chart: %w", err)
	}
	return p.Bytes()
}

func lineChart(title string, series ...Series) ([]byte, error) {
	if len(series) == 0 {
		return nil, errors.New("no series to draw")
	}
	dates, values := Align(series...)
	if len(dates) == 0 {
		return nil, errors.New("no points to draw")
	}

	labels := make([]string, len(dates))
	for i, d := range dates {
		labels[i] = d.Format("Jan '06")
	}
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Name
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}
	p, err := charts.Render(charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title, fmt.Sprintf("%s..%s", dates[0], dates[len(dates)-1])),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			SplitNumber: min(6, len(labels)),
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{DivideCount: 5}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart of %s: %w", strings.Join(names, ", "), err)
	}
	return p.Bytes()
}
