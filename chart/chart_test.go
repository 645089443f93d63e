package chart

import (
	"bytes"
	"context"
	"testing"

	"github.com/etnz/dca"
	"github.com/etnz/dca/dcatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlign(t *testing.T) {
	d := func(day int) dca.Date { return dca.NewDate(2020, 1, day) }
	a := Series{Name: "A", Points: []Point{{d(1), 1}, {d(3), 3}}}
	b := Series{Name: "B", Points: []Point{{d(2), 20}, {d(3), 30}, {d(4), 40}}}

	dates, values := Align(a, b)
	assert.Equal(t, []dca.Date{d(1), d(2), d(3), d(4)}, dates)
	assert.Equal(t, []float64{1, 1, 3, 3}, values[0])
	assert.Equal(t, []float64{0, 20, 30, 40}, values[1])
}

func TestPnLChart(t *testing.T) {
	res, err := dca.Run(context.Background(), dcatest.Market(), dcatest.Plan(dca.EqualWeight("UP", "WAVE")...))
	require.NoError(t, err)

	series := []Series{Portfolio("Portfolio", res.Portfolio)}
	for _, a := range res.Assets {
		series = append(series, Asset(a))
	}
	assert.Equal(t, "UP", series[1].Name)
	assert.Len(t, series[0].Points, len(res.Portfolio))

	img, err := PnLChart(series...)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")), "PnLChart() is not a PNG")
}

func TestPnLChart_Empty(t *testing.T) {
	_, err := PnLChart()
	assert.Error(t, err)
	_, err = PnLChart(Series{Name: "A"})
	assert.Error(t, err)
}

func TestNetWorthChart(t *testing.T) {
	res, err := dca.Run(context.Background(), dcatest.Market(), dcatest.Plan(dca.EqualWeight("UP", "WAVE")...))
	require.NoError(t, err)

	img, err := NetWorthChart(res.Portfolio)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")), "NetWorthChart() is not a PNG")

	_, err = NetWorthChart(nil)
	assert.Error(t, err)
}

func TestCAGRChart(t *testing.T) {
	res, err := dca.Run(context.Background(), dcatest.Market(), dcatest.Plan(dca.EqualWeight("UP", "DOWN")...))
	require.NoError(t, err)

	img, err := CAGRChart(res.Metrics)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")), "CAGRChart() is not a PNG")

	_, err = CAGRChart(dca.Metrics{Rows: []dca.Row{{Ticker: "A", Err: dca.ErrNoContributions}}})
	assert.Error(t, err)
}
