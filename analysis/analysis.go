// Package analysis fits a linear regression of the 10-day EMA on the close.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/etnz/dca"
	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"
)

const (
	// EMAPeriod is the span of the exponential moving average.
	EMAPeriod = 10
	// TestShare is the share of days held out to evaluate the regression.
	TestShare = 0.3
	// Seed makes the split of days reproducible.
	Seed = 42
)

// ErrNotEnoughData is returned when a series is too short to fit and test a regression.
var ErrNotEnoughData = errors.New("not enough data")

// Point is a held out day.
type Point struct {
	Date      dca.Date `json:"date"`
	Close     float64  `json:"close"`
	Actual    float64  `json:"actual"` // EMA of that day
	Predicted float64  `json:"predicted"`
}

// Forecast is the regression EMA = Intercept + Slope × Close of a ticker,
// and its scores on the held out days.
type Forecast struct {
	Ticker    string  `json:"ticker"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	R2        float64 `json:"r2"`
	MAE       float64 `json:"mae"`
	Points    []Point `json:"points"` // in date order
}

// Analyze fits the regression on 70% of the days and tests it on the rest.
func Analyze(ticker string, s dca.PriceSeries) (Forecast, error) {
	closes := make([]float64, len(s))
	for i, p := range s {
		closes[i] = p.Close
	}
	if len(closes) <= EMAPeriod {
		return Forecast{}, fmt.Errorf("%w: %d days for a %d days EMA", ErrNotEnoughData, len(closes), EMAPeriod)
	}
	ema := talib.Ema(closes, EMAPeriod)

	// talib leaves the first EMAPeriod-1 values at 0: those days have no EMA yet.
	var days []int
	for i := EMAPeriod - 1; i < len(ema); i++ {
		days = append(days, i)
	}
	nTest := int(math.Ceil(TestShare * float64(len(days))))
	if nTest < 2 || len(days)-nTest < 2 {
		return Forecast{}, fmt.Errorf("%w: %d days with an EMA", ErrNotEnoughData, len(days))
	}

	perm := rand.New(rand.NewPCG(Seed, Seed)).Perm(len(days))
	test := make([]int, nTest)
	for i, j := range perm[:nTest] {
		test[i] = days[j]
	}
	slices.Sort(test)
	var xTrain, yTrain []float64
	for _, j := range perm[nTest:] {
		xTrain = append(xTrain, closes[days[j]])
		yTrain = append(yTrain, ema[days[j]])
	}

	alpha, beta := stat.LinearRegression(xTrain, yTrain, nil, false)
	f := Forecast{Ticker: ticker, Intercept: alpha, Slope: beta}
	predicted := make([]float64, len(test))
	actual := make([]float64, len(test))
	var absErr float64
	for i, j := range test {
		predicted[i] = alpha + beta*closes[j]
		actual[i] = ema[j]
		absErr += math.Abs(actual[i] - predicted[i])
		f.Points = append(f.Points, Point{Date: s[j].Date, Close: closes[j], Actual: actual[i], Predicted: predicted[i]})
	}
	f.MAE = absErr / float64(len(test))
	f.R2 = stat.RSquaredFrom(predicted, actual, nil)
	return f, nil
}

// Run analyzes every ticker on prices from md. Tickers that cannot be fetched
// or analyzed are logged and skipped.
func Run(ctx context.Context, md dca.MarketData, r dca.Range, log zerolog.Logger, tickers ...string) ([]Forecast, error) {
	var forecasts []Forecast
	var errs []error
	for _, t := range tickers {
		s, err := md.Prices(ctx, t, r)
		if err == nil {
			var f Forecast
			if f, err = Analyze(t, s); err == nil {
				forecasts = append(forecasts, f)
				continue
			}
		}
		log.Warn().Err(err).Str("ticker", t).Msg("skipping forecast")
		errs = append(errs, fmt.Errorf("%s: %w", t, err))
	}
	if len(forecasts) == 0 {
		return nil, errors.Join(errs...)
	}
	return forecasts, nil
}
