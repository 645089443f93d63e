package dca

import "errors"

var (
	// ErrInvalidPlan is returned when a plan parameter is out of its domain.
	ErrInvalidPlan = errors.New("invalid plan")
	// ErrInvalidAllocation is returned when allocation weights are out of [0,1] or do not sum to 1.
	ErrInvalidAllocation = errors.New("invalid allocation")
	// ErrUnknownFrequency is returned for a frequency outside of the enumerated ones.
	ErrUnknownFrequency = errors.New("unknown frequency")
	// ErrNoContributions is returned when an asset receives no contribution at all.
	ErrNoContributions = errors.New("no contributions")
	// ErrMissingPrice is returned when a contribution date has no usable price.
	ErrMissingPrice = errors.New("missing price")
	// ErrZeroInvestment is returned when a ratio would divide by a zero cumulative investment.
	ErrZeroInvestment = errors.New("zero cumulative investment")
	// ErrZeroDuration is returned when a CAGR would be computed over no time.
	ErrZeroDuration = errors.New("zero duration")
	// ErrUndefinedVolatility is returned when a series is too short or too flat to have a volatility.
	ErrUndefinedVolatility = errors.New("undefined volatility")
	// ErrEmptyBenchmark is returned when a benchmark ledger has no rows.
	ErrEmptyBenchmark = errors.New("empty benchmark")
	// ErrPartialPortfolio marks portfolio figures that leave out unavailable assets.
	ErrPartialPortfolio = errors.New("partial portfolio")
	// ErrNoCandidates is returned when every candidate of a search failed.
	ErrNoCandidates = errors.New("no candidates")
)
