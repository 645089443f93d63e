// Package dca simulates dollar-cost averaging plans on historical prices.
//
// A Plan invests an initial amount on its start date, then a periodic amount
// at every month, quarter, half-year or year, split between the assets of its
// Allocation. The simulation runs in four steps:
//   - Schedule: dates the contributions of an asset on its trading days.
//   - Simulate: buys whole units at the previous close plus fees, and carries
//     the uninvested cash to the next contribution.
//   - Consolidate: merges the assets into one portfolio ledger.
//   - ComputeMetrics: CAGR, volatility and a Sharpe-like ratio.
//
// Run chains these steps on prices from a MarketData provider. Compare
// simulates a plan next to a benchmark, aligned on the benchmark first day,
// and Search looks for the best equal-weight portfolio in a catalog of ETFs.
package dca
