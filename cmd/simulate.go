package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dca"
	"github.com/etnz/dca/chart"
	"github.com/etnz/dca/renderer"
	"github.com/google/subcommands"
)

type simulateCmd struct {
	app *App
	planFlags
	benchmark  string
	compare    bool
	optimize   bool
	top        int
	candidates string
	chart      string
	networth   string
	cagrChart  string
	evolution  string
}

func (*simulateCmd) Name() string     { return "simulate" }
func (*simulateCmd) Synopsis() string { return "simulate a periodic investment plan on historical prices" }
func (*simulateCmd) Usage() string {
	return `dcasim simulate [-i <initial>] [-p <periodic>] [-s <start>] [-y <years>] [-f <frequency>] [-a <allocation>]
    [-benchmark <ticker> | -compare] [-optimize] [-evolution <frequency>]
    [-chart <file.png>] [-networth <file.png>] [-cagr-chart <file.png>]

  Buys whole units of each asset of the allocation with the initial investment,
  then with every periodic contribution, and reports the growth and risk of
  the portfolio.

  -benchmark simulates the same plan fully invested in the benchmark ticker.
  -compare does the same with the configured DCA_BENCHMARK.
  -optimize also ranks the candidate catalog and simulates the best ones.
`
}

func (c *simulateCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.SetFlags(f, true)
	f.StringVar(&c.benchmark, "benchmark", "", "Compare to a plan fully invested in this ticker.")
	f.BoolVar(&c.compare, "compare", false, "Compare to the configured benchmark.")
	f.BoolVar(&c.optimize, "optimize", false, "Also search the best candidates for the plan terms.")
	f.IntVar(&c.top, "top", dca.DefaultTopN, "Number of candidates of the optimized portfolio.")
	f.StringVar(&c.candidates, "candidates", "", "Comma separated tickers to search instead of the default catalog.")
	f.StringVar(&c.chart, "chart", "", "Write a PNG chart of the PnL% to this file.")
	f.StringVar(&c.networth, "networth", "", "Write a PNG chart of the net worth and the investment to this file.")
	f.StringVar(&c.cagrChart, "cagr-chart", "", "Write a PNG bar chart of the CAGR of each asset to this file.")
	f.StringVar(&c.evolution, "evolution", "", "Report the portfolio at the end of each period of this frequency.")
}

func (c *simulateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := c.plan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	var opts renderer.Options
	if c.evolution != "" {
		if opts.Evolution, err = dca.ParseFrequency(c.evolution); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.benchmark == "" && c.compare {
		c.benchmark = c.app.Config.Benchmark
	}

	md, err := c.app.Market()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer c.app.Close()

	var res *dca.Result
	if c.benchmark != "" {
		opts.Comparison, err = dca.Compare(ctx, md, p, c.benchmark)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error comparing to %s: %v\n", c.benchmark, err)
			return subcommands.ExitFailure
		}
		res = opts.Comparison.Portfolio
	} else if res, err = dca.Run(ctx, md, p); err != nil {
		fmt.Fprintf(os.Stderr, "Error simulating plan: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.optimize {
		opts.Search, err = dca.Search(ctx, md, p, dca.SearchOptions{TopN: c.top, Catalog: catalog(c.candidates), Log: &c.app.Log})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error searching candidates: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	c.app.printMarkdown(renderer.Report(res, opts))

	charts := []struct {
		file string
		draw func() ([]byte, error)
	}{
		{c.chart, func() ([]byte, error) { return pnlChart(res, opts) }},
		{c.networth, func() ([]byte, error) { return chart.NetWorthChart(res.Portfolio) }},
		{c.cagrChart, func() ([]byte, error) { return chart.CAGRChart(res.Metrics) }},
	}
	for _, ch := range charts {
		if ch.file == "" {
			continue
		}
		if err := writeChart(ch.file, ch.draw); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// pnlChart draws the portfolio, its assets and the optional benchmark and
// optimized portfolios.
func pnlChart(res *dca.Result, opts renderer.Options) ([]byte, error) {
	series := []chart.Series{chart.Portfolio("Portfolio", res.Portfolio)}
	if len(res.Assets) > 1 {
		for _, a := range res.Assets {
			series = append(series, chart.Asset(a))
		}
	}
	if cmp := opts.Comparison; cmp != nil {
		series = append(series, chart.Portfolio(cmp.Benchmark, cmp.Reference.Portfolio))
	}
	if s := opts.Search; s != nil {
		series = append(series, chart.Portfolio("Optimized", s.Result.Portfolio))
	}
	return chart.PnLChart(series...)
}

// writeChart writes the chart drawn by draw to file.
func writeChart(file string, draw func() ([]byte, error)) error {
	img, err := draw()
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, img, 0644); err != nil {
		return fmt.Errorf("cannot write chart: %w", err)
	}
	return nil
}
