package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/dca"
	"github.com/etnz/dca/analysis"
	"github.com/etnz/dca/renderer"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

// rangeFlags select a range of days.
type rangeFlags struct {
	start, end string
}

func (r *rangeFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.start, "s", "-5y", "First day of prices.")
	f.StringVar(&r.end, "e", "0d", "Last day of prices.")
}

func (r *rangeFlags) rng() (dca.Range, error) {
	from, err := dca.ParseDate(r.start)
	if err != nil {
		return dca.Range{}, fmt.Errorf("parsing start date: %w", err)
	}
	to, err := dca.ParseDate(r.end)
	if err != nil {
		return dca.Range{}, fmt.Errorf("parsing end date: %w", err)
	}
	return dca.NewRange(from, to), nil
}

// tickers returns the upper-cased arguments.
func tickers(f *flag.FlagSet) []string {
	t := make([]string, f.NArg())
	for i, a := range f.Args() {
		t[i] = strings.ToUpper(a)
	}
	return t
}

type forecastCmd struct {
	app *App
	rangeFlags
}

func (*forecastCmd) Name() string { return "forecast" }
func (*forecastCmd) Synopsis() string {
	return "fit the 10-day EMA of tickers as a linear function of the close"
}
func (*forecastCmd) Usage() string {
	return `dcasim forecast [-s <start>] [-e <end>] <ticker>...

  For each ticker, fits EMA = intercept + slope × close on 70% of the days and
  reports the R² and the mean absolute error on the other 30%.
`
}

func (c *forecastCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.rng()
	if err != nil || f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmpErr(err, "at least one ticker is required"))
		return subcommands.ExitUsageError
	}
	market, err := c.app.Market()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer c.app.Close()

	forecasts, err := analysis.Run(ctx, market, r, c.app.Log, tickers(f)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	c.app.printMarkdown(renderer.ForecastMarkdown(forecasts))
	return subcommands.ExitSuccess
}

// cmpErr returns err, or an error with msg if nil.
func cmpErr(err error, msg string) error {
	if err != nil {
		return err
	}
	return errors.New(msg)
}

type fetchCmd struct {
	app *App
	rangeFlags
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch prices of tickers, filling the cache" }
func (*fetchCmd) Usage() string {
	return `dcasim fetch [-s <start>] [-e <end>] <ticker>...

  Fetches the daily prices of the tickers from the configured provider, stores
  them in the DCA_CACHE database if any, and summarizes them.
`
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.rng()
	if err != nil || f.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: %v\n", cmpErr(err, "at least one ticker is required"))
		return subcommands.ExitUsageError
	}
	market, err := c.app.Market()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer c.app.Close()

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "First", "Last", "Days", "Last Close", "Fee"},
	}
	status := subcommands.ExitSuccess
	for _, t := range tickers(f) {
		s, err := market.Prices(ctx, t, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", t, err)
			status = subcommands.ExitFailure
			continue
		}
		if len(s) == 0 {
			table.Rows = append(table.Rows, []string{t, "", "", "0", "", ""})
			continue
		}
		last := s[len(s)-1]
		table.Rows = append(table.Rows, []string{
			t,
			s.First().String(),
			s.Last().String(),
			fmt.Sprint(len(s)),
			fmt.Sprintf("%.2f", last.Close),
			dca.Percent(last.Fee * 100).String(),
		})
	}
	c.app.printMarkdown(md.NewMarkdown(io.Discard).H1(fmt.Sprintf("Prices %s", r)).Table(table).String())
	return status
}
