package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/dca"
	"github.com/etnz/dca/renderer"
	"github.com/google/subcommands"
	md "github.com/nao1215/markdown"
)

type optimizeCmd struct {
	app *App
	planFlags
	top        int
	candidates string
}

func (*optimizeCmd) Name() string { return "optimize" }
func (*optimizeCmd) Synopsis() string {
	return "rank the candidate catalog and simulate an equal-weight portfolio of the best ones"
}
func (*optimizeCmd) Usage() string {
	return `dcasim optimize [-i <initial>] [-p <periodic>] [-s <start>] [-y <years>] [-f <frequency>] [-top <n>] [-candidates <tickers>]

  Simulates the plan terms on every candidate alone, ranks the candidates by
  final PnL%, and simulates an equal-weight portfolio of the top ones.
  Candidates without prices are skipped.
`
}

func (c *optimizeCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.SetFlags(f, false)
	f.IntVar(&c.top, "top", dca.DefaultTopN, "Number of candidates of the optimized portfolio.")
	f.StringVar(&c.candidates, "candidates", "", "Comma separated tickers to search instead of the default catalog.")
}

func (c *optimizeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, err := c.plan()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	market, err := c.app.Market()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer c.app.Close()

	s, err := dca.Search(ctx, market, p, dca.SearchOptions{TopN: c.top, Catalog: catalog(c.candidates), Log: &c.app.Log})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error searching candidates: %v\n", err)
		return subcommands.ExitFailure
	}
	c.app.printMarkdown(renderer.Report(s.Result, renderer.Options{Search: s}))
	return subcommands.ExitSuccess
}

// catalog returns the candidates named in tickers, the default catalog if empty.
func catalog(tickers string) []dca.Candidate {
	if tickers == "" {
		return nil
	}
	var c []dca.Candidate
	for _, t := range strings.Split(tickers, ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			c = append(c, dca.Candidate{Category: "Custom", Ticker: t})
		}
	}
	return c
}

type catalogCmd struct{ app *App }

func (*catalogCmd) Name() string             { return "catalog" }
func (*catalogCmd) Synopsis() string         { return "list the default candidates of optimize" }
func (*catalogCmd) Usage() string            { return "dcasim catalog\n\n  Lists the candidate ETFs, one per category.\n" }
func (*catalogCmd) SetFlags(f *flag.FlagSet) {}

func (c *catalogCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft},
		Header:    []string{"Category", "Ticker"},
	}
	for _, cd := range dca.DefaultCatalog {
		table.Rows = append(table.Rows, []string{cd.Category, cd.Ticker})
	}
	c.app.printMarkdown(md.NewMarkdown(io.Discard).H1("Candidates").Table(table).String())
	return subcommands.ExitSuccess
}
