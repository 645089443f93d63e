package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/dca"
	"github.com/etnz/dca/agent"
	"github.com/etnz/dca/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type reviewCmd struct {
	app *App
	planFlags
	benchmark string
}

func (*reviewCmd) Name() string     { return "review" }
func (*reviewCmd) Synopsis() string { return "simulate a plan and have it reviewed by Gemini" }
func (*reviewCmd) Usage() string {
	return `dcasim review [plan flags] [-benchmark <ticker>]

  Simulates the plan like simulate, then asks a Gemini model to comment the
  report. The Gemini client is configured by GEMINI_API_KEY.
`
}

func (c *reviewCmd) SetFlags(f *flag.FlagSet) {
	c.planFlags.SetFlags(f, true)
	f.StringVar(&c.benchmark, "benchmark", "", "Compare to a plan fully invested in this ticker.")
}

func (c *reviewCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	var report string
	if c.benchmark != "" {
		cmp, err := dca.Compare(ctx, market, p, c.benchmark)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error comparing to %s: %v\n", c.benchmark, err)
			return subcommands.ExitFailure
		}
		report = renderer.Report(cmp.Portfolio, renderer.Options{Comparison: cmp, Evolution: dca.Annual})
	} else {
		res, err := dca.Run(ctx, market, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error simulating plan: %v\n", err)
			return subcommands.ExitFailure
		}
		report = renderer.Report(res, renderer.Options{Evolution: dca.Annual})
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	review, err := agent.Review(ctx, client, report)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Review failed:", err)
		return subcommands.ExitFailure
	}
	c.app.printMarkdown(report + "\n## Review\n\n" + review + "\n")
	return subcommands.ExitSuccess
}

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct{ app *App }

func (*assistCmd) Name() string { return "assist" }
func (*assistCmd) Synopsis() string {
	return "start an interactive session with the AI assistant"
}
func (*assistCmd) Usage() string {
	return `dcasim assist [prompt...]

  Starts an interactive session with an assistant able to simulate plans.
`
}
func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	market, err := c.app.Market()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer c.app.Close()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}
	a := agent.New(c.app.out(), os.Stdin, agent.NewReviewer(), agent.NewAnalyst(market))
	if err := a.Run(ctx, client, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
