// Package agent reviews simulations with Gemini models.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/etnz/dca"
	"github.com/etnz/dca/docs"
	"github.com/etnz/dca/renderer"
	md "github.com/nao1215/markdown"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func instruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			The user is planning a periodic investment (dollar cost averaging) into ETFs.
			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They keep context of your previous questions.

			Devise a plan of questions to ask to each expert and come up with the best response to the user's request.
			Never present a simulation as a prediction: it replays past prices.
		`),
		},
		Library: NewLibrary(experts),
	}
}

// NewReviewer returns an expert commenting simulation reports.
func NewReviewer() *Expert {
	return &Expert{
		Name: "Reviewer",
		Description: `The Reviewer reads a markdown simulation report and comments on the
		growth, the risk and the diversification of the simulated plan.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			SystemInstruction: instruction(`
			You are a financial analyst reviewing the backtest of a periodic investment plan.
			The report gives the plan, the terminal state of each asset, the CAGR of each asset and of the TOTAL,
			the volatility of the PnL% series, and a Sharpe ratio computed as (PnL% - 2) / volatility.
			It may also compare the plan to a benchmark, or rank candidate ETFs.

			Comment in a few short paragraphs:
			  - which assets drove the result
			  - how the risk compares to the growth
			  - how diversified the allocation is
			Quote figures from the report only. Remind that past performance does not predict future returns.
			`),
		},
	}
}

// NewAnalyst returns an expert able to simulate plans on market.
func NewAnalyst(market dca.MarketData) *Expert {
	lib := []Function{simulateFunc(market), catalogFunc(), manualFunc()}
	return &Expert{
		Name: "Analyst",
		Description: `The Analyst runs backtests of periodic investment plans on historical prices,
		and knows the catalog of candidate ETFs. Ask the Analyst for any figure about a plan.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are an analyst with a backtesting tool. Use the Tools to simulate the plans you are asked about,
			and to list the candidate ETFs. Read the manual to explain how a figure is computed.
			Report the figures of the simulation, do not make them up.
			`),
		},
		Library: NewLibrary(lib),
	}
}

// Review asks a new reviewer to comment report.
func Review(ctx context.Context, client *genai.Client, report string) (string, error) {
	r := NewReviewer()
	if err := r.Start(ctx, client); err != nil {
		return "", err
	}
	content, err := r.Ask(ctx, &genai.Part{Text: report})
	if err != nil {
		return "", err
	}
	return textOf(content), nil
}

func simulateFunc(market dca.MarketData) *Func {
	const name = "Simulate"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Simulate a periodic investment plan on historical prices and return a markdown report.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"allocation": {Type: genai.TypeString, Description: "Tickers and weights summing to 1, e.g. SPY=0.6,BND=0.4."},
					"initial":    {Type: genai.TypeNumber, Description: "Amount invested on the start date."},
					"periodic":   {Type: genai.TypeNumber, Description: "Amount invested every period after the first one."},
					"start":      {Type: genai.TypeString, Description: "Start date, YYYY-MM-DD."},
					"years":      {Type: genai.TypeInteger, Description: "Duration in years."},
					"frequency":  {Type: genai.TypeString, Description: "monthly, quarterly, semiannual or annual."},
				},
				Required: []string{"allocation", "start", "years"},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown simulation report."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			p, err := planOf(args)
			if err != nil {
				return failure(id, name, err)
			}
			res, err := dca.Run(ctx, market, p)
			if err != nil {
				return failure(id, name, err)
			}
			return output(id, name, renderer.Report(res, renderer.Options{Evolution: dca.Annual}))
		},
	}
}

func catalogFunc() *Func {
	const name = "Catalog"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "List the candidate ETFs, one per category.",
			Response:    &genai.Schema{Type: genai.TypeString, Description: "A markdown table of categories and tickers."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			table := md.TableSet{Header: []string{"Category", "Ticker"}}
			for _, c := range dca.DefaultCatalog {
				table.Rows = append(table.Rows, []string{c.Category, c.Ticker})
			}
			return output(id, name, md.NewMarkdown(io.Discard).Table(table).String())
		},
	}
}

func manualFunc() *Func {
	const name = "Manual"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Read a topic of the user manual: dates, plans, metrics or providers. '*' reads them all.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {Type: genai.TypeString, Description: "The topic name."},
				},
				Required: []string{"topic"},
			},
			Response: &genai.Schema{Type: genai.TypeString, Description: "The topic in markdown."},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			topic, _ := args["topic"].(string)
			content, err := docs.GetTopic(topic)
			if err != nil {
				return failure(id, name, err)
			}
			return output(id, name, content)
		},
	}
}

// planOf reads a plan from function call arguments. Numbers are decoded from
// JSON, hence float64.
func planOf(args map[string]any) (dca.Plan, error) {
	p := dca.Plan{Frequency: dca.Monthly}
	var errs []error
	str := func(key string) string {
		s, ok := args[key].(string)
		if !ok && args[key] != nil {
			errs = append(errs, fmt.Errorf("argument %q is not a string but %T", key, args[key]))
		}
		return s
	}
	num := func(key string) float64 {
		v, ok := args[key].(float64)
		if !ok && args[key] != nil {
			errs = append(errs, fmt.Errorf("argument %q is not a number but %T", key, args[key]))
		}
		return v
	}

	var err error
	if p.Allocation, err = dca.ParseAllocation(str("allocation")); err != nil {
		errs = append(errs, err)
	}
	if p.Start, err = dca.ParseDate(str("start")); err != nil {
		dates, _ := docs.GetTopic("dates")
		errs = append(errs, fmt.Errorf("%w\n%s", err, dates))
	}
	if f := str("frequency"); f != "" {
		if p.Frequency, err = dca.ParseFrequency(f); err != nil {
			errs = append(errs, err)
		}
	}
	p.Initial, p.Periodic, p.Years = num("initial"), num("periodic"), int(num("years"))
	if err := errors.Join(errs...); err != nil {
		return dca.Plan{}, err
	}
	return p, p.Validate()
}
