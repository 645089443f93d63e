package renderer

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/dca"
	"github.com/etnz/dca/analysis"
	"github.com/etnz/dca/dcatest"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// outline is the structure of a markdown document.
type outline struct {
	headings []string
	tables   [][]string // header cells of each table
}

func parse(t *testing.T, doc string) outline {
	t.Helper()
	content := []byte(doc)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(content))

	var o outline
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			o.headings = append(o.headings, string(n.Text(content)))
			return ast.WalkSkipChildren, nil
		case *east.TableHeader:
			var cells []string
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				cells = append(cells, string(c.Text(content)))
			}
			o.tables = append(o.tables, cells)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("ast.Walk() = %v", err)
	}
	return o
}

func simulate(t *testing.T, a dca.Allocation) *dca.Result {
	t.Helper()
	res, err := dca.Run(context.Background(), dcatest.Market(), dcatest.Plan(a...))
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	return res
}

func TestReport(t *testing.T) {
	res := simulate(t, dca.EqualWeight("UP", "FLAT"))
	doc := Report(res, Options{})
	o := parse(t, doc)

	if want := []string{"DCA Simulation", "Assets", "Performance"}; !slices.Equal(o.headings, want) {
		t.Errorf("Report() headings = %q, want %q", o.headings, want)
	}
	if len(o.tables) != 3 {
		t.Fatalf("Report() has %d tables, want 3", len(o.tables))
	}
	if want := []string{"Ticker", "Net Worth", "Invested", "CAGR"}; !slices.Equal(o.tables[1], want) {
		t.Errorf("Report() CAGR header = %q, want %q", o.tables[1], want)
	}
	for _, want := range []string{"every month", "UP=0.5,FLAT=0.5", "$3,300.00", "TOTAL", "Sharpe ratio"} {
		if !strings.Contains(doc, want) {
			t.Errorf("Report() does not contain %q:\n%s", want, doc)
		}
	}
}

func TestReport_Evolution(t *testing.T) {
	res := simulate(t, dca.EqualWeight("WAVE"))
	doc := Report(res, Options{Evolution: dca.Annual})
	o := parse(t, doc)
	if !slices.Contains(o.headings, "Evolution by year") {
		t.Errorf("Report() headings = %q, want an evolution section", o.headings)
	}
	for _, want := range []string{"| 2020 ", "| 2021 "} {
		if !strings.Contains(doc, want) {
			t.Errorf("Report() does not contain %q:\n%s", want, doc)
		}
	}
}

func TestReport_Comparison(t *testing.T) {
	p := dcatest.Plan(dca.EqualWeight("WAVE")...)
	cmp, err := dca.Compare(context.Background(), dcatest.Market(), p, "UP")
	if err != nil {
		t.Fatalf("Compare() = %v", err)
	}
	doc := Report(cmp.Portfolio, Options{Comparison: cmp})
	o := parse(t, doc)
	if !slices.Contains(o.headings, "Benchmark: UP") {
		t.Errorf("Report() headings = %q, want a benchmark section", o.headings)
	}
	last := o.tables[len(o.tables)-1]
	if want := []string{"", "Portfolio", "UP"}; !slices.Equal(last, want) {
		t.Errorf("Report() comparison header = %q, want %q", last, want)
	}
}

func TestReport_Search(t *testing.T) {
	p := dcatest.Plan()
	s, err := dca.Search(context.Background(), dcatest.Market(), p, dca.SearchOptions{
		TopN: 2,
		Catalog: []dca.Candidate{
			{Category: "Growth", Ticker: "UP"},
			{Category: "Value", Ticker: "FLAT"},
			{Category: "Bonds", Ticker: "DOWN"},
			{Category: "Gone", Ticker: "NOPE"},
		},
	})
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	doc := Report(s.Result, Options{Search: s})
	o := parse(t, doc)
	for _, want := range []string{"Candidate Ranking", "Skipped", "Optimized Portfolio", "Optimized Performance"} {
		if !slices.Contains(o.headings, want) {
			t.Errorf("Report() headings = %q, want %q", o.headings, want)
		}
	}
	if !strings.Contains(doc, "NOPE (Gone)") {
		t.Errorf("Report() does not list the skipped candidate:\n%s", doc)
	}
}

func TestReport_FailedAsset(t *testing.T) {
	res := simulate(t, dca.EqualWeight("UP", "FLAT"))
	res.Assets[1].Snapshots = nil
	res.Assets[1].Err = errors.New("no prices")
	doc := Report(res, Options{})
	if !strings.Contains(doc, "n/a (no prices)") {
		t.Errorf("Report() does not report the failed asset:\n%s", doc)
	}
}

func TestForecastMarkdown(t *testing.T) {
	doc := ForecastMarkdown([]analysis.Forecast{
		{Ticker: "SPY", Intercept: 1.5, Slope: 0.98, R2: 0.97, MAE: 2.25, Points: make([]analysis.Point, 30)},
	})
	o := parse(t, doc)
	if want := []string{"EMA-10 Forecast"}; !slices.Equal(o.headings, want) {
		t.Errorf("ForecastMarkdown() headings = %q, want %q", o.headings, want)
	}
	for _, want := range []string{"SPY", "0.9800", "2.2500", "30"} {
		if !strings.Contains(doc, want) {
			t.Errorf("ForecastMarkdown() does not contain %q:\n%s", want, doc)
		}
	}
}
