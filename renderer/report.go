// Package renderer formats simulations as markdown reports.
package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/dca"
	md "github.com/nao1215/markdown"
)

// Options selects the optional sections of a report.
type Options struct {
	Comparison *dca.Comparison   // adds a benchmark section
	Search     *dca.SearchResult // adds the candidate ranking and the optimized portfolio
	Evolution  dca.Frequency     // adds the portfolio state at the end of each period, 0 for none
}

// Report renders a simulation result.
func Report(res *dca.Result, opts Options) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("DCA Simulation")
	doc.PlainText(planSummary(res.Plan))
	doc.LF()
	assets(doc, res)
	performance(doc, res, "Performance")
	if opts.Evolution.Valid() {
		evolution(doc, res, opts.Evolution)
	}
	if opts.Comparison != nil {
		comparison(doc, opts.Comparison)
	}
	if opts.Search != nil {
		search(doc, opts.Search)
	}
	return doc.String()
}

func planSummary(p dca.Plan) string {
	var b strings.Builder
	if p.Initial > 0 {
		fmt.Fprintf(&b, "Investing %s on %s", p.Money(p.Initial), p.Start)
		if p.Periodic > 0 {
			fmt.Fprintf(&b, " then %s every %s", p.Money(p.Periodic), p.Frequency.Name())
		}
	} else {
		fmt.Fprintf(&b, "Investing %s every %s from %s", p.Money(p.Periodic), p.Frequency.Name(), p.Start)
	}
	fmt.Fprintf(&b, " for %d years in %s.", p.Years, p.Allocation)
	return b.String()
}

func assets(doc *md.Markdown, res *dca.Result) {
	p := res.Plan
	doc.H2("Assets")
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Ticker", "Weight", "Units", "Leftover", "Invested", "Net Worth", "PnL"},
	}
	for _, a := range res.Assets {
		last, ok := a.Terminal()
		if !ok {
			table.Rows = append(table.Rows, []string{a.Ticker, weight(a.Weight), "", "", "", "", failed(a.Err)})
			continue
		}
		table.Rows = append(table.Rows, []string{
			a.Ticker,
			weight(a.Weight),
			fmt.Sprintf("%.0f", last.TotalUnits),
			p.Money(last.Leftover).String(),
			p.Money(last.Invested).String(),
			p.Money(last.NetWorth).String(),
			last.PnLPercent.SignedString(),
		})
	}
	total := res.Terminal()
	table.Rows = append(table.Rows, []string{
		md.Bold(dca.Total), "", "", "",
		md.Bold(p.Money(total.Invested).String()),
		md.Bold(p.Money(total.NetWorth).String()),
		md.Bold(total.PnLPercent.SignedString()),
	})
	doc.Table(table)
}

func performance(doc *md.Markdown, res *dca.Result, title string) {
	p, m := res.Plan, res.Metrics
	doc.H2(title)
	cagr := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Net Worth", "Invested", "CAGR"},
	}
	for _, r := range m.Rows {
		value := r.CAGR.String()
		if r.Err != nil {
			value = failed(r.Err)
		}
		cagr.Rows = append(cagr.Rows, []string{r.Ticker, p.Money(r.NetWorth).String(), p.Money(r.Invested).String(), value})
	}
	doc.Table(cagr)

	vol := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Ticker", "Volatility"},
	}
	for _, v := range m.Volatility {
		value := fmt.Sprintf("%.2f", v.Value)
		if v.Err != nil {
			value = failed(v.Err)
		}
		vol.Rows = append(vol.Rows, []string{v.Ticker, value})
	}
	doc.Table(vol)

	doc.PlainText(fmt.Sprintf("Sharpe ratio: %s", sharpe(m)))
	doc.LF()
}

func evolution(doc *md.Markdown, res *dca.Result, f dca.Frequency) {
	if len(res.Portfolio) == 0 {
		return
	}
	p := res.Plan
	doc.H2(fmt.Sprintf("Evolution by %s", f.Name()))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Period", "Invested", "Net Worth", "PnL", "PnL%"},
	}
	r := dca.NewRange(res.Portfolio[0].Date, res.Terminal().Date)
	i := 0
	for period := range r.Periods(f) {
		// last snapshot of the period
		last := -1
		for i < len(res.Portfolio) && !res.Portfolio[i].Date.After(period.To) {
			last = i
			i++
		}
		if last < 0 {
			continue
		}
		s := res.Portfolio[last]
		table.Rows = append(table.Rows, []string{
			period.Identifier(),
			p.Money(s.Invested).String(),
			p.Money(s.NetWorth).String(),
			p.Money(s.PnL).SignedString(),
			s.PnLPercent.SignedString(),
		})
	}
	doc.Table(table)
}

func comparison(doc *md.Markdown, c *dca.Comparison) {
	p := c.Portfolio.Plan
	doc.H2(fmt.Sprintf("Benchmark: %s", c.Benchmark))
	doc.PlainText(fmt.Sprintf("Both portfolios are compared from %s.", c.From))
	doc.LF()
	mine, ref := c.Portfolio.Terminal(), c.Reference.Terminal()
	mm, rm := c.Portfolio.Metrics, c.Reference.Metrics
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"", "Portfolio", c.Benchmark},
		Rows: [][]string{
			{"Invested", p.Money(mine.Invested).String(), p.Money(ref.Invested).String()},
			{"Net Worth", p.Money(mine.NetWorth).String(), p.Money(ref.NetWorth).String()},
			{"PnL", mine.PnLPercent.SignedString(), ref.PnLPercent.SignedString()},
			{"CAGR", cagr(mm.Total()), cagr(rm.Total())},
			{"Volatility", volatility(mm.TotalVolatility()), volatility(rm.TotalVolatility())},
			{"Sharpe", sharpe(mm), sharpe(rm)},
		},
	})
}

func search(doc *md.Markdown, s *dca.SearchResult) {
	doc.H2("Candidate Ranking")
	p := s.Result.Plan
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Rank", "Category", "Ticker", "Invested", "Net Worth", "PnL"},
	}
	for i, sc := range s.Ranking {
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(i + 1),
			sc.Category,
			sc.Ticker,
			p.Money(sc.Invested).String(),
			p.Money(sc.NetWorth).String(),
			sc.PnLPercent.SignedString(),
		})
	}
	doc.Table(table)

	if len(s.Skipped) > 0 {
		doc.H3("Skipped")
		items := make([]string, len(s.Skipped))
		for i, sk := range s.Skipped {
			items[i] = fmt.Sprintf("%s (%s): %v", sk.Ticker, sk.Category, sk.Err)
		}
		doc.BulletList(items...)
	}

	doc.H2("Optimized Portfolio")
	doc.PlainText(fmt.Sprintf("Equal weight in %s.", s.Composition))
	doc.LF()
	assets(doc, s.Result)
	performance(doc, s.Result, "Optimized Performance")
}

func weight(w float64) string { return dca.Percent(w * 100).String() }

func failed(err error) string { return fmt.Sprintf("n/a (%v)", err) }

func cagr(r dca.Row) string {
	if errors.Is(r.Err, dca.ErrPartialPortfolio) {
		return r.CAGR.String() + " (partial)"
	}
	if r.Err != nil {
		return "n/a"
	}
	return r.CAGR.String()
}

func volatility(v dca.VolatilityRow) string {
	if v.Err != nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v.Value)
}

func sharpe(m dca.Metrics) string {
	if m.SharpeErr != nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", m.Sharpe)
}
