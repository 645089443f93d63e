package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/dca/analysis"
	md "github.com/nao1215/markdown"
)

// ForecastMarkdown renders the EMA regressions of several tickers.
func ForecastMarkdown(forecasts []analysis.Forecast) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("EMA-%d Forecast", analysis.EMAPeriod))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Intercept", "Slope", "R²", "MAE", "Test Days"},
	}
	for _, f := range forecasts {
		table.Rows = append(table.Rows, []string{
			f.Ticker,
			fmt.Sprintf("%.4f", f.Intercept),
			fmt.Sprintf("%.4f", f.Slope),
			fmt.Sprintf("%.4f", f.R2),
			fmt.Sprintf("%.4f", f.MAE),
			fmt.Sprint(len(f.Points)),
		})
	}
	doc.Table(table)
	return doc.String()
}
