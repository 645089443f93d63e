// Package cmd implements the dcasim subcommands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/dca"
	"github.com/etnz/dca/config"
	"github.com/etnz/dca/csvdata"
	"github.com/etnz/dca/eodhd"
	"github.com/etnz/dca/store"
	"github.com/etnz/dca/yahoo"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// App is the state shared by the subcommands. As a CLI application, it has a
// very short lifecycle: each command opens the market data and closes it.
type App struct {
	Config *config.Config
	Log    zerolog.Logger
	Out    io.Writer // reports, os.Stdout if nil
	Raw    bool      // print markdown as is instead of rendering it for the terminal

	market  dca.MarketData // set by tests to bypass the configured provider
	closers []func() error
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&simulateCmd{app: app}, "simulation")
	c.Register(&optimizeCmd{app: app}, "simulation")
	c.Register(&catalogCmd{app: app}, "simulation")

	c.Register(&forecastCmd{app: app}, "analysis")
	c.Register(&fetchCmd{app: app}, "analysis")

	c.Register(&reviewCmd{app: app}, "ai")
	c.Register(&assistCmd{app: app}, "ai")

	c.Register(&serveCmd{app: app}, "server")

	c.Register(&topicCmd{app: app}, "help")
}

func (a *App) out() io.Writer {
	if a.Out == nil {
		return os.Stdout
	}
	return a.Out
}

// Market opens the configured market data provider, behind the sqlite cache
// when one is configured. Close releases it.
func (a *App) Market() (dca.MarketData, error) {
	if a.market != nil {
		return a.market, nil
	}
	var md dca.MarketData
	switch a.Config.Provider {
	case config.ProviderYahoo:
		md = yahoo.NewClient(a.Log)
	case config.ProviderEODHD:
		md = eodhd.New(a.Config.EODHDAPIKey, "", a.Log)
	case config.ProviderCSV:
		md = csvdata.Dir{Path: a.Config.CSVDir}
	default:
		return nil, fmt.Errorf("unknown market data provider %q", a.Config.Provider)
	}
	if a.Config.Cache == "" {
		return md, nil
	}
	db, err := store.Open(a.Config.Cache)
	if err != nil {
		return nil, fmt.Errorf("cannot open price cache: %w", err)
	}
	a.closers = append(a.closers, db.Close)
	return store.NewCache(db, md, a.Log), nil
}

// Close releases what Market opened.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// printMarkdown prints md rendered for the terminal, or raw.
func (a *App) printMarkdown(md string) {
	if !a.Raw {
		if out, err := glamour.Render(md, "auto"); err == nil {
			md = out
		} else {
			a.Log.Warn().Err(err).Msg("cannot render markdown")
		}
	}
	fmt.Fprint(a.out(), md)
}
