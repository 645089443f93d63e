// Command dcasim simulates periodic investment plans on historical prices.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"

	"github.com/etnz/dca"
	"github.com/etnz/dca/cmd"
	"github.com/etnz/dca/config"
	"github.com/etnz/dca/docs"
	"github.com/etnz/dca/logger"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

var (
	raw      = flag.Bool("raw", false, "Print markdown reports without terminal rendering.")
	provider = flag.String("provider", "", "Market data provider (yahoo, eodhd, csv), overrides DCA_PROVIDER.")
	cache    = flag.String("cache", "", "sqlite file caching prices, overrides DCA_CACHE.")
	csvDir   = flag.String("csv-dir", "", "Directory of TICKER.csv files for the csv provider, overrides DCA_CSV_DIR.")
	verbose  = flag.Bool("v", false, "Log at debug level.")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	app := &cmd.App{}
	cmd.Register(commander, app)

	completion(commander).Complete(commander.Name())
	flag.Parse()

	cfg, err := config.Load()
	if err == nil {
		err = override(cfg)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}
	level := cfg.LogLevel
	if *verbose {
		level = "debug"
	}
	app.Config = cfg
	app.Raw = *raw
	app.Log = logger.New(logger.Config{Level: level, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(app.Log)

	if sub := flag.Arg(0); sub != "" && !registered(commander, sub) {
		if found, code := cmd.RunExtension(cfg, *raw, sub, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

// override applies the global flags to the configuration.
func override(cfg *config.Config) error {
	if *provider != "" {
		cfg.Provider = *provider
	}
	if *cache != "" {
		cfg.Cache = *cache
	}
	if *csvDir != "" {
		cfg.CSVDir = *csvDir
	}
	return cfg.Validate()
}

func registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		found = found || c.Name() == name
	})
	return found
}

// completion describes the commands and their flags for shell completion.
func completion(commander *subcommands.Commander) *complete.Command {
	frequencies := make([]string, len(dca.Frequencies))
	for i, f := range dca.Frequencies {
		frequencies[i] = f.String()
	}
	tickers := make([]string, len(dca.DefaultCatalog))
	for i, c := range dca.DefaultCatalog {
		tickers[i] = c.Ticker
	}
	predictors := map[string]complete.Predictor{
		"f":          predict.Set(frequencies),
		"evolution":  predict.Set(frequencies),
		"benchmark":  predict.Set(tickers),
		"chart":      predict.Files("*.png"),
		"networth":   predict.Files("*.png"),
		"cagr-chart": predict.Files("*.png"),
		"provider":   predict.Set{"yahoo", "eodhd", "csv"},
		"csv-dir":    predict.Dirs("*"),
		"cache":      predict.Files("*.db"),
	}
	flags := func(f *flag.FlagSet) map[string]complete.Predictor {
		m := make(map[string]complete.Predictor)
		f.VisitAll(func(fl *flag.Flag) {
			if p, ok := predictors[fl.Name]; ok {
				m[fl.Name] = p
			} else {
				m[fl.Name] = predict.Something
			}
		})
		return m
	}

	root := &complete.Command{Sub: map[string]*complete.Command{}, Flags: flags(flag.CommandLine)}
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		sub := &complete.Command{Flags: flags(f)}
		switch c.Name() {
		case "forecast", "fetch":
			sub.Args = predict.Set(tickers)
		case "topic":
			topics, _ := docs.GetAllTopics()
			sub.Args = predict.Set(topics)
		}
		root.Sub[c.Name()] = sub
	})
	return root
}
