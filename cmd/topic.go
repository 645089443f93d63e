package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/dca/docs"
	"github.com/google/subcommands"
)

type topicCmd struct{ app *App }

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "read a topic of the user manual" }
func (*topicCmd) Usage() string {
	return `dcasim topic [<name>]

  Prints a topic of the user manual, or the list of topics without argument.
  "*" prints every topic.
`
}
func (*topicCmd) SetFlags(*flag.FlagSet) {}

func (c *topicCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: topic takes at most one argument")
		return subcommands.ExitUsageError
	}
	name := "readme"
	if f.NArg() == 1 {
		name = f.Arg(0)
	}
	content, err := docs.GetTopic(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	c.app.printMarkdown(content)
	return subcommands.ExitSuccess
}
