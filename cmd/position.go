package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portfel/portfel"
	"github.com/portfel/portfel/renderer"
)

// positionCmd holds the flags for the 'position' subcommand.
type positionCmd struct {
	date string
}

func (*positionCmd) Name() string     { return "position" }
func (*positionCmd) Synopsis() string { return "display one position with its per-account breakdown" }
func (*positionCmd) Usage() string {
	return `pfl position <symbol> [-d <date>]

  Displays the detail view of one position: metrics, current price, and the
  holding in each account.
`
}

func (c *positionCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", portfel.Today().String(), "As-of date for XIRR")
}

func (c *positionCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one symbol is required")
		return subcommands.ExitUsageError
	}
	symbol := f.Arg(0)

	on, err := portfel.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, _, _, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	view, ok := p.Snapshot().PositionDetail(symbol, on)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no position held for %q\n", symbol)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.PositionDetailMarkdown(view))
	return subcommands.ExitSuccess
}
