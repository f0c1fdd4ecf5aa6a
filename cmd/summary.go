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

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	date string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the unified portfolio summary" }
func (*summaryCmd) Usage() string {
	return `pfl summary [-d <date>]

  Displays the portfolio rollup: total current value, invested amount,
  profit/loss, return percentage and annualized return (XIRR).
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.date, "d", portfel.Today().String(), "As-of date anchoring the XIRR terminal cash flow")
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	s := p.Snapshot().Summary(on)
	printMarkdown(renderer.SummaryMarkdown(renderer.NewSummary(on, s)))
	return subcommands.ExitSuccess
}
