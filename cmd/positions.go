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

// positionsCmd holds the flags for the 'positions' subcommand.
type positionsCmd struct {
	sortKey    string
	descending bool
	date       string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "list all positions with their metrics" }
func (*positionsCmd) Usage() string {
	return `pfl positions [-sort <key>] [-desc] [-d <date>]

  Lists every position with quantity, average cost, current value, P&L and
  return. Sort keys: value, return, pnl, quantity.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sortKey, "sort", "value", "Sort key: value, return, pnl or quantity")
	f.BoolVar(&c.descending, "desc", true, "Sort in descending order")
	f.StringVar(&c.date, "d", portfel.Today().String(), "As-of date for XIRR")
}

func (c *positionsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	key, err := portfel.ParseSortKey(c.sortKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
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

	s := p.Snapshot()
	views := s.PositionViews(on, key, c.descending)
	printMarkdown(renderer.PositionsMarkdown(views, s.PendingCost()))
	return subcommands.ExitSuccess
}
