package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portfel/portfel"
)

// costCmd holds the flags for the 'cost' subcommand.
type costCmd struct {
	symbol  string
	account string
	cost    string
	date    string
}

func (*costCmd) Name() string     { return "cost" }
func (*costCmd) Synopsis() string { return "enter the missing cost for a pending imported holding" }
func (*costCmd) Usage() string {
	return `pfl cost -s <symbol> -a <account> -c <avg-cost> [-d <date>]

  Enters the average cost for records that were added or imported without
  one. Every pending record of the account and symbol becomes a holding,
  dated by its original purchase date, and leaves the pending list.
`
}

func (c *costCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Instrument symbol (required)")
	f.StringVar(&c.account, "a", "", "Account identifier (required)")
	f.StringVar(&c.cost, "c", "", "Average cost paid per unit (required)")
	f.StringVar(&c.date, "d", portfel.Today().String(), "Entry date for the record")
}

func (c *costCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.symbol == "" || c.account == "" || c.cost == "" {
		fmt.Fprintln(os.Stderr, "Error: -s, -a and -c are all required")
		return subcommands.ExitUsageError
	}
	on, err := portfel.ParseDate(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cost, err := portfel.ParseMoney(c.cost, portfel.DefaultCurrency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing cost: %v\n", err)
		return subcommands.ExitUsageError
	}

	p, _, _, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	// Resolve before persisting so a bad entry never reaches the file.
	pos, err := p.ResolvePending(c.symbol, c.account, cost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if err := AppendRecords(portfel.CostRecord{Date: on, Symbol: c.symbol, AccountID: c.account, Cost: cost}); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Entered cost for %s in account %s; position now %s @ %s\n",
		c.symbol, c.account, pos.TotalQuantity, pos.AvgCostBasis.Amount())
	return subcommands.ExitSuccess
}
