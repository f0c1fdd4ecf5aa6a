package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portfel/portfel"
)

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	symbol   string
	name     string
	typ      string
	account  string
	quantity string
	cost     string
	date     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record a purchase of an instrument in an account" }
func (*addCmd) Usage() string {
	return `pfl add -s <symbol> -a <account> -q <quantity> [-c <avg-cost>] [-n <name>] [-t <type>] [-d <date>]

  Records a purchase. A first purchase of an instrument in an account creates
  a holding; a repeat purchase merges into it with a quantity-weighted average
  cost. Without -c the record is stored flagged as needing manual cost entry.

Usage Examples:
# 50 shares of CDR.WA at 500 PLN each, held at broker "xtb"
$ pfl add -s CDR.WA -n "CD Projekt" -a xtb -q 50 -c 500
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.symbol, "s", "", "Instrument symbol (required)")
	f.StringVar(&c.name, "n", "", "Instrument name, for a first declaration")
	f.StringVar(&c.typ, "t", "STOCK", "Instrument type: STOCK, ETF, BOND_ETF or POLISH_GOV_BOND")
	f.StringVar(&c.account, "a", "", "Account identifier (required)")
	f.StringVar(&c.quantity, "q", "", "Quantity purchased (required)")
	f.StringVar(&c.cost, "c", "", "Average cost paid per unit")
	f.StringVar(&c.date, "d", "", "Purchase date, defaults to today")
}

func (c *addCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := portfel.ValidateRecord(portfel.PositionRecord{
		Symbol:      c.symbol,
		Name:        c.name,
		Type:        c.typ,
		AccountID:   c.account,
		Quantity:    c.quantity,
		AverageCost: c.cost,
		Date:        c.date,
	}, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: invalid position record:")
		printFieldErrors(err)
		return subcommands.ExitUsageError
	}

	p, _, _, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var records []portfel.Record
	if _, declared := p.Snapshot().Instrument(v.Symbol); !declared {
		if _, err := p.Declare(v.Symbol, v.Name, v.Type); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		records = append(records, portfel.DeclareRecord{Date: v.On, Symbol: v.Symbol, Name: v.Name, Type: v.Type})
	}

	add := portfel.AddRecord{
		Date: v.On, Symbol: v.Symbol, AccountID: v.AccountID,
		Quantity: v.Quantity, Cost: v.AverageCost, NeedsCost: v.NeedsCost,
	}
	if v.NeedsCost {
		p.AddPending(portfel.PendingCost{AccountID: v.AccountID, Symbol: v.Symbol, Quantity: v.Quantity, On: v.On})
		fmt.Fprintf(os.Stderr, "Warning: no average cost given; %s in %s is flagged for manual cost entry.\n", v.Symbol, v.AccountID)
	} else {
		// Apply before persisting so an invariant violation never reaches the file.
		if _, err := p.ApplyHolding(v.Symbol, v.AccountID, v.Quantity, v.AverageCost, v.On, portfel.ApplyAnyVersion); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	}
	records = append(records, add)

	if err := AppendRecords(records...); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s × %s in account %s\n", v.Quantity, v.Symbol, v.AccountID)
	return subcommands.ExitSuccess
}
