package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portfel/portfel"
)

// priceCmd holds the flags for the 'price' subcommand.
type priceCmd struct {
	file string
	date string
}

func (*priceCmd) Name() string     { return "price" }
func (*priceCmd) Synopsis() string { return "update the current price of one or many instruments" }
func (*priceCmd) Usage() string {
	return `pfl price <symbol> <price> [-d <date>]
pfl price -f <prices.jsonl>

  Updates current prices. The batch form reads one JSON object per line:
  {"record":"update-price","date":"2025-06-30","symbol":"CDR.WA","price":512.40}
  Non-positive prices are rejected.
`
}

func (c *priceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Batch price file (JSONL)")
	f.StringVar(&c.date, "d", portfel.Today().String(), "Price date for the single-symbol form")
}

func (c *priceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	p, _, _, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	var updates []portfel.PriceRecord
	switch {
	case c.file != "":
		in, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		defer in.Close()
		records, err := portfel.DecodeRecords(in)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		for _, r := range records {
			pr, ok := r.(portfel.PriceRecord)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: price file contains a %s record\n", r.What())
				return subcommands.ExitFailure
			}
			updates = append(updates, pr)
		}

	case f.NArg() == 2:
		on, err := portfel.ParseDate(c.date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
		price, err := portfel.ParseMoney(f.Arg(1), portfel.DefaultCurrency)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
			return subcommands.ExitUsageError
		}
		updates = append(updates, portfel.PriceRecord{Date: on, Symbol: f.Arg(0), Price: price})

	default:
		fmt.Fprintln(os.Stderr, "Error: give either <symbol> <price> or -f <file>")
		return subcommands.ExitUsageError
	}

	// Apply everything in memory first; a bad line must not leave a
	// partially written batch in the file.
	for _, u := range updates {
		if err := p.SetPrice(u.Symbol, u.Price, u.Date.Time()); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	}
	records := make([]portfel.Record, len(updates))
	for i, u := range updates {
		records[i] = u
	}
	if err := AppendRecords(records...); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Updated %d price(s)\n", len(updates))
	return subcommands.ExitSuccess
}
