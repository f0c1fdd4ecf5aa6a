package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portfel/portfel"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	batch string
	file  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a batch of position records from a file" }
func (*importCmd) Usage() string {
	return `pfl import -b <batch-id> -f <records.jsonl>

  Imports position records in bulk. Every record is validated and all field
  violations are reported, per record, before anything is written. A record
  that matches an already-imported (batch, account, symbol) triple is
  rejected as a duplicate; the same instrument under a different account is
  aggregated normally. Records without an average cost are stored flagged
  for manual cost entry.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.batch, "b", "", "Import batch identifier (required)")
	f.StringVar(&c.file, "f", "", "Records file, one JSON object per line (required)")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.batch == "" || c.file == "" {
		fmt.Fprintln(os.Stderr, "Error: both -b and -f are required")
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	raw, err := portfel.DecodeImportRecords(in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	p, idx, _, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	// Validate the whole batch first: a batch with any invalid record is
	// rejected in full, with every violation reported at once.
	valid := make([]portfel.ValidatedPosition, 0, len(raw))
	failed := 0
	for i, rec := range raw {
		rec.Batch = c.batch
		v, err := portfel.ValidateRecord(rec, idx.Contains)
		if err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "Record %d (%s):\n", i+1, rec.Symbol)
			printFieldErrors(err)
			continue
		}
		// Duplicates inside the batch itself are rejected too.
		idx.Add(c.batch, v.AccountID, v.Symbol)
		valid = append(valid, v)
	}
	if failed > 0 {
		fmt.Fprintf(os.Stderr, "Error: %d of %d records are invalid; nothing was imported.\n", failed, len(raw))
		return subcommands.ExitFailure
	}

	var records []portfel.Record
	for _, v := range valid {
		if _, declared := p.Snapshot().Instrument(v.Symbol); !declared {
			if _, err := p.Declare(v.Symbol, v.Name, v.Type); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return subcommands.ExitFailure
			}
			records = append(records, portfel.DeclareRecord{Date: v.On, Symbol: v.Symbol, Name: v.Name, Type: v.Type})
		}
		if v.NeedsCost {
			p.AddPending(portfel.PendingCost{Batch: v.Batch, AccountID: v.AccountID, Symbol: v.Symbol, Quantity: v.Quantity, On: v.On})
		} else if _, err := p.ApplyHolding(v.Symbol, v.AccountID, v.Quantity, v.AverageCost, v.On, portfel.ApplyAnyVersion); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		records = append(records, portfel.AddRecord{
			Date: v.On, Symbol: v.Symbol, AccountID: v.AccountID,
			Quantity: v.Quantity, Cost: v.AverageCost, NeedsCost: v.NeedsCost,
			Batch: v.Batch,
		})
	}

	if err := AppendRecords(records...); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Imported %d records from batch %q\n", len(valid), c.batch)
	return subcommands.ExitSuccess
}
