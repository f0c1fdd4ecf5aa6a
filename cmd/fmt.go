package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/google/subcommands"
	"github.com/portfel/portfel"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validate and rewrite the portfolio file in canonical form"
}
func (*fmtCmd) Usage() string {
	return `pfl fmt

  Reads all records, replays them to validate the file, sorts them by date
  (keeping the original order within a day) and writes the file back in
  canonical JSONL form.
`
}

func (*fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	// LoadPortfolio replays the records, so a corrupt file fails here.
	_, _, records, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: nothing to format.")
		return subcommands.ExitSuccess
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].When().Before(records[j].When())
	})

	// Declarations must still precede use after sorting; replay again to be sure.
	if _, _, err := portfel.Replay(records); err != nil {
		fmt.Fprintf(os.Stderr, "Error: canonical order is not replayable: %v\n", err)
		return subcommands.ExitFailure
	}

	out, err := os.Create(*portfolioFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	for _, r := range records {
		if err := portfel.EncodeRecord(out, r); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Formatted %d records in %s\n", len(records), *portfolioFile)
	return subcommands.ExitSuccess
}
