// Package cmd implements the CLI application to manage a portfolio.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/portfel/portfel"
)

// As a CLI application with a very short lifecycle, global flags are fine.

var portfolioFile = flag.String("portfolio-file", "portfel.jsonl", "Path to the portfolio record file (JSONL format)")

// Commands lists every subcommand for registration by the main package.
var Commands = []subcommands.Command{
	&addCmd{},
	&costCmd{},
	&importCmd{},
	&summaryCmd{},
	&positionsCmd{},
	&positionCmd{},
	&priceCmd{},
	&reconcileCmd{},
	&fmtCmd{},
}

// LoadPortfolio reads and replays the record file. A missing file yields an
// empty portfolio rather than an error, so every command works on first run.
func LoadPortfolio() (*portfel.Portfolio, *portfel.ImportIndex, []portfel.Record, error) {
	f, err := os.Open(*portfolioFile)
	if errors.Is(err, fs.ErrNotExist) {
		p, idx, _ := portfel.Replay(nil)
		return p, idx, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not open portfolio file %q: %w", *portfolioFile, err)
	}
	defer f.Close()

	records, err := portfel.DecodeRecords(f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not decode portfolio file %q: %w", *portfolioFile, err)
	}
	p, idx, err := portfel.Replay(records)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("portfolio file %q is corrupt: %w", *portfolioFile, err)
	}
	return p, idx, records, nil
}

// AppendRecords appends records to the portfolio file, creating it if needed.
func AppendRecords(records ...portfel.Record) error {
	f, err := os.OpenFile(*portfolioFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open portfolio file %q: %w", *portfolioFile, err)
	}
	defer f.Close()

	for _, r := range records {
		if err := portfel.EncodeRecord(f, r); err != nil {
			return fmt.Errorf("could not write to portfolio file %q: %w", *portfolioFile, err)
		}
	}
	return nil
}

// printMarkdown renders markdown for the terminal; on rendering failure it
// falls back to the raw text.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

// printFieldErrors reports a validation failure field by field on stderr.
func printFieldErrors(err error) {
	var verr *portfel.ValidationError
	if errors.As(err, &verr) {
		for _, f := range verr.Fields {
			fmt.Fprintf(os.Stderr, "  %s\n", f)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "  %v\n", err)
}
