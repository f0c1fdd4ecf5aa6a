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

// reconcileCmd holds the flags for the 'reconcile' subcommand.
type reconcileCmd struct {
	file      string
	jsonFile  string
	linesPath string
	symPath   string
	qtyPath   string
	valPath   string
	tolerance string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "compare system positions against a broker statement" }
func (*reconcileCmd) Usage() string {
	return `pfl reconcile -f <statement.jsonl> [-tolerance <fraction>]
pfl reconcile -json <export.json> [-lines <path>] [-sym <path>] [-qty <path>] [-val <path>]

  Diffs current positions against a broker statement and reports matches,
  quantity mismatches, value mismatches (beyond the tolerance fraction of
  the statement value), and positions missing on either side.

  The -json form extracts lines from an arbitrary broker JSON export with
  JSONPath expressions; the defaults fit {"positions":[{"symbol":...,
  "quantity":..., "value":...}]}.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "f", "", "Statement file in native JSONL form")
	f.StringVar(&c.jsonFile, "json", "", "Foreign broker JSON export")
	f.StringVar(&c.linesPath, "lines", portfel.DefaultStatementMapping.Lines, "JSONPath selecting the statement lines")
	f.StringVar(&c.symPath, "sym", portfel.DefaultStatementMapping.Symbol, "JSONPath to the symbol within a line")
	f.StringVar(&c.qtyPath, "qty", portfel.DefaultStatementMapping.Quantity, "JSONPath to the quantity within a line")
	f.StringVar(&c.valPath, "val", portfel.DefaultStatementMapping.Value, "JSONPath to the value within a line")
	f.StringVar(&c.tolerance, "tolerance", "0.005", "Value tolerance as a fraction of the statement value")
}

func (c *reconcileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tolerance, err := portfel.ParseQuantity(c.tolerance)
	if err != nil || tolerance.IsNegative() {
		fmt.Fprintf(os.Stderr, "Error: invalid tolerance %q\n", c.tolerance)
		return subcommands.ExitUsageError
	}

	var lines []portfel.StatementLine
	switch {
	case c.file != "":
		in, err := os.Open(c.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		defer in.Close()
		if lines, err = portfel.DecodeStatement(in); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}

	case c.jsonFile != "":
		doc, err := os.ReadFile(c.jsonFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}
		mapping := portfel.StatementMapping{Lines: c.linesPath, Symbol: c.symPath, Quantity: c.qtyPath, Value: c.valPath}
		if lines, err = portfel.ExtractStatement(doc, mapping); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitFailure
		}

	default:
		fmt.Fprintln(os.Stderr, "Error: give a statement with -f or -json")
		return subcommands.ExitUsageError
	}

	p, _, _, err := LoadPortfolio()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	result := portfel.Reconcile(p.Snapshot(), lines, tolerance)
	printMarkdown(renderer.ReconciliationMarkdown(portfel.Today(), result))

	if !result.Clean() {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
