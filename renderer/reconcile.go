package renderer

import (
	"fmt"
	"strings"

	"github.com/portfel/portfel"
)

// ReconciliationMarkdown renders a reconciliation run. Sections with no
// entries are omitted; a clean run renders a single confirmation line.
func ReconciliationMarkdown(on portfel.Date, r portfel.ReconciliationResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Reconciliation on %s\n\n", on)

	if r.Clean() {
		fmt.Fprintf(&b, "All %d positions match the statement.\n", len(r.Matches))
		return b.String()
	}

	fmt.Fprintf(&b, "%d matched, %d quantity mismatches, %d value mismatches, %d missing in system, %d extra in system.\n",
		len(r.Matches), len(r.QuantityMismatches), len(r.ValueMismatches),
		len(r.MissingInSystem), len(r.ExtraInSystem))

	if len(r.QuantityMismatches) > 0 {
		fmt.Fprintf(&b, "\n## Quantity Mismatches\n\n")
		fmt.Fprintln(&b, "| Symbol | System | Statement |")
		fmt.Fprintln(&b, "|:---|---:|---:|")
		for _, m := range r.QuantityMismatches {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", m.Symbol, m.SystemQty, m.StatementQty)
		}
	}

	if len(r.ValueMismatches) > 0 {
		fmt.Fprintf(&b, "\n## Value Mismatches\n\n")
		fmt.Fprintln(&b, "| Symbol | System | Statement | Delta |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|")
		for _, m := range r.ValueMismatches {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", m.Symbol, m.SystemValue, m.StatementValue, m.DeltaPct.SignedString())
		}
	}

	if len(r.MissingInSystem) > 0 {
		fmt.Fprintf(&b, "\n## Missing in System\n\n")
		fmt.Fprintln(&b, "| Symbol | Statement Quantity |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, m := range r.MissingInSystem {
			fmt.Fprintf(&b, "| %s | %s |\n", m.Symbol, m.StatementQty)
		}
	}

	if len(r.ExtraInSystem) > 0 {
		fmt.Fprintf(&b, "\n## Extra in System\n\n")
		fmt.Fprintln(&b, "| Symbol | System Quantity |")
		fmt.Fprintln(&b, "|:---|---:|")
		for _, m := range r.ExtraInSystem {
			fmt.Fprintf(&b, "| %s | %s |\n", m.Symbol, m.SystemQty)
		}
	}
	return b.String()
}
