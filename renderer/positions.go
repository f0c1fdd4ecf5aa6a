package renderer

import (
	"fmt"
	"strings"

	"github.com/portfel/portfel"
)

// PositionsMarkdown renders the position list as a markdown table, in the
// order the views were sorted by the caller. Records still waiting for a
// cost entry are listed under the table.
func PositionsMarkdown(views []portfel.PositionView, pending []portfel.PendingCost) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Positions\n\n")
	fmt.Fprintln(&b, "| Symbol | Name | Type | Quantity | Avg Cost | Value | P&L | Return | XIRR |")
	fmt.Fprintln(&b, "|:---|:---|:---|---:|---:|---:|---:|---:|---:|")

	for _, v := range views {
		value, pnl, ret := "N/A", "N/A", "N/A"
		if v.Priced {
			value = v.CurrentValue.String()
			pnl = v.ProfitLoss.SignedString()
			ret = v.ReturnPercentage.SignedString()
		}
		xirr := "N/A"
		if v.XIRRAvailable {
			xirr = v.XIRR.SignedString()
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			v.Symbol, v.Name, v.Type, v.Quantity, v.AverageCost, value, pnl, ret, xirr)
	}

	if len(pending) > 0 {
		labels := make([]string, len(pending))
		for i, pc := range pending {
			labels[i] = pendingLabel(pc)
		}
		fmt.Fprintf(&b, "\nCost entry pending for: %s.\n", strings.Join(labels, ", "))
	}
	return b.String()
}

// PositionDetailMarkdown renders one position with its per-account breakdown.
func PositionDetailMarkdown(v portfel.PositionView) string {
	var b strings.Builder
	if v.Name != "" {
		fmt.Fprintf(&b, "# %s - %s (%s)\n\n", v.Symbol, v.Name, v.Type)
	} else {
		fmt.Fprintf(&b, "# %s (%s)\n\n", v.Symbol, v.Type)
	}

	fmt.Fprintln(&b, "| Metric | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Quantity | %s |\n", v.Quantity)
	fmt.Fprintf(&b, "| Average Cost | %s |\n", v.AverageCost)
	fmt.Fprintf(&b, "| Invested | %s |\n", v.InvestedAmount)
	if v.Priced {
		fmt.Fprintf(&b, "| Current Price | %s (as of %s) |\n", v.CurrentPrice, v.PriceUpdatedAt.Format("2006-01-02"))
		fmt.Fprintf(&b, "| Current Value | %s |\n", v.CurrentValue)
		fmt.Fprintf(&b, "| Profit/Loss | %s |\n", v.ProfitLoss.SignedString())
		fmt.Fprintf(&b, "| Return | %s |\n", v.ReturnPercentage.SignedString())
	} else {
		fmt.Fprintln(&b, "| Current Price | pending |")
	}
	if v.XIRRAvailable {
		fmt.Fprintf(&b, "| Annualized Return (XIRR) | %s |\n", v.XIRR.SignedString())
	}

	if len(v.Holdings) > 0 {
		fmt.Fprintf(&b, "\n## Accounts\n\n")
		fmt.Fprintln(&b, "| Account | Quantity | Cost Basis | Invested | First Buy |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|:---|")
		for _, h := range v.Holdings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				h.AccountID, h.Quantity, h.CostBasis, h.Invested(), h.FirstBuy)
		}
	}
	return b.String()
}
