package renderer

import (
	"fmt"
	"strings"

	"github.com/portfel/portfel"
)

// Summary is the render model of the portfolio summary report. Monetary and
// percentage fields are carried as their exact types so templates can use
// their own String and SignedString renderers.
type Summary struct {
	Date                  portfel.Date
	TotalCurrentValue     portfel.Money
	TotalInvestedAmount   portfel.Money
	TotalProfitLoss       portfel.Money
	TotalReturnPercentage portfel.Percent
	PositionsCount        int
	XIRR                  string
	PricesPending         []string
	CostsPending          []string
}

// NewSummary builds the render model from a computed portfolio summary.
func NewSummary(on portfel.Date, s portfel.PortfolioSummary) *Summary {
	r := &Summary{
		Date:                  on,
		TotalCurrentValue:     s.TotalCurrentValue,
		TotalInvestedAmount:   s.TotalInvestedAmount,
		TotalProfitLoss:       s.TotalProfitLoss,
		TotalReturnPercentage: s.TotalReturnPercentage,
		PositionsCount:        s.PositionsCount,
		XIRR:                  "N/A",
		PricesPending:         s.PricesPending,
	}
	if s.XIRRAvailable {
		r.XIRR = s.XIRR.SignedString()
	}
	for _, pc := range s.CostsPending {
		r.CostsPending = append(r.CostsPending, pendingLabel(pc))
	}
	return r
}

// SummaryMarkdown renders the portfolio summary report.
func SummaryMarkdown(s *Summary) string {
	partials := map[string]string{
		"summary_totals":  "summary_totals.md",
		"summary_pending": "summary_pending.md",
		"summary_costs":   "summary_costs.md",
	}
	return renderTemplate("summary", "summary.md", partials, s)
}

// JoinedPending is the template helper for the pending-price symbol list.
func (s *Summary) JoinedPending() string {
	return strings.Join(s.PricesPending, ", ")
}

// JoinedCostsPending is the template helper for the pending-cost list.
func (s *Summary) JoinedCostsPending() string {
	return strings.Join(s.CostsPending, ", ")
}

// pendingLabel describes a pending-cost record in reports.
func pendingLabel(pc portfel.PendingCost) string {
	return fmt.Sprintf("%s ×%s in %s", pc.Symbol, pc.Quantity, pc.AccountID)
}
