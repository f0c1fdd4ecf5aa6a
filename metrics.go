package portfel

import (
	"fmt"
	"sort"
	"time"
)

// PositionMetrics is the computed valuation of one position. When Priced is
// false the current price is pending and CurrentValue, ProfitLoss and
// ReturnPercentage are unavailable; callers render "N/A", never zero.
type PositionMetrics struct {
	InvestedAmount   Money
	Priced           bool
	CurrentValue     Money
	ProfitLoss       Money
	ReturnPercentage Percent
}

// ComputeMetrics derives value, invested amount and P&L for a position at
// the given price. priced is false while no price is known.
func ComputeMetrics(pos *Position, price Money, priced bool) PositionMetrics {
	m := PositionMetrics{InvestedAmount: pos.Invested()}
	if !priced {
		return m
	}
	m.Priced = true
	m.CurrentValue = price.Mul(pos.TotalQuantity)
	m.ProfitLoss = m.CurrentValue.Sub(m.InvestedAmount)
	m.ReturnPercentage = returnPercent(m.ProfitLoss, m.InvestedAmount)
	return m
}

// returnPercent is profitLoss/invested×100, and 0 for a zero invested amount
// (the empty-portfolio case must not produce NaN).
func returnPercent(profitLoss, invested Money) Percent {
	if invested.IsZero() {
		return 0
	}
	return Percent(profitLoss.Ratio(invested).InexactFloat() * 100)
}

// PortfolioSummary is the unified portfolio view. Positions with a pending
// price contribute to the invested total but are excluded from the value
// totals; their symbols are listed in PricesPending. Records imported
// without a cost contribute to no total and are listed in CostsPending
// until the cost is entered.
type PortfolioSummary struct {
	TotalCurrentValue     Money
	TotalInvestedAmount   Money
	TotalProfitLoss       Money
	TotalReturnPercentage Percent
	PositionsCount        int
	LastUpdatedAt         time.Time
	PricesPending         []string
	CostsPending          []PendingCost

	XIRR          Percent
	XIRRAvailable bool
}

// Summary computes the portfolio-level rollup as of the given date. The date
// anchors the terminal cash flow of the portfolio XIRR.
func (s *Snapshot) Summary(asOf Date) PortfolioSummary {
	sum := PortfolioSummary{
		TotalCurrentValue:   M(0, s.Currency),
		TotalInvestedAmount: M(0, s.Currency),
		PositionsCount:      len(s.positions),
		LastUpdatedAt:       s.LastUpdated,
		CostsPending:        s.PendingCost(),
	}

	pricedInvested := M(0, s.Currency)
	for _, sym := range s.Symbols() {
		pos := s.positions[sym]
		price, priced := s.Price(sym)
		m := ComputeMetrics(pos, price, priced)
		sum.TotalInvestedAmount = sum.TotalInvestedAmount.Add(m.InvestedAmount)
		if !priced {
			sum.PricesPending = append(sum.PricesPending, sym)
			continue
		}
		sum.TotalCurrentValue = sum.TotalCurrentValue.Add(m.CurrentValue)
		pricedInvested = pricedInvested.Add(m.InvestedAmount)
	}
	sum.TotalProfitLoss = sum.TotalCurrentValue.Sub(pricedInvested)
	sum.TotalReturnPercentage = returnPercent(sum.TotalProfitLoss, pricedInvested)

	if rate, ok := s.PortfolioXIRR(asOf); ok {
		sum.XIRR, sum.XIRRAvailable = rate, true
	}
	return sum
}

// PositionView is one row of the position list, or the position detail when
// Holdings is populated.
type PositionView struct {
	Symbol         string
	Name           string
	Type           InstrumentType
	Quantity       Quantity
	AverageCost    Money
	CurrentPrice   Money
	Priced         bool
	PriceUpdatedAt time.Time

	PositionMetrics

	XIRR          Percent
	XIRRAvailable bool

	Holdings []Holding // per-account breakdown, detail view only
}

// SortKey selects the ordering of the position list.
type SortKey int

const (
	ByCurrentValue SortKey = iota
	ByReturnPercentage
	ByProfitLoss
	ByQuantity
)

// ParseSortKey parses a sort key name as accepted on the command line.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "value":
		return ByCurrentValue, nil
	case "return":
		return ByReturnPercentage, nil
	case "pnl":
		return ByProfitLoss, nil
	case "quantity":
		return ByQuantity, nil
	default:
		return 0, fmt.Errorf("unknown sort key %q (want value, return, pnl or quantity)", s)
	}
}

// PositionViews builds the sorted position list as of the given date.
// Unpriced positions sort below priced ones for value-dependent keys.
func (s *Snapshot) PositionViews(asOf Date, key SortKey, descending bool) []PositionView {
	views := make([]PositionView, 0, len(s.positions))
	for _, sym := range s.Symbols() {
		views = append(views, s.positionView(sym, asOf, false))
	}

	less := func(a, b PositionView) bool {
		switch key {
		case ByQuantity:
			return a.Quantity.LessThan(b.Quantity)
		case ByReturnPercentage:
			if a.Priced != b.Priced {
				return !a.Priced
			}
			return a.ReturnPercentage < b.ReturnPercentage
		case ByProfitLoss:
			if a.Priced != b.Priced {
				return !a.Priced
			}
			return a.ProfitLoss.LessThan(b.ProfitLoss)
		default: // ByCurrentValue
			if a.Priced != b.Priced {
				return !a.Priced
			}
			return a.CurrentValue.LessThan(b.CurrentValue)
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		if descending {
			return less(views[j], views[i])
		}
		return less(views[i], views[j])
	})
	return views
}

// PositionDetail builds the detail view of one position, including the
// per-account breakdown.
func (s *Snapshot) PositionDetail(symbol string, asOf Date) (PositionView, bool) {
	if _, ok := s.positions[symbol]; !ok {
		return PositionView{}, false
	}
	return s.positionView(symbol, asOf, true), true
}

func (s *Snapshot) positionView(symbol string, asOf Date, detail bool) PositionView {
	pos := s.positions[symbol]
	inst := s.instruments[symbol]
	price, _, priced := inst.Price()

	v := PositionView{
		Symbol:          symbol,
		Name:            inst.Name,
		Type:            inst.Type,
		Quantity:        pos.TotalQuantity,
		AverageCost:     pos.AvgCostBasis,
		CurrentPrice:    price,
		Priced:          priced,
		PositionMetrics: ComputeMetrics(pos, price, priced),
	}
	if priced {
		_, v.PriceUpdatedAt, _ = inst.Price()
	}
	if rate, ok := s.PositionXIRR(symbol, asOf); ok {
		v.XIRR, v.XIRRAvailable = rate, true
	}
	if detail {
		v.Holdings = append(v.Holdings, pos.Holdings...)
	}
	return v
}
