package portfel

import (
	"math"
	"sort"
)

// CashFlow is one dated, signed flow of money for the XIRR computation.
// Purchases are negative (money out); the current value is the terminal
// positive flow.
type CashFlow struct {
	On     Date
	Amount Money
}

// Solver parameters. The objective is
//
//	NPV(r) = Σ amount_i / (1+r)^((date_i - date_0)/365)
//
// and the result is the rate where it crosses zero.
const (
	xirrSeed    = 0.1
	xirrTol     = 1e-7
	xirrMaxIter = 100
	xirrMinRate = -0.999
	xirrMaxRate = 10.0
	daysPerYear = 365.0
)

// SolveXIRR finds the annualized internal rate of return for a series of
// dated cash flows. It is stateless and bounded: Newton-Raphson from a fixed
// seed with a bisection fallback over [-0.999, 10].
//
// ok is false when no rate can be derived: fewer than two flows, no elapsed
// time, no sign change among the flows, or non-convergence. Callers must
// report the metric as not calculable instead of using any number.
//
// Root finding happens in float64; the flows themselves stay exact and the
// conversion is confined to this function.
func SolveXIRR(flows []CashFlow) (rate float64, ok bool) {
	if len(flows) < 2 {
		return 0, false
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].On.Before(sorted[j].On) })

	base := sorted[0].On
	years := make([]float64, len(sorted))
	amounts := make([]float64, len(sorted))
	hasNeg, hasPos := false, false
	elapsed := false
	for i, f := range sorted {
		years[i] = float64(f.On.DaysSince(base)) / daysPerYear
		amounts[i] = f.Amount.InexactFloat()
		if amounts[i] < 0 {
			hasNeg = true
		}
		if amounts[i] > 0 {
			hasPos = true
		}
		if years[i] > 0 {
			elapsed = true
		}
	}
	if !hasNeg || !hasPos || !elapsed {
		return 0, false
	}

	npv := func(r float64) (value, derivative float64) {
		for i, a := range amounts {
			y := years[i]
			b := 1 + r
			discount := math.Pow(b, y)
			if discount == 0 {
				continue
			}
			value += a / discount
			if y != 0 {
				derivative -= y * a / (discount * b)
			}
		}
		return value, derivative
	}

	r := xirrSeed
	for iter := 0; iter < xirrMaxIter; iter++ {
		v, d := npv(r)
		if math.Abs(v) < xirrTol {
			return r, true
		}
		if d == 0 {
			break
		}
		next := r - v/d
		if next <= xirrMinRate {
			next = xirrMinRate + xirrTol
		}
		if next > xirrMaxRate {
			next = xirrMaxRate
		}
		r = next
	}

	return bisectXIRR(func(r float64) float64 { v, _ := npv(r); return v })
}

// bisectXIRR brackets the root over [minRate, maxRate] and narrows by
// bisection. No sign change over the bracket, or exhausting the iterations
// without reaching the tolerance, means no reportable rate.
func bisectXIRR(npv func(float64) float64) (float64, bool) {
	const maxIter = 200

	lo, hi := xirrMinRate, xirrMaxRate
	vLo, vHi := npv(lo), npv(hi)
	if math.IsNaN(vLo) || math.IsNaN(vHi) || vLo*vHi > 0 {
		return 0, false
	}

	for iter := 0; iter < maxIter; iter++ {
		mid := (lo + hi) / 2
		vMid := npv(mid)
		if math.IsNaN(vMid) {
			return 0, false
		}
		if math.Abs(vMid) < xirrTol {
			return mid, true
		}
		if vMid*vLo < 0 {
			hi = mid
		} else {
			lo, vLo = mid, vMid
		}
	}
	return 0, false
}

// positionFlows derives the cash-flow series of one position: one negative
// outflow per holding at its first purchase date, and the current market
// value as a positive inflow at asOf. ok is false while the price is pending.
func (s *Snapshot) positionFlows(symbol string, asOf Date) ([]CashFlow, bool) {
	pos, held := s.positions[symbol]
	if !held {
		return nil, false
	}
	price, priced := s.Price(symbol)
	if !priced {
		return nil, false
	}

	flows := make([]CashFlow, 0, len(pos.Holdings)+1)
	for _, h := range pos.Holdings {
		flows = append(flows, CashFlow{On: h.FirstBuy, Amount: h.Invested().Neg()})
	}
	flows = append(flows, CashFlow{On: asOf, Amount: price.Mul(pos.TotalQuantity)})
	return flows, true
}

// PositionXIRR computes the annualized return of one position as a
// percentage. ok is false when the rate is not calculable.
func (s *Snapshot) PositionXIRR(symbol string, asOf Date) (Percent, bool) {
	flows, ok := s.positionFlows(symbol, asOf)
	if !ok {
		return 0, false
	}
	rate, ok := SolveXIRR(flows)
	if !ok {
		return 0, false
	}
	return Percent(rate * 100), true
}

// PortfolioXIRR merges the flows of every priced position into one
// chronological series and solves it. A single pending price makes the
// portfolio rate unavailable: a partial series would misstate the return.
func (s *Snapshot) PortfolioXIRR(asOf Date) (Percent, bool) {
	var all []CashFlow
	terminal := M(0, s.Currency)
	for sym, pos := range s.positions {
		price, priced := s.Price(sym)
		if !priced {
			return 0, false
		}
		for _, h := range pos.Holdings {
			all = append(all, CashFlow{On: h.FirstBuy, Amount: h.Invested().Neg()})
		}
		terminal = terminal.Add(price.Mul(pos.TotalQuantity))
	}
	if len(all) == 0 {
		return 0, false
	}
	all = append(all, CashFlow{On: asOf, Amount: terminal})
	rate, ok := SolveXIRR(all)
	if !ok {
		return 0, false
	}
	return Percent(rate * 100), true
}
