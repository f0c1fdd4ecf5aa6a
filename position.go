package portfel

import (
	"fmt"
	"slices"
	"strings"
)

// InvalidHoldingError reports an attempt to apply a holding that violates the
// aggregate's invariants. Validated input never triggers it; when it does
// fire it indicates corrupted upstream data, so the enclosing operation must
// abort rather than retry.
type InvalidHoldingError struct {
	Symbol    string
	AccountID string
	Reason    string
}

func (e *InvalidHoldingError) Error() string {
	return fmt.Sprintf("invalid holding for %s in account %s: %s", e.Symbol, e.AccountID, e.Reason)
}

// Position aggregates all holdings of one instrument across accounts.
//
// Invariants, re-established after every mutation:
//
//	TotalQuantity = Σ holding.Quantity
//	AvgCostBasis  = Σ (holding.Quantity × holding.CostBasis) / TotalQuantity
//
// Both are recomputed from scratch over the full holding set, never adjusted
// incrementally, so rounding error cannot compound across applies.
type Position struct {
	Symbol        string
	TotalQuantity Quantity
	AvgCostBasis  Money
	Holdings      []Holding // ordered by account id

	// version counts applied mutations. Writers use it for compare-and-swap
	// so concurrent applies to the same instrument cannot interleave.
	version uint64
}

// NewPosition creates an empty position for an instrument.
func NewPosition(symbol string) *Position {
	return &Position{Symbol: symbol}
}

// Version returns the mutation counter.
func (p *Position) Version() uint64 { return p.version }

// applyHolding records a purchase of quantity units at costBasis per unit in
// the given account. A new holding is created for a first purchase; a repeat
// purchase merges by quantity-weighted averaging.
func (p *Position) applyHolding(accountID string, quantity Quantity, costBasis Money, on Date) error {
	if !quantity.IsPositive() {
		return &InvalidHoldingError{Symbol: p.Symbol, AccountID: accountID, Reason: "quantity must be strictly positive"}
	}
	if !costBasis.IsPositive() {
		return &InvalidHoldingError{Symbol: p.Symbol, AccountID: accountID, Reason: "cost basis must be strictly positive"}
	}

	i, found := slices.BinarySearchFunc(p.Holdings, accountID, func(h Holding, id string) int {
		return strings.Compare(h.AccountID, id)
	})
	if found {
		p.Holdings[i] = p.Holdings[i].merge(quantity, costBasis, on)
	} else {
		h := Holding{AccountID: accountID, Symbol: p.Symbol, Quantity: quantity, CostBasis: costBasis, FirstBuy: on}
		p.Holdings = slices.Insert(p.Holdings, i, h)
	}

	p.recompute()
	p.version++
	return nil
}

// recompute derives TotalQuantity and AvgCostBasis from the full holding set.
func (p *Position) recompute() {
	var total Quantity
	var invested Money
	for _, h := range p.Holdings {
		total = total.Add(h.Quantity)
		invested = invested.Add(h.CostBasis.Mul(h.Quantity))
	}
	p.TotalQuantity = total
	if total.IsZero() {
		p.AvgCostBasis = Money{}
		return
	}
	p.AvgCostBasis = invested.Div(total)
}

// Invested returns the total amount paid for the position.
func (p *Position) Invested() Money {
	return p.AvgCostBasis.Mul(p.TotalQuantity)
}

// Holding returns the holding for a given account, if any.
func (p *Position) Holding(accountID string) (Holding, bool) {
	i, found := slices.BinarySearchFunc(p.Holdings, accountID, func(h Holding, id string) int {
		return strings.Compare(h.AccountID, id)
	})
	if !found {
		return Holding{}, false
	}
	return p.Holdings[i], true
}

// clone returns a deep copy, safe for read paths to keep while writers move on.
func (p *Position) clone() *Position {
	cp := *p
	cp.Holdings = slices.Clone(p.Holdings)
	return &cp
}
