package portfel

import "sort"

// StatementLine is one broker-reported line: the quantity and, optionally,
// the market value the broker states for an instrument. A zero Value means
// the statement carries no value column for that line.
type StatementLine struct {
	Symbol   string
	Quantity Quantity
	Value    Money
}

// Match is a reconciled line: system and statement agree within tolerance.
type Match struct {
	Symbol string
}

// QuantityMismatch reports differing share counts for a symbol.
type QuantityMismatch struct {
	Symbol       string
	SystemQty    Quantity
	StatementQty Quantity
}

// ValueMismatch reports market values differing by more than the tolerance.
type ValueMismatch struct {
	Symbol         string
	SystemValue    Money
	StatementValue Money
	DeltaPct       Percent
}

// MissingPosition is a statement line with no matching system position.
type MissingPosition struct {
	Symbol       string
	StatementQty Quantity
}

// ExtraPosition is a system position absent from the statement.
type ExtraPosition struct {
	Symbol    string
	SystemQty Quantity
}

// ReconciliationResult classifies every symbol of a reconciliation run.
// It is computed fresh per run and never persisted by the engine.
// Discrepancies are reportable outcomes of a successful run, not errors.
type ReconciliationResult struct {
	Matches            []Match
	QuantityMismatches []QuantityMismatch
	ValueMismatches    []ValueMismatch
	MissingInSystem    []MissingPosition
	ExtraInSystem      []ExtraPosition
}

// Clean reports whether the run found no discrepancy of any kind.
func (r *ReconciliationResult) Clean() bool {
	return len(r.QuantityMismatches) == 0 && len(r.ValueMismatches) == 0 &&
		len(r.MissingInSystem) == 0 && len(r.ExtraInSystem) == 0
}

// Reconcile diffs the snapshot against a broker statement. Matching is by
// exact symbol. For a symbol on both sides, quantity is compared first; only
// equal quantities proceed to the value comparison, so a line never appears
// in both mismatch lists. Values count as matching when the absolute delta is
// within tolerance × statement value, absorbing intraday price-timing noise.
// The tolerance is a dimensionless fraction, e.g. Q(0.005) for 0.5%.
// When the statement has no value for a line, or the system price is pending,
// equal quantities alone make the match.
//
// Quantities still waiting for a cost entry count toward the system side:
// the broker holds those shares whether or not their cost is known. A symbol
// with any pending quantity is compared by quantity only, since its cost
// picture is incomplete.
//
// The snapshot is read-only and the statement is not modified: running twice
// over the same inputs yields identical results. Symbols in each result list
// are in lexical order.
func Reconcile(s *Snapshot, statement []StatementLine, tolerance Quantity) ReconciliationResult {
	var result ReconciliationResult

	lines := make(map[string]StatementLine, len(statement))
	for _, line := range statement {
		lines[line.Symbol] = line
	}

	systemQty := make(map[string]Quantity)
	hasPending := make(map[string]bool)
	for sym, pos := range s.positions {
		systemQty[sym] = pos.TotalQuantity
	}
	for _, pc := range s.pending {
		systemQty[pc.Symbol] = systemQty[pc.Symbol].Add(pc.Quantity)
		hasPending[pc.Symbol] = true
	}
	symbols := make([]string, 0, len(systemQty))
	for sym := range systemQty {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	for _, sym := range symbols {
		qty := systemQty[sym]
		line, onStatement := lines[sym]
		if !onStatement {
			result.ExtraInSystem = append(result.ExtraInSystem, ExtraPosition{
				Symbol:    sym,
				SystemQty: qty,
			})
			continue
		}
		delete(lines, sym)

		if !qty.Equal(line.Quantity) {
			result.QuantityMismatches = append(result.QuantityMismatches, QuantityMismatch{
				Symbol:       sym,
				SystemQty:    qty,
				StatementQty: line.Quantity,
			})
			continue
		}

		price, priced := s.Price(sym)
		if !priced || line.Value.IsZero() || hasPending[sym] {
			result.Matches = append(result.Matches, Match{Symbol: sym})
			continue
		}

		systemValue := price.Mul(qty)
		delta := systemValue.Sub(line.Value)
		threshold := line.Value.Abs().Mul(tolerance)
		if delta.Abs().GreaterThan(threshold) {
			result.ValueMismatches = append(result.ValueMismatches, ValueMismatch{
				Symbol:         sym,
				SystemValue:    systemValue,
				StatementValue: line.Value,
				DeltaPct:       Percent(delta.Ratio(line.Value).InexactFloat() * 100),
			})
			continue
		}
		result.Matches = append(result.Matches, Match{Symbol: sym})
	}

	// Whatever is left on the statement has no system position.
	leftovers := make([]string, 0, len(lines))
	for sym := range lines {
		leftovers = append(leftovers, sym)
	}
	sort.Strings(leftovers)
	for _, sym := range leftovers {
		result.MissingInSystem = append(result.MissingInSystem, MissingPosition{
			Symbol:       sym,
			StatementQty: lines[sym].Quantity,
		})
	}
	return result
}
