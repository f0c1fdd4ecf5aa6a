package portfel

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Portfolio is the aggregate store: instruments and one position per
// instrument symbol. Mutations take the write lock, so each position has a
// single writer at a time; the per-position version counter backs optimistic
// concurrency for callers that persist aggregates externally.
//
// Read paths never touch live state: they work on a Snapshot.
type Portfolio struct {
	mu          sync.RWMutex
	currency    string
	instruments map[string]*Instrument
	positions   map[string]*Position
	pending     []PendingCost
	lastUpdated time.Time
}

// PendingCost is a position record imported without an average cost. It is
// kept aside, flagged for manual cost entry, and contributes to no aggregate
// until the cost arrives.
type PendingCost struct {
	Batch     string
	AccountID string
	Symbol    string
	Quantity  Quantity
	On        Date
}

// NewPortfolio creates an empty portfolio in the default reporting currency.
func NewPortfolio() *Portfolio {
	return &Portfolio{
		currency:    DefaultCurrency,
		instruments: make(map[string]*Instrument),
		positions:   make(map[string]*Position),
	}
}

// Currency returns the reporting currency.
func (p *Portfolio) Currency() string { return p.currency }

// Declare registers an instrument. Redeclaring an existing symbol updates its
// name and type but keeps any known price.
func (p *Portfolio) Declare(symbol, name string, typ InstrumentType) (*Instrument, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.instruments[symbol]; ok {
		if name != "" {
			existing.Name = name
		}
		existing.Type = typ
		return existing, nil
	}
	inst, err := NewInstrument(symbol, name, typ)
	if err != nil {
		return nil, err
	}
	p.instruments[symbol] = inst
	return inst, nil
}

// ApplyHolding records a validated purchase: quantity units of symbol at
// costBasis per unit, held in accountID, bought on the given date. The
// instrument must have been declared; quantity and cost basis must be
// strictly positive. On success it returns a copy of the updated position.
//
// expectedVersion is the optimistic-concurrency guard: pass the position
// version the caller last observed, or ApplyAnyVersion to skip the check.
// A stale version aborts with ErrVersionConflict before any mutation.
func (p *Portfolio) ApplyHolding(symbol, accountID string, quantity Quantity, costBasis Money, on Date, expectedVersion uint64) (*Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.instruments[symbol]; !ok {
		return nil, fmt.Errorf("instrument %q is not declared", symbol)
	}

	pos, ok := p.positions[symbol]
	if !ok {
		pos = NewPosition(symbol)
		p.positions[symbol] = pos
	}
	if expectedVersion != ApplyAnyVersion && pos.version != expectedVersion {
		return nil, fmt.Errorf("%w: position %s is at version %d, expected %d",
			ErrVersionConflict, symbol, pos.version, expectedVersion)
	}

	if err := pos.applyHolding(accountID, quantity, costBasis, on); err != nil {
		return nil, err
	}
	p.lastUpdated = time.Now()
	return pos.clone(), nil
}

// ApplyAnyVersion disables the optimistic version check in ApplyHolding.
const ApplyAnyVersion = ^uint64(0)

// ErrVersionConflict reports a stale expectedVersion in ApplyHolding.
var ErrVersionConflict = fmt.Errorf("version conflict")

// AddPending keeps aside a record imported without a cost basis.
func (p *Portfolio) AddPending(pc PendingCost) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(p.pending, pc)
	p.lastUpdated = time.Now()
}

// ResolvePending enters the missing cost for every pending record of the
// given account and symbol, turning them into holdings dated by their
// original purchase date. It fails when no matching record is pending.
func (p *Portfolio) ResolvePending(symbol, accountID string, cost Money) (*Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !cost.IsPositive() {
		return nil, &InvalidHoldingError{Symbol: symbol, AccountID: accountID, Reason: "cost basis must be strictly positive"}
	}
	if _, ok := p.instruments[symbol]; !ok {
		return nil, fmt.Errorf("instrument %q is not declared", symbol)
	}

	var matched, rest []PendingCost
	for _, pc := range p.pending {
		if pc.Symbol == symbol && pc.AccountID == accountID {
			matched = append(matched, pc)
			continue
		}
		rest = append(rest, pc)
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("no pending cost entry for %s in account %s", symbol, accountID)
	}

	pos, ok := p.positions[symbol]
	if !ok {
		pos = NewPosition(symbol)
		p.positions[symbol] = pos
	}
	for _, pc := range matched {
		if err := pos.applyHolding(accountID, pc.Quantity, cost, pc.On); err != nil {
			return nil, err
		}
	}
	p.pending = rest
	p.lastUpdated = time.Now()
	return pos.clone(), nil
}

// SetPrice updates the current price of a declared instrument.
func (p *Portfolio) SetPrice(symbol string, price Money, at time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	inst, ok := p.instruments[symbol]
	if !ok {
		return fmt.Errorf("instrument %q is not declared", symbol)
	}
	if err := inst.SetPrice(price, at); err != nil {
		return err
	}
	p.lastUpdated = time.Now()
	return nil
}

// Snapshot freezes the current state for read paths. Metrics, rendering and
// reconciliation all consume snapshots, so they see a consistent view and can
// run concurrently with writers.
func (p *Portfolio) Snapshot() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := &Snapshot{
		Currency:    p.currency,
		LastUpdated: p.lastUpdated,
		instruments: make(map[string]Instrument, len(p.instruments)),
		positions:   make(map[string]*Position, len(p.positions)),
	}
	for sym, inst := range p.instruments {
		s.instruments[sym] = *inst
	}
	for sym, pos := range p.positions {
		s.positions[sym] = pos.clone()
	}
	s.pending = append(s.pending, p.pending...)
	return s
}

// Snapshot is an immutable point-in-time view of the portfolio. All reported
// numbers (metrics, views, reconciliation inputs) are computed from it.
type Snapshot struct {
	Currency    string
	LastUpdated time.Time

	instruments map[string]Instrument
	positions   map[string]*Position
	pending     []PendingCost
}

// PendingCost lists records still waiting for a manual cost entry.
func (s *Snapshot) PendingCost() []PendingCost { return s.pending }

// PendingQuantity sums the quantity still waiting for a cost entry for a
// symbol, across all accounts.
func (s *Snapshot) PendingQuantity(symbol string) Quantity {
	var total Quantity
	for _, pc := range s.pending {
		if pc.Symbol == symbol {
			total = total.Add(pc.Quantity)
		}
	}
	return total
}

// Symbols returns all position symbols in lexical order.
func (s *Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.positions))
	for sym := range s.positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols
}

// Position returns the aggregated position for a symbol, if held.
func (s *Snapshot) Position(symbol string) (*Position, bool) {
	pos, ok := s.positions[symbol]
	return pos, ok
}

// Instrument returns the instrument declared for a symbol, if any.
func (s *Snapshot) Instrument(symbol string) (Instrument, bool) {
	inst, ok := s.instruments[symbol]
	return inst, ok
}

// Price returns the current price of a symbol. ok is false while the price is
// pending, in which case value metrics are unavailable rather than zero.
func (s *Snapshot) Price(symbol string) (Money, bool) {
	inst, ok := s.instruments[symbol]
	if !ok {
		return Money{}, false
	}
	price, _, known := inst.Price()
	return price, known
}

// PositionsCount returns the number of held positions.
func (s *Snapshot) PositionsCount() int { return len(s.positions) }
