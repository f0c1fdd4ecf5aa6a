package portfel

import (
	"fmt"
	"regexp"
	"time"
)

// symbolRegex checks the ticker format: 1 to 12 uppercase alphanumeric
// characters, with optional dot-separated segments ("AAPL", "CDR.WA", "EDO0532").
var symbolRegex = regexp.MustCompile(`^[A-Z0-9]{1,12}(\.[A-Z0-9]{1,6})?$`)

// accountIDRegex checks account identifiers: alphanumeric, dash and
// underscore, 1 to 64 characters.
var accountIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// InstrumentType classifies an instrument for display and grouping.
type InstrumentType int

const (
	Stock InstrumentType = iota
	ETF
	BondETF
	PolishGovBond
)

func (t InstrumentType) String() string {
	switch t {
	case Stock:
		return "STOCK"
	case ETF:
		return "ETF"
	case BondETF:
		return "BOND_ETF"
	case PolishGovBond:
		return "POLISH_GOV_BOND"
	default:
		return "unknown"
	}
}

// ParseInstrumentType parses a string into an InstrumentType.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch s {
	case "STOCK":
		return Stock, nil
	case "ETF":
		return ETF, nil
	case "BOND_ETF":
		return BondETF, nil
	case "POLISH_GOV_BOND":
		return PolishGovBond, nil
	default:
		return 0, fmt.Errorf("unknown instrument type: %q", s)
	}
}

func (t InstrumentType) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.String())), nil
}

// ValidateSymbol checks that a string is a validly formatted instrument symbol.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is empty")
	}
	if !symbolRegex.MatchString(symbol) {
		return fmt.Errorf("invalid symbol %q: must be uppercase alphanumeric, optionally with one dot-separated suffix", symbol)
	}
	return nil
}

// ValidateAccountID checks that a string is a validly formatted account identifier.
func ValidateAccountID(id string) error {
	if id == "" {
		return fmt.Errorf("account id is empty")
	}
	if !accountIDRegex.MatchString(id) {
		return fmt.Errorf("invalid account id %q: must be alphanumeric, dash or underscore", id)
	}
	return nil
}

// Instrument is a tradeable reference entity. A position may exist before any
// price is known; value-dependent metrics stay unavailable until the first
// price update rather than reporting zero.
type Instrument struct {
	Symbol string
	Name   string
	Type   InstrumentType

	price          Money
	priceKnown     bool
	priceUpdatedAt time.Time
}

// NewInstrument declares an instrument after validating its symbol.
func NewInstrument(symbol, name string, typ InstrumentType) (*Instrument, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	return &Instrument{Symbol: symbol, Name: name, Type: typ}, nil
}

// Price returns the last known price and its timestamp. ok is false while no
// price has been set.
func (i *Instrument) Price() (price Money, updatedAt time.Time, ok bool) {
	return i.price, i.priceUpdatedAt, i.priceKnown
}

// SetPrice records a new current price. Non-positive prices are rejected.
func (i *Instrument) SetPrice(price Money, at time.Time) error {
	if !price.IsPositive() {
		return fmt.Errorf("price for %s must be strictly positive, got %s", i.Symbol, price.Amount())
	}
	i.price = price
	i.priceKnown = true
	i.priceUpdatedAt = at
	return nil
}

func (i *Instrument) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("symbol", i.Symbol)
	w.Optional("name", i.Name)
	w.Append("type", i.Type)
	if i.priceKnown {
		w.Append("price", i.price)
		w.Append("priceUpdatedAt", i.priceUpdatedAt.Format(time.RFC3339))
	}
	return w.MarshalJSON()
}
