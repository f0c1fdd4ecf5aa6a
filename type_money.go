package portfel

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the single reporting currency of the portfolio.
// All monetary values default to it unless explicitly tagged otherwise.
const DefaultCurrency = "PLN"

// Money is an exact monetary value: a fixed-precision decimal amount in
// major units, tagged with an ISO 4217 currency code. It is an immutable
// value type; every operation returns a new Money.
type Money struct {
	value decimal.Decimal
	cur   string
}

// M builds a Money from any numeric value and a currency code.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// PLN builds a Money in the default reporting currency.
func PLN[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return M(value, DefaultCurrency)
}

// ParseMoney parses a decimal string into a Money in the given currency.
func ParseMoney(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d, cur: currency}, nil
}

// currency resolves the full currency definition, never nil.
func (m Money) currency() money.Currency {
	cur := m.cur
	if cur == "" {
		cur = DefaultCurrency
	}
	return *money.New(0, cur).Currency()
}

// Currency returns the currency code.
func (m Money) Currency() string { return m.cur }

// Amount returns the underlying decimal amount in major units.
func (m Money) Amount() decimal.Decimal { return m.value }

// String formats the value with the currency's own formatter, e.g. "1 234,50 zł".
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString is String with an explicit sign, and "-" for zero.
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs(), cur: m.cur} }

// Mul scales the value by a quantity (price × shares).
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.value), cur: m.cur} }

// Div divides the value by a quantity (total cost / shares).
func (m Money) Div(q Quantity) Money { return Money{value: m.value.Div(q.value), cur: m.cur} }

// Ratio returns m/n as a dimensionless quantity. Both sides must share a currency.
func (m Money) Ratio(n Money) Quantity {
	sameCurrency(m, n)
	return Quantity{value: m.value.Div(n.value)}
}

// Add returns m+n. Panics when currencies differ; the zero Money's empty
// currency is weak and adopts the other side's.
func (m Money) Add(n Money) Money {
	return Money{value: m.value.Add(n.value), cur: sameCurrency(m, n)}
}

// Sub returns m-n under the same currency rule as Add.
func (m Money) Sub(n Money) Money {
	return Money{value: m.value.Sub(n.value), cur: sameCurrency(m, n)}
}

// sameCurrency enforces the equal-currency invariant for binary operations.
// The "" currency is the weak zero-value case and yields to the other side.
func sameCurrency(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch: " + a.cur + " != " + b.cur)
	}
	return a.cur
}

// InexactFloat is for boundary code (root finding, display ratios) only;
// all accounting stays in decimals.
func (m Money) InexactFloat() float64 { return m.value.InexactFloat64() }

// MarshalJSON writes {"amount": <decimal>, "currency": "..."} with the amount
// kept at full precision so round-tripping never loses digits.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("amount", m.value)
	w.Optional("currency", m.cur)
	return w.MarshalJSON()
}
