package portfel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// RecordType identifies a persisted record line.
type RecordType string

const (
	RecDeclare RecordType = "declare"
	RecAdd     RecordType = "add"
	RecCost    RecordType = "set-cost"
	RecPrice   RecordType = "update-price"
)

// Record is one line of the portfolio file. The file is an append-only log;
// replaying it in order rebuilds the full portfolio state.
type Record interface {
	What() RecordType
	When() Date
}

// DeclareRecord registers an instrument.
type DeclareRecord struct {
	Date   Date
	Symbol string
	Name   string
	Type   InstrumentType
}

func (r DeclareRecord) What() RecordType { return RecDeclare }
func (r DeclareRecord) When() Date       { return r.Date }

func (r DeclareRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("record", r.What())
	w.Append("date", r.Date)
	w.Append("symbol", r.Symbol)
	w.Optional("name", r.Name)
	w.Append("type", r.Type)
	return w.MarshalJSON()
}

// AddRecord records a validated purchase in one account. A record without a
// cost carries needsCost=true and stays out of the aggregates until the cost
// is entered.
type AddRecord struct {
	Date      Date
	Symbol    string
	AccountID string
	Quantity  Quantity
	Cost      Money // average price paid per unit
	NeedsCost bool
	Batch     string // import batch id, empty for manual entry
}

func (r AddRecord) What() RecordType { return RecAdd }
func (r AddRecord) When() Date       { return r.Date }

func (r AddRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("record", r.What())
	w.Append("date", r.Date)
	w.Append("symbol", r.Symbol)
	w.Append("account", r.AccountID)
	w.Append("quantity", r.Quantity)
	if r.NeedsCost {
		w.Append("needsCost", true)
	} else {
		// The file carries a single currency; amounts are stored bare.
		w.Append("cost", r.Cost.Amount())
	}
	w.Optional("batch", r.Batch)
	return w.MarshalJSON()
}

// CostRecord enters the missing cost for the pending records of an account
// and symbol; replaying it turns them into holdings.
type CostRecord struct {
	Date      Date
	Symbol    string
	AccountID string
	Cost      Money // average price paid per unit
}

func (r CostRecord) What() RecordType { return RecCost }
func (r CostRecord) When() Date       { return r.Date }

func (r CostRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("record", r.What())
	w.Append("date", r.Date)
	w.Append("symbol", r.Symbol)
	w.Append("account", r.AccountID)
	w.Append("cost", r.Cost.Amount())
	return w.MarshalJSON()
}

// PriceRecord sets the current price of an instrument.
type PriceRecord struct {
	Date   Date
	Symbol string
	Price  Money
}

func (r PriceRecord) What() RecordType { return RecPrice }
func (r PriceRecord) When() Date       { return r.Date }

func (r PriceRecord) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("record", r.What())
	w.Append("date", r.Date)
	w.Append("symbol", r.Symbol)
	w.Append("price", r.Price.Amount())
	return w.MarshalJSON()
}

// EncodeRecord appends one record as a single JSONL line.
func EncodeRecord(w io.Writer, r Record) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("could not encode %s record: %w", r.What(), err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}

// amountField decodes a monetary field persisted as a bare decimal; the file
// carries a single currency, so amounts are stored without a currency tag.
type amountField struct {
	Amount decimal.Decimal
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	return a.Amount.UnmarshalJSON(b)
}

func (a amountField) Money() Money { return M(a.Amount, DefaultCurrency) }

// DecodeRecords reads a JSONL stream and decodes every line into its record
// type, preserving file order.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var identifier struct {
			Record RecordType `json:"record"`
		}
		if err := json.Unmarshal(line, &identifier); err != nil {
			return nil, fmt.Errorf("line %d: could not identify record: %w", lineNo, err)
		}

		var decoded Record
		switch identifier.Record {
		case RecDeclare:
			var temp struct {
				Date   Date   `json:"date"`
				Symbol string `json:"symbol"`
				Name   string `json:"name"`
				Type   string `json:"type"`
			}
			if err := json.Unmarshal(line, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			typ, err := ParseInstrumentType(temp.Type)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			decoded = DeclareRecord{Date: temp.Date, Symbol: temp.Symbol, Name: temp.Name, Type: typ}

		case RecAdd:
			var temp struct {
				Date      Date        `json:"date"`
				Symbol    string      `json:"symbol"`
				Account   string      `json:"account"`
				Quantity  Quantity    `json:"quantity"`
				Cost      amountField `json:"cost"`
				NeedsCost bool        `json:"needsCost"`
				Batch     string      `json:"batch"`
			}
			if err := json.Unmarshal(line, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			decoded = AddRecord{
				Date:      temp.Date,
				Symbol:    temp.Symbol,
				AccountID: temp.Account,
				Quantity:  temp.Quantity,
				Cost:      temp.Cost.Money(),
				NeedsCost: temp.NeedsCost,
				Batch:     temp.Batch,
			}

		case RecCost:
			var temp struct {
				Date    Date        `json:"date"`
				Symbol  string      `json:"symbol"`
				Account string      `json:"account"`
				Cost    amountField `json:"cost"`
			}
			if err := json.Unmarshal(line, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			decoded = CostRecord{Date: temp.Date, Symbol: temp.Symbol, AccountID: temp.Account, Cost: temp.Cost.Money()}

		case RecPrice:
			var temp struct {
				Date   Date        `json:"date"`
				Symbol string      `json:"symbol"`
				Price  amountField `json:"price"`
			}
			if err := json.Unmarshal(line, &temp); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			decoded = PriceRecord{Date: temp.Date, Symbol: temp.Symbol, Price: temp.Price.Money()}

		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", lineNo, identifier.Record)
		}
		records = append(records, decoded)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Replay rebuilds portfolio state from decoded records and returns the
// import index for duplicate prevention. Invalid lines abort the replay: a
// record that fails mid-file means the stored state is corrupt, and partial
// state must not be exposed.
func Replay(records []Record) (*Portfolio, *ImportIndex, error) {
	p := NewPortfolio()
	idx := NewImportIndex()

	for i, rec := range records {
		var err error
		switch r := rec.(type) {
		case DeclareRecord:
			_, err = p.Declare(r.Symbol, r.Name, r.Type)
		case AddRecord:
			if r.Batch != "" {
				idx.Add(r.Batch, r.AccountID, r.Symbol)
			}
			if r.NeedsCost || r.Cost.IsZero() {
				p.AddPending(PendingCost{
					Batch: r.Batch, AccountID: r.AccountID, Symbol: r.Symbol,
					Quantity: r.Quantity, On: r.Date,
				})
				continue
			}
			_, err = p.ApplyHolding(r.Symbol, r.AccountID, r.Quantity, r.Cost, r.Date, ApplyAnyVersion)
		case CostRecord:
			_, err = p.ResolvePending(r.Symbol, r.AccountID, r.Cost)
		case PriceRecord:
			err = p.SetPrice(r.Symbol, r.Price, r.Date.Time())
		}
		if err != nil {
			return nil, nil, fmt.Errorf("record %d (%s): %w", i+1, rec.What(), err)
		}
	}
	return p, idx, nil
}

// ImportIndex remembers which (batch, account, symbol) triples have been
// imported. Its Contains method is the ImportedLookup fed to ValidateRecord.
type ImportIndex struct {
	seen map[string]bool
}

func NewImportIndex() *ImportIndex {
	return &ImportIndex{seen: make(map[string]bool)}
}

func importKey(batch, accountID, symbol string) string {
	return batch + "\x00" + accountID + "\x00" + symbol
}

func (x *ImportIndex) Add(batch, accountID, symbol string) {
	x.seen[importKey(batch, accountID, symbol)] = true
}

func (x *ImportIndex) Contains(batch, accountID, symbol string) bool {
	return x.seen[importKey(batch, accountID, symbol)]
}
