package portfel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FieldError pinpoints one invalid field of an inbound record.
type FieldError struct {
	Field         string
	Message       string
	RejectedValue string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s (got %q)", e.Field, e.Message, e.RejectedValue)
}

// ValidationError carries every violation found in a record, not just the
// first, so callers can report all of them in one round trip.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.String()
	}
	return "invalid record: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message, rejected string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message, RejectedValue: rejected})
}

// PositionRecord is a raw inbound position, from manual entry or a batch
// import, before any parsing. All fields are strings as received.
type PositionRecord struct {
	Batch       string // import batch id, empty for manual entry
	Symbol      string
	Name        string
	Type        string
	AccountID   string
	Quantity    string
	AverageCost string // optional; absent means cost entry is still needed
	Date        string // optional purchase date, defaults to today
}

// ValidatedPosition is a record that passed validation, with every field
// parsed into its exact type. NeedsCost marks records imported without an
// average cost; the aggregator must not see them until a cost is entered.
type ValidatedPosition struct {
	Batch       string
	Symbol      string
	Name        string
	Type        InstrumentType
	AccountID   string
	Quantity    Quantity
	AverageCost Money
	NeedsCost   bool
	On          Date
}

// ImportedLookup answers whether a holding identified by (batch, account,
// symbol) has already been imported. The storage behind it is the caller's
// concern; the validator only consults the predicate.
type ImportedLookup func(batch, accountID, symbol string) bool

// ValidateRecord checks and normalizes an inbound record. On failure it
// returns a *ValidationError listing every violated field. alreadyImported
// may be nil when duplicate prevention does not apply (manual entry).
func ValidateRecord(rec PositionRecord, alreadyImported ImportedLookup) (ValidatedPosition, error) {
	var verr ValidationError
	var out ValidatedPosition

	out.Batch = rec.Batch
	out.Name = rec.Name

	if err := ValidateSymbol(rec.Symbol); err != nil {
		verr.add("symbol", err.Error(), rec.Symbol)
	} else {
		out.Symbol = rec.Symbol
	}

	if err := ValidateAccountID(rec.AccountID); err != nil {
		verr.add("accountId", err.Error(), rec.AccountID)
	} else {
		out.AccountID = rec.AccountID
	}

	if rec.Type == "" {
		out.Type = Stock
	} else if typ, err := ParseInstrumentType(rec.Type); err != nil {
		verr.add("type", err.Error(), rec.Type)
	} else {
		out.Type = typ
	}

	if rec.Quantity == "" {
		verr.add("quantity", "quantity is required", "")
	} else if qty, err := ParseQuantity(rec.Quantity); err != nil {
		verr.add("quantity", "quantity must be a decimal number", rec.Quantity)
	} else if !qty.IsPositive() {
		verr.add("quantity", "quantity must be strictly positive", rec.Quantity)
	} else {
		out.Quantity = qty
	}

	if rec.AverageCost == "" {
		out.NeedsCost = true
	} else if cost, err := ParseMoney(rec.AverageCost, DefaultCurrency); err != nil {
		verr.add("averageCost", "average cost must be a decimal number", rec.AverageCost)
	} else if !cost.IsPositive() {
		verr.add("averageCost", "average cost must be strictly positive", rec.AverageCost)
	} else {
		out.AverageCost = cost
	}

	if rec.Date == "" {
		out.On = Today()
	} else if on, err := ParseDate(rec.Date); err != nil {
		verr.add("date", "date must be YYYY-MM-DD", rec.Date)
	} else if on.After(Today()) {
		verr.add("date", "purchase date cannot be in the future", rec.Date)
	} else {
		out.On = on
	}

	if rec.Batch != "" && alreadyImported != nil && len(verr.Fields) == 0 {
		if alreadyImported(rec.Batch, rec.AccountID, rec.Symbol) {
			verr.add("record", fmt.Sprintf("already imported in batch %q for account %q", rec.Batch, rec.AccountID), rec.Symbol)
		}
	}

	if len(verr.Fields) > 0 {
		return ValidatedPosition{}, &verr
	}
	return out, nil
}

// rawText accepts a JSON number or string and keeps the raw text either way,
// so ValidateRecord parses it exactly instead of through a float.
type rawText string

func (n *rawText) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = rawText(s)
		return nil
	}
	if string(b) == "null" {
		*n = ""
		return nil
	}
	*n = rawText(b)
	return nil
}

// DecodeImportRecords reads a batch import file: one JSON object per line
// with fields symbol, name, type, account, quantity, averageCost and date.
// Numeric fields may be JSON numbers or strings; both arrive here as the raw
// text for ValidateRecord to parse exactly.
func DecodeImportRecords(r io.Reader) ([]PositionRecord, error) {
	var records []PositionRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var temp struct {
			Symbol      string  `json:"symbol"`
			Name        string  `json:"name"`
			Type        string  `json:"type"`
			Account     string  `json:"account"`
			Quantity    rawText `json:"quantity"`
			AverageCost rawText `json:"averageCost"`
			Date        string  `json:"date"`
		}
		if err := json.Unmarshal(line, &temp); err != nil {
			return nil, fmt.Errorf("import line %d: %w", lineNo, err)
		}
		records = append(records, PositionRecord{
			Symbol:      temp.Symbol,
			Name:        temp.Name,
			Type:        temp.Type,
			AccountID:   temp.Account,
			Quantity:    string(temp.Quantity),
			AverageCost: string(temp.AverageCost),
			Date:        temp.Date,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
