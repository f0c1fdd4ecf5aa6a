package portfel

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DecodeStatement reads a broker statement in the native JSONL form: one
// line per instrument, {"symbol": ..., "quantity": ..., "value": ...}, the
// value being optional.
func DecodeStatement(r io.Reader) ([]StatementLine, error) {
	var lines []StatementLine
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var temp struct {
			Symbol   string          `json:"symbol"`
			Quantity Quantity        `json:"quantity"`
			Value    decimal.Decimal `json:"value"`
		}
		if err := json.Unmarshal(raw, &temp); err != nil {
			return nil, fmt.Errorf("statement line %d: %w", lineNo, err)
		}
		if err := ValidateSymbol(temp.Symbol); err != nil {
			return nil, fmt.Errorf("statement line %d: %w", lineNo, err)
		}
		line := StatementLine{Symbol: temp.Symbol, Quantity: temp.Quantity}
		if !temp.Value.IsZero() {
			line.Value = M(temp.Value, DefaultCurrency)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// StatementMapping locates statement fields inside a foreign broker JSON
// export with JSONPath expressions. Lines selects the per-instrument objects;
// the remaining paths are evaluated against each selected object. Value may
// be empty when the export has no value column.
type StatementMapping struct {
	Lines    string
	Symbol   string
	Quantity string
	Value    string
}

// DefaultStatementMapping fits exports shaped {"positions": [{"symbol": ...,
// "quantity": ..., "value": ...}]}.
var DefaultStatementMapping = StatementMapping{
	Lines:    "$.positions[*]",
	Symbol:   "$.symbol",
	Quantity: "$.quantity",
	Value:    "$.value",
}

// ExtractStatement pulls statement lines out of an arbitrary broker JSON
// export using the mapping. Brokers disagree wildly on their export shape;
// a mapping keeps the parsing declarative instead of one parser per broker.
func ExtractStatement(doc []byte, mapping StatementMapping) ([]StatementLine, error) {
	var root any
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("invalid statement JSON: %w", err)
	}

	selected, err := jsonpath.Get(mapping.Lines, root)
	if err != nil {
		return nil, fmt.Errorf("statement lines path %q: %w", mapping.Lines, err)
	}
	items, ok := selected.([]any)
	if !ok {
		return nil, fmt.Errorf("statement lines path %q did not select a list", mapping.Lines)
	}

	lines := make([]StatementLine, 0, len(items))
	for i, item := range items {
		symbol, err := extractString(item, mapping.Symbol)
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", i+1, err)
		}
		if err := ValidateSymbol(symbol); err != nil {
			return nil, fmt.Errorf("statement line %d: %w", i+1, err)
		}
		qty, err := extractDecimal(item, mapping.Quantity)
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", i+1, err)
		}

		line := StatementLine{Symbol: symbol, Quantity: Q(qty)}
		if mapping.Value != "" {
			value, err := extractDecimal(item, mapping.Value)
			if err == nil && !value.IsZero() {
				line.Value = M(value, DefaultCurrency)
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func extractString(item any, path string) (string, error) {
	v, err := jsonpath.Get(path, item)
	if err != nil {
		return "", fmt.Errorf("path %q: %w", path, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("path %q: expected a string, got %T", path, v)
	}
	return s, nil
}

func extractDecimal(item any, path string) (decimal.Decimal, error) {
	v, err := jsonpath.Get(path, item)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("path %q: %w", path, err)
	}
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t), nil
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("path %q: %w", path, err)
		}
		return d, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("path %q: expected a number, got %T", path, v)
	}
}
