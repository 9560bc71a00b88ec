package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HistoryEntry records one completed computation. Entries are never mutated after insertion.
type HistoryEntry struct {
	OperandA string   `json:"operand_a"`
	Operator Operator `json:"operator"`
	OperandB string   `json:"operand_b"`
	Result   float64  `json:"result"`
}

// String renders the entry as "{a} {op} {b} = {result}".
func (h HistoryEntry) String() string {
	return fmt.Sprintf("%s %s %s = %s", h.OperandA, h.Operator, h.OperandB, FormatNumber(h.Result))
}

// FormatNumber converts a result to the text used both for display and as the
// seed operand of a chained computation. The output always round-trips through
// strconv.ParseFloat.
func FormatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		// Covers negative zero.
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		return trimExponent(strconv.FormatFloat(v, 'e', -1, 64))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// trimExponent drops the zero padding strconv puts on the exponent,
// turning "1e-07" into "1e-7".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	digits := strings.TrimLeft(s[i+2:], "0")
	if digits == "" {
		digits = "0"
	}
	return s[:i+2] + digits
}

type historyEntryJSON struct {
	OperandA string          `json:"operand_a"`
	Operator Operator        `json:"operator"`
	OperandB string          `json:"operand_b"`
	Result   json.RawMessage `json:"result"`
}

// MarshalJSON encodes non-finite results (Infinity, NaN) as strings,
// which plain JSON numbers cannot represent.
func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	var result any = h.Result
	if math.IsInf(h.Result, 0) || math.IsNaN(h.Result) {
		result = FormatNumber(h.Result)
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return json.Marshal(historyEntryJSON{
		OperandA: h.OperandA,
		Operator: h.Operator,
		OperandB: h.OperandB,
		Result:   raw,
	})
}

// UnmarshalJSON accepts results written either as numbers or as strings.
func (h *HistoryEntry) UnmarshalJSON(data []byte) error {
	var aux historyEntryJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var result float64
	if len(aux.Result) > 0 && aux.Result[0] == '"' {
		var s string
		if err := json.Unmarshal(aux.Result, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid history result %q: %w", s, err)
		}
		result = v
	} else if len(aux.Result) > 0 {
		if err := json.Unmarshal(aux.Result, &result); err != nil {
			return err
		}
	}

	*h = HistoryEntry{
		OperandA: aux.OperandA,
		Operator: aux.Operator,
		OperandB: aux.OperandB,
		Result:   result,
	}
	return nil
}
