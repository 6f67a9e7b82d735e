package model

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Money is a currency amount as the backend serves it. Different endpoints
// (and different rows within one endpoint) deliver prices as JSON numbers,
// numeric strings, empty strings or null. Unmarshaling never fails; whatever
// cannot be parsed keeps its raw text and evaluates to 0.
type Money struct {
	raw string
	val float64
	ok  bool
}

// MoneyFromFloat builds a parsed amount. Mostly useful in tests and when
// assembling outgoing payloads.
func MoneyFromFloat(v float64) Money {
	return Money{raw: strconv.FormatFloat(v, 'f', -1, 64), val: v, ok: true}
}

// Value returns the parsed amount, or 0 when the source was missing or
// malformed. Never NaN.
func (m Money) Value() float64 {
	if !m.ok {
		return 0
	}
	return m.val
}

// Raw returns the original textual form, useful for echoing odd inputs back
// in diagnostics.
func (m Money) Raw() string { return m.raw }

// IsZero reports whether the amount is absent or parses to 0.
func (m Money) IsZero() bool { return m.Value() == 0 }

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			// Keep the raw token; the value stays 0.
			*m = Money{raw: string(b)}
			return nil
		}
		*m = parseMoneyString(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*m = Money{raw: string(b)}
		return nil
	}
	*m = Money{raw: string(b), val: f, ok: true}
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	// Always emit a number so our own payloads are well-formed regardless of
	// what shape the value arrived in.
	return json.Marshal(m.Value())
}

func parseMoneyString(s string) Money {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Money{raw: s}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	// ParseFloat happily reads "NaN" and "Inf"; neither is a price.
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{raw: s}
	}
	return Money{raw: s, val: f, ok: true}
}
