package format

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// WriteCSV renders a list payload as CSV for spreadsheet piping.
//
// Implementation note: structs are first marshaled through JSON so the
// column names match the json tags (and therefore the backend's field
// names). Pagination envelopes are unwrapped to their "items" array.
func WriteCSV(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	rows, err := csvRows(x)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRows(x any) ([][]string, error) {
	switch t := x.(type) {
	case []any:
		return csvFromList(t)
	case map[string]any:
		// Unwrap {items: [...], total, ...}.
		if items, ok := t["items"].([]any); ok {
			return csvFromList(items)
		}
		// A single object becomes a one-row table.
		return csvFromList([]any{t})
	default:
		return nil, fmt.Errorf("csv output requires a list payload, got %T", x)
	}
}

func csvFromList(items []any) ([][]string, error) {
	// Union of keys across rows, sorted for a stable column order.
	keySet := map[string]bool{}
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("csv output requires a list of objects, got %T", it)
		}
		for k := range obj {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(items)+1)
	rows = append(rows, keys)
	for _, it := range items {
		obj := it.(map[string]any)
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = csvCell(obj[k])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func csvCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// JSON numbers arrive as float64; print integers without a decimal.
		if float64(int64(t)) == t {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		// Nested structures: keep them machine-readable.
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
