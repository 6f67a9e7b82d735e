package format

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - csv (list payloads only)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "csv":
		return WriteCSV(w, v)
	default:
		return fmt.Errorf("unknown format %q (supported: json, csv)", format)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
