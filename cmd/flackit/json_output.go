package main

import (
	"encoding/json"
	"io"
)

// writeJSON encodes v as indented JSON to w. Reports marshal cleanly; an
// error here means the writer itself failed.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
