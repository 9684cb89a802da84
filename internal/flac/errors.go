package flac

import "fmt"

// FormatError reports malformed container structure. It carries the byte
// offset where parsing gave up so findings can point at the damage.
type FormatError struct {
	Msg    string
	Offset int64
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func formatErrorf(offset int64, format string, args ...any) *FormatError {
	return &FormatError{Msg: fmt.Sprintf(format, args...), Offset: offset}
}
