package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// WriteCanonical serialises v as canonical JSON: UTF-8, two-space indent,
// one property per line, struct field order, no HTML escaping so non-ASCII
// identifiers appear verbatim. Identical values produce identical bytes.
func WriteCanonical(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode canonical JSON: %w", err)
	}
	return nil
}

// MarshalCanonical is WriteCanonical into a byte slice. The result ends
// with a single trailing newline.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
