// Package rows flattens a SymbolIndex into ingestion-friendly rows, one
// per occurrence, for CSV or JSONL output. The row schema is stable:
// identifier, file_id, line, col_start, col_end, plus byte_start/byte_end
// when the occurrences carry them.
package rows

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jward/codeindex/internal/model"
)

// Formats accepted by the emitters and the export command.
const (
	FormatCSV    = "csv"
	FormatJSONL  = "jsonl"
	FormatSQLite = "sqlite"
)

// Row is one occurrence of one identifier.
type Row struct {
	Identifier string `json:"identifier"`
	FileID     string `json:"file_id"`
	Line       int    `json:"line"`
	ColStart   int    `json:"col_start"`
	ColEnd     int    `json:"col_end"`
	ByteStart  *int   `json:"byte_start,omitempty"`
	ByteEnd    *int   `json:"byte_end,omitempty"`
}

// FromIndex flattens idx in its canonical order: symbols are already
// sorted by identifier and occurrences by (file_id, line, col_start,
// col_end), so the row sequence is deterministic.
func FromIndex(idx *model.SymbolIndex) []Row {
	var out []Row
	for _, sym := range idx.Symbols {
		for _, occ := range sym.Occurrences {
			out = append(out, Row{
				Identifier: sym.Identifier,
				FileID:     occ.FileID,
				Line:       occ.Line,
				ColStart:   occ.ColStart,
				ColEnd:     occ.ColEnd,
				ByteStart:  occ.ByteStart,
				ByteEnd:    occ.ByteEnd,
			})
		}
	}
	return out
}

// WriteCSV writes a header plus one record per row. The byte-offset
// columns appear only when at least one row carries them.
func WriteCSV(w io.Writer, rs []Row) error {
	hasBytes := false
	for _, r := range rs {
		if r.ByteStart != nil || r.ByteEnd != nil {
			hasBytes = true
			break
		}
	}

	cw := csv.NewWriter(w)
	header := []string{"identifier", "file_id", "line", "col_start", "col_end"}
	if hasBytes {
		header = append(header, "byte_start", "byte_end")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range rs {
		rec := []string{
			r.Identifier,
			r.FileID,
			strconv.Itoa(r.Line),
			strconv.Itoa(r.ColStart),
			strconv.Itoa(r.ColEnd),
		}
		if hasBytes {
			rec = append(rec, optInt(r.ByteStart), optInt(r.ByteEnd))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSONL writes one JSON object per line, non-ASCII verbatim.
func WriteJSONL(w io.Writer, rs []Row) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, r := range rs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("write jsonl row: %w", err)
		}
	}
	return nil
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
