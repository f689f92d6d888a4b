package schema

import (
	"encoding/json"
	"fmt"

	"github.com/jward/codeindex/internal/model"
)

// CheckDocument validates raw artifact JSON: schema shape first, then the
// contract invariants. The document kind is detected by schema_version.
// The returned slice is empty when the document is valid.
func CheckDocument(data []byte) []string {
	var head struct {
		SchemaVersion string `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return []string{fmt.Sprintf("not a JSON object: %v", err)}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("decode: %v", err)}
	}

	if head.SchemaVersion == model.ProjectIndexSchemaVersion {
		if err := ValidateProjectIndex(doc); err != nil {
			return []string{fmt.Sprintf("schema: %v", err)}
		}
		var proj model.ProjectIndex
		if err := json.Unmarshal(data, &proj); err != nil {
			return []string{fmt.Sprintf("decode project index: %v", err)}
		}
		return CheckProjectIndex(&proj)
	}

	if err := ValidateSymbolIndex(doc); err != nil {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var idx model.SymbolIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return []string{fmt.Sprintf("decode symbol index: %v", err)}
	}
	return CheckSymbolIndex(&idx)
}

// CheckSymbolIndex verifies the ordering and stats invariants of one
// index: files sorted by file_id, symbols sorted by identifier, each
// symbol's occurrences sorted and duplicate-free with consistent counts,
// and no symbol with zero occurrences.
func CheckSymbolIndex(idx *model.SymbolIndex) []string {
	var errs []string

	for i := 1; i < len(idx.Files); i++ {
		if idx.Files[i].FileID < idx.Files[i-1].FileID {
			errs = append(errs, fmt.Sprintf("files not sorted at %q", idx.Files[i].FileID))
		}
	}

	for i, sym := range idx.Symbols {
		if i > 0 && sym.Identifier < idx.Symbols[i-1].Identifier {
			errs = append(errs, fmt.Sprintf("symbols not sorted at %q", sym.Identifier))
		}
		if len(sym.Occurrences) == 0 {
			errs = append(errs, fmt.Sprintf("%s: no occurrences", sym.Identifier))
		}

		type occKey struct {
			fileID                 string
			line, colStart, colEnd int
		}
		type lineKey struct {
			fileID string
			line   int
		}
		seen := make(map[occKey]struct{}, len(sym.Occurrences))
		lines := make(map[lineKey]struct{}, len(sym.Occurrences))
		for j, occ := range sym.Occurrences {
			if j > 0 && occ.Less(sym.Occurrences[j-1]) {
				errs = append(errs, fmt.Sprintf("%s: occurrences not sorted", sym.Identifier))
			}
			k := occKey{occ.FileID, occ.Line, occ.ColStart, occ.ColEnd}
			if _, dup := seen[k]; dup {
				errs = append(errs, fmt.Sprintf("%s: duplicate occurrence %s:%d:%d", sym.Identifier, occ.FileID, occ.Line, occ.ColStart))
			}
			seen[k] = struct{}{}
			lines[lineKey{occ.FileID, occ.Line}] = struct{}{}
		}

		if sym.Stats.OccurrenceCount != len(sym.Occurrences) {
			errs = append(errs, fmt.Sprintf("%s: occurrence_count=%d, have %d occurrences",
				sym.Identifier, sym.Stats.OccurrenceCount, len(sym.Occurrences)))
		}
		if sym.Stats.UniqueLineCount != len(lines) {
			errs = append(errs, fmt.Sprintf("%s: unique_line_count=%d, have %d distinct lines",
				sym.Identifier, sym.Stats.UniqueLineCount, len(lines)))
		}
	}

	return errs
}

// CheckProjectIndex verifies that indexes are sorted by profile_id and
// that every embedded index satisfies the SymbolIndex invariants.
func CheckProjectIndex(proj *model.ProjectIndex) []string {
	var errs []string
	for i, idx := range proj.Indexes {
		if i > 0 && idx.ProfileID < proj.Indexes[i-1].ProfileID {
			errs = append(errs, fmt.Sprintf("indexes not sorted by profile_id at %q", idx.ProfileID))
		}
		for _, e := range CheckSymbolIndex(&idx) {
			errs = append(errs, fmt.Sprintf("indexes[%d] (%s): %s", i, idx.ProfileID, e))
		}
	}
	return errs
}
