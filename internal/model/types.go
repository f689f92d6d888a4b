// Package model defines the artifact data model shared by the indexing
// engine, the registry router, and the emitters: occurrences, symbol
// entries, per-file summaries, diagnostics, and the SymbolIndex and
// ProjectIndex documents. Field order on the structs is the canonical JSON
// field order.
package model

// Schema versions stamped into emitted artifacts.
const (
	SymbolIndexSchemaVersion  = "2.1"
	ProjectIndexSchemaVersion = "2.3"
)

// Ordering is the only defined symbol ordering: byte-wise lexicographic.
const OrderingLex = "lex"

// Occurrence is one textual appearance of an identifier. Lines and columns
// are 1-based; col_end is exclusive. Byte offsets are 0-based UTF-8 offsets
// into the raw file and may be omitted.
type Occurrence struct {
	FileID    string `json:"file_id"`
	Line      int    `json:"line"`
	ColStart  int    `json:"col_start"`
	ColEnd    int    `json:"col_end"`
	ByteStart *int   `json:"byte_start,omitempty"`
	ByteEnd   *int   `json:"byte_end,omitempty"`
}

// Key returns the occurrence's total-order sort key components.
func (o Occurrence) Key() (string, int, int, int) {
	return o.FileID, o.Line, o.ColStart, o.ColEnd
}

// Less orders occurrences by (file_id, line, col_start, col_end).
func (o Occurrence) Less(other Occurrence) bool {
	if o.FileID != other.FileID {
		return o.FileID < other.FileID
	}
	if o.Line != other.Line {
		return o.Line < other.Line
	}
	if o.ColStart != other.ColStart {
		return o.ColStart < other.ColStart
	}
	return o.ColEnd < other.ColEnd
}

// SymbolStats holds per-symbol aggregate counts.
type SymbolStats struct {
	OccurrenceCount int `json:"occurrence_count"`
	UniqueLineCount int `json:"unique_line_count"`
}

// SymbolEntry is one selected identifier with all of its occurrences.
type SymbolEntry struct {
	Identifier  string       `json:"identifier"`
	Occurrences []Occurrence `json:"occurrences"`
	Stats       SymbolStats  `json:"stats"`
}

// FileSummary records integrity metadata for one successfully indexed file.
type FileSummary struct {
	FileID string `json:"file_id"`
	Lines  int    `json:"lines"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`
}

// Diagnostic severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Diagnostic codes emitted by the engine and router.
const (
	CodeIORead       = "io.read"
	CodeIOTooLarge   = "io.too_large"
	CodeNoRule       = "registry.no_rule"
	CodeTextEncoding = "text.encoding"
)

// Diagnostic is a recoverable, file-level report. Indexing is tolerant:
// diagnostics accumulate and the run completes.
type Diagnostic struct {
	Severity string `json:"severity"`
	FileID   string `json:"file_id"`
	Line     int    `json:"line,omitempty"`
	Col      int    `json:"col,omitempty"`
	Message  string `json:"message"`
	Code     string `json:"code"`
}

// SymbolIndex is the per-profile index artifact. files, symbols, and each
// symbol's occurrences are sorted; see CheckSymbolIndex in internal/schema
// for the full invariant set.
type SymbolIndex struct {
	SchemaVersion string        `json:"schema_version"`
	ProfileID     string        `json:"profile_id"`
	Ordering      string        `json:"ordering"`
	GeneratedAt   string        `json:"generated_at"`
	Files         []FileSummary `json:"files"`
	Symbols       []SymbolEntry `json:"symbols"`
	Diagnostics   []Diagnostic  `json:"diagnostics"`
}

// Artifact points at one emitted per-profile index file.
type Artifact struct {
	Alias  string `json:"alias"`
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
}

// ProjectIndex wraps one SymbolIndex per profile for mixed-language runs.
// indexes is sorted by profile_id.
type ProjectIndex struct {
	SchemaVersion string        `json:"schema_version"`
	ProjectRoot   string        `json:"project_root"`
	GeneratedAt   string        `json:"generated_at"`
	EngineVersion string        `json:"engine_version,omitempty"`
	RegistryID    string        `json:"registry_id,omitempty"`
	ProjectSHA256 string        `json:"project_sha256,omitempty"`
	Indexes       []SymbolIndex `json:"indexes"`
	Artifacts     []Artifact    `json:"artifacts,omitempty"`
	Diagnostics   []Diagnostic  `json:"diagnostics"`
}
