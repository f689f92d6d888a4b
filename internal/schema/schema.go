// Package schema validates emitted artifacts: JSON-Schema shape checks
// plus the contract invariants a well-formed index must satisfy (sorted
// files, symbols, and occurrences; no duplicate occurrences; consistent
// stats). The validate command runs both.
package schema

import (
	"github.com/google/jsonschema-go/jsonschema"
)

var occurrenceSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"file_id", "line", "col_start", "col_end"},
	Properties: map[string]*jsonschema.Schema{
		"file_id":    {Type: "string"},
		"line":       {Type: "integer"},
		"col_start":  {Type: "integer"},
		"col_end":    {Type: "integer"},
		"byte_start": {Type: "integer"},
		"byte_end":   {Type: "integer"},
	},
}

var symbolSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"identifier", "occurrences", "stats"},
	Properties: map[string]*jsonschema.Schema{
		"identifier":  {Type: "string"},
		"occurrences": {Type: "array", Items: occurrenceSchema},
		"stats": {
			Type:     "object",
			Required: []string{"occurrence_count", "unique_line_count"},
			Properties: map[string]*jsonschema.Schema{
				"occurrence_count":  {Type: "integer"},
				"unique_line_count": {Type: "integer"},
			},
		},
	},
}

var fileSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"file_id", "lines", "bytes", "sha256"},
	Properties: map[string]*jsonschema.Schema{
		"file_id": {Type: "string"},
		"lines":   {Type: "integer"},
		"bytes":   {Type: "integer"},
		"sha256":  {Type: "string", Pattern: "^[0-9a-f]{64}$"},
	},
}

func newDiagnosticSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:     "object",
		Required: []string{"severity", "file_id", "message", "code"},
		Properties: map[string]*jsonschema.Schema{
			"severity": {Type: "string", Enum: []any{"error", "warning", "info"}},
			"file_id":  {Type: "string"},
			"line":     {Type: "integer"},
			"col":      {Type: "integer"},
			"message":  {Type: "string"},
			"code":     {Type: "string"},
		},
	}
}

// symbolIndexSchema describes one per-profile SymbolIndex document.
var symbolIndexSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"schema_version", "profile_id", "ordering", "generated_at", "files", "symbols", "diagnostics"},
	Properties: map[string]*jsonschema.Schema{
		"schema_version": {Type: "string"},
		"profile_id":     {Type: "string"},
		"ordering":       {Type: "string", Enum: []any{"lex"}},
		"generated_at":   {Type: "string"},
		"files":          {Type: "array", Items: fileSchema},
		"symbols":        {Type: "array", Items: symbolSchema},
		"diagnostics":    {Type: "array", Items: newDiagnosticSchema()},
	},
}

// projectIndexSchema describes the mixed-language wrapper document.
var projectIndexSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"schema_version", "project_root", "generated_at", "indexes", "diagnostics"},
	Properties: map[string]*jsonschema.Schema{
		"schema_version": {Type: "string"},
		"project_root":   {Type: "string"},
		"generated_at":   {Type: "string"},
		"engine_version": {Type: "string"},
		"registry_id":    {Type: "string"},
		"project_sha256": {Type: "string", Pattern: "^[0-9a-f]{64}$"},
		"indexes":        {Type: "array", Items: symbolIndexSchema},
		"artifacts": {
			Type: "array",
			Items: &jsonschema.Schema{
				Type:     "object",
				Required: []string{"alias", "path", "sha256"},
				Properties: map[string]*jsonschema.Schema{
					"alias":  {Type: "string"},
					"path":   {Type: "string"},
					"sha256": {Type: "string"},
				},
			},
		},
		"diagnostics": {Type: "array", Items: newDiagnosticSchema()},
	},
}

// ValidateSymbolIndex schema-checks a decoded SymbolIndex document.
func ValidateSymbolIndex(doc any) error {
	return validate(symbolIndexSchema, doc)
}

// ValidateProjectIndex schema-checks a decoded ProjectIndex document.
func ValidateProjectIndex(doc any) error {
	return validate(projectIndexSchema, doc)
}

func validate(s *jsonschema.Schema, doc any) error {
	resolved, err := s.Resolve(nil)
	if err != nil {
		return err
	}
	return resolved.Validate(doc)
}
