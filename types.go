package codeindex

import (
	"github.com/jward/codeindex/internal/model"
	"github.com/jward/codeindex/internal/profile"
	"github.com/jward/codeindex/internal/registry"
)

// Public type aliases for internal types used in the Engine API. These are
// Go type aliases (=) — identical to the internal types at compile time.
// External consumers use these names; no conversion is needed.

type Profile = profile.Profile
type Policy = profile.Policy
type Overrides = profile.Overrides
type Registry = registry.Registry

type SymbolIndex = model.SymbolIndex
type ProjectIndex = model.ProjectIndex
type SymbolEntry = model.SymbolEntry
type Occurrence = model.Occurrence
type FileSummary = model.FileSummary
type Diagnostic = model.Diagnostic
type Artifact = model.Artifact
