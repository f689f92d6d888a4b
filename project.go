package codeindex

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"time"

	"github.com/jward/codeindex/internal/model"
	"github.com/jward/codeindex/internal/profile"
	"github.com/jward/codeindex/internal/registry"
)

// ProjectResult is a registry-mode run: the ProjectIndex wrapper plus the
// same per-profile indexes keyed by registry alias, for file-per-profile
// emission.
type ProjectResult struct {
	Project *model.ProjectIndex
	ByAlias map[string]model.SymbolIndex
}

// IndexProject routes inputs through a registry, runs one indexing pass
// per matched profile, and wraps the results in a ProjectIndex whose
// indexes are sorted by profile_id. Inputs no rule matches are skipped
// with a registry.no_rule diagnostic. Options apply to every per-profile
// engine; the injected (or generated) timestamp is shared so all embedded
// indexes carry the same generated_at.
func IndexProject(ctx context.Context, reg *registry.Registry, projectRoot string, inputs []Input, opts ...Option) (*ProjectResult, error) {
	base := &Engine{parallel: true, byteOffsets: true}
	for _, opt := range opts {
		opt(base)
	}
	if base.generatedAt == "" {
		base.generatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	groups, diags := GroupByProfile(reg, inputs)

	proj := &model.ProjectIndex{
		SchemaVersion: model.ProjectIndexSchemaVersion,
		ProjectRoot:   projectRoot,
		GeneratedAt:   base.generatedAt,
		EngineVersion: Version,
		RegistryID:    reg.RegistryID,
		Indexes:       []model.SymbolIndex{},
		Diagnostics:   []model.Diagnostic{},
	}
	proj.Diagnostics = append(proj.Diagnostics, diags...)

	byAlias := make(map[string]model.SymbolIndex)
	for _, alias := range reg.Aliases() {
		group, ok := groups[alias]
		if !ok {
			continue
		}
		path, _ := reg.ProfilePath(alias)
		prof, err := profile.Load(path)
		if err != nil {
			return nil, fmt.Errorf("profile for alias %q: %w", alias, err)
		}
		eng, err := newFrom(base, prof)
		if err != nil {
			return nil, fmt.Errorf("engine for alias %q: %w", alias, err)
		}
		idx, err := eng.IndexInputs(ctx, group)
		if err != nil {
			return nil, err
		}
		byAlias[alias] = *idx
		proj.Indexes = append(proj.Indexes, *idx)
	}

	sort.SliceStable(proj.Indexes, func(i, j int) bool {
		return proj.Indexes[i].ProfileID < proj.Indexes[j].ProfileID
	})

	proj.ProjectSHA256 = projectDigest(proj.Indexes)
	return &ProjectResult{Project: proj, ByAlias: byAlias}, nil
}

// GroupByProfile partitions inputs by registry alias without indexing, for
// file-per-profile emission. Unmatched inputs come back as diagnostics.
func GroupByProfile(reg *registry.Registry, inputs []Input) (map[string][]Input, []model.Diagnostic) {
	groups := make(map[string][]Input)
	var diags []model.Diagnostic
	for _, in := range dedupeInputs(inputs) {
		alias, ok := reg.Resolve(in.FileID)
		if !ok {
			diags = append(diags, model.Diagnostic{
				Severity: model.SeverityWarning,
				FileID:   in.FileID,
				Message:  "no registry rule matches this file",
				Code:     model.CodeNoRule,
			})
			continue
		}
		groups[alias] = append(groups[alias], in)
	}
	return groups, diags
}

// newFrom clones the base engine's configuration onto a freshly loaded
// profile, re-resolving the symbol policy against it.
func newFrom(base *Engine, prof *profile.Profile) (*Engine, error) {
	e := &Engine{
		prof:        prof,
		overrides:   base.overrides,
		generatedAt: base.generatedAt,
		parallel:    base.parallel,
		byteOffsets: base.byteOffsets,
	}
	pol, err := profile.ResolvePolicy(prof, e.overrides)
	if err != nil {
		return nil, fmt.Errorf("resolve symbol policy: %w", err)
	}
	e.pol = pol
	return e, nil
}

// projectDigest is a SHA-256 over the sorted "file_id:sha256\n" lines of
// every successfully indexed file, a stable fingerprint of the project's
// indexed content.
func projectDigest(indexes []model.SymbolIndex) string {
	var lines []string
	for _, idx := range indexes {
		for _, f := range idx.Files {
			lines = append(lines, f.FileID+":"+f.SHA256+"\n")
		}
	}
	sort.Strings(lines)
	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
