package codeindex

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/jward/codeindex/internal/discover"
	"github.com/jward/codeindex/internal/lexer"
	"github.com/jward/codeindex/internal/model"
	"github.com/jward/codeindex/internal/profile"
)

// Input names one source file to index: the filesystem path to read and
// the stable file_id recorded in the artifact (root-relative with '/'
// separators, or the basename when no root was given).
type Input struct {
	Path   string
	FileID string
}

// Engine indexes a set of inputs under one language profile. It is
// stateless between runs; the output is a pure function of the sorted set
// of inputs and the profile, so permuting the input list cannot change a
// single output byte.
type Engine struct {
	prof *profile.Profile
	pol  profile.Policy

	overrides   profile.Overrides
	generatedAt string
	parallel    bool
	byteOffsets bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithGeneratedAt injects the generated_at timestamp (ISO-8601) so runs
// are reproducible. When unset, the current UTC time is stamped.
func WithGeneratedAt(ts string) Option {
	return func(e *Engine) { e.generatedAt = ts }
}

// WithParallel controls the per-file worker pool. When true (default),
// reading, lexing, and declaration discovery run concurrently; results are
// merged in sorted file_id order so the output stays byte-identical. Set
// to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) { e.parallel = parallel }
}

// WithPolicyOverrides applies explicit symbol-policy settings on top of
// the profile (explicit option beats profile beats built-in default).
func WithPolicyOverrides(ov profile.Overrides) Option {
	return func(e *Engine) { e.overrides = ov }
}

// WithoutByteOffsets omits byte_start/byte_end from emitted occurrences.
func WithoutByteOffsets() Option {
	return func(e *Engine) { e.byteOffsets = false }
}

// New creates an Engine for one validated profile. Policy resolution
// failures (unknown mode names) are configuration errors.
func New(prof *profile.Profile, opts ...Option) (*Engine, error) {
	e := &Engine{
		prof:        prof,
		parallel:    true,
		byteOffsets: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	pol, err := profile.ResolvePolicy(prof, e.overrides)
	if err != nil {
		return nil, fmt.Errorf("resolve symbol policy: %w", err)
	}
	e.pol = pol
	return e, nil
}

// Profile returns the engine's profile.
func (e *Engine) Profile() *profile.Profile { return e.prof }

// Policy returns the fully resolved symbol policy.
func (e *Engine) Policy() profile.Policy { return e.pol }

// fileResult is everything the per-file phase produces for one input.
// Failed files carry diagnostics and ok=false; the run continues.
type fileResult struct {
	input    Input
	ok       bool
	summary  model.FileSummary
	diags    []model.Diagnostic
	idents   []lexer.Token
	admitted map[string]struct{}
}

// IndexInputs reads, lexes, and aggregates the inputs into a SymbolIndex.
// Unreadable files are skipped with an io.read diagnostic; invalid UTF-8
// decodes as replacement characters with a text.encoding diagnostic.
// Duplicate file_ids collapse to the first occurrence.
func (e *Engine) IndexInputs(ctx context.Context, inputs []Input) (*model.SymbolIndex, error) {
	sorted := dedupeInputs(inputs)

	var results []fileResult
	var err error
	if e.parallel && len(sorted) > 1 {
		results, err = e.processParallel(ctx, sorted)
	} else {
		results, err = e.processSerial(ctx, sorted)
	}
	if err != nil {
		return nil, err
	}

	return e.assemble(results), nil
}

func (e *Engine) processSerial(ctx context.Context, inputs []Input) ([]fileResult, error) {
	results := make([]fileResult, len(inputs))
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results[i] = e.processFile(in)
	}
	return results, nil
}

// processFile runs the whole per-file phase: read, hash, tokenize, and
// (in declared-only mode) declaration discovery. It never fails; problems
// become diagnostics.
func (e *Engine) processFile(in Input) fileResult {
	res := fileResult{input: in}

	data, err := os.ReadFile(in.Path)
	if err != nil {
		res.diags = append(res.diags, model.Diagnostic{
			Severity: model.SeverityError,
			FileID:   in.FileID,
			Message:  fmt.Sprintf("cannot read file: %v", err),
			Code:     model.CodeIORead,
		})
		return res
	}

	if !utf8.Valid(data) {
		res.diags = append(res.diags, model.Diagnostic{
			Severity: model.SeverityWarning,
			FileID:   in.FileID,
			Message:  "file is not valid UTF-8; invalid bytes decode as replacement characters",
			Code:     model.CodeTextEncoding,
		})
	}

	res.summary = model.FileSummary{
		FileID: in.FileID,
		Lines:  countLines(data),
		Bytes:  len(data),
		SHA256: fmt.Sprintf("%x", sha256.Sum256(data)),
	}

	lx := lexer.New(e.prof, data)
	var toks []lexer.Token
	for {
		t := lx.Next()
		if t.Kind == lexer.EOF {
			break
		}
		toks = append(toks, t)
	}

	if e.pol.Mode == profile.ModeDeclared {
		res.admitted = discover.Admitted(e.prof, e.pol, toks, data)
	}

	for _, t := range toks {
		if t.Kind == lexer.Identifier {
			res.idents = append(res.idents, t)
		}
	}
	res.ok = true
	return res
}

// assemble merges per-file results, already in sorted file_id order, into
// the final artifact. This is the only phase that touches shared state, so
// parallel and serial runs emit identical bytes.
func (e *Engine) assemble(results []fileResult) *model.SymbolIndex {
	// Union of per-file admitted sets: a symbol declared in file A admits
	// references to it in file B.
	allowed := make(map[string]struct{})
	for _, r := range results {
		for k := range r.admitted {
			allowed[k] = struct{}{}
		}
	}

	type entry struct {
		spelling string // first occurrence's text in canonical order
		key      string
		occs     []model.Occurrence
	}
	byKey := make(map[string]*entry)

	idx := &model.SymbolIndex{
		SchemaVersion: model.SymbolIndexSchemaVersion,
		ProfileID:     e.prof.ProfileID,
		Ordering:      model.OrderingLex,
		GeneratedAt:   e.generatedAt,
		Files:         []model.FileSummary{},
		Symbols:       []model.SymbolEntry{},
		Diagnostics:   []model.Diagnostic{},
	}
	if idx.GeneratedAt == "" {
		idx.GeneratedAt = time.Now().UTC().Format(time.RFC3339)
	}

	declaredOnly := e.pol.Mode == profile.ModeDeclared

	for _, r := range results {
		idx.Diagnostics = append(idx.Diagnostics, r.diags...)
		if !r.ok {
			continue
		}
		idx.Files = append(idx.Files, r.summary)

		for _, t := range r.idents {
			if e.prof.IsStopWord(t.Text) {
				continue
			}
			key := e.prof.Key(t.Text)
			_, isAllowed := allowed[key]
			if declaredOnly && !isAllowed {
				continue
			}
			// Single-letter identifiers bypass the exclusion only when
			// explicitly declared.
			if e.pol.ExcludeSingleLetter && utf8.RuneCountInString(t.Text) == 1 && !isAllowed {
				continue
			}

			occ := model.Occurrence{
				FileID:   r.input.FileID,
				Line:     t.Line,
				ColStart: t.ColStart,
				ColEnd:   t.ColEnd,
			}
			if e.byteOffsets {
				bs, be := t.ByteStart, t.ByteEnd
				occ.ByteStart, occ.ByteEnd = &bs, &be
			}

			ent, ok := byKey[key]
			if !ok {
				ent = &entry{spelling: t.Text, key: key}
				byKey[key] = ent
			}
			ent.occs = append(ent.occs, occ)
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	preserve := e.prof.Normalization.PreserveOriginalSpelling
	for _, k := range keys {
		ent := byKey[k]
		sort.SliceStable(ent.occs, func(i, j int) bool { return ent.occs[i].Less(ent.occs[j]) })

		ident := ent.key
		if preserve {
			ident = ent.spelling
		}
		idx.Symbols = append(idx.Symbols, model.SymbolEntry{
			Identifier:  ident,
			Occurrences: ent.occs,
			Stats: model.SymbolStats{
				OccurrenceCount: len(ent.occs),
				UniqueLineCount: uniqueLines(ent.occs),
			},
		})
	}
	// Stable so entries whose identifiers collide after spelling
	// preservation keep their key order.
	sort.SliceStable(idx.Symbols, func(i, j int) bool {
		return idx.Symbols[i].Identifier < idx.Symbols[j].Identifier
	})

	return idx
}

// dedupeInputs sorts by file_id and collapses duplicates, keeping the
// first path supplied for each id. The output is a function of the sorted
// set, not the supplied order.
func dedupeInputs(inputs []Input) []Input {
	sorted := make([]Input, len(inputs))
	copy(sorted, inputs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FileID < sorted[j].FileID })
	out := sorted[:0]
	for _, in := range sorted {
		if len(out) > 0 && out[len(out)-1].FileID == in.FileID {
			continue
		}
		out = append(out, in)
	}
	return out
}

// countLines is 1 + the LF count for non-empty data, 0 for empty data.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := 1
	for _, b := range data {
		if b == '\n' {
			n++
		}
	}
	return n
}

// uniqueLines counts distinct (file_id, line) pairs.
func uniqueLines(occs []model.Occurrence) int {
	type lineKey struct {
		fileID string
		line   int
	}
	seen := make(map[lineKey]struct{}, len(occs))
	for _, o := range occs {
		seen[lineKey{o.FileID, o.Line}] = struct{}{}
	}
	return len(seen)
}
