package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jward/codeindex"
	"github.com/jward/codeindex/internal/discovery"
	"github.com/jward/codeindex/internal/model"
	"github.com/jward/codeindex/internal/profile"
	"github.com/jward/codeindex/internal/rows"
)

var (
	flagProfile    string
	flagRegistry   string
	flagInputs     []string
	flagInputsFile string
	flagRoot       string

	flagRecursive      bool
	flagIncludeGlobs   []string
	flagExcludeGlobs   []string
	flagFollowSymlinks bool
	flagMaxFileSize    int64

	flagOut    string
	flagOutDir string

	flagDeclaredOnly        bool
	flagAllIdentifiers      bool
	flagExcludeSingleLetter bool
	flagIncludeSingleLetter bool
	flagQualified           string
	flagIncludeHeaders      string

	flagGeneratedAt   string
	flagOrdering      string
	flagNoByteOffsets bool
	flagSerial        bool

	flagEmitRows    string
	flagEmitRowsOut string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build a symbol index from source files",
	Long: `Builds a canonical SymbolIndex from the given inputs under one language
profile, or a ProjectIndex when a registry routes files to multiple
profiles. When no explicit --input or --inputs-file is given, inputs are
discovered under --root (direct children, or the whole tree with
--recursive).`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	f := indexCmd.Flags()
	f.StringVar(&flagProfile, "profile", "", "language profile JSON (single-profile mode)")
	f.StringVar(&flagRegistry, "registry", "", "profile registry JSON (mixed-language mode)")
	f.StringArrayVar(&flagInputs, "input", nil, "input file (repeatable)")
	f.StringVar(&flagInputsFile, "inputs-file", "", "file listing input paths, one per line")
	f.StringVar(&flagRoot, "root", "", "project root; file_ids become root-relative")
	f.BoolVar(&flagRecursive, "recursive", false, "walk --root recursively")
	f.StringArrayVar(&flagIncludeGlobs, "include-glob", nil, "only discover files matching this glob (repeatable)")
	f.StringArrayVar(&flagExcludeGlobs, "exclude-glob", nil, "skip discovered files matching this glob (repeatable)")
	f.BoolVar(&flagFollowSymlinks, "follow-symlinks", false, "follow symlinks during discovery")
	f.Int64Var(&flagMaxFileSize, "max-file-size-bytes", 0, "skip files larger than this (0 = unlimited)")
	f.StringVar(&flagOut, "out", "", "output path ('-' or empty = stdout; with --out-dir, empty writes no ProjectIndex)")
	f.StringVar(&flagOutDir, "out-dir", "", "registry mode: directory for per-profile index files")
	f.BoolVar(&flagDeclaredOnly, "declared-only", false, "index only identifiers admitted by declaration discovery")
	f.BoolVar(&flagAllIdentifiers, "all-identifiers", false, "index every non-stop-word identifier")
	f.BoolVar(&flagExcludeSingleLetter, "exclude-single-letter", false, "drop single-letter identifiers unless declared")
	f.BoolVar(&flagIncludeSingleLetter, "include-single-letter", false, "keep single-letter identifiers")
	f.StringVar(&flagQualified, "qualified", "", "admit qualified identifiers: none|dot|scope|dot_and_scope")
	f.StringVar(&flagIncludeHeaders, "include-headers", "", "admit identifiers from #include paths: true|false")
	f.StringVar(&flagGeneratedAt, "generated-at", "", "inject the generated_at timestamp (ISO-8601)")
	f.StringVar(&flagOrdering, "ordering", "lex", "symbol ordering (only 'lex' is defined)")
	f.BoolVar(&flagNoByteOffsets, "no-byte-offsets", false, "omit byte_start/byte_end from occurrences")
	f.BoolVar(&flagSerial, "serial", false, "disable the parallel per-file pipeline")
	f.StringVar(&flagEmitRows, "emit-rows", "", "also emit occurrence rows: csv|jsonl")
	f.StringVar(&flagEmitRowsOut, "emit-rows-out", "", "rows output path ('-' = stdout)")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	if flagProfile == "" && flagRegistry == "" {
		return usagef("one of --profile or --registry is required")
	}
	if flagProfile != "" && flagRegistry != "" {
		return usagef("--profile and --registry are mutually exclusive")
	}
	if flagOrdering != model.OrderingLex {
		return usagef("unsupported ordering %q: only %q is defined", flagOrdering, model.OrderingLex)
	}
	if flagGeneratedAt != "" {
		if _, err := time.Parse(time.RFC3339, flagGeneratedAt); err != nil {
			return usagef("invalid --generated-at %q: %v", flagGeneratedAt, err)
		}
	}
	switch flagEmitRows {
	case "", rows.FormatCSV, rows.FormatJSONL:
	default:
		return usagef("invalid --emit-rows %q: must be csv or jsonl", flagEmitRows)
	}
	if flagEmitRows != "" && flagRegistry != "" {
		return usagef("--emit-rows applies to single-profile runs; export per-profile artifacts instead")
	}

	overrides, err := policyOverrides(cmd)
	if err != nil {
		return err
	}

	inputs, discDiags, err := gatherInputs()
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return usagef("no inputs: pass --input, --inputs-file, or --root")
	}

	opts := []codeindex.Option{
		codeindex.WithPolicyOverrides(overrides),
		codeindex.WithParallel(!flagSerial),
	}
	if flagGeneratedAt != "" {
		opts = append(opts, codeindex.WithGeneratedAt(flagGeneratedAt))
	}
	if flagNoByteOffsets {
		opts = append(opts, codeindex.WithoutByteOffsets())
	}

	ctx := context.Background()

	if flagRegistry != "" {
		if err := runRegistryIndex(ctx, inputs, discDiags, opts); err != nil {
			return err
		}
	} else {
		if err := runSingleIndex(ctx, inputs, discDiags, opts); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "Indexed %d input(s) in %s\n", len(inputs), time.Since(start).Round(time.Millisecond))
	return nil
}

func runSingleIndex(ctx context.Context, inputs []codeindex.Input, discDiags []model.Diagnostic, opts []codeindex.Option) error {
	prof, err := codeindex.LoadProfile(flagProfile)
	if err != nil {
		return &usageError{err: err}
	}
	eng, err := codeindex.New(prof, opts...)
	if err != nil {
		return &usageError{err: err}
	}

	idx, err := eng.IndexInputs(ctx, inputs)
	if err != nil {
		return err
	}
	idx.Diagnostics = append(idx.Diagnostics, discDiags...)

	if err := writeDocument(flagOut, idx); err != nil {
		return err
	}
	return emitRowsIfRequested(idx)
}

func runRegistryIndex(ctx context.Context, inputs []codeindex.Input, discDiags []model.Diagnostic, opts []codeindex.Option) error {
	reg, err := codeindex.LoadRegistry(flagRegistry)
	if err != nil {
		return &usageError{err: err}
	}

	res, err := codeindex.IndexProject(ctx, reg, flagRoot, inputs, opts...)
	if err != nil {
		return &usageError{err: err}
	}
	proj := res.Project
	proj.Diagnostics = append(proj.Diagnostics, discDiags...)

	// File-per-profile emission, recorded as artifacts on the wrapper.
	if flagOutDir != "" {
		if err := os.MkdirAll(flagOutDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", flagOutDir, err)
		}
		for _, alias := range sortedKeys(res.ByAlias) {
			idx := res.ByAlias[alias]
			path := filepath.Join(flagOutDir, alias+".symbol_index.json")
			sum, err := codeindex.WriteArtifact(path, &idx)
			if err != nil {
				return err
			}
			proj.Artifacts = append(proj.Artifacts, model.Artifact{
				Alias:  alias,
				Path:   filepath.ToSlash(path),
				SHA256: sum,
			})
			fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
		}
		if flagOut == "" {
			return nil
		}
	}

	return writeDocument(flagOut, proj)
}

// policyOverrides converts the policy flags to engine overrides, honouring
// only flags the user actually set.
func policyOverrides(cmd *cobra.Command) (codeindex.Overrides, error) {
	var ov codeindex.Overrides

	if flagDeclaredOnly && flagAllIdentifiers {
		return ov, usagef("--declared-only and --all-identifiers are mutually exclusive")
	}
	if flagDeclaredOnly {
		ov.Mode = ptr(profile.ModeDeclared)
	}
	if flagAllIdentifiers {
		ov.Mode = ptr(profile.ModeAll)
	}

	if flagExcludeSingleLetter && flagIncludeSingleLetter {
		return ov, usagef("--exclude-single-letter and --include-single-letter are mutually exclusive")
	}
	if flagExcludeSingleLetter {
		ov.ExcludeSingleLetter = ptr(true)
	}
	if flagIncludeSingleLetter {
		ov.ExcludeSingleLetter = ptr(false)
	}

	if cmd.Flags().Changed("qualified") {
		switch flagQualified {
		case profile.QualifiedNone, profile.QualifiedDot, profile.QualifiedScope, profile.QualifiedDotAndScope:
			ov.Qualified = ptr(flagQualified)
		default:
			return ov, usagef("invalid --qualified %q: must be none, dot, scope, or dot_and_scope", flagQualified)
		}
	}

	if cmd.Flags().Changed("include-headers") {
		switch flagIncludeHeaders {
		case "true":
			ov.IncludeHeaders = ptr(true)
		case "false":
			ov.IncludeHeaders = ptr(false)
		default:
			return ov, usagef("invalid --include-headers %q: must be true or false", flagIncludeHeaders)
		}
	}

	return ov, nil
}

// gatherInputs resolves the input set: explicit --input paths and
// --inputs-file entries, or a discovery walk under --root when neither is
// given. file_ids are root-relative when --root is set, basenames
// otherwise.
func gatherInputs() ([]codeindex.Input, []model.Diagnostic, error) {
	var inputs []codeindex.Input

	addPath := func(path string) {
		inputs = append(inputs, codeindex.Input{
			Path:   path,
			FileID: discovery.FileIDFor(flagRoot, path),
		})
	}

	for _, p := range flagInputs {
		addPath(p)
	}

	if flagInputsFile != "" {
		f, err := os.Open(flagInputsFile)
		if err != nil {
			return nil, nil, usagef("open --inputs-file: %v", err)
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			addPath(line)
		}
		if err := sc.Err(); err != nil {
			return nil, nil, fmt.Errorf("read --inputs-file: %w", err)
		}
	}

	if len(inputs) > 0 {
		return inputs, nil, nil
	}

	if flagRoot == "" {
		return nil, nil, nil
	}
	files, diags, err := discovery.Discover(discovery.Options{
		Root:             flagRoot,
		Recursive:        flagRecursive,
		IncludeGlobs:     flagIncludeGlobs,
		ExcludeGlobs:     flagExcludeGlobs,
		FollowSymlinks:   flagFollowSymlinks,
		MaxFileSizeBytes: flagMaxFileSize,
	})
	if err != nil {
		return nil, nil, usagef("discover inputs: %v", err)
	}
	for _, df := range files {
		inputs = append(inputs, codeindex.Input{Path: df.Path, FileID: df.FileID})
	}
	return inputs, diags, nil
}

// emitRowsIfRequested writes the occurrence rows alongside the index when
// --emit-rows is set.
func emitRowsIfRequested(idx *model.SymbolIndex) error {
	if flagEmitRows == "" {
		return nil
	}
	rs := rows.FromIndex(idx)

	out, closeFn, err := openOut(flagEmitRowsOut)
	if err != nil {
		return err
	}
	defer closeFn()

	if flagEmitRows == rows.FormatCSV {
		return rows.WriteCSV(out, rs)
	}
	return rows.WriteJSONL(out, rs)
}

// writeDocument emits canonical JSON to path, or stdout for "" / "-".
func writeDocument(path string, v any) error {
	if path == "" || path == "-" {
		return codeindex.WriteCanonical(os.Stdout, v)
	}
	if _, err := codeindex.WriteArtifact(path, v); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

// openOut opens path for writing, with "" / "-" meaning stdout.
func openOut(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}

func ptr[T any](v T) *T { return &v }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Deterministic emission order for per-profile artifacts.
	sort.Strings(keys)
	return keys
}
