// Package codeindex produces deterministic, schema-validated symbol
// indexes over source files, parametrised by declarative language
// profiles.
//
// # Pipeline
//
// Indexing runs in two phases per file and one aggregation phase per run:
//
//  1. Lex: a comment- and literal-aware state machine tokenizes each file
//     against the profile's identifier pattern, producing tokens with
//     exact (line, column, byte) spans. In declared-only mode a purely
//     lexical declaration-discovery pass computes the set of identifiers
//     the file admits.
//
//  2. Aggregate: identifier occurrences are filtered through the stop-word
//     set and the resolved symbol policy, merged across files, sorted, and
//     emitted as a canonical JSON SymbolIndex.
//
// Output bytes are a function of the sorted set of inputs and the profile,
// never of the order inputs were supplied or of scheduling.
//
// # Usage
//
// Load a profile, create an Engine, and index:
//
//	prof, err := codeindex.LoadProfile("profiles/java.json")
//	if err != nil { ... }
//	eng, err := codeindex.New(prof, codeindex.WithGeneratedAt("2026-01-01T00:00:00Z"))
//	if err != nil { ... }
//
//	idx, err := eng.IndexInputs(ctx, []codeindex.Input{
//		{Path: "src/Hello.java", FileID: "src/Hello.java"},
//	})
//
// For mixed-language repositories, a registry of glob rules routes each
// file to a profile and [IndexProject] wraps one index per profile in a
// ProjectIndex sorted by profile_id.
//
// # Tolerance
//
// Lexing never fails: unterminated comments and literals consume to end of
// input, and invalid UTF-8 decodes as replacement characters with a
// diagnostic. Unreadable files are skipped with a diagnostic and the run
// completes; only configuration errors (malformed profile or registry,
// uncompilable identifier pattern) abort a run.
package codeindex
