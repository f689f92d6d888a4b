// Package discover implements declaration discovery: the purely lexical
// heuristic that decides which identifiers a file "declares" (or otherwise
// admits by policy). It is a pure function of the token stream, the
// profile's stop-word set, and the resolved policy — deliberately not a
// parser. Some declarations are missed and some are spurious; the golden
// corpus is the arbiter of its exact behaviour.
package discover

import (
	"regexp"
	"unicode/utf8"

	"github.com/jward/codeindex/internal/lexer"
	"github.com/jward/codeindex/internal/profile"
)

// reservedModifiers are never treated as the type position of a typed
// declaration, so "public Foo" does not admit Foo by the pair rule alone.
var reservedModifiers = []string{"public", "private", "protected", "static", "final"}

// reInclude matches #include <PATH> and #include "PATH" lines.
var reInclude = regexp.MustCompile(`(?m)^[ \t]*#[ \t]*include[ \t]*(?:<([^>\r\n]*)>|"([^"\r\n]*)")`)

// Admitted returns the set of identifier keys admitted for one file under
// declared-only filtering. Keys are profile-normalized (see profile.Key);
// the engine unions the per-file sets across a run.
//
// toks must be the file's full raw token stream in order (Other tokens are
// transparent; Punct breaks identifier adjacency). src is the same file's
// raw text, consulted only for the line-anchored include-header scan.
func Admitted(p *profile.Profile, pol profile.Policy, toks []lexer.Token, src []byte) map[string]struct{} {
	admitted := make(map[string]struct{})
	admit := func(text string) {
		if !p.IsStopWord(text) {
			admitted[p.Key(text)] = struct{}{}
		}
	}

	modifiers := make(map[string]struct{}, len(reservedModifiers))
	for _, m := range reservedModifiers {
		modifiers[p.Key(m)] = struct{}{}
	}

	// Collapse the raw stream to identifiers and puncts. Other tokens are
	// invisible here, so whitespace and operators between two identifiers
	// leave them adjacent while "." and "::" keep them apart.
	stream := make([]lexer.Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind == lexer.Identifier || t.Kind == lexer.Punct {
			stream = append(stream, t)
		}
	}

	pkgKey := p.Key("package")
	classKey := p.Key("class")

	for i, t := range stream {
		if t.Kind != lexer.Identifier {
			continue
		}

		// package NAME / class NAME admit the following identifier.
		if k := p.Key(t.Text); k == pkgKey || k == classKey {
			if n, ok := nextIdent(stream, i); ok {
				admit(n.Text)
			}
		}

		// Typed-declaration pair (T, N): any identifier directly followed
		// by another identifier admits the second, unless T is a reserved
		// modifier. This over-admits (e.g. "return foo" admits foo) — a
		// known trade-off of staying language-agnostic; do not tighten it
		// without regenerating the golden corpus.
		if i+1 < len(stream) && stream[i+1].Kind == lexer.Identifier {
			n := stream[i+1]
			if _, isMod := modifiers[p.Key(t.Text)]; !isMod {
				if !pol.ExcludeSingleLetter || utf8.RuneCountInString(n.Text) != 1 {
					admit(n.Text)
				}
			}
		}

		// Qualified pair (LEFT . RIGHT) or (LEFT :: RIGHT): when enabled,
		// both sides flow into the index even though neither is declared.
		if i+2 < len(stream) && stream[i+1].Kind == lexer.Punct && stream[i+2].Kind == lexer.Identifier {
			punct := stream[i+1].Text
			if (punct == "." && pol.AdmitsDot()) || (punct == "::" && pol.AdmitsScope()) {
				admit(t.Text)
				admit(stream[i+2].Text)
			}
		}
	}

	if pol.IncludeHeaders {
		for _, m := range reInclude.FindAllSubmatch(src, -1) {
			path := m[1]
			if len(path) == 0 {
				path = m[2]
			}
			for _, id := range p.SearchPattern().FindAll(path, -1) {
				admit(string(id))
			}
		}
	}

	return admitted
}

// nextIdent returns the first identifier token after index i, skipping
// puncts, as the package/class rules name the following identifier even
// across a qualifier.
func nextIdent(stream []lexer.Token, i int) (lexer.Token, bool) {
	for j := i + 1; j < len(stream); j++ {
		if stream[j].Kind == lexer.Identifier {
			return stream[j], true
		}
	}
	return lexer.Token{}, false
}
