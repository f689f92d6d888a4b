// Package profile loads and validates language profiles: the declarative
// lexical specification (identifier shape, comment and literal syntax, stop
// words, symbol-selection policy) that parametrises the lexer and the
// indexing engine.
//
// Profile files are JSON, but // and /* */ comments and trailing commas are
// accepted (parsed with hujson before decoding). Profiles are immutable
// after Load and safe to share across goroutines.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/tailscale/hujson"
)

// Case sensitivity modes.
const (
	CaseSensitive   = "sensitive"
	CaseInsensitive = "insensitive"
)

// Normalization modes.
const (
	NormNone           = "none"
	NormNFKC           = "nfkc"
	NormLowercaseASCII = "lowercase_ascii"
)

// Identifier rule modes. Only regex is supported.
const (
	IdentRegex   = "regex"
	IdentUnicode = "unicode_identifier"
)

// Stop word modes.
const (
	StopInline = "inline"
	StopURI    = "uri"
	StopNone   = "none"
)

// Normalization controls identifier folding before stop-word comparison
// and occurrence-map keying.
type Normalization struct {
	Mode                     string `json:"mode"`
	PreserveOriginalSpelling bool   `json:"preserve_original_spelling"`
}

// IdentifierRule describes how identifiers are matched. Mode must be
// "regex"; Pattern is matched anchored at the lexer cursor.
type IdentifierRule struct {
	Mode    string `json:"mode"`
	Pattern string `json:"pattern,omitempty"`
}

// StopWords configures the excluded token set. Only inline mode carries
// words today; uri and none produce an empty set.
type StopWords struct {
	Mode  string   `json:"mode"`
	Words []string `json:"words,omitempty"`
	URI   string   `json:"uri,omitempty"`
}

// CommentSyntax lists comment markers. BlockCommentStarts and
// BlockCommentEnds are aligned 1-to-1 by index.
type CommentSyntax struct {
	LineCommentStarts  []string `json:"line_comment_starts"`
	BlockCommentStarts []string `json:"block_comment_starts"`
	BlockCommentEnds   []string `json:"block_comment_ends"`
}

// LiteralSyntax configures string/char literal recognition. Delims and
// EscapeChar are single Unicode scalars written as one-character strings.
type LiteralSyntax struct {
	ExcludeLiterals       bool     `json:"exclude_literals"`
	StringDelims          []string `json:"string_delims"`
	CharDelims            []string `json:"char_delims"`
	EscapeChar            string   `json:"escape_char,omitempty"`
	AllowMultilineStrings bool     `json:"allow_multiline_strings"`
}

// Profile is one language's complete lexical specification, loaded from
// JSON and immutable afterwards.
type Profile struct {
	ProfileID       string         `json:"profile_id"`
	Name            string         `json:"name"`
	Version         string         `json:"version,omitempty"`
	CaseSensitivity string         `json:"case_sensitivity"`
	Normalization   Normalization  `json:"normalization"`
	IdentifierRule  IdentifierRule `json:"identifier_rule"`
	StopWords       StopWords      `json:"stop_words"`
	CommentSyntax   CommentSyntax  `json:"comment_syntax"`
	LiteralSyntax   LiteralSyntax  `json:"literal_syntax"`
	SymbolPolicy    *SymbolPolicy  `json:"symbol_policy,omitempty"`

	re       *regexp.Regexp      // anchored identifier pattern
	reSearch *regexp.Regexp      // same pattern, unanchored
	stopSet  map[string]struct{} // normalized stop-word keys
}

// Load reads, parses, and validates a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates profile JSON (comments and trailing commas
// accepted).
func Parse(data []byte) (*Profile, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(std, &p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return &p, nil
}

// compile validates the profile and builds the anchored identifier regex
// and the normalized stop-word set. All failures here are configuration
// errors: they abort before any output is written.
func (p *Profile) compile() error {
	if p.ProfileID == "" {
		return fmt.Errorf("profile_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch p.CaseSensitivity {
	case "":
		p.CaseSensitivity = CaseSensitive
	case CaseSensitive, CaseInsensitive:
	default:
		return fmt.Errorf("unknown case_sensitivity %q", p.CaseSensitivity)
	}

	switch p.Normalization.Mode {
	case "":
		p.Normalization.Mode = NormNone
	case NormNone, NormNFKC, NormLowercaseASCII:
	default:
		return fmt.Errorf("unknown normalization.mode %q", p.Normalization.Mode)
	}

	switch p.IdentifierRule.Mode {
	case IdentRegex:
		if p.IdentifierRule.Pattern == "" {
			return fmt.Errorf("identifier_rule.pattern is required for regex mode")
		}
	case IdentUnicode:
		return fmt.Errorf("identifier_rule.mode %q is not supported; use %q", IdentUnicode, IdentRegex)
	default:
		return fmt.Errorf("unknown identifier_rule.mode %q", p.IdentifierRule.Mode)
	}

	// Anchor the pattern at the cursor. A non-anchored search would skip
	// across non-identifier characters and corrupt token spans.
	re, err := regexp.Compile(`\A(?:` + p.IdentifierRule.Pattern + `)`)
	if err != nil {
		return fmt.Errorf("compile identifier pattern: %w", err)
	}
	p.re = re
	if p.reSearch, err = regexp.Compile(p.IdentifierRule.Pattern); err != nil {
		return fmt.Errorf("compile identifier pattern: %w", err)
	}

	switch p.StopWords.Mode {
	case "", StopNone:
		p.StopWords.Mode = StopNone
	case StopInline, StopURI:
	default:
		return fmt.Errorf("unknown stop_words.mode %q", p.StopWords.Mode)
	}

	if len(p.CommentSyntax.BlockCommentStarts) != len(p.CommentSyntax.BlockCommentEnds) {
		return fmt.Errorf("comment_syntax: %d block starts but %d block ends",
			len(p.CommentSyntax.BlockCommentStarts), len(p.CommentSyntax.BlockCommentEnds))
	}
	for _, m := range p.CommentSyntax.LineCommentStarts {
		if m == "" {
			return fmt.Errorf("comment_syntax: empty line-comment marker")
		}
	}
	for i, m := range p.CommentSyntax.BlockCommentStarts {
		if m == "" || p.CommentSyntax.BlockCommentEnds[i] == "" {
			return fmt.Errorf("comment_syntax: empty block-comment marker at index %d", i)
		}
	}

	for _, d := range append(append([]string{}, p.LiteralSyntax.StringDelims...), p.LiteralSyntax.CharDelims...) {
		if utf8.RuneCountInString(d) != 1 {
			return fmt.Errorf("literal_syntax: delimiter %q is not a single character", d)
		}
	}
	if p.LiteralSyntax.EscapeChar != "" && utf8.RuneCountInString(p.LiteralSyntax.EscapeChar) != 1 {
		return fmt.Errorf("literal_syntax: escape_char %q is not a single character", p.LiteralSyntax.EscapeChar)
	}

	p.stopSet = make(map[string]struct{})
	if p.StopWords.Mode == StopInline {
		for _, w := range p.StopWords.Words {
			p.stopSet[p.Key(w)] = struct{}{}
		}
	}

	return nil
}

// Pattern returns the compiled identifier regex, anchored at the start of
// its input.
func (p *Profile) Pattern() *regexp.Regexp { return p.re }

// SearchPattern returns the identifier regex without the anchor, for
// find-all scans inside extracted text such as include-header paths.
func (p *Profile) SearchPattern() *regexp.Regexp { return p.reSearch }

// IsStopWord reports whether text normalizes to a stop-word key.
func (p *Profile) IsStopWord(text string) bool {
	_, ok := p.stopSet[p.Key(text)]
	return ok
}

// StopSet returns the normalized stop-word keys. Callers must not mutate
// the returned map.
func (p *Profile) StopSet() map[string]struct{} { return p.stopSet }
