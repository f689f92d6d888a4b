package lexer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/codeindex/internal/profile"
)

// newProfile builds a C-like test profile around the given identifier
// pattern and literal settings.
func newProfile(t *testing.T, pattern string, excludeLiterals, multiline bool) *profile.Profile {
	t.Helper()
	src := fmt.Sprintf(`{
		"profile_id": "test",
		"name": "Test",
		"identifier_rule": {"mode": "regex", "pattern": %q},
		"stop_words": {"mode": "none"},
		"comment_syntax": {
			"line_comment_starts": ["//"],
			"block_comment_starts": ["/*"],
			"block_comment_ends": ["*/"]
		},
		"literal_syntax": {
			"exclude_literals": %v,
			"string_delims": ["\""],
			"char_delims": ["'"],
			"escape_char": "\\",
			"allow_multiline_strings": %v
		}
	}`, pattern, excludeLiterals, multiline)
	p, err := profile.Parse([]byte(src))
	require.NoError(t, err)
	return p
}

func defaultProfile(t *testing.T) *profile.Profile {
	return newProfile(t, "[A-Za-z_][A-Za-z0-9_]*", true, false)
}

// collect drains the lexer, excluding the final EOF token.
func collect(p *profile.Profile, src string) []Token {
	lx := New(p, []byte(src))
	var toks []Token
	for {
		tok := lx.Next()
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// identTexts filters the identifier token texts in order.
func identTexts(toks []Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind == Identifier {
			out = append(out, t.Text)
		}
	}
	return out
}

func TestLexer_IdentifierSpans(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "foo bar\nbaz")

	idents := make([]Token, 0, 3)
	for _, tok := range toks {
		if tok.Kind == Identifier {
			idents = append(idents, tok)
		}
	}
	require.Len(t, idents, 3)

	assert.Equal(t, Token{Kind: Identifier, Text: "foo", Line: 1, ColStart: 1, ColEnd: 4, ByteStart: 0, ByteEnd: 3}, idents[0])
	assert.Equal(t, Token{Kind: Identifier, Text: "bar", Line: 1, ColStart: 5, ColEnd: 8, ByteStart: 4, ByteEnd: 7}, idents[1])
	assert.Equal(t, Token{Kind: Identifier, Text: "baz", Line: 2, ColStart: 1, ColEnd: 4, ByteStart: 8, ByteEnd: 11}, idents[2])
}

func TestLexer_LineCommentAdjacentToIdentifier(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "foo//bar\nbaz")
	assert.Equal(t, []string{"foo", "baz"}, identTexts(toks))
}

func TestLexer_BlockComment(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "a /* b\nc */ d")
	assert.Equal(t, []string{"a", "d"}, identTexts(toks))

	// The identifier after the multi-line comment sits on line 2.
	last := toks[len(toks)-1]
	assert.Equal(t, "d", last.Text)
	assert.Equal(t, 2, last.Line)
	assert.Equal(t, 6, last.ColStart)
}

func TestLexer_UnterminatedBlockCommentRunsToEOF(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "a /* b c d")
	assert.Equal(t, []string{"a"}, identTexts(toks))
}

func TestLexer_UnterminatedStringRunsToEOF(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, `a "b c`)
	assert.Equal(t, []string{"a"}, identTexts(toks))
}

func TestLexer_StringExclusionAndEscapes(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, `a "x \" y" b`)
	assert.Equal(t, []string{"a", "b"}, identTexts(toks))
}

func TestLexer_TrailingEscapeAtEOF(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, `a "x \`)
	assert.Equal(t, []string{"a"}, identTexts(toks))
}

func TestLexer_CharLiteral(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "a 'b' c")
	assert.Equal(t, []string{"a", "c"}, identTexts(toks))
}

func TestLexer_CharLiteralRecoversAtNewline(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "a 'b\nc")
	assert.Equal(t, []string{"a", "c"}, identTexts(toks))
}

func TestLexer_SingleLineStringRecoversAtNewline(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "a \"unterminated\nb")
	assert.Equal(t, []string{"a", "b"}, identTexts(toks))
}

func TestLexer_MultilineStringsWhenAllowed(t *testing.T) {
	p := newProfile(t, "[A-Za-z_][A-Za-z0-9_]*", true, true)
	toks := collect(p, "a \"x\ny\" b")
	assert.Equal(t, []string{"a", "b"}, identTexts(toks))

	b := toks[len(toks)-1]
	assert.Equal(t, 2, b.Line)
	assert.Equal(t, 4, b.ColStart)
}

func TestLexer_LiteralsKeptWhenNotExcluded(t *testing.T) {
	p := newProfile(t, "[A-Za-z_][A-Za-z0-9_]*", false, false)
	toks := collect(p, `a "b" c`)
	assert.Equal(t, []string{"a", "b", "c"}, identTexts(toks))
}

func TestLexer_NewlineVariantsAdvanceOneLine(t *testing.T) {
	p := defaultProfile(t)

	for _, tc := range []struct {
		name string
		src  string
	}{
		{"lf", "a\nb\nc"},
		{"crlf", "a\r\nb\r\nc"},
		{"cr", "a\rb\rc"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			toks := collect(p, tc.src)
			idents := identTexts(toks)
			require.Equal(t, []string{"a", "b", "c"}, idents)

			var lines []int
			for _, tok := range toks {
				if tok.Kind == Identifier {
					lines = append(lines, tok.Line)
					assert.Equal(t, 1, tok.ColStart)
				}
			}
			assert.Equal(t, []int{1, 2, 3}, lines)
		})
	}
}

func TestLexer_CRLFInsideLineCommentEndsIt(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "// c1\r\nfoo")
	require.Equal(t, []string{"foo"}, identTexts(toks))
	assert.Equal(t, 2, toks[len(toks)-1].Line)
}

func TestLexer_MultiByteIdentifierColumnsAndBytes(t *testing.T) {
	p := newProfile(t, `[\p{L}_][\p{L}0-9_]*`, true, false)
	toks := collect(p, "αβ x")

	idents := make([]Token, 0, 2)
	for _, tok := range toks {
		if tok.Kind == Identifier {
			idents = append(idents, tok)
		}
	}
	require.Len(t, idents, 2)

	// Columns count scalars; byte offsets count UTF-8 bytes.
	assert.Equal(t, Token{Kind: Identifier, Text: "αβ", Line: 1, ColStart: 1, ColEnd: 3, ByteStart: 0, ByteEnd: 4}, idents[0])
	assert.Equal(t, Token{Kind: Identifier, Text: "x", Line: 1, ColStart: 4, ColEnd: 5, ByteStart: 5, ByteEnd: 6}, idents[1])
}

func TestLexer_DotAndScopePunct(t *testing.T) {
	p := defaultProfile(t)

	toks := collect(p, "a.b")
	require.Len(t, toks, 3)
	assert.Equal(t, Punct, toks[1].Kind)
	assert.Equal(t, ".", toks[1].Text)

	toks = collect(p, "std::cout")
	require.Len(t, toks, 3)
	assert.Equal(t, Punct, toks[1].Kind)
	assert.Equal(t, "::", toks[1].Text)
	assert.Equal(t, 4, toks[1].ColStart)
	assert.Equal(t, 6, toks[1].ColEnd)
}

func TestLexer_AnchoredMatchingDoesNotSkipAhead(t *testing.T) {
	// A digits-only pattern must not match "123" while the cursor still
	// sits on "abc" — that would corrupt the span.
	p := newProfile(t, "[0-9]+", true, false)
	toks := collect(p, "abc 123")

	var idents []Token
	for _, tok := range toks {
		if tok.Kind == Identifier {
			idents = append(idents, tok)
		}
	}
	require.Len(t, idents, 1)
	assert.Equal(t, "123", idents[0].Text)
	assert.Equal(t, 5, idents[0].ColStart)
	assert.Equal(t, 4, idents[0].ByteStart)
}

func TestLexer_OtherTokensAreSingleCharacters(t *testing.T) {
	p := defaultProfile(t)
	toks := collect(p, "a+b")
	require.Len(t, toks, 3)
	assert.Equal(t, Other, toks[1].Kind)
	assert.Equal(t, "+", toks[1].Text)
}

func TestLexer_EOFIsSticky(t *testing.T) {
	p := defaultProfile(t)
	lx := New(p, []byte("a"))
	for lx.Next().Kind != EOF {
	}
	assert.Equal(t, EOF, lx.Next().Kind)
	assert.Equal(t, EOF, lx.Next().Kind)
}

func TestLexer_DeterministicStream(t *testing.T) {
	p := defaultProfile(t)
	src := "foo /* x */ bar \"s\" baz.qux\n"
	a := collect(p, src)
	b := collect(p, src)
	assert.Equal(t, a, b)
}

func BenchmarkLexer(b *testing.B) {
	src := []byte("package demo;\nclass Hello { public static void main(String[] args) { String x = \"y\"; } }\n")
	p, err := profile.Parse([]byte(`{
		"profile_id": "bench",
		"name": "Bench",
		"identifier_rule": {"mode": "regex", "pattern": "[A-Za-z_][A-Za-z0-9_]*"},
		"stop_words": {"mode": "none"},
		"comment_syntax": {"line_comment_starts": ["//"], "block_comment_starts": ["/*"], "block_comment_ends": ["*/"]},
		"literal_syntax": {"exclude_literals": true, "string_delims": ["\""], "char_delims": ["'"], "escape_char": "\\", "allow_multiline_strings": false}
	}`))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lx := New(p, src)
		for lx.Next().Kind != EOF {
		}
	}
}
