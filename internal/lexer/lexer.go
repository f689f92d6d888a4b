// Package lexer implements the profile-driven, comment- and literal-aware
// tokenizer. It emits identifier tokens with exact (line, column, byte)
// spans and never fails at runtime: unterminated comments and literals
// consume to end of input, and arbitrary byte sequences are accepted.
package lexer

import (
	"bytes"
	"unicode/utf8"

	"github.com/jward/codeindex/internal/profile"
)

// Kind classifies a token.
type Kind int

const (
	// Identifier is a maximal match of the profile's identifier pattern,
	// found outside comments and (when literals are excluded) outside
	// string/char literals.
	Identifier Kind = iota
	// Punct is "." or "::" — the only punctuation the declaration
	// discovery pass observes.
	Punct
	// Other is any single skipped character in code context. Other tokens
	// are transparent to declaration discovery; they exist so the raw
	// stream records what separated two identifiers.
	Other
	// EOF terminates the stream.
	EOF
)

// Token is one lexeme with its full span. Lines and columns are 1-based;
// ColEnd is exclusive (the column after the last character). Byte offsets
// are 0-based offsets into the raw input.
type Token struct {
	Kind      Kind
	Text      string
	Line      int
	ColStart  int
	ColEnd    int
	ByteStart int
	ByteEnd   int
}

// Lexer is a lazy, non-restartable token stream over one file. Create one
// per (profile, text) pair with New and call Next until it returns an EOF
// token.
type Lexer struct {
	prof *profile.Profile
	src  []byte

	off  int // byte offset, 0-based
	line int // 1-based
	col  int // 1-based, counts Unicode scalars

	stringDelims []rune
	charDelims   []rune
	escape       rune // 0 when the profile has no escape char
}

// New builds a lexer over src. The profile must have been loaded (and
// therefore validated): lexing itself cannot fail.
func New(p *profile.Profile, src []byte) *Lexer {
	l := &Lexer{prof: p, src: src, line: 1, col: 1}
	for _, d := range p.LiteralSyntax.StringDelims {
		r, _ := utf8.DecodeRuneInString(d)
		l.stringDelims = append(l.stringDelims, r)
	}
	for _, d := range p.LiteralSyntax.CharDelims {
		r, _ := utf8.DecodeRuneInString(d)
		l.charDelims = append(l.charDelims, r)
	}
	if e := p.LiteralSyntax.EscapeChar; e != "" {
		l.escape, _ = utf8.DecodeRuneInString(e)
	}
	return l
}

// Next returns the next token. After the first EOF token every subsequent
// call returns EOF again.
func (l *Lexer) Next() Token {
	for l.off < len(l.src) {
		// Comment and literal openers take precedence over everything
		// else at the cursor.
		if m := l.matchMarker(l.prof.CommentSyntax.LineCommentStarts); m >= 0 {
			l.advanceBytes(len(l.prof.CommentSyntax.LineCommentStarts[m]))
			l.skipLineComment()
			continue
		}
		if m := l.matchMarker(l.prof.CommentSyntax.BlockCommentStarts); m >= 0 {
			l.advanceBytes(len(l.prof.CommentSyntax.BlockCommentStarts[m]))
			l.skipBlockComment(l.prof.CommentSyntax.BlockCommentEnds[m])
			continue
		}
		if l.prof.LiteralSyntax.ExcludeLiterals {
			r, _ := l.peek()
			if containsRune(l.stringDelims, r) {
				l.advanceRune()
				l.skipLiteral(r, l.prof.LiteralSyntax.AllowMultilineStrings)
				continue
			}
			if containsRune(l.charDelims, r) {
				l.advanceRune()
				l.skipLiteral(r, false)
				continue
			}
		}

		// Identifier, matched strictly at the cursor (the pattern is
		// \A-anchored at compile time).
		if loc := l.prof.Pattern().FindIndex(l.src[l.off:]); loc != nil && loc[1] > 0 {
			tok := Token{
				Kind:      Identifier,
				Text:      string(l.src[l.off : l.off+loc[1]]),
				Line:      l.line,
				ColStart:  l.col,
				ByteStart: l.off,
			}
			l.advanceBytes(loc[1])
			tok.ColEnd = l.col
			tok.ByteEnd = l.off
			return tok
		}

		// Scope punct is two characters; check it before the single-rune
		// fallthrough.
		if bytes.HasPrefix(l.src[l.off:], []byte("::")) {
			tok := Token{Kind: Punct, Text: "::", Line: l.line, ColStart: l.col, ByteStart: l.off}
			l.advanceBytes(2)
			tok.ColEnd = l.col
			tok.ByteEnd = l.off
			return tok
		}

		r, size := l.peek()
		tok := Token{Text: string(l.src[l.off : l.off+size]), Line: l.line, ColStart: l.col, ByteStart: l.off}
		if r == '.' {
			tok.Kind = Punct
		} else {
			tok.Kind = Other
		}
		l.advanceRune()
		tok.ColEnd = l.col
		tok.ByteEnd = l.off
		if tok.Line != l.line {
			// The consumed character was a newline; its span ends at the
			// column following its start on the original line.
			tok.ColEnd = tok.ColStart + 1
		}
		return tok
	}
	return Token{Kind: EOF, Line: l.line, ColStart: l.col, ColEnd: l.col, ByteStart: l.off, ByteEnd: l.off}
}

// peek decodes the rune at the cursor without consuming it. Invalid UTF-8
// decodes as one replacement character of size 1.
func (l *Lexer) peek() (rune, int) {
	return utf8.DecodeRune(l.src[l.off:])
}

// matchMarker returns the index of the first marker that prefixes the
// remaining input, or -1.
func (l *Lexer) matchMarker(markers []string) int {
	for i, m := range markers {
		if len(m) > 0 && bytes.HasPrefix(l.src[l.off:], []byte(m)) {
			return i
		}
	}
	return -1
}

// advanceRune consumes one logical character, maintaining the line, column,
// and byte counters. CR, LF, and CRLF each count as exactly one newline.
func (l *Lexer) advanceRune() {
	r, size := utf8.DecodeRune(l.src[l.off:])
	switch r {
	case '\r':
		l.off += size
		if l.off < len(l.src) && l.src[l.off] == '\n' {
			l.off++
		}
		l.line++
		l.col = 1
	case '\n':
		l.off += size
		l.line++
		l.col = 1
	default:
		l.off += size
		l.col++
	}
}

// advanceBytes consumes exactly n bytes rune by rune. Used for marker and
// identifier spans, which never contain newlines in practice but are
// advanced through the same counters for safety.
func (l *Lexer) advanceBytes(n int) {
	end := l.off + n
	for l.off < end {
		l.advanceRune()
	}
}

// skipLineComment consumes to (and including) the terminating newline, or
// to EOF.
func (l *Lexer) skipLineComment() {
	for l.off < len(l.src) {
		r, _ := l.peek()
		l.advanceRune()
		if r == '\r' || r == '\n' {
			return
		}
	}
}

// skipBlockComment consumes until the matching end marker is consumed.
// Unterminated comments run to EOF without error.
func (l *Lexer) skipBlockComment(end string) {
	for l.off < len(l.src) {
		if bytes.HasPrefix(l.src[l.off:], []byte(end)) {
			l.advanceBytes(len(end))
			return
		}
		l.advanceRune()
	}
}

// skipLiteral consumes a string or char literal body after its opening
// delimiter. The escape character consumes the following character; an
// unpaired trailing escape at EOF is accepted. When multiline is false a
// newline terminates the literal (tolerant recovery).
func (l *Lexer) skipLiteral(delim rune, multiline bool) {
	for l.off < len(l.src) {
		r, _ := l.peek()
		switch {
		case l.escape != 0 && r == l.escape:
			l.advanceRune()
			if l.off < len(l.src) {
				l.advanceRune()
			}
		case r == delim:
			l.advanceRune()
			return
		case r == '\r' || r == '\n':
			l.advanceRune()
			if !multiline {
				return
			}
		default:
			l.advanceRune()
		}
	}
}

func containsRune(rs []rune, r rune) bool {
	for _, x := range rs {
		if x == r {
			return true
		}
	}
	return false
}
