package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProfile = `{
	// Comments and trailing commas are fine in profile files.
	"profile_id": "java",
	"name": "Java",
	"version": "1.0",
	"case_sensitivity": "sensitive",
	"normalization": {"mode": "none", "preserve_original_spelling": true},
	"identifier_rule": {"mode": "regex", "pattern": "[A-Za-z_][A-Za-z0-9_]*"},
	"stop_words": {"mode": "inline", "words": ["class", "int"],},
	"comment_syntax": {
		"line_comment_starts": ["//"],
		"block_comment_starts": ["/*"],
		"block_comment_ends": ["*/"],
	},
	"literal_syntax": {
		"exclude_literals": true,
		"string_delims": ["\""],
		"char_delims": ["'"],
		"escape_char": "\\",
		"allow_multiline_strings": false,
	},
}`

func TestParse_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	p, err := Parse([]byte(validProfile))
	require.NoError(t, err)

	assert.Equal(t, "java", p.ProfileID)
	assert.Equal(t, "Java", p.Name)
	assert.True(t, p.IsStopWord("class"))
	assert.False(t, p.IsStopWord("Foo"))
	assert.NotNil(t, p.Pattern())
	assert.NotNil(t, p.SearchPattern())
}

func TestLoad_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "java.json")
	require.NoError(t, os.WriteFile(path, []byte(validProfile), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "java", p.ProfileID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestParse_ConfigurationErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
	}{
		{"missing profile_id", `{"name": "X", "identifier_rule": {"mode": "regex", "pattern": "a+"}}`},
		{"missing name", `{"profile_id": "x", "identifier_rule": {"mode": "regex", "pattern": "a+"}}`},
		{"missing pattern", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "regex"}}`},
		{"unknown identifier mode", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "words"}}`},
		{"unicode identifier mode unsupported", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "unicode_identifier"}}`},
		{"uncompilable pattern", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "regex", "pattern": "["}}`},
		{"unknown case sensitivity", `{"profile_id": "x", "name": "X", "case_sensitivity": "maybe", "identifier_rule": {"mode": "regex", "pattern": "a+"}}`},
		{"unknown normalization", `{"profile_id": "x", "name": "X", "normalization": {"mode": "nfc"}, "identifier_rule": {"mode": "regex", "pattern": "a+"}}`},
		{"unknown stop mode", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "regex", "pattern": "a+"}, "stop_words": {"mode": "remote"}}`},
		{"misaligned block markers", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "regex", "pattern": "a+"}, "comment_syntax": {"block_comment_starts": ["/*"], "block_comment_ends": []}}`},
		{"multi-char delimiter", `{"profile_id": "x", "name": "X", "identifier_rule": {"mode": "regex", "pattern": "a+"}, "literal_syntax": {"string_delims": ["''"]}}`},
		{"not json", `{]`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			assert.Error(t, err)
		})
	}
}

func TestKey_NormalizationModes(t *testing.T) {
	base := `{
		"profile_id": "x", "name": "X",
		"identifier_rule": {"mode": "regex", "pattern": "\\S+"},
		"case_sensitivity": %q,
		"normalization": {"mode": %q}
	}`

	for _, tc := range []struct {
		name, caseMode, normMode, in, want string
	}{
		{"none keeps text", "sensitive", "none", "FooBar", "FooBar"},
		{"lowercase ascii", "sensitive", "lowercase_ascii", "FooBär", "foobär"},
		{"nfkc folds compatibility forms", "sensitive", "nfkc", "ﬁle", "file"},
		{"insensitive lowers", "insensitive", "none", "FooBar", "foobar"},
		{"insensitive lowers non-ascii", "insensitive", "none", "Straße", "straße"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := []byte(fmt.Sprintf(base, tc.caseMode, tc.normMode))
			p, err := Parse(src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Key(tc.in))
		})
	}
}

func TestIsStopWord_CaseInsensitive(t *testing.T) {
	p, err := Parse([]byte(`{
		"profile_id": "x", "name": "X",
		"case_sensitivity": "insensitive",
		"identifier_rule": {"mode": "regex", "pattern": "[A-Za-z]+"},
		"stop_words": {"mode": "inline", "words": ["Class"]}
	}`))
	require.NoError(t, err)

	assert.True(t, p.IsStopWord("class"))
	assert.True(t, p.IsStopWord("CLASS"))
}

func TestResolvePolicy_Defaults(t *testing.T) {
	p, err := Parse([]byte(validProfile))
	require.NoError(t, err)

	pol, err := ResolvePolicy(p, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, Policy{Mode: ModeAll, Qualified: QualifiedNone}, pol)
}

func TestResolvePolicy_ProfileThenOverrides(t *testing.T) {
	p, err := Parse([]byte(`{
		"profile_id": "x", "name": "X",
		"identifier_rule": {"mode": "regex", "pattern": "[a-z]+"},
		"symbol_policy": {"mode": "declared", "exclude_single_letter_identifiers": true, "include_qualified_identifiers": "dot"}
	}`))
	require.NoError(t, err)

	pol, err := ResolvePolicy(p, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ModeDeclared, pol.Mode)
	assert.True(t, pol.ExcludeSingleLetter)
	assert.Equal(t, QualifiedDot, pol.Qualified)

	all, off, scope := ModeAll, false, QualifiedScope
	pol, err = ResolvePolicy(p, Overrides{Mode: &all, ExcludeSingleLetter: &off, Qualified: &scope})
	require.NoError(t, err)
	assert.Equal(t, ModeAll, pol.Mode)
	assert.False(t, pol.ExcludeSingleLetter)
	assert.Equal(t, QualifiedScope, pol.Qualified)
	assert.True(t, pol.AdmitsScope())
	assert.False(t, pol.AdmitsDot())
}

func TestResolvePolicy_RejectsUnknownModes(t *testing.T) {
	p, err := Parse([]byte(validProfile))
	require.NoError(t, err)

	bad := "sometimes"
	_, err = ResolvePolicy(p, Overrides{Mode: &bad})
	assert.Error(t, err)
	_, err = ResolvePolicy(p, Overrides{Qualified: &bad})
	assert.Error(t, err)
}
