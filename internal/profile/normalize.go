package profile

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key folds an identifier into its occurrence-map key: the profile's
// normalization mode first, then case folding when the profile is
// case-insensitive. Stop-word membership is tested on the same key, so a
// case-insensitive profile treats "Class" and "class" alike.
func (p *Profile) Key(text string) string {
	switch p.Normalization.Mode {
	case NormNFKC:
		text = norm.NFKC.String(text)
	case NormLowercaseASCII:
		text = lowerASCII(text)
	}
	if p.CaseSensitivity == CaseInsensitive {
		text = strings.ToLower(text)
	}
	return text
}

// lowerASCII lowers A-Z only, leaving all other scalars untouched.
func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
