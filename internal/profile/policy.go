package profile

import "fmt"

// Symbol policy modes.
const (
	ModeAll      = "all"
	ModeDeclared = "declared"
)

// Qualified-identifier admission modes.
const (
	QualifiedNone        = "none"
	QualifiedDot         = "dot"
	QualifiedScope       = "scope"
	QualifiedDotAndScope = "dot_and_scope"
)

// SymbolPolicy is the profile's optional symbol-selection policy block.
type SymbolPolicy struct {
	Mode                           string `json:"mode,omitempty"`
	ExcludeSingleLetterIdentifiers bool   `json:"exclude_single_letter_identifiers"`
	IncludeQualifiedIdentifiers    string `json:"include_qualified_identifiers,omitempty"`
	IncludeIncludeHeaders          bool   `json:"include_include_headers"`
}

// Policy is the fully resolved symbol-selection policy the engine runs
// with: built-in defaults, overlaid by the profile, overlaid by explicit
// options.
type Policy struct {
	Mode                string
	ExcludeSingleLetter bool
	Qualified           string
	IncludeHeaders      bool
}

// Overrides carries explicit per-run policy settings (typically from CLI
// flags). Nil fields defer to the profile.
type Overrides struct {
	Mode                *string
	ExcludeSingleLetter *bool
	Qualified           *string
	IncludeHeaders      *bool
}

// DefaultPolicy is the built-in policy when neither the profile nor the
// run options say otherwise.
func DefaultPolicy() Policy {
	return Policy{
		Mode:                ModeAll,
		ExcludeSingleLetter: false,
		Qualified:           QualifiedNone,
		IncludeHeaders:      false,
	}
}

// ResolvePolicy layers profile settings and explicit overrides on top of
// the built-in defaults. Explicit option beats profile beats default.
func ResolvePolicy(p *Profile, ov Overrides) (Policy, error) {
	pol := DefaultPolicy()

	if sp := p.SymbolPolicy; sp != nil {
		if sp.Mode != "" {
			pol.Mode = sp.Mode
		}
		pol.ExcludeSingleLetter = sp.ExcludeSingleLetterIdentifiers
		if sp.IncludeQualifiedIdentifiers != "" {
			pol.Qualified = sp.IncludeQualifiedIdentifiers
		}
		pol.IncludeHeaders = sp.IncludeIncludeHeaders
	}

	if ov.Mode != nil {
		pol.Mode = *ov.Mode
	}
	if ov.ExcludeSingleLetter != nil {
		pol.ExcludeSingleLetter = *ov.ExcludeSingleLetter
	}
	if ov.Qualified != nil {
		pol.Qualified = *ov.Qualified
	}
	if ov.IncludeHeaders != nil {
		pol.IncludeHeaders = *ov.IncludeHeaders
	}

	switch pol.Mode {
	case ModeAll, ModeDeclared:
	default:
		return Policy{}, fmt.Errorf("unknown symbol policy mode %q", pol.Mode)
	}
	switch pol.Qualified {
	case QualifiedNone, QualifiedDot, QualifiedScope, QualifiedDotAndScope:
	default:
		return Policy{}, fmt.Errorf("unknown qualified-identifier mode %q", pol.Qualified)
	}
	return pol, nil
}

// AdmitsDot reports whether the policy admits dot-qualified pairs.
func (p Policy) AdmitsDot() bool {
	return p.Qualified == QualifiedDot || p.Qualified == QualifiedDotAndScope
}

// AdmitsScope reports whether the policy admits ::-qualified pairs.
func (p Policy) AdmitsScope() bool {
	return p.Qualified == QualifiedScope || p.Qualified == QualifiedDotAndScope
}
