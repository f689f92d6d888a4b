// Package registry routes file paths to language profiles in
// mixed-language repositories. A registry is an ordered list of glob rules
// over root-relative, slash-normalised paths; the first matching rule wins.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tailscale/hujson"
)

// Match is the matcher half of a rule. Globs support *, ?, and ** with
// doublestar semantics; patterns are anchored at both ends of the path.
type Match struct {
	Glob string `json:"glob"`
}

// Rule maps a glob to a profile alias. Rules are order-sensitive.
type Rule struct {
	Match   Match  `json:"match"`
	Profile string `json:"profile"`
}

// Registry is the parsed registry document. Profile paths are resolved
// relative to the registry file at load time.
type Registry struct {
	RegistryID string            `json:"registry_id,omitempty"`
	Profiles   map[string]string `json:"profiles"`
	Rules      []Rule            `json:"rules"`
}

// Load reads, parses, and validates a registry file (JSON with comments
// and trailing commas accepted). Unknown rule aliases and malformed globs
// are configuration errors.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("registry %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	for alias, pp := range r.Profiles {
		if !filepath.IsAbs(pp) {
			r.Profiles[alias] = filepath.Join(dir, filepath.FromSlash(pp))
		}
	}
	return r, nil
}

// Parse decodes and validates registry JSON.
func Parse(data []byte) (*Registry, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	var r Registry
	if err := json.Unmarshal(std, &r); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(r.Profiles) == 0 {
		return nil, fmt.Errorf("no profiles declared")
	}
	for i, rule := range r.Rules {
		if rule.Match.Glob == "" {
			return nil, fmt.Errorf("rule %d: empty glob", i)
		}
		if !doublestar.ValidatePattern(rule.Match.Glob) {
			return nil, fmt.Errorf("rule %d: invalid glob %q", i, rule.Match.Glob)
		}
		if _, ok := r.Profiles[rule.Profile]; !ok {
			return nil, fmt.Errorf("rule %d: unknown profile alias %q", i, rule.Profile)
		}
	}
	return &r, nil
}

// Resolve scans the rules top to bottom and returns the alias of the first
// glob matching fileID. ok is false when no rule matches; the caller
// reports that as a file-level diagnostic and skips the file.
func (r *Registry) Resolve(fileID string) (alias string, ok bool) {
	for _, rule := range r.Rules {
		matched, err := doublestar.Match(rule.Match.Glob, fileID)
		if err == nil && matched {
			return rule.Profile, true
		}
	}
	return "", false
}

// ProfilePath returns the resolved path of an alias's profile file.
func (r *Registry) ProfilePath(alias string) (string, bool) {
	p, ok := r.Profiles[alias]
	return p, ok
}

// Aliases returns the declared aliases in sorted order.
func (r *Registry) Aliases() []string {
	out := make([]string, 0, len(r.Profiles))
	for a := range r.Profiles {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
