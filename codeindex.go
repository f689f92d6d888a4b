package codeindex

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"github.com/jward/codeindex/internal/model"
	"github.com/jward/codeindex/internal/profile"
	"github.com/jward/codeindex/internal/registry"
)

// LoadProfile reads and validates a language profile file. Profile JSON
// may carry // and /* */ comments and trailing commas.
func LoadProfile(path string) (*Profile, error) {
	return profile.Load(path)
}

// ParseProfile decodes and validates profile JSON from memory.
func ParseProfile(data []byte) (*Profile, error) {
	return profile.Parse(data)
}

// LoadRegistry reads and validates a profile registry file.
func LoadRegistry(path string) (*Registry, error) {
	return registry.Load(path)
}

// WriteCanonical serialises v as canonical JSON to w: two-space indent,
// fixed field order, non-ASCII verbatim, trailing newline.
func WriteCanonical(w io.Writer, v any) error {
	return model.WriteCanonical(w, v)
}

// MarshalCanonical is WriteCanonical into a byte slice.
func MarshalCanonical(v any) ([]byte, error) {
	return model.MarshalCanonical(v)
}

// WriteArtifact writes v as canonical JSON to path and returns the hex
// SHA-256 of the written bytes.
func WriteArtifact(path string, v any) (string, error) {
	data, err := model.MarshalCanonical(v)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", path, err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}
