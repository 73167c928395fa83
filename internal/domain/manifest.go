package domain

import (
	"fmt"
	"strings"
)

// ManifestEntry is one digest record of the staging manifest.
type ManifestEntry struct {
	Digest string
	Name   string
}

// Manifest is the ordered digest record of every staged file. The remote
// client compares it against its own copy to decide which files to re-fetch.
type Manifest []ManifestEntry

// Render serializes the manifest, one "<digest>  <name>" record per line.
func (m Manifest) Render() []byte {
	var b strings.Builder
	for _, e := range m {
		b.WriteString(e.Digest)
		b.WriteString("  ")
		b.WriteString(e.Name)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// Lookup returns the digest recorded for name.
func (m Manifest) Lookup(name string) (string, bool) {
	for _, e := range m {
		if e.Name == name {
			return e.Digest, true
		}
	}
	return "", false
}

// Patch replaces the digest of the one record naming file, leaving every
// other record untouched.
func (m Manifest) Patch(name, digest string) error {
	for i := range m {
		if m[i].Name == name {
			m[i].Digest = digest
			return nil
		}
	}
	return fmt.Errorf("manifest has no record for %q", name)
}

// ParseManifest reads manifest records back, preserving order. Blank lines
// are skipped; anything else malformed is an error.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		digest, name, ok := strings.Cut(line, "  ")
		if !ok || digest == "" || name == "" {
			return nil, fmt.Errorf("malformed manifest record on line %d: %q", i+1, line)
		}
		m = append(m, ManifestEntry{Digest: digest, Name: name})
	}
	return m, nil
}
