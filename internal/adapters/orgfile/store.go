// Package orgfile implements the canonical document store over a directory
// of outline-markup files.
package orgfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"

	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// Store implements ports.DocumentStore over a canonical root directory.
type Store struct {
	root     string
	files    []string // configured names relative to root; empty = discover
	inbox    string   // inbox file name, excluded from discovery
	keywords map[string]struct{}
}

var _ ports.DocumentStore = (*Store)(nil)

// NewStore creates a document store. inbox names the canonical inbox file so
// discovery can skip it; keywords is the full TODO vocabulary used to split
// keywords from heading text while parsing.
func NewStore(root string, files []string, inbox string, keywords []string) *Store {
	kw := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		kw[k] = struct{}{}
	}
	return &Store{root: root, files: files, inbox: inbox, keywords: kw}
}

// Root returns the canonical root directory.
func (s *Store) Root() string { return s.root }

// Files enumerates the canonical set: the configured list, or every *.org
// file directly under the root except the inbox. Paths are deduplicated by
// resolved real path, first occurrence wins; archive companions are never
// part of the set.
func (s *Store) Files() ([]string, error) {
	if _, err := os.Stat(s.root); err != nil {
		return nil, fmt.Errorf("document directory: %w", err)
	}

	var candidates []string
	if len(s.files) > 0 {
		for _, f := range s.files {
			candidates = append(candidates, filepath.Join(s.root, f))
		}
	} else {
		matches, err := filepath.Glob(filepath.Join(s.root, "*.org"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			// the inbox is the pull target, not an exported document
			if s.inbox != "" && filepath.Base(m) == s.inbox {
				continue
			}
			candidates = append(candidates, m)
		}
	}

	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, path := range candidates {
		if strings.Contains(filepath.Base(path), "_archive") {
			continue
		}
		real, err := filepath.EvalSymlinks(path)
		if err != nil {
			real = filepath.Clean(path)
		}
		if seen[real] {
			continue
		}
		seen[real] = true
		out = append(out, path)
	}
	return out, nil
}

// LinkName computes the exported link name: the path relative to the root,
// or the base name for documents outside it.
func (s *Store) LinkName(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// Load reads and parses a document. A relative path is resolved against the
// canonical root.
func (s *Store) Load(path string) (*domain.Document, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.root, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	doc := s.Parse(path, string(data))
	return doc, nil
}

// Save writes a document back to its file.
func (s *Store) Save(doc *domain.Document) error {
	if err := os.WriteFile(doc.Path, s.Render(doc), 0o644); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

// EnsureIDs assigns a fresh ULID to every node lacking a stable identifier
// and returns the number assigned.
func (s *Store) EnsureIDs(doc *domain.Document) int {
	added := 0
	doc.Walk(func(n *domain.Node) {
		if n.ID() == "" {
			n.SetID(ulid.Make().String())
			added++
		}
	})
	return added
}
