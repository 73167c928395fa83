package ports

import "orgstage/internal/domain"

// DocumentStore defines the interface to the canonical outline-document set.
type DocumentStore interface {
	// Root returns the canonical root directory.
	Root() string

	// Files enumerates the canonical document set, deduplicated by resolved
	// real path (first occurrence wins).
	Files() ([]string, error)

	// LinkName computes a document's exported link name: its path relative
	// to the canonical root, or its base name if outside that root.
	LinkName(path string) string

	// Load parses a document. Paths may be absolute or relative to the root.
	Load(path string) (*domain.Document, error)

	// Parse parses outline content that is not file-backed (inbox regions).
	Parse(name, content string) *domain.Document

	// Render serializes a document back to outline markup.
	Render(doc *domain.Document) []byte

	// Save writes a document back to its file.
	Save(doc *domain.Document) error

	// EnsureIDs assigns a stable identifier to every node lacking one and
	// returns how many were added. The caller saves the document if any were.
	EnsureIDs(doc *domain.Document) int
}
