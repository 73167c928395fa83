package ports

import "orgstage/internal/domain"

// NodeLocation is where an identifier lives in the canonical set.
type NodeLocation struct {
	ID      string
	File    string // link name relative to the canonical root
	Heading string
}

// IdentifierIndex resolves stable node identifiers across the whole canonical
// store. Identifiers are unique store-wide; a duplicate is a rebuild error.
type IdentifierIndex interface {
	Open() error
	Close() error

	// Rebuild replaces the whole index from the given documents. The file
	// recorded for each identifier is the document's link name.
	Rebuild(docs map[string]*domain.Document) error

	// Record upserts a single identifier.
	Record(loc NodeLocation) error

	// Lookup returns the identifier's location, or an error wrapping
	// domain.ErrUnresolvedID when absent.
	Lookup(id string) (*NodeLocation, error)
}
