package commands

import (
	"os"
	"path/filepath"

	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// docCache loads each canonical document at most once per pass, so stamps and
// field edits against the same file accumulate before a single save.
type docCache struct {
	store ports.DocumentStore
	docs  map[string]*domain.Document
	dirty map[string]bool
}

func newDocCache(store ports.DocumentStore) *docCache {
	return &docCache{
		store: store,
		docs:  make(map[string]*domain.Document),
		dirty: make(map[string]bool),
	}
}

func (c *docCache) key(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.store.Root(), path)
	}
	return filepath.Clean(path)
}

func (c *docCache) load(path string) (*domain.Document, error) {
	key := c.key(path)
	if doc, ok := c.docs[key]; ok {
		return doc, nil
	}
	doc, err := c.store.Load(key)
	if err != nil {
		return nil, err
	}
	c.docs[key] = doc
	return doc, nil
}

// loadOrCreate returns an empty in-memory document when the file does not
// exist yet (archive companions are created on demand).
func (c *docCache) loadOrCreate(path string) (*domain.Document, error) {
	key := c.key(path)
	if doc, ok := c.docs[key]; ok {
		return doc, nil
	}
	if _, err := os.Stat(key); os.IsNotExist(err) {
		doc := &domain.Document{Path: key}
		c.docs[key] = doc
		return doc, nil
	}
	return c.load(key)
}

func (c *docCache) markDirty(doc *domain.Document) {
	c.dirty[c.key(doc.Path)] = true
}

// saveDirty writes every mutated document back, once each.
func (c *docCache) saveDirty() error {
	for key := range c.dirty {
		if err := c.store.Save(c.docs[key]); err != nil {
			return err
		}
	}
	return nil
}
