// Package sqlite implements the store-wide identifier index.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// Index implements ports.IdentifierIndex using SQLite.
type Index struct {
	db     *sql.DB
	dbPath string
}

var _ ports.IdentifierIndex = (*Index)(nil)

// NewIndex creates an identifier index stored under the canonical root.
func NewIndex(canonicalRoot string) *Index {
	return &Index{dbPath: filepath.Join(canonicalRoot, ".orgstage", "index.db")}
}

// Open initializes the database, creating the schema when needed.
func (idx *Index) Open() error {
	if err := os.MkdirAll(filepath.Dir(idx.dbPath), 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", idx.dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open identifier index: %w", err)
	}
	idx.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS ids (
			id      TEXT PRIMARY KEY,
			file    TEXT NOT NULL,
			heading TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("initialize identifier index: %w", err)
	}
	return nil
}

// Close releases the database.
func (idx *Index) Close() error {
	if idx.db == nil {
		return nil
	}
	err := idx.db.Close()
	idx.db = nil
	return err
}

// Rebuild replaces the whole index from the given documents, keyed by link
// name. A duplicate identifier across the store violates the uniqueness
// invariant and fails the rebuild.
func (idx *Index) Rebuild(docs map[string]*domain.Document) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ids`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO ids (id, file, heading) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seen := make(map[string]string)
	for linkName, doc := range docs {
		var insertErr error
		doc.Walk(func(n *domain.Node) {
			if insertErr != nil {
				return
			}
			id := n.ID()
			if id == "" {
				return
			}
			if prev, dup := seen[id]; dup {
				insertErr = fmt.Errorf("duplicate identifier %q in %s and %s", id, prev, linkName)
				return
			}
			seen[id] = linkName
			_, insertErr = stmt.Exec(id, linkName, n.Heading)
		})
		if insertErr != nil {
			return insertErr
		}
	}
	return tx.Commit()
}

// Record upserts one identifier location.
func (idx *Index) Record(loc ports.NodeLocation) error {
	_, err := idx.db.Exec(
		`INSERT INTO ids (id, file, heading) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET file = excluded.file, heading = excluded.heading`,
		loc.ID, loc.File, loc.Heading)
	return err
}

// Lookup resolves an identifier to its location.
func (idx *Index) Lookup(id string) (*ports.NodeLocation, error) {
	loc := ports.NodeLocation{ID: id}
	err := idx.db.QueryRow(`SELECT file, heading FROM ids WHERE id = ?`, id).
		Scan(&loc.File, &loc.Heading)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnresolvedID, id)
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
