package sqlite

import (
	"errors"
	"testing"

	"orgstage/internal/adapters/orgfile"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex(t.TempDir())
	if err := idx.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func parseDocs(t *testing.T, docs map[string]string) map[string]*domain.Document {
	t.Helper()
	store := orgfile.NewStore("/tmp", nil, "inbox.org", []string{"TODO", "DONE"})
	out := make(map[string]*domain.Document, len(docs))
	for name, content := range docs {
		out[name] = store.Parse(name, content)
	}
	return out
}

func TestRebuildAndLookup(t *testing.T) {
	idx := openTestIndex(t)

	docs := parseDocs(t, map[string]string{
		"work.org": "* Projects\n** Fix pump\n:PROPERTIES:\n:ID: id-pump\n:END:\n",
		"home.org": "* Garden\n:PROPERTIES:\n:ID: id-garden\n:END:\n",
	})
	if err := idx.Rebuild(docs); err != nil {
		t.Fatal(err)
	}

	loc, err := idx.Lookup("id-pump")
	if err != nil {
		t.Fatal(err)
	}
	if loc.File != "work.org" || loc.Heading != "Fix pump" {
		t.Errorf("Lookup = %+v", loc)
	}

	if _, err := idx.Lookup("id-missing"); !errors.Is(err, domain.ErrUnresolvedID) {
		t.Errorf("missing id error = %v, want ErrUnresolvedID", err)
	}
}

func TestRebuildRejectsDuplicateIDs(t *testing.T) {
	idx := openTestIndex(t)

	docs := parseDocs(t, map[string]string{
		"a.org": "* One\n:PROPERTIES:\n:ID: dup\n:END:\n",
		"b.org": "* Two\n:PROPERTIES:\n:ID: dup\n:END:\n",
	})
	if err := idx.Rebuild(docs); err == nil {
		t.Fatal("rebuild with duplicate identifiers succeeded")
	}
}

func TestRebuildReplacesOldEntries(t *testing.T) {
	idx := openTestIndex(t)

	first := parseDocs(t, map[string]string{
		"a.org": "* One\n:PROPERTIES:\n:ID: stale\n:END:\n",
	})
	if err := idx.Rebuild(first); err != nil {
		t.Fatal(err)
	}
	second := parseDocs(t, map[string]string{
		"a.org": "* One\n:PROPERTIES:\n:ID: fresh\n:END:\n",
	})
	if err := idx.Rebuild(second); err != nil {
		t.Fatal(err)
	}

	if _, err := idx.Lookup("stale"); !errors.Is(err, domain.ErrUnresolvedID) {
		t.Error("stale identifier survived rebuild")
	}
	if _, err := idx.Lookup("fresh"); err != nil {
		t.Errorf("fresh identifier not indexed: %v", err)
	}
}

func TestRecordUpsert(t *testing.T) {
	idx := openTestIndex(t)
	if err := idx.Record(ports.NodeLocation{ID: "x", File: "a.org", Heading: "One"}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Record(ports.NodeLocation{ID: "x", File: "b.org", Heading: "Two"}); err != nil {
		t.Fatal(err)
	}
	loc, err := idx.Lookup("x")
	if err != nil {
		t.Fatal(err)
	}
	if loc.File != "b.org" || loc.Heading != "Two" {
		t.Errorf("upsert not applied: %+v", loc)
	}
}
