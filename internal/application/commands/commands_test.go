package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"orgstage/internal/adapters/orgfile"
	"orgstage/internal/adapters/sqlite"
	"orgstage/internal/adapters/staging"
	"orgstage/internal/config"
	"orgstage/internal/domain"
)

var testStamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	t       *testing.T
	cfg     *config.Config
	store   *orgfile.Store
	index   *sqlite.Index
	staging *staging.Area
	apply   *ApplyCommand
}

// newTestEnv builds a canonical directory from the given files plus a fresh
// staging root, opens an identifier index over the documents and wires up an
// apply engine with a fixed clock.
func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.Dir = dir
	cfg.StagingDir = filepath.Join(t.TempDir(), "stage")

	store := orgfile.NewStore(dir, nil, cfg.InboxFile, cfg.AllKeywords())
	index := sqlite.NewIndex(dir)
	if err := index.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { index.Close() })

	paths, err := store.Files()
	if err != nil {
		t.Fatal(err)
	}
	docs := make(map[string]*domain.Document, len(paths))
	for _, p := range paths {
		doc, err := store.Load(p)
		if err != nil {
			t.Fatal(err)
		}
		docs[store.LinkName(p)] = doc
	}
	if err := index.Rebuild(docs); err != nil {
		t.Fatal(err)
	}

	apply := NewApplyCommand(store, index, cfg)
	apply.now = func() time.Time { return testStamp }

	return &testEnv{
		t:       t,
		cfg:     cfg,
		store:   store,
		index:   index,
		staging: staging.NewArea(cfg.StagingDir, config.ManifestFile, staging.SHA256),
		apply:   apply,
	}
}

func (e *testEnv) writeInbox(content string) {
	e.t.Helper()
	if err := os.WriteFile(e.cfg.InboxPath(), []byte(content), 0o644); err != nil {
		e.t.Fatal(err)
	}
}

func (e *testEnv) readInbox() string {
	e.t.Helper()
	data, err := os.ReadFile(e.cfg.InboxPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		e.t.Fatal(err)
	}
	return string(data)
}

func (e *testEnv) readDoc(name string) string {
	e.t.Helper()
	data, err := os.ReadFile(filepath.Join(e.cfg.Dir, name))
	if err != nil {
		e.t.Fatal(err)
	}
	return string(data)
}
