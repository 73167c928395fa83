package agenda

import (
	"os"
	"path/filepath"
	"testing"

	"orgstage/internal/adapters/orgfile"
	"orgstage/internal/config"
)

func testStore(t *testing.T) *orgfile.Store {
	t.Helper()
	dir := t.TempDir()
	work := `* Projects
** TODO [#A] Fix pump :urgent:home:
SCHEDULED: <2026-08-28 Fri>
water is leaking
** WAITING Order pipe :home:
** DONE Dig well
* TODO Call plumber
`
	home := `* Garden :home:someday:
plant tomatoes
`
	for name, content := range map[string]string{"work.org": work, "home.org": home} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return orgfile.NewStore(dir, nil, "inbox.org", []string{"TODO", "WAITING", "DONE"})
}

func isDone(kw string) bool { return kw == "DONE" }

func TestTodoSection(t *testing.T) {
	engine := NewEngine(testStore(t), []config.AgendaDef{
		{Key: "w", Description: "Open work", Kind: "todo"},
	}, isDone)

	sections, err := engine.Sections()
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	sec := sections[0]
	if sec.Key != "w" || sec.Description != "Open work" {
		t.Errorf("provenance = %q %q", sec.Key, sec.Description)
	}
	if len(sec.Rows) != 3 {
		t.Fatalf("rows = %d, want 3 (DONE excluded)", len(sec.Rows))
	}

	var pump *struct {
		prefix, snippet, file string
	}
	for _, row := range sec.Rows {
		if row.Title == "TODO Fix pump" {
			pump = &struct{ prefix, snippet, file string }{row.Prefix, row.Snippet, row.File}
		}
		if row.Node == nil {
			t.Errorf("row %q lost its node reference", row.Title)
		}
	}
	if pump == nil {
		t.Fatal("Fix pump row missing")
	}
	if pump.prefix != "SCHEDULED: <2026-08-28 Fri>" {
		t.Errorf("prefix = %q", pump.prefix)
	}
	if pump.snippet != "water is leaking" {
		t.Errorf("snippet = %q", pump.snippet)
	}
	if pump.file != "work.org" {
		t.Errorf("file = %q", pump.file)
	}
}

func TestTodoKeywordFilter(t *testing.T) {
	engine := NewEngine(testStore(t), []config.AgendaDef{
		{Key: "wait", Kind: "todo", Match: "WAITING"},
	}, isDone)
	sections, err := engine.Sections()
	if err != nil {
		t.Fatal(err)
	}
	if len(sections[0].Rows) != 1 || sections[0].Rows[0].Title != "WAITING Order pipe" {
		t.Errorf("rows = %+v", sections[0].Rows)
	}
}

func TestTagsSection(t *testing.T) {
	engine := NewEngine(testStore(t), []config.AgendaDef{
		{Key: "h", Kind: "tags", Match: "home-someday"},
	}, isDone)
	sections, err := engine.Sections()
	if err != nil {
		t.Fatal(err)
	}
	rows := sections[0].Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (someday excluded)", len(rows))
	}
	for _, row := range rows {
		if row.Title == "Garden" {
			t.Error("excluded tag matched")
		}
	}
}

func TestSearchSection(t *testing.T) {
	engine := NewEngine(testStore(t), []config.AgendaDef{
		{Key: "s", Kind: "search", Match: "tomatoes"},
	}, isDone)
	sections, err := engine.Sections()
	if err != nil {
		t.Fatal(err)
	}
	if len(sections[0].Rows) != 1 || sections[0].Rows[0].Title != "Garden" {
		t.Errorf("rows = %+v", sections[0].Rows)
	}
}

func TestBlockNumberingAndSkippedKinds(t *testing.T) {
	engine := NewEngine(testStore(t), []config.AgendaDef{
		{Key: "b", Description: "Composite", Kind: "block", Blocks: []config.AgendaDef{
			{Kind: "todo"},
			{Kind: "occur", Match: "x"}, // interactive: skipped
			{Kind: "tags", Match: "home"},
		}},
		{Key: "i", Kind: "occur", Match: "y"}, // skipped entirely
	}, isDone)

	sections, err := engine.Sections()
	if err != nil {
		t.Fatal(err)
	}
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].Key != "b#1" || sections[1].Key != "b#2" {
		t.Errorf("keys = %q, %q", sections[0].Key, sections[1].Key)
	}
	if sections[0].Description != "Composite" {
		t.Errorf("inherited description = %q", sections[0].Description)
	}
}
