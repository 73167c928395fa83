package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"orgstage/internal/adapters/agenda"
	"orgstage/internal/application"
	"orgstage/internal/config"
)

func newPush(env *testEnv) *PushCommand {
	eng := agenda.NewEngine(env.store, env.cfg.Agendas, env.cfg.IsDone)
	return NewPushCommand(env.store, env.index, env.staging, eng, env.cfg)
}

func (e *testEnv) readStaged(name string) string {
	e.t.Helper()
	data, err := e.staging.ReadFile(name)
	if err != nil {
		e.t.Fatal(err)
	}
	return string(data)
}

func TestPushStagesFullSet(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"work.org": "* TODO Fix pump :urgent:\n",
		"home.org": "* Water plants :garden:\n",
	})
	env.cfg.TagGroups = []string{"urgent"}

	res, err := newPush(env).Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Documents != 2 {
		t.Errorf("Documents = %d, want 2", res.Documents)
	}

	wantOrder := []string{
		config.IndexFile, config.AgendasFile, "home.org", "work.org", config.DefaultCaptureFile,
	}
	if len(res.Manifest) != len(wantOrder) {
		t.Fatalf("manifest has %d entries, want %d:\n%s", len(res.Manifest), len(wantOrder), res.Manifest.Render())
	}
	for i, name := range wantOrder {
		if res.Manifest[i].Name != name {
			t.Errorf("manifest[%d] = %s, want %s", i, res.Manifest[i].Name, name)
		}
	}

	for _, name := range wantOrder {
		digest, err := env.staging.Digest(name)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := res.Manifest.Lookup(name)
		if !ok || got != digest {
			t.Errorf("manifest digest for %s does not match staged content", name)
		}
	}

	if !strings.Contains(env.readStaged("work.org"), "* TODO Fix pump") {
		t.Error("mirrored document lost its content")
	}
}

func TestPushIndexDocument(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"work.org": "* TODO Fix pump :Urgent:plumbing:\n",
		"home.org": "* Water plants :garden:\n",
	})
	env.cfg.TagGroups = []string{"garden"}

	if _, err := newPush(env).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	index := env.readStaged(config.IndexFile)
	lines := strings.Split(strings.TrimRight(index, "\n"), "\n")
	want := []string{
		"#+READONLY",
		"#+TODO: TODO | DONE",
		"#+TAGS: garden plumbing Urgent",
		"#+DRAWERS: PROPERTIES LOGBOOK",
		"#+ALLPRIORITIES: A B C",
		"* [[file:home.org][home.org]]",
		"* [[file:work.org][work.org]]",
	}
	if len(lines) != len(want) {
		t.Fatalf("index document:\n%s", index)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("index line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestPushAgendasDocument(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"work.org": "* TODO Fix pump\nSCHEDULED: <2024-05-03 Fri>\nReplace the gasket.\n",
	})
	env.cfg.Agendas = []config.AgendaDef{
		{Key: "t", Description: "open items", Kind: "todo"},
	}

	if _, err := newPush(env).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	agendas := env.readStaged(config.AgendasFile)
	if !strings.HasPrefix(agendas, "#+READONLY\n") {
		t.Errorf("agendas document not read-only:\n%s", agendas)
	}
	if !strings.Contains(agendas, "* t: open items") {
		t.Errorf("section heading missing:\n%s", agendas)
	}
	if !strings.Contains(agendas, "** TODO Fix pump (SCHEDULED: <2024-05-03 Fri>)") {
		t.Errorf("row with planning prefix missing:\n%s", agendas)
	}
	if !strings.Contains(agendas, "Replace the gasket.") {
		t.Errorf("row snippet missing:\n%s", agendas)
	}
}

func TestPushIsIdempotent(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"work.org": "* TODO Fix pump\n* Call plumber\n",
	})

	push := newPush(env)
	first, err := push.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := push.Execute(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if string(first.Manifest.Render()) != string(second.Manifest.Render()) {
		t.Errorf("re-push changed the manifest:\n--- first\n%s--- second\n%s",
			first.Manifest.Render(), second.Manifest.Render())
	}
}

func TestPushPersistsForcedIdentifiers(t *testing.T) {
	env := newTestEnv(t, map[string]string{
		"work.org": "* Fix pump\n",
	})

	if _, err := newPush(env).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}

	canonical := env.readDoc("work.org")
	if !strings.Contains(canonical, ":ID: ") {
		t.Errorf("canonical document missing generated identifier:\n%s", canonical)
	}
	if env.readStaged("work.org") != canonical {
		t.Error("staged mirror differs from canonical document")
	}
}

func TestPushSetupFailuresAbort(t *testing.T) {
	env := newTestEnv(t, map[string]string{"work.org": "* Fix pump\n"})
	env.cfg.StagingDir = ""

	var setupErr *application.SetupError
	if _, err := newPush(env).Execute(context.Background()); !errors.As(err, &setupErr) {
		t.Fatalf("err = %v, want SetupError", err)
	}

	env.cfg.Dir = filepath.Join(t.TempDir(), "missing")
	if _, err := newPush(env).Execute(context.Background()); !errors.As(err, &setupErr) {
		t.Fatalf("err = %v, want SetupError", err)
	}
	if _, err := os.Stat(env.staging.Root()); !os.IsNotExist(err) {
		t.Error("setup failure still created the staging directory")
	}
}

func TestPushRunsHooks(t *testing.T) {
	env := newTestEnv(t, map[string]string{"work.org": "* Fix pump\n"})
	marker := filepath.Join(env.cfg.Dir, "hook.ran")
	env.cfg.Hooks.PrePush = []string{"touch " + marker}

	if _, err := newPush(env).Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("pre-push hook did not run: %v", err)
	}
}
