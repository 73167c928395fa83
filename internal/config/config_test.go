package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CaptureFile != DefaultCaptureFile {
		t.Errorf("CaptureFile = %q", cfg.CaptureFile)
	}
	if cfg.Digest != "sha256" {
		t.Errorf("Digest = %q", cfg.Digest)
	}
	if !cfg.ForceIDsEnabled() {
		t.Error("ForceIDs should default to true")
	}
	if cfg.LastDone() != "DONE" {
		t.Errorf("LastDone = %q", cfg.LastDone())
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "orgstage.yml")
	content := `
dir: /tmp/org
staging_dir: /tmp/stage
files: [work.org, home.org]
digest: md5
force_ids: false
remote_wins: [tags]
todo_keywords:
  - [TODO, WAITING, "|", DONE, CANCELLED]
agendas:
  - {key: w, description: Work TODOs, kind: todo}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != "/tmp/org" || cfg.StagingDir != "/tmp/stage" {
		t.Errorf("dirs = %q, %q", cfg.Dir, cfg.StagingDir)
	}
	if cfg.Digest != "md5" {
		t.Errorf("Digest = %q", cfg.Digest)
	}
	if cfg.ForceIDsEnabled() {
		t.Error("force_ids: false not honored")
	}
	if !cfg.RemoteWinsField("tags") || cfg.RemoteWinsField("todo") {
		t.Error("remote_wins list not honored")
	}
	if cfg.LastDone() != "CANCELLED" {
		t.Errorf("LastDone = %q", cfg.LastDone())
	}
	if !cfg.IsDone("DONE") || !cfg.IsDone("CANCELLED") || cfg.IsDone("WAITING") {
		t.Error("done-keyword classification wrong")
	}
	if len(cfg.Agendas) != 1 || cfg.Agendas[0].Key != "w" {
		t.Errorf("Agendas = %+v", cfg.Agendas)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ORGSTAGE_DIR", "/env/org")
	t.Setenv("ORGSTAGE_STAGING", "/env/stage")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != "/env/org" || cfg.StagingDir != "/env/stage" {
		t.Errorf("env overrides not applied: %q, %q", cfg.Dir, cfg.StagingDir)
	}
}

func TestRemoteWinsAll(t *testing.T) {
	cfg := Default()
	cfg.RemoteWins = []string{"all"}
	for _, f := range []string{"todo", "tags", "priority", "heading", "body"} {
		if !cfg.RemoteWinsField(f) {
			t.Errorf("RemoteWinsField(%q) = false with global override", f)
		}
	}
}
