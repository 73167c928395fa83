package staging

import (
	"os"
	"path/filepath"
	"testing"

	"orgstage/internal/domain"
)

func newTestArea(t *testing.T) *Area {
	t.Helper()
	return NewArea(t.TempDir(), "checksums.dat", SHA256)
}

func TestMirrorCopiesBytes(t *testing.T) {
	src := filepath.Join(t.TempDir(), "work.org")
	content := []byte("* Projects\nsome text\n")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	area := newTestArea(t)
	if err := area.Mirror(src, "sub/work.org"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(filepath.Join(area.Root(), "sub", "work.org"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("mirrored content = %q, want %q", got, content)
	}
}

func TestEnsureFileAndTruncate(t *testing.T) {
	area := newTestArea(t)
	if err := area.EnsureFile("capture.org"); err != nil {
		t.Fatal(err)
	}
	if err := area.WriteFile("capture.org", []byte("remote content")); err != nil {
		t.Fatal(err)
	}
	// ensure again must not clobber existing content
	if err := area.EnsureFile("capture.org"); err != nil {
		t.Fatal(err)
	}
	data, _ := area.ReadFile("capture.org")
	if string(data) != "remote content" {
		t.Errorf("EnsureFile clobbered content: %q", data)
	}

	if err := area.Truncate("capture.org"); err != nil {
		t.Fatal(err)
	}
	data, _ = area.ReadFile("capture.org")
	if len(data) != 0 {
		t.Errorf("file not emptied: %q", data)
	}
}

func TestDigestAlgorithms(t *testing.T) {
	area := NewArea(t.TempDir(), "checksums.dat", MD5)
	if err := area.WriteFile("a.org", []byte("hello\n")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		alg    Algorithm
		sumLen int
	}{
		{MD5, 32},
		{SHA1, 40},
		{SHA256, 64},
	}
	for _, tt := range tests {
		area.alg = tt.alg
		sum, err := area.Digest("a.org")
		if err != nil {
			t.Fatal(err)
		}
		if len(sum) != tt.sumLen {
			t.Errorf("%s digest length = %d, want %d", tt.alg, len(sum), tt.sumLen)
		}
		if sum != tt.alg.Sum([]byte("hello\n")) {
			t.Errorf("%s file and in-memory digests differ", tt.alg)
		}
	}

	if _, err := ParseAlgorithm("crc32"); err == nil {
		t.Error("unsupported algorithm accepted")
	}
}

func TestWriteAndPatchManifest(t *testing.T) {
	area := newTestArea(t)
	m := domain.Manifest{
		{Digest: "aaa", Name: "index.org"},
		{Digest: "bbb", Name: "capture.org"},
		{Digest: "ccc", Name: "work.org"},
	}
	if err := area.WriteManifest(m); err != nil {
		t.Fatal(err)
	}

	if err := area.PatchManifest("capture.org", "ddd"); err != nil {
		t.Fatal(err)
	}
	got, err := area.ReadManifest()
	if err != nil {
		t.Fatal(err)
	}
	want := "aaa  index.org\nddd  capture.org\nccc  work.org\n"
	if string(got.Render()) != want {
		t.Errorf("patched manifest = %q, want %q", got.Render(), want)
	}

	if err := area.PatchManifest("missing.org", "x"); err == nil {
		t.Error("patch of unknown record succeeded")
	}
	// failed patch must leave the file untouched
	after, _ := area.ReadManifest()
	if string(after.Render()) != want {
		t.Error("failed patch modified the manifest")
	}
}

func TestPatchManifestSuffixMatch(t *testing.T) {
	area := newTestArea(t)
	m := domain.Manifest{
		{Digest: "aaa", Name: "sub/work.org"},
		{Digest: "bbb", Name: "work.org"},
	}
	if err := area.WriteManifest(m); err != nil {
		t.Fatal(err)
	}
	if err := area.PatchManifest("work.org", "fff"); err != nil {
		t.Fatal(err)
	}
	got, _ := area.ReadManifest()
	if d, _ := got.Lookup("sub/work.org"); d != "aaa" {
		t.Errorf("wrong record patched: sub/work.org digest = %q", d)
	}
	if d, _ := got.Lookup("work.org"); d != "fff" {
		t.Errorf("work.org digest = %q", d)
	}
}
