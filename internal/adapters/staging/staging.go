// Package staging implements the digest-tracked mirror directory shared with
// the remote client.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// Area implements ports.StagingArea over a staging root directory.
type Area struct {
	root     string
	alg      Algorithm
	manifest string
}

var _ ports.StagingArea = (*Area)(nil)

// NewArea creates a staging area writing its manifest as manifestName.
func NewArea(root, manifestName string, alg Algorithm) *Area {
	return &Area{root: root, alg: alg, manifest: manifestName}
}

// Root returns the staging root directory.
func (a *Area) Root() string { return a.root }

func (a *Area) path(relName string) string {
	return filepath.Join(a.root, filepath.FromSlash(relName))
}

// Mirror copies a canonical document byte-for-byte into the staging area.
func (a *Area) Mirror(srcPath, relName string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("mirror %s: %w", relName, err)
	}
	defer src.Close()

	dstPath := a.path(relName)
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return fmt.Errorf("mirror %s: %w", relName, err)
	}
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("mirror %s: %w", relName, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("mirror %s: %w", relName, err)
	}
	return dst.Close()
}

// WriteFile writes a generated staged file.
func (a *Area) WriteFile(relName string, data []byte) error {
	path := a.path(relName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a staged file.
func (a *Area) ReadFile(relName string) ([]byte, error) {
	return os.ReadFile(a.path(relName))
}

// EnsureFile creates an empty staged file when absent.
func (a *Area) EnsureFile(relName string) error {
	path := a.path(relName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// Truncate empties a staged file in place.
func (a *Area) Truncate(relName string) error {
	return os.Truncate(a.path(relName), 0)
}

// Digest computes the hex-encoded content digest of a staged file.
func (a *Area) Digest(relName string) (string, error) {
	return a.alg.SumFile(a.path(relName))
}

// WriteManifest serializes the whole manifest atomically (temp file plus
// rename), one record per staged file.
func (a *Area) WriteManifest(m domain.Manifest) error {
	return atomicWrite(a.path(a.manifest), m.Render())
}

// ReadManifest loads the manifest file.
func (a *Area) ReadManifest() (domain.Manifest, error) {
	data, err := os.ReadFile(a.path(a.manifest))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return domain.ParseManifest(data)
}

// PatchManifest replaces only the digest field of the one record whose
// trailing field names relName; every other record is carried over verbatim.
func (a *Area) PatchManifest(relName, digest string) error {
	path := a.path(a.manifest)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("patch manifest: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	patched := false
	for i, line := range lines {
		if strings.HasSuffix(line, "  "+relName) {
			lines[i] = digest + "  " + relName
			patched = true
			break
		}
	}
	if !patched {
		return fmt.Errorf("patch manifest: no record for %q", relName)
	}
	return atomicWrite(path, []byte(strings.Join(lines, "\n")))
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
