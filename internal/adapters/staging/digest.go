package staging

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"os"
)

// Algorithm selects the content-digest function. Digests are change-detection
// hints between sync passes, not integrity protection.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
)

// ParseAlgorithm validates a configured algorithm name.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case MD5, SHA1, SHA256:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm: %q", name)
	}
}

func (a Algorithm) new() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA1:
		return sha1.New()
	default:
		return sha256.New()
	}
}

// SumFile computes the hex-encoded digest of a file's content.
func (a Algorithm) SumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	defer f.Close()

	h := a.new()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// Sum computes the hex-encoded digest of in-memory content.
func (a Algorithm) Sum(data []byte) string {
	h := a.new()
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}
