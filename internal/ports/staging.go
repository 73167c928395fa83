package ports

import "orgstage/internal/domain"

// StagingArea is the disconnected mirror directory shared with the remote
// client. All names are relative to the staging root.
type StagingArea interface {
	Root() string

	// Mirror copies a canonical document byte-for-byte, creating
	// intermediate directories as needed.
	Mirror(srcPath, relName string) error

	WriteFile(relName string, data []byte) error
	ReadFile(relName string) ([]byte, error)

	// EnsureFile creates an empty file if relName does not exist yet.
	EnsureFile(relName string) error

	// Truncate empties an existing staged file.
	Truncate(relName string) error

	// Digest computes the content digest of a staged file, hex-encoded.
	Digest(relName string) (string, error)

	// WriteManifest serializes the whole manifest atomically.
	WriteManifest(m domain.Manifest) error

	// ReadManifest loads the current manifest.
	ReadManifest() (domain.Manifest, error)

	// PatchManifest replaces the digest of the one manifest record naming
	// relName, leaving all other records untouched.
	PatchManifest(relName, digest string) error
}
