package domain

import "errors"

// Resolution errors for change-request targets. The two path-resolution
// failures are distinct so callers (and the inline annotations written into
// the inbox) can tell an absent heading from an ambiguous one.
var (
	ErrHeadingNotFound  = errors.New("outline path not found")
	ErrHeadingNotUnique = errors.New("outline path not unique")
	ErrUnresolvedID     = errors.New("unresolved identifier")
)
