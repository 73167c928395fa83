package domain

import "fmt"

// SyncResult tallies one apply pass. It is returned by value through the
// apply call rather than accumulated in shared state.
type SyncResult struct {
	Captures int // plain captures counted during parsing
	Edits    int // successful field edits
	Flags    int // successful flag-only actions
	Errors   int // unknown actions, unresolved targets, conflicts

	// Flagged lists documents that contain at least one entry carrying the
	// review-flag marker after the pass, deduplicated, used to scope the
	// post-pull review view.
	Flagged []string
}

// AddFlagged records a document in the flagged set.
func (r *SyncResult) AddFlagged(path string) {
	for _, p := range r.Flagged {
		if p == path {
			return
		}
	}
	r.Flagged = append(r.Flagged, path)
}

// Summary is the pass's terminal one-line report.
func (r *SyncResult) Summary() string {
	return fmt.Sprintf("%d new, %d edit, %d flag, %d errors", r.Captures, r.Edits, r.Flags, r.Errors)
}

// FlaggedEntry is one review-flagged node, as listed by the review view and
// the MCP surface.
type FlaggedEntry struct {
	File    string
	Heading string
	Note    string
}

// AgendaRow is one result row of a saved-view definition. Node keeps the
// provenance link back to the canonical entry so exported rows can be matched
// to their source.
type AgendaRow struct {
	Prefix  string // e.g. a scheduling annotation; rendered as trailing suffix
	Title   string
	Snippet string
	File    string
	Node    *Node
}

// AgendaSection is the rendered result of one saved-view definition, with the
// originating definition's key and description kept alongside so provenance
// survives flattening into a single document.
type AgendaSection struct {
	Key         string
	Description string
	Rows        []AgendaRow
}
