package commands

import (
	"context"
	"os"

	"orgstage/internal/application"
	"orgstage/internal/config"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// Status summarizes the state of both sides of the sync: the canonical
// document set, the staged mirror's manifest and the inbox backlog.
type Status struct {
	Documents       int
	Manifest        domain.Manifest
	PendingRequests int
	PendingCaptures int
	Flagged         []domain.FlaggedEntry
}

// StatusCommand inspects the canonical directory and the staging area
// without modifying either.
type StatusCommand struct {
	store   ports.DocumentStore
	staging ports.StagingArea
	cfg     *config.Config
}

func NewStatusCommand(store ports.DocumentStore, staging ports.StagingArea, cfg *config.Config) *StatusCommand {
	return &StatusCommand{store: store, staging: staging, cfg: cfg}
}

func (c *StatusCommand) Execute(ctx context.Context) (*Status, error) {
	if _, err := os.Stat(c.cfg.Dir); err != nil {
		return nil, &application.SetupError{Path: c.cfg.Dir, Reason: "document directory unavailable"}
	}

	st := &Status{}

	files, err := c.store.Files()
	if err != nil {
		return nil, &application.SetupError{Path: c.cfg.Dir, Reason: err.Error()}
	}
	st.Documents = len(files)

	if manifest, err := c.staging.ReadManifest(); err == nil {
		st.Manifest = manifest
	}

	if data, err := os.ReadFile(c.cfg.InboxPath()); err == nil {
		st.PendingRequests, st.PendingCaptures = countInbox(string(data))
	}

	flagged, err := ListFlagged(c.store)
	if err != nil {
		return nil, err
	}
	st.Flagged = flagged
	return st, nil
}

// countInbox tallies unconsumed entries still waiting in the inbox.
func countInbox(content string) (requests, captures int) {
	for _, span := range splitEntries(content) {
		chunk := content[span.Start:span.End]
		title := rawTitle(chunk)
		switch {
		case domain.IsFlagHeading(title):
			requests++
		case isCapture(chunk, title):
			captures++
		}
	}
	return requests, captures
}

// ListFlagged collects every entry carrying the review marker across all
// canonical documents, in document order.
func ListFlagged(store ports.DocumentStore) ([]domain.FlaggedEntry, error) {
	files, err := store.Files()
	if err != nil {
		return nil, err
	}

	var out []domain.FlaggedEntry
	for _, file := range files {
		doc, err := store.Load(file)
		if err != nil {
			return nil, err
		}
		doc.Walk(func(n *domain.Node) {
			if !n.Flagged() {
				return
			}
			out = append(out, domain.FlaggedEntry{
				File:    store.LinkName(file),
				Heading: n.Heading,
				Note:    n.FlagNote(),
			})
		})
	}
	return out, nil
}
