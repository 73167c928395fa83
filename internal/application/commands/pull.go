package commands

import (
	"context"
	"fmt"
	"os"

	"orgstage/internal/application"
	"orgstage/internal/config"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

const inboxPreamble = "#+TITLE: Inbox\n\n"

// PullCommand ingests remote content: it moves the staged capture file into
// the canonical inbox, patches the manifest for the now-empty capture mirror
// and applies the newly arrived region.
type PullCommand struct {
	store   ports.DocumentStore
	staging ports.StagingArea
	cfg     *config.Config
	apply   *ApplyCommand
}

// NewPullCommand creates the pull orchestration around an apply engine.
func NewPullCommand(store ports.DocumentStore, staging ports.StagingArea, cfg *config.Config, apply *ApplyCommand) *PullCommand {
	return &PullCommand{store: store, staging: staging, cfg: cfg, apply: apply}
}

// Execute runs the whole pull phase and returns the apply pass counters.
func (c *PullCommand) Execute(ctx context.Context) (*domain.SyncResult, error) {
	if _, err := os.Stat(c.cfg.Dir); err != nil {
		return nil, &application.SetupError{Path: c.cfg.Dir, Reason: "document directory unavailable"}
	}
	if _, err := os.Stat(c.staging.Root()); err != nil {
		return nil, &application.SetupError{Path: c.staging.Root(), Reason: "staging directory unavailable"}
	}

	if err := runHooks(ctx, c.cfg.Dir, c.cfg.Hooks.PrePull); err != nil {
		return nil, err
	}

	from, to, err := c.moveCaptured()
	if err != nil {
		return nil, err
	}

	res, err := c.apply.Execute(ctx, from, to)
	if err != nil {
		return nil, err
	}

	if err := runHooks(ctx, c.cfg.Dir, c.cfg.Hooks.PostPull); err != nil {
		return nil, err
	}
	return res, nil
}

// moveCaptured appends the staged capture file's content to the canonical
// inbox, empties the staged file and patches its manifest record. It returns
// the byte range of the newly arrived region.
func (c *PullCommand) moveCaptured() (from, to int, err error) {
	inboxPath := c.cfg.InboxPath()
	inbox, err := os.ReadFile(inboxPath)
	if os.IsNotExist(err) {
		inbox = []byte(inboxPreamble)
	} else if err != nil {
		return 0, 0, &application.SetupError{Path: inboxPath, Reason: "inbox unreadable"}
	}

	captured, err := c.staging.ReadFile(c.cfg.CaptureFile)
	if os.IsNotExist(err) {
		captured = nil
	} else if err != nil {
		return 0, 0, &application.SetupError{Path: c.cfg.CaptureFile, Reason: "staged capture file unreadable"}
	}

	if len(captured) == 0 {
		return len(inbox), len(inbox), nil
	}

	if len(inbox) > 0 && inbox[len(inbox)-1] != '\n' {
		inbox = append(inbox, '\n')
	}
	from = len(inbox)
	inbox = append(inbox, captured...)
	if inbox[len(inbox)-1] != '\n' {
		inbox = append(inbox, '\n')
	}
	to = len(inbox)

	if err := os.WriteFile(inboxPath, inbox, 0o644); err != nil {
		return 0, 0, fmt.Errorf("move captured content: %w", err)
	}
	if err := c.staging.Truncate(c.cfg.CaptureFile); err != nil {
		return 0, 0, fmt.Errorf("empty staged capture file: %w", err)
	}

	// only the capture record changed, so the manifest is patched in place
	// rather than rebuilt
	digest, err := c.staging.Digest(c.cfg.CaptureFile)
	if err != nil {
		return 0, 0, err
	}
	if err := c.staging.PatchManifest(c.cfg.CaptureFile, digest); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}
