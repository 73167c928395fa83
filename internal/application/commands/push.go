package commands

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"orgstage/internal/application"
	"orgstage/internal/config"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// PushCommand exports a digest-tracked mirror of the canonical set: the
// documents themselves, a generated index document, the aggregated view
// document, the capture mirror and the manifest.
type PushCommand struct {
	store   ports.DocumentStore
	index   ports.IdentifierIndex
	staging ports.StagingArea
	agenda  ports.AgendaSource
	cfg     *config.Config
}

// PushResult reports what a push staged.
type PushResult struct {
	Documents int
	Manifest  domain.Manifest
}

// NewPushCommand creates the staging builder.
func NewPushCommand(store ports.DocumentStore, index ports.IdentifierIndex, staging ports.StagingArea, agenda ports.AgendaSource, cfg *config.Config) *PushCommand {
	return &PushCommand{store: store, index: index, staging: staging, agenda: agenda, cfg: cfg}
}

type exportDoc struct {
	path string
	link string
	doc  *domain.Document
}

// Execute runs the whole push phase. Setup failures abort before any mirror
// write; everything after that is fail-fast with no partial manifest.
func (c *PushCommand) Execute(ctx context.Context) (*PushResult, error) {
	if _, err := os.Stat(c.cfg.Dir); err != nil {
		return nil, &application.SetupError{Path: c.cfg.Dir, Reason: "document directory unavailable"}
	}
	if c.cfg.StagingDir == "" {
		return nil, &application.SetupError{Path: "(unset)", Reason: "staging directory not configured"}
	}
	files, err := c.store.Files()
	if err != nil {
		return nil, &application.SetupError{Path: c.cfg.Dir, Reason: err.Error()}
	}
	if err := os.MkdirAll(c.staging.Root(), 0o755); err != nil {
		return nil, &application.SetupError{Path: c.staging.Root(), Reason: "staging directory unavailable"}
	}

	if err := runHooks(ctx, c.cfg.Dir, c.cfg.Hooks.PrePush); err != nil {
		return nil, err
	}

	exports, err := c.collect(files)
	if err != nil {
		return nil, err
	}

	// identifiers must be in place before the mirror copy and the agenda
	// export, so the staged files carry them
	if c.cfg.ForceIDsEnabled() {
		for _, e := range exports {
			if added := c.store.EnsureIDs(e.doc); added > 0 {
				if err := c.store.Save(e.doc); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := c.rebuildIndex(exports); err != nil {
		return nil, err
	}

	var manifest domain.Manifest
	record := func(relName string) error {
		digest, err := c.staging.Digest(relName)
		if err != nil {
			return err
		}
		manifest = append(manifest, domain.ManifestEntry{Digest: digest, Name: relName})
		return nil
	}

	if err := c.staging.WriteFile(config.IndexFile, c.renderIndex(exports)); err != nil {
		return nil, err
	}
	if err := record(config.IndexFile); err != nil {
		return nil, err
	}

	agendas, err := c.renderAgendas()
	if err != nil {
		return nil, err
	}
	if err := c.staging.WriteFile(config.AgendasFile, agendas); err != nil {
		return nil, err
	}
	if err := record(config.AgendasFile); err != nil {
		return nil, err
	}

	for _, e := range exports {
		if err := c.staging.Mirror(e.path, e.link); err != nil {
			return nil, err
		}
		if err := record(e.link); err != nil {
			return nil, err
		}
	}

	if err := c.staging.EnsureFile(c.cfg.CaptureFile); err != nil {
		return nil, err
	}
	if err := record(c.cfg.CaptureFile); err != nil {
		return nil, err
	}

	if err := c.staging.WriteManifest(manifest); err != nil {
		return nil, err
	}

	if err := runHooks(ctx, c.cfg.Dir, c.cfg.Hooks.PostPush); err != nil {
		return nil, err
	}
	return &PushResult{Documents: len(exports), Manifest: manifest}, nil
}

// collect loads every canonical document and assigns link names, sorted by
// link name. A link-name collision surviving the real-path dedup keeps the
// first occurrence only.
func (c *PushCommand) collect(files []string) ([]exportDoc, error) {
	seen := make(map[string]bool, len(files))
	var exports []exportDoc
	for _, path := range files {
		link := c.store.LinkName(path)
		if seen[link] {
			continue
		}
		seen[link] = true
		doc, err := c.store.Load(path)
		if err != nil {
			return nil, err
		}
		exports = append(exports, exportDoc{path: path, link: link, doc: doc})
	}
	sort.Slice(exports, func(i, j int) bool { return exports[i].link < exports[j].link })
	return exports, nil
}

func (c *PushCommand) rebuildIndex(exports []exportDoc) error {
	docs := make(map[string]*domain.Document, len(exports))
	for _, e := range exports {
		docs[e.link] = e.doc
	}
	return c.index.Rebuild(docs)
}

// renderIndex produces the index document: the TODO vocabulary, the tag
// line (configured groups first, then ad hoc tags observed across the
// exported set), drawers, the fixed priority range and one link entry per
// exported document.
func (c *PushCommand) renderIndex(exports []exportDoc) []byte {
	var b strings.Builder
	b.WriteString("#+READONLY\n")

	for _, group := range c.cfg.TodoKeywords {
		b.WriteString("#+TODO: ")
		b.WriteString(strings.Join(group, " "))
		b.WriteByte('\n')
	}

	b.WriteString("#+TAGS: ")
	b.WriteString(strings.Join(c.tagLine(exports), " "))
	b.WriteByte('\n')

	b.WriteString("#+DRAWERS: ")
	b.WriteString(strings.Join(c.cfg.Drawers, " "))
	b.WriteByte('\n')

	b.WriteString("#+ALLPRIORITIES: ")
	b.WriteString(config.PriorityRange)
	b.WriteByte('\n')

	for _, e := range exports {
		fmt.Fprintf(&b, "* [[file:%s][%s]]\n", e.link, e.link)
	}
	return []byte(b.String())
}

func (c *PushCommand) tagLine(exports []exportDoc) []string {
	known := make(map[string]bool, len(c.cfg.TagGroups))
	tags := append([]string(nil), c.cfg.TagGroups...)
	for _, t := range c.cfg.TagGroups {
		known[t] = true
	}

	var adhoc []string
	for _, e := range exports {
		e.doc.Walk(func(n *domain.Node) {
			for _, t := range n.Tags {
				if !known[t] {
					known[t] = true
					adhoc = append(adhoc, t)
				}
			}
		})
	}
	sort.Slice(adhoc, func(i, j int) bool {
		return strings.ToLower(adhoc[i]) < strings.ToLower(adhoc[j])
	})
	return append(tags, adhoc...)
}

// renderAgendas flattens every exportable saved-view into one read-only
// compound document. Row prefixes move to a trailing suffix: the flattened
// single-column rendering has no leading column to align them in.
func (c *PushCommand) renderAgendas() ([]byte, error) {
	sections, err := c.agenda.Sections()
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("#+READONLY\n")
	for _, sec := range sections {
		if sec.Description != "" {
			fmt.Fprintf(&b, "* %s: %s\n", sec.Key, sec.Description)
		} else {
			fmt.Fprintf(&b, "* %s\n", sec.Key)
		}
		for _, row := range sec.Rows {
			b.WriteString("** ")
			b.WriteString(row.Title)
			if row.Prefix != "" {
				fmt.Fprintf(&b, " (%s)", row.Prefix)
			}
			b.WriteByte('\n')

			if c.cfg.ForceIDsEnabled() && row.Node != nil {
				if id := row.Node.ID(); id != "" {
					fmt.Fprintf(&b, ":PROPERTIES:\n:ID: %s\n:END:\n", id)
				}
			}
			if row.Snippet != "" {
				b.WriteString(row.Snippet)
				b.WriteByte('\n')
			}
		}
	}
	return []byte(b.String()), nil
}
