package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"orgstage/internal/application"
	"orgstage/internal/config"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// ArchiveSentinel is the TODO value that marks an entry done and files it
// into the document's archive companion as one combined action.
const ArchiveSentinel = "ARCHIVE"

type resultKind int

const (
	editResult resultKind = iota
	flagResult
)

// Handler executes one change request against its resolved target. On error
// the target node must be left unmodified.
type Handler func(req *domain.ChangeRequest) (resultKind, error)

// ApplyCommand is the conflict resolver: it applies each parsed request
// independently, deletes consumed inbox entries, annotates failed ones and
// returns the pass counters.
type ApplyCommand struct {
	store    ports.DocumentStore
	index    ports.IdentifierIndex
	cfg      *config.Config
	handlers map[string]Handler
	cache    *docCache

	// now is stubbed in tests so the change marker is deterministic
	now func() time.Time
}

// NewApplyCommand creates the apply engine with the built-in action table:
// the default (empty) action flags the target for review, "edit" performs a
// compare-and-swap field edit.
func NewApplyCommand(store ports.DocumentStore, index ports.IdentifierIndex, cfg *config.Config) *ApplyCommand {
	c := &ApplyCommand{
		store: store,
		index: index,
		cfg:   cfg,
		now:   time.Now,
	}
	c.handlers = map[string]Handler{
		"":     c.handleFlag,
		"edit": c.handleEdit,
	}
	return c
}

// Register adds or replaces an action handler.
func (c *ApplyCommand) Register(action string, h Handler) {
	c.handlers[action] = h
}

// Execute applies every request found in the inbox byte range [from, to).
// Negative bounds select the start and end of the file. Consumed entries are
// removed from the inbox; failed ones stay, annotated in place.
func (c *ApplyCommand) Execute(ctx context.Context, from, to int) (*domain.SyncResult, error) {
	inboxPath := c.cfg.InboxPath()
	data, err := os.ReadFile(inboxPath)
	if err != nil {
		if os.IsNotExist(err) {
			// nothing has ever been pulled
			return &domain.SyncResult{}, nil
		}
		return nil, &application.SetupError{Path: inboxPath, Reason: "inbox unreadable"}
	}

	if from < 0 {
		from = 0
	}
	if to < 0 || to > len(data) {
		to = len(data)
	}
	if from > to {
		return nil, fmt.Errorf("apply range %d..%d is inverted", from, to)
	}

	c.cache = newDocCache(c.store)
	stamp := c.now().UTC().Format(time.RFC3339)
	parsed := parseInbox(c.store, c.index, c.cache, string(data[from:to]), from, stamp)

	res := &domain.SyncResult{Captures: parsed.Captures}
	var out strings.Builder
	pos := 0
	write := func(end int) {
		out.Write(data[pos:end])
		pos = end
	}

	for _, entry := range parsed.Entries {
		write(entry.Span.Start)
		if entry.Req == nil {
			write(entry.Span.End)
			continue
		}

		kind, err := c.runRequest(entry.Req)
		if err != nil {
			res.Errors++
			annotate(&out, data[entry.Span.Start:entry.Span.End], err)
			pos = entry.Span.End
			continue
		}

		// consumed: resolution, handler execution and removal are one unit
		pos = entry.Span.End
		switch kind {
		case flagResult:
			res.Flags++
		default:
			res.Edits++
		}
		if entry.Req.Node != nil && entry.Req.Node.Flagged() {
			res.AddFlagged(entry.Req.Doc.Path)
		}
	}
	write(len(data))

	if err := c.cache.saveDirty(); err != nil {
		return nil, err
	}
	if err := os.WriteFile(inboxPath, []byte(out.String()), 0o644); err != nil {
		return nil, fmt.Errorf("rewrite inbox: %w", err)
	}
	return res, nil
}

func (c *ApplyCommand) runRequest(req *domain.ChangeRequest) (resultKind, error) {
	if req.Err != nil {
		return 0, req.Err
	}
	h, ok := c.handlers[req.Action]
	if !ok {
		return 0, fmt.Errorf("%w: %q", application.ErrUnknownAction, req.Action)
	}
	return h(req)
}

// annotate keeps a failed entry in the inbox, inserting the error message
// right below its heading line.
func annotate(out *strings.Builder, entry []byte, err error) {
	line := "ERROR: " + err.Error() + "\n"
	if i := strings.IndexByte(string(entry), '\n'); i >= 0 {
		out.Write(entry[:i+1])
		out.WriteString(line)
		out.Write(entry[i+1:])
		return
	}
	out.Write(entry)
	out.WriteByte('\n')
	out.WriteString(line)
}

// handleFlag is the default action: mark the target for review and store a
// captured note as a property. It only fails when the target is unresolved,
// which runRequest already rules out.
func (c *ApplyCommand) handleFlag(req *domain.ChangeRequest) (resultKind, error) {
	req.Node.SetFlagged(req.Note)
	c.cache.markDirty(req.Doc)
	return flagResult, nil
}

// fieldOps is the shared compare-and-swap policy instantiated per field.
type fieldOps struct {
	name string
	get  func(*domain.Node) string
	eq   func(cur, want string) bool
	set  func(*domain.Node, string)
}

func exactEq(cur, want string) bool { return cur == want }

// normalizePriority reduces both the bare-letter and bracket-cookie spellings
// of a priority ([#A], #A, a) to the canonical upper-case letter.
func normalizePriority(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "[#")
	v = strings.TrimPrefix(v, "#")
	v = strings.TrimSuffix(v, "]")
	return strings.ToUpper(v)
}

var fields = map[string]fieldOps{
	"todo": {
		name: "todo state",
		get:  func(n *domain.Node) string { return n.Todo },
		eq:   exactEq,
		set:  func(n *domain.Node, v string) { n.Todo = v },
	},
	"tags": {
		name: "tags",
		get:  func(n *domain.Node) string { return strings.Join(n.Tags, ":") },
		eq: func(cur, want string) bool {
			return domain.TagsEqual(domain.ParseTagList(cur), domain.ParseTagList(want))
		},
		set: func(n *domain.Node, v string) { n.Tags = domain.ParseTagList(v) },
	},
	"priority": {
		name: "priority",
		get:  func(n *domain.Node) string { return n.Priority },
		eq: func(cur, want string) bool {
			return normalizePriority(cur) == normalizePriority(want)
		},
		set: func(n *domain.Node, v string) { n.Priority = normalizePriority(v) },
	},
	"heading": {
		name: "heading",
		get:  func(n *domain.Node) string { return n.Heading },
		eq:   exactEq,
		set:  func(n *domain.Node, v string) { n.Heading = v },
	},
	"body": {
		name: "body",
		get:  func(n *domain.Node) string { return n.Body },
		eq: func(cur, want string) bool {
			return domain.NormalizeBody(cur) == domain.NormalizeBody(want)
		},
		set: func(n *domain.Node, v string) { n.Body = v },
	},
}

// handleEdit applies one field edit with compare-and-swap semantics:
// already-equal is an idempotent no-op, a matching old-value snapshot (or a
// remote-wins override, or no snapshot at all) overwrites, anything else is a
// conflict that leaves the node untouched.
func (c *ApplyCommand) handleEdit(req *domain.ChangeRequest) (resultKind, error) {
	if req.Node == nil {
		return 0, &application.ExecutionError{Action: "edit", Err: fmt.Errorf("target not resolved")}
	}
	if req.New == nil {
		return 0, &application.ExecutionError{Action: "edit", Err: fmt.Errorf("missing New value block")}
	}
	ops, ok := fields[req.Payload]
	if !ok {
		return 0, &application.ExecutionError{Action: "edit", Err: fmt.Errorf("unknown field %q", req.Payload)}
	}

	newVal := *req.New
	cur := ops.get(req.Node)

	if req.Payload == "todo" && newVal == ArchiveSentinel {
		if req.Old != nil && !ops.eq(cur, *req.Old) && !c.cfg.RemoteWinsField(req.Payload) {
			return 0, &application.ConflictError{Field: ops.name, Expected: *req.Old, Actual: cur}
		}
		return editResult, c.archive(req)
	}

	if ops.eq(cur, newVal) {
		return editResult, nil // already applied, no mutation
	}
	if req.Old == nil || ops.eq(cur, *req.Old) || c.cfg.RemoteWinsField(req.Payload) {
		ops.set(req.Node, newVal)
		c.cache.markDirty(req.Doc)
		return editResult, nil
	}
	return 0, &application.ConflictError{Field: ops.name, Expected: *req.Old, Actual: cur}
}

// archive marks the entry done and moves its subtree to the document's
// archive companion as one combined action.
func (c *ApplyCommand) archive(req *domain.ChangeRequest) error {
	src := req.Doc
	arch, err := c.cache.loadOrCreate(archivePath(src.Path))
	if err != nil {
		return &application.ExecutionError{Action: "edit", Err: err}
	}
	if !src.Remove(req.Node) {
		return &application.ExecutionError{Action: "edit", Err: fmt.Errorf("entry vanished from %s", src.Path)}
	}
	req.Node.Todo = c.cfg.LastDone()
	arch.Append(req.Node)
	req.Doc = arch

	c.cache.markDirty(src)
	c.cache.markDirty(arch)
	return nil
}

func archivePath(path string) string {
	if strings.HasSuffix(path, ".org") {
		return strings.TrimSuffix(path, ".org") + "_archive.org"
	}
	return path + "_archive"
}
