package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// inboxEntry is one top-level entry of the newly-arrived inbox region. Req is
// nil for plain captures and headings too short to count as one.
type inboxEntry struct {
	Span     domain.ByteSpan // absolute offsets into the inbox file
	Node     *domain.Node
	RawTitle string
	Req      *domain.ChangeRequest
}

// parsedInbox is the parser stage's output: entries in order plus the plain
// capture count. The canonical store is not mutated yet, except for the
// change-marker stamp on each resolved target document.
type parsedInbox struct {
	Entries  []inboxEntry
	Captures int
}

// parseInbox scans the region, splits captures from flag entries, resolves
// each request's target and stamps touched documents once. Resolution
// failures are recorded on the request, never returned: the apply stage
// reports them uniformly as errors.
func parseInbox(store ports.DocumentStore, index ports.IdentifierIndex, cache *docCache, region string, offset int, stamp string) *parsedInbox {
	out := &parsedInbox{}

	for _, span := range splitEntries(region) {
		chunk := region[span.Start:span.End]
		entryDoc := store.Parse("inbox", chunk)
		if len(entryDoc.Nodes) == 0 {
			continue
		}
		entry := inboxEntry{
			Span:     domain.ByteSpan{Start: span.Start + offset, End: span.End + offset},
			Node:     entryDoc.Nodes[0],
			RawTitle: rawTitle(chunk),
		}

		if domain.IsFlagHeading(entry.RawTitle) {
			entry.Req = parseRequest(entry.RawTitle, entry.Node)
			entry.Req.Span = entry.Span
			if entry.Req.Err == nil {
				resolve(store, index, cache, entry.Req, stamp)
			}
		} else if isCapture(chunk, entry.RawTitle) {
			// plain capture, left untouched for the caller to file
			out.Captures++
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}

// parseRequest builds a ChangeRequest from a flag entry's heading and
// subtree: the Old/New value blocks and, for the default action, the
// free-text note.
func parseRequest(title string, node *domain.Node) *domain.ChangeRequest {
	req, err := domain.ParseFlagHeading(title)
	if err != nil {
		return &domain.ChangeRequest{Entry: node, Err: err}
	}
	req.Entry = node

	for _, child := range node.Children {
		switch child.Heading {
		case "Old value":
			v := strings.TrimSpace(child.Body)
			req.Old = &v
		case "New value":
			v := strings.TrimSpace(child.Body)
			req.New = &v
		}
	}
	req.Note = strings.TrimSpace(node.Body)
	return req
}

// resolve locates the request's target in the canonical store and stamps the
// owning document with the change-marker line on first touch this pass.
func resolve(store ports.DocumentStore, index ports.IdentifierIndex, cache *docCache, req *domain.ChangeRequest, stamp string) {
	var doc *domain.Document
	var node *domain.Node

	if req.Target.ByID() {
		loc, err := index.Lookup(req.Target.ID)
		if err != nil {
			req.Err = err
			return
		}
		doc, err = cache.load(loc.File)
		if err != nil {
			req.Err = fmt.Errorf("%w: %s: %v", domain.ErrUnresolvedID, req.Target.ID, err)
			return
		}
		node = doc.FindID(req.Target.ID)
		if node == nil {
			req.Err = fmt.Errorf("%w: %s no longer in %s", domain.ErrUnresolvedID, req.Target.ID, loc.File)
			return
		}
	} else {
		var err error
		doc, err = cache.load(req.Target.File)
		if err != nil {
			req.Err = fmt.Errorf("%w: %s: %v", domain.ErrHeadingNotFound, req.Target.File, err)
			return
		}
		node, err = doc.FindPath(req.Target.Path)
		if err != nil {
			req.Err = err
			return
		}
	}

	req.Doc = doc
	req.Node = node
	if doc.Stamp(stamp) {
		cache.markDirty(doc)
	}
}

// splitEntries returns the byte span of each inbox entry in the region. An
// entry opens at any top-level heading or at a flag-request heading of any
// depth, so a request nested under a captured note is still its own entry. A
// span runs from the entry's heading line to the next entry boundary.
func splitEntries(region string) []domain.ByteSpan {
	var spans []domain.ByteSpan
	offset := 0
	start := -1
	for offset <= len(region) {
		lineEnd := strings.IndexByte(region[offset:], '\n')
		var next int
		var line string
		if lineEnd < 0 {
			line = region[offset:]
			next = len(region) + 1 // past the end: terminates the loop
		} else {
			line = region[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}
		if entryBoundary(line) {
			if start >= 0 {
				spans = append(spans, domain.ByteSpan{Start: start, End: offset})
			}
			start = offset
		}
		offset = next
	}
	if start >= 0 && start < len(region) {
		spans = append(spans, domain.ByteSpan{Start: start, End: len(region)})
	}
	return spans
}

func isTopHeading(line string) bool {
	return len(line) > 1 && line[0] == '*' && (line[1] == ' ' || line[1] == '\t')
}

// entryBoundary reports whether a line opens a new inbox entry.
func entryBoundary(line string) bool {
	if isTopHeading(line) {
		return true
	}
	title, ok := headingTitle(line)
	return ok && domain.IsFlagHeading(title)
}

// headingTitle extracts the title of a heading line at any level.
func headingTitle(line string) (string, bool) {
	i := 0
	for i < len(line) && line[i] == '*' {
		i++
	}
	if i == 0 || i >= len(line) || (line[i] != ' ' && line[i] != '\t') {
		return "", false
	}
	return strings.TrimSpace(line[i:]), true
}

// isCapture reports whether an entry counts as a plain capture: only
// top-level headings with a title of at least two runes qualify.
func isCapture(chunk, title string) bool {
	line := chunk
	if i := strings.IndexByte(chunk, '\n'); i >= 0 {
		line = chunk[:i]
	}
	return isTopHeading(line) && utf8.RuneCountInString(strings.TrimSpace(title)) >= 2
}

// rawTitle extracts an entry's heading text as written, stars stripped.
func rawTitle(chunk string) string {
	line := chunk
	if i := strings.IndexByte(chunk, '\n'); i >= 0 {
		line = chunk[:i]
	}
	return strings.TrimSpace(strings.TrimLeft(line, "*"))
}
