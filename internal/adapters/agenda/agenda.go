// Package agenda executes the configured saved-view definitions over the
// canonical store, producing the sections merged into the aggregated view
// document on push.
package agenda

import (
	"fmt"
	"regexp"
	"strings"

	"orgstage/internal/config"
	"orgstage/internal/domain"
	"orgstage/internal/ports"
)

// Engine implements ports.AgendaSource.
type Engine struct {
	store  ports.DocumentStore
	defs   []config.AgendaDef
	isDone func(string) bool
}

var _ ports.AgendaSource = (*Engine)(nil)

// NewEngine creates an agenda engine. isDone classifies TODO keywords so
// finished entries stay out of todo-type views.
func NewEngine(store ports.DocumentStore, defs []config.AgendaDef, isDone func(string) bool) *Engine {
	return &Engine{store: store, defs: defs, isDone: isDone}
}

// exportable reports whether a definition kind produces a single,
// non-interactive result list. Tree-only and interactive kinds are skipped.
func exportable(kind string) bool {
	switch kind {
	case "todo", "tags", "search":
		return true
	default:
		return false
	}
}

// Sections executes every exportable definition. Sub-definitions of a block
// are numbered sequentially under the parent key.
func (e *Engine) Sections() ([]domain.AgendaSection, error) {
	files, err := e.store.Files()
	if err != nil {
		return nil, err
	}
	docs := make([]*domain.Document, 0, len(files))
	for _, f := range files {
		doc, err := e.store.Load(f)
		if err != nil {
			return nil, err
		}
		doc.Path = e.store.LinkName(f)
		docs = append(docs, doc)
	}

	var sections []domain.AgendaSection
	for _, def := range e.defs {
		if def.Kind == "block" {
			n := 0
			for _, sub := range def.Blocks {
				if !exportable(sub.Kind) {
					continue
				}
				n++
				sec := e.run(sub, docs)
				sec.Key = fmt.Sprintf("%s#%d", def.Key, n)
				if sec.Description == "" {
					sec.Description = def.Description
				}
				sections = append(sections, sec)
			}
			continue
		}
		if !exportable(def.Kind) {
			continue
		}
		sections = append(sections, e.run(def, docs))
	}
	return sections, nil
}

func (e *Engine) run(def config.AgendaDef, docs []*domain.Document) domain.AgendaSection {
	sec := domain.AgendaSection{Key: def.Key, Description: def.Description}
	match := e.matcher(def)
	for _, doc := range docs {
		doc.Walk(func(n *domain.Node) {
			if !match(n) {
				return
			}
			sec.Rows = append(sec.Rows, domain.AgendaRow{
				Prefix:  planningPrefix(n),
				Title:   rowTitle(n),
				Snippet: snippet(n.Body),
				File:    doc.Path,
				Node:    n,
			})
		})
	}
	return sec
}

func (e *Engine) matcher(def config.AgendaDef) func(*domain.Node) bool {
	switch def.Kind {
	case "todo":
		return func(n *domain.Node) bool {
			if n.Todo == "" || e.isDone(n.Todo) {
				return false
			}
			return def.Match == "" || n.Todo == def.Match
		}
	case "tags":
		require, exclude := parseTagMatch(def.Match)
		return func(n *domain.Node) bool {
			for _, tag := range require {
				if !n.HasTag(tag) {
					return false
				}
			}
			for _, tag := range exclude {
				if n.HasTag(tag) {
					return false
				}
			}
			return len(require) > 0 || len(exclude) > 0
		}
	case "search":
		needle := strings.ToLower(def.Match)
		return func(n *domain.Node) bool {
			if needle == "" {
				return false
			}
			return strings.Contains(strings.ToLower(n.Heading), needle) ||
				strings.Contains(strings.ToLower(n.Body), needle)
		}
	default:
		return func(*domain.Node) bool { return false }
	}
}

var tagTermRe = regexp.MustCompile(`([+-]?)([A-Za-z0-9_@#%]+)`)

// parseTagMatch splits a match expression like "work+urgent-someday" into
// required and excluded tags. A leading bare term is required.
func parseTagMatch(expr string) (require, exclude []string) {
	for _, m := range tagTermRe.FindAllStringSubmatch(expr, -1) {
		if m[1] == "-" {
			exclude = append(exclude, m[2])
		} else {
			require = append(require, m[2])
		}
	}
	return require, exclude
}

func rowTitle(n *domain.Node) string {
	if n.Todo != "" {
		return n.Todo + " " + n.Heading
	}
	return n.Heading
}

// planningPrefix returns the entry's scheduling annotation, if its body leads
// with one.
func planningPrefix(n *domain.Node) string {
	line := strings.TrimSpace(firstLine(n.Body))
	if strings.HasPrefix(line, "SCHEDULED:") || strings.HasPrefix(line, "DEADLINE:") {
		return line
	}
	return ""
}

// snippet is a short, single-line extract of the entry body: the first line
// that is not a scheduling annotation, capped at 60 runes.
func snippet(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "SCHEDULED:") || strings.HasPrefix(line, "DEADLINE:") {
			continue
		}
		runes := []rune(line)
		if len(runes) > 60 {
			return string(runes[:60])
		}
		return line
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
