package orgfile

import (
	"strings"

	"orgstage/internal/domain"
)

// Render serializes a document back to outline markup.
func (s *Store) Render(doc *domain.Document) []byte {
	var b strings.Builder
	if doc.Preamble != "" {
		b.WriteString(doc.Preamble)
		if !strings.HasSuffix(doc.Preamble, "\n") {
			b.WriteByte('\n')
		}
	}
	for _, n := range doc.Nodes {
		renderNode(&b, n)
	}
	return []byte(b.String())
}

// RenderNode serializes a single entry subtree.
func (s *Store) RenderNode(node *domain.Node) []byte {
	var b strings.Builder
	renderNode(&b, node)
	return []byte(b.String())
}

func renderNode(b *strings.Builder, n *domain.Node) {
	b.WriteString(strings.Repeat("*", n.Level))
	b.WriteByte(' ')
	if n.Todo != "" {
		b.WriteString(n.Todo)
		b.WriteByte(' ')
	}
	if n.Priority != "" {
		b.WriteString("[#")
		b.WriteString(n.Priority)
		b.WriteString("] ")
	}
	b.WriteString(n.Heading)
	if len(n.Tags) > 0 {
		b.WriteString(" :")
		b.WriteString(strings.Join(n.Tags, ":"))
		b.WriteByte(':')
	}
	b.WriteByte('\n')

	if len(n.Properties) > 0 {
		b.WriteString(":PROPERTIES:\n")
		for _, p := range n.Properties {
			b.WriteByte(':')
			b.WriteString(p.Key)
			b.WriteString(": ")
			b.WriteString(p.Value)
			b.WriteByte('\n')
		}
		b.WriteString(":END:\n")
	}

	if n.Body != "" {
		b.WriteString(n.Body)
		b.WriteByte('\n')
	}

	for _, c := range n.Children {
		renderNode(b, c)
	}
}
