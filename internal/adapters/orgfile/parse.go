package orgfile

import (
	"regexp"
	"strings"

	"orgstage/internal/domain"
)

var (
	headingRe  = regexp.MustCompile(`^(\*+)[ \t]+(.*)$`)
	priorityRe = regexp.MustCompile(`^\[#([A-Za-z])\][ \t]*`)
	tagsRe     = regexp.MustCompile(`[ \t]+:([A-Za-z0-9_@#%]+(?::[A-Za-z0-9_@#%]+)*):[ \t]*$`)
	propertyRe = regexp.MustCompile(`^:([A-Za-z0-9_-]+):[ \t]*(.*)$`)
)

// Parse builds a document tree from outline markup. name becomes the
// document's path; content before the first heading is kept verbatim as the
// preamble.
func (s *Store) Parse(name, content string) *domain.Document {
	doc := &domain.Document{Path: name}
	lines := strings.Split(content, "\n")

	var stack []*domain.Node
	var body []string
	var preamble []string

	flush := func() {
		if len(stack) == 0 {
			return
		}
		node := stack[len(stack)-1]
		props, text := splitDrawer(body)
		node.Properties = props
		node.Body = text
		body = nil
	}

	for i, line := range lines {
		// Split keeps a phantom final element for trailing newlines.
		if i == len(lines)-1 && line == "" {
			break
		}
		m := headingRe.FindStringSubmatch(line)
		if m == nil {
			if len(stack) == 0 {
				preamble = append(preamble, line)
			} else {
				body = append(body, line)
			}
			continue
		}

		flush()
		node := s.parseHeading(len(m[1]), m[2])

		for len(stack) > 0 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			doc.Nodes = append(doc.Nodes, node)
		} else {
			parent := stack[len(stack)-1]
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	flush()

	if len(preamble) > 0 {
		doc.Preamble = strings.Join(preamble, "\n") + "\n"
	}
	return doc
}

// parseHeading splits a heading line's title into TODO keyword, priority,
// heading text and trailing tag list.
func (s *Store) parseHeading(level int, title string) *domain.Node {
	node := &domain.Node{Level: level}

	if m := tagsRe.FindStringSubmatch(title); m != nil {
		node.Tags = strings.Split(m[1], ":")
		title = title[:len(title)-len(m[0])]
	}

	if kw, rest, ok := strings.Cut(title, " "); ok {
		if _, isKeyword := s.keywords[kw]; isKeyword {
			node.Todo = kw
			title = rest
		}
	} else if _, isKeyword := s.keywords[title]; isKeyword {
		node.Todo = title
		title = ""
	}

	if m := priorityRe.FindStringSubmatch(title); m != nil {
		node.Priority = strings.ToUpper(m[1])
		title = title[len(m[0]):]
	}

	node.Heading = strings.TrimSpace(title)
	return node
}

// splitDrawer separates a leading property drawer from the body lines. An
// unterminated drawer is treated as plain body.
func splitDrawer(lines []string) ([]domain.Property, string) {
	if len(lines) == 0 {
		return nil, ""
	}
	if strings.TrimSpace(lines[0]) != ":PROPERTIES:" {
		return nil, joinBody(lines)
	}

	var props []domain.Property
	for i := 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == ":END:" {
			return props, joinBody(lines[i+1:])
		}
		if m := propertyRe.FindStringSubmatch(trimmed); m != nil {
			props = append(props, domain.Property{Key: m[1], Value: m[2]})
		}
	}
	return nil, joinBody(lines)
}

func joinBody(lines []string) string {
	// trailing blank lines are rendering artifacts, not content
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}
