package domain

import (
	"fmt"
	"strings"
)

// Tag and property names marking an entry as flagged for review after a pull.
const (
	FlagTag      = "FLAGGED"
	FlagNoteProp = "FLAG_NOTE"
)

// Property is one key/value pair from a node's property drawer.
// Order is preserved so documents render back deterministically.
type Property struct {
	Key   string
	Value string
}

// Node is one heading entry in an outline document.
type Node struct {
	Heading    string
	Level      int
	Todo       string // TODO keyword, empty if none
	Priority   string // single letter, empty if none
	Tags       []string
	Properties []Property
	Body       string
	Children   []*Node
	Parent     *Node // non-owning back-reference
}

// Property returns the value for key and whether it is present.
func (n *Node) Property(key string) (string, bool) {
	for _, p := range n.Properties {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// SetProperty replaces the value for key, appending a new property if absent.
func (n *Node) SetProperty(key, value string) {
	for i := range n.Properties {
		if n.Properties[i].Key == key {
			n.Properties[i].Value = value
			return
		}
	}
	n.Properties = append(n.Properties, Property{Key: key, Value: value})
}

// ID returns the node's stable identifier, empty if none was assigned.
func (n *Node) ID() string {
	id, _ := n.Property("ID")
	return id
}

// SetID assigns the node's stable identifier property.
func (n *Node) SetID(id string) {
	n.SetProperty("ID", id)
}

// HasTag reports whether the node carries tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag appends tag unless already present.
func (n *Node) AddTag(tag string) {
	if !n.HasTag(tag) {
		n.Tags = append(n.Tags, tag)
	}
}

// Flagged reports whether the node carries the review-flag marker.
func (n *Node) Flagged() bool {
	return n.HasTag(FlagTag)
}

// SetFlagged marks the node for review. A non-empty note is stored as a
// property with newlines escaped so the drawer stays single-line per key.
func (n *Node) SetFlagged(note string) {
	n.AddTag(FlagTag)
	if note != "" {
		n.SetProperty(FlagNoteProp, strings.ReplaceAll(note, "\n", `\n`))
	}
}

// FlagNote returns the stored review note with newline escapes undone.
func (n *Node) FlagNote() string {
	note, _ := n.Property(FlagNoteProp)
	return strings.ReplaceAll(note, `\n`, "\n")
}

// SetLevel moves the node (and its subtree) to level, shifting every
// descendant by the same amount.
func (n *Node) SetLevel(level int) {
	delta := level - n.Level
	n.walk(func(c *Node) {
		c.Level += delta
	})
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Document is a file-backed tree of outline nodes. Preamble holds everything
// before the first heading (file-level keywords, the pull marker line).
type Document struct {
	Path     string
	Preamble string
	Nodes    []*Node

	// Stamped is set once the change-marker line has been written during the
	// current pull pass, so repeat requests against the same document do not
	// re-stamp it.
	Stamped bool
}

// Walk visits every node in the document in preorder.
func (d *Document) Walk(fn func(*Node)) {
	for _, n := range d.Nodes {
		n.walk(fn)
	}
}

// Outline returns every node of the document in preorder.
func (d *Document) Outline() []*Node {
	var out []*Node
	d.Walk(func(n *Node) { out = append(out, n) })
	return out
}

// FindID returns the node carrying the identifier, or nil.
func (d *Document) FindID(id string) *Node {
	var found *Node
	d.Walk(func(n *Node) {
		if found == nil && n.ID() == id {
			found = n
		}
	})
	return found
}

// FindPath resolves a heading path level by level. At each level exactly one
// node among the candidates must match the heading text: zero matches is a
// not-found error, more than one is a not-unique error.
func (d *Document) FindPath(names []string) (*Node, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty outline path in %s", ErrHeadingNotFound, d.Path)
	}
	candidates := d.Nodes
	var match *Node
	for depth, name := range names {
		match = nil
		count := 0
		for _, n := range candidates {
			if n.Heading == name {
				count++
				match = n
			}
		}
		switch {
		case count == 0:
			return nil, fmt.Errorf("%w: heading %q (level %d) in %s", ErrHeadingNotFound, name, depth+1, d.Path)
		case count > 1:
			return nil, fmt.Errorf("%w: heading %q (level %d) in %s matches %d entries", ErrHeadingNotUnique, name, depth+1, d.Path, count)
		}
		candidates = match.Children
	}
	return match, nil
}

// Remove detaches node from the document tree. It reports whether the node
// was found.
func (d *Document) Remove(node *Node) bool {
	if node.Parent != nil {
		for i, c := range node.Parent.Children {
			if c == node {
				node.Parent.Children = append(node.Parent.Children[:i], node.Parent.Children[i+1:]...)
				node.Parent = nil
				return true
			}
		}
		return false
	}
	for i, c := range d.Nodes {
		if c == node {
			d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Append attaches node as a new top-level entry, releveling its subtree.
func (d *Document) Append(node *Node) {
	node.Parent = nil
	node.SetLevel(1)
	d.Nodes = append(d.Nodes, node)
}

// Stamp prepends or refreshes the pull-marker comment in the preamble. The
// marker guarantees the file's digest changes even when no request against it
// ends up applying. It reports whether the document was newly stamped during
// this pass.
func (d *Document) Stamp(marker string) bool {
	if d.Stamped {
		return false
	}
	line := "# pulled: " + marker
	lines := strings.Split(d.Preamble, "\n")
	replaced := false
	for i, l := range lines {
		if strings.HasPrefix(l, "# pulled: ") {
			lines[i] = line
			replaced = true
			break
		}
	}
	if replaced {
		d.Preamble = strings.Join(lines, "\n")
	} else {
		d.Preamble = line + "\n" + d.Preamble
	}
	d.Stamped = true
	return true
}

// TagsEqual compares two tag lists as unordered sets.
func TagsEqual(a, b []string) bool {
	set := make(map[string]int, len(a))
	for _, t := range a {
		set[t]++
	}
	for _, t := range b {
		if set[t] == 0 {
			return false
		}
		set[t]--
	}
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return true
}

// NormalizeBody reduces a body block to a canonical form for equality checks:
// surrounding blank lines dropped, each line trimmed, runs of blank lines
// collapsed. Cosmetic reflow of whitespace never looks like a content change.
func NormalizeBody(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, l)
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
