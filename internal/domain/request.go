package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ByteSpan locates an inbox entry inside the inbox file.
type ByteSpan struct {
	Start int
	End   int
}

// TargetRef identifies the canonical node a change request addresses: either
// directly by stable identifier, or by a file plus a heading path rooted at
// that file's top level.
type TargetRef struct {
	ID   string
	File string
	Path []string
}

// ByID reports whether the target uses the identifier scheme.
func (t TargetRef) ByID() bool { return t.ID != "" }

func (t TargetRef) String() string {
	if t.ByID() {
		return "id:" + t.ID
	}
	return "olp:" + t.File + ":" + strings.Join(t.Path, "/")
}

// ChangeRequest is one remote-authored instruction parsed from the inbox.
// Old and New are nil when the corresponding value block was absent, meaning
// that side is unconstrained rather than empty.
type ChangeRequest struct {
	Action  string
	Payload string
	Target  TargetRef
	Old     *string
	New     *string
	Note    string
	Span    ByteSpan

	// Entry is the inbox node the request was parsed from; it is deleted on
	// success and annotated in place on failure.
	Entry *Node

	// Doc and Node are filled in by target resolution; Err records a
	// resolution failure instead of aborting the pass.
	Doc  *Document
	Node *Node
	Err  error
}

// Flag-entry headings look like: F(action[:payload]) [[target][title]]
var flagHeadingRe = regexp.MustCompile(`^F\(([A-Za-z0-9]*)(?::([^)]*))?\)\s+\[\[([^\]]+)\](?:\[([^\]]*)\])?\]`)

// IsFlagHeading reports whether a heading line introduces a change request
// rather than a plain capture.
func IsFlagHeading(heading string) bool {
	return strings.HasPrefix(heading, "F(")
}

// ParseFlagHeading parses the action, payload and target reference out of a
// flag-entry heading.
func ParseFlagHeading(heading string) (*ChangeRequest, error) {
	m := flagHeadingRe.FindStringSubmatch(heading)
	if m == nil {
		return nil, fmt.Errorf("malformed flag entry: %q", heading)
	}
	target, err := ParseTarget(m[3])
	if err != nil {
		return nil, err
	}
	return &ChangeRequest{
		Action:  m[1],
		Payload: m[2],
		Target:  target,
	}, nil
}

// ParseTarget parses the inner part of a target link, either
// "id:<identifier>" or "olp:<file>:<heading>/<heading>...". File and heading
// segments use URL escaping so names may contain "/" and ":".
func ParseTarget(link string) (TargetRef, error) {
	switch {
	case strings.HasPrefix(link, "id:"):
		id := strings.TrimPrefix(link, "id:")
		if id == "" {
			return TargetRef{}, fmt.Errorf("empty identifier target")
		}
		return TargetRef{ID: id}, nil

	case strings.HasPrefix(link, "olp:"):
		rest := strings.TrimPrefix(link, "olp:")
		parts := strings.SplitN(rest, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return TargetRef{}, fmt.Errorf("malformed outline path target: %q", link)
		}
		file, err := url.PathUnescape(parts[0])
		if err != nil {
			return TargetRef{}, fmt.Errorf("outline path target file: %w", err)
		}
		var path []string
		for _, seg := range strings.Split(parts[1], "/") {
			s, err := url.PathUnescape(seg)
			if err != nil {
				return TargetRef{}, fmt.Errorf("outline path segment %q: %w", seg, err)
			}
			path = append(path, s)
		}
		return TargetRef{File: file, Path: path}, nil

	default:
		return TargetRef{}, fmt.Errorf("unsupported target scheme in %q", link)
	}
}

// ParseTagList splits a remote tag encoding into individual tags. The remote
// client joins tags with ":"; commas and whitespace are tolerated as well.
func ParseTagList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	var tags []string
	for _, f := range fields {
		if f != "" {
			tags = append(tags, f)
		}
	}
	return tags
}
