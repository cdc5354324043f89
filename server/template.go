package server

import (
	"fmt"
	"strings"
)

// Template is a compiled resource URI template such as "quote://{category}".
// Matching is structural: the scheme must be equal, the path must have the
// same number of "/"-separated segments, literal segments must be equal and
// each placeholder consumes exactly one non-empty segment.
type Template struct {
	raw      string
	scheme   string
	segments []segment
}

type segment struct {
	literal string
	param   string // set for placeholders
}

// ParseTemplate compiles a URI template.
func ParseTemplate(raw string) (*Template, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("template %q: missing scheme", raw)
	}

	t := &Template{raw: raw, scheme: scheme}
	seen := make(map[string]bool)

	for _, part := range strings.Split(rest, "/") {
		open := strings.IndexByte(part, '{')
		end := strings.IndexByte(part, '}')

		switch {
		case open == -1 && end == -1:
			t.segments = append(t.segments, segment{literal: part})
		case open == 0 && end == len(part)-1 && len(part) > 2:
			name := part[1 : len(part)-1]
			if strings.ContainsAny(name, "{}") {
				return nil, fmt.Errorf("template %q: malformed placeholder %q", raw, part)
			}
			if seen[name] {
				return nil, fmt.Errorf("template %q: placeholder %q repeated", raw, name)
			}
			seen[name] = true
			t.segments = append(t.segments, segment{param: name})
		default:
			return nil, fmt.Errorf("template %q: placeholder must fill a whole segment: %q", raw, part)
		}
	}

	return t, nil
}

// String returns the template source.
func (t *Template) String() string {
	return t.raw
}

// Params returns the placeholder names in order.
func (t *Template) Params() []string {
	var names []string
	for _, s := range t.segments {
		if s.param != "" {
			names = append(names, s.param)
		}
	}
	return names
}

// IsTemplated reports whether the template has any placeholder.
func (t *Template) IsTemplated() bool {
	return len(t.Params()) > 0
}

// Match matches uri against the template and extracts placeholder values.
func (t *Template) Match(uri string) (map[string]string, bool) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok || scheme != t.scheme {
		return nil, false
	}

	parts := strings.Split(rest, "/")
	if len(parts) != len(t.segments) {
		return nil, false
	}

	values := make(map[string]string)
	for i, s := range t.segments {
		if s.param == "" {
			if parts[i] != s.literal {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		values[s.param] = parts[i]
	}

	return values, true
}
