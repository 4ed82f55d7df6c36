package keypath

import (
	"slices"
	"strings"
)

// Separator splits dotted path strings into segments.
const Separator = "."

// Path is an ordered sequence of mapping keys addressing one location in a
// nested configuration. The empty Path addresses the configuration root.
//
// Paths are values: methods that derive a new Path never share the backing
// array with the receiver.
type Path []string

// New builds a Path from explicit segments. Segments may contain the
// separator, which Parse cannot express.
func New(segments ...string) Path {
	if len(segments) == 0 {
		return nil
	}
	return slices.Clone(Path(segments))
}

// Parse splits a dotted string ("a.b.c") into a Path.
// The empty string parses to the root path.
func Parse(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, Separator))
}

// ParseAll parses every string in ss.
func ParseAll(ss ...string) []Path {
	paths := make([]Path, 0, len(ss))
	for _, s := range ss {
		paths = append(paths, Parse(s))
	}
	return paths
}

// String joins the segments with the separator.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// IsRoot reports whether p addresses the configuration root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the path without its last segment.
// The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return slices.Clone(p[:len(p)-1])
}

// Last returns the final segment, or "" for the root.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Join returns a new path with segs appended.
func (p Path) Join(segs ...string) Path {
	out := make(Path, 0, len(p)+len(segs))
	out = append(out, p...)
	return append(out, segs...)
}

// Append returns a new path with every segment of q appended.
func (p Path) Append(q Path) Path {
	return p.Join(q...)
}

// HasPrefix reports whether q is a prefix of p (every path has the root prefix).
func (p Path) HasPrefix(q Path) bool {
	if len(q) > len(p) {
		return false
	}
	return slices.Equal(p[:len(q)], q)
}

// Equal reports whether p and q address the same location.
func (p Path) Equal(q Path) bool {
	return slices.Equal(p, q)
}

// Contains reports whether paths includes p.
func Contains(paths []Path, p Path) bool {
	for _, q := range paths {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// Strings renders each path in dotted form.
func Strings(paths []Path) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.String())
	}
	return out
}
