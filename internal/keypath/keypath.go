// Package keypath implements dotted key paths and their resolution against parsed records.
//
// A path such as "http.request.method" is split on '.' into segments. There is no
// escaping: a key that itself contains a dot cannot be addressed past its first segment.
// Arrays are opaque leaves; a segment never indexes into an array.
package keypath

import (
	"strings"

	"github.com/simao/jaxe/internal/model"
)

// Separator splits a dotted key into segments.
const Separator = "."

// Path is an ordered sequence of object keys.
type Path []string

// Parse splits a dotted key into a Path. Empty segments produced by leading, trailing
// or doubled dots are kept; they only resolve against an empty key.
func Parse(key string) Path {
	return Path(strings.Split(key, Separator))
}

// ParseAll parses every key of keys, skipping empty strings.
func ParseAll(keys []string) []Path {
	paths := make([]Path, 0, len(keys))

	for _, key := range keys {
		if key == "" {
			continue
		}

		paths = append(paths, Parse(key))
	}

	return paths
}

// String joins the segments back into a dotted key.
func (p Path) String() string {
	return strings.Join(p, Separator)
}

// IsTopLevel reports whether p addresses a top-level key.
func (p Path) IsTopLevel() bool {
	return len(p) == 1
}

// Equal reports whether p and other have the same segments.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// Resolve walks p through obj. Every step must land on an object holding the next key.
// The result is the value at the end of the walk, which may be null.
// An empty path does not resolve.
func Resolve(obj model.Value, p Path) (model.Value, bool) {
	if len(p) == 0 {
		return model.Value{}, false
	}

	current := obj

	for _, segment := range p {
		if !current.IsObject() {
			return model.Value{}, false
		}

		next, ok := current.Get(segment)
		if !ok {
			return model.Value{}, false
		}

		current = next
	}

	return current, true
}

// Contains reports whether paths holds a path equal to p.
func Contains(paths []Path, p Path) bool {
	for _, candidate := range paths {
		if candidate.Equal(p) {
			return true
		}
	}

	return false
}
