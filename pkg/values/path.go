// Package values provides path-addressed access into nested value stores.
//
// A path is a dotted sequence of keys with optional bracket indexes, e.g.
// "address.city" or "items[0].name". Maps are map[string]any and lists are []any,
// which is what JSON, YAML and form decoders produce.
package values

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxIndex is the largest bracket index a path may address.
// Set fills the gap up to the index, so it bounds the list a single path can allocate.
const MaxIndex = 1024

// ErrInvalidPath is wrapped by every path parsing error.
var ErrInvalidPath = errors.New("invalid path")

type segment struct {
	key   string
	index int
	isIdx bool
}

// Parse splits a path into its segments.
func Parse(path string) ([]string, error) {
	segs, err := parse(path)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.key
	}
	return out, nil
}

func parse(path string) ([]segment, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	var segs []segment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("%w %q: empty segment", ErrInvalidPath, path)
		}
		name, rest, _ := strings.Cut(part, "[")
		if name != "" {
			segs = append(segs, segment{key: name})
		}
		for rest != "" {
			idx, tail, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, fmt.Errorf("%w %q: unclosed bracket", ErrInvalidPath, path)
			}
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w %q: bad index %q", ErrInvalidPath, path, idx)
			}
			if n > MaxIndex {
				return nil, fmt.Errorf("%w %q: index %d exceeds %d", ErrInvalidPath, path, n, MaxIndex)
			}
			segs = append(segs, segment{key: idx, index: n, isIdx: true})
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return segs, nil
}

// Get returns the value stored at path and whether it was present.
func Get(store map[string]any, path string) (any, bool) {
	segs, err := parse(path)
	if err != nil || store == nil {
		return nil, false
	}

	var current any = store
	for _, s := range segs {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[s.key]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			if !s.isIdx || s.index >= len(node) {
				return nil, false
			}
			current = node[s.index]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set stores value at path, creating intermediate maps (or lists for bracket indexes).
// Scalars found on the way are replaced.
func Set(store map[string]any, path string, value any) error {
	if store == nil {
		return fmt.Errorf("nil store")
	}
	segs, err := parse(path)
	if err != nil {
		return err
	}
	if segs[0].isIdx {
		return fmt.Errorf("%w %q: must start with a key", ErrInvalidPath, path)
	}
	store[segs[0].key] = setIn(store[segs[0].key], segs[1:], value)
	return nil
}

func setIn(node any, segs []segment, value any) any {
	if len(segs) == 0 {
		return value
	}
	s := segs[0]

	if s.isIdx {
		list, _ := node.([]any)
		for len(list) <= s.index {
			list = append(list, nil)
		}
		list[s.index] = setIn(list[s.index], segs[1:], value)
		return list
	}

	m, ok := node.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	m[s.key] = setIn(m[s.key], segs[1:], value)
	return m
}

// Merge applies a flat path → value patch onto store.
func Merge(store map[string]any, patch map[string]any) error {
	for path, v := range patch {
		if err := Set(store, path, v); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// Lookup adapts a store to the lookup function used by conditional successors.
func Lookup(store map[string]any) func(string) (any, bool) {
	return func(path string) (any, bool) {
		return Get(store, path)
	}
}
