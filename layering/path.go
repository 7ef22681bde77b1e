package layering

import (
	"fmt"
	"strconv"
	"strings"
)

// Segments splits a dotted path ("0.email") into its parts. Empty parts are
// dropped so "a..b" and "a.b" address the same location.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetPath resolves a dotted path inside root. Numeric segments index into
// slices; every other segment is a map key.
func GetPath(root any, path string) (any, bool) {
	segments := Segments(path)
	if len(segments) == 0 {
		return root, root != nil
	}
	current := root
	for _, segment := range segments {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		case []string:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// SetPath writes value at path inside root and returns the updated root.
// Missing intermediates are created: a numeric next segment creates a []any,
// any other segment creates a map[string]any. Slices grow as needed and
// scalar intermediates are replaced by containers. root is modified in place
// where possible; callers that need isolation should Clone it first.
func SetPath(root any, path string, value any) (any, error) {
	segments := Segments(path)
	if len(segments) == 0 {
		return value, nil
	}
	return setSegments(root, segments, value)
}

func setSegments(node any, segments []string, value any) (any, error) {
	segment := segments[0]
	rest := segments[1:]

	idx, numeric := index(segment)
	if node == nil {
		if numeric {
			node = []any{}
		} else {
			node = map[string]any{}
		}
	}

	switch typed := node.(type) {
	case map[string]any:
		if len(rest) == 0 {
			typed[segment] = value
			return typed, nil
		}
		child, err := setSegments(containerOrNil(typed[segment]), rest, value)
		if err != nil {
			return nil, err
		}
		typed[segment] = child
		return typed, nil
	case []any:
		if !numeric {
			return nil, fmt.Errorf("layering: expected numeric segment for list, got %q", segment)
		}
		if len(typed) <= idx {
			typed = append(typed, make([]any, idx+1-len(typed))...)
		}
		if len(rest) == 0 {
			typed[idx] = value
			return typed, nil
		}
		child, err := setSegments(containerOrNil(typed[idx]), rest, value)
		if err != nil {
			return nil, err
		}
		typed[idx] = child
		return typed, nil
	case []string:
		items := make([]any, len(typed))
		for i, item := range typed {
			items[i] = item
		}
		return setSegments(items, segments, value)
	default:
		// scalar in the way of a nested write: replace it with a container
		return setSegments(nil, segments, value)
	}
}

// DeletePath removes the value addressed by path and returns the updated
// root. Slice elements are set to nil rather than removed so sibling indexes
// stay stable.
func DeletePath(root any, path string) any {
	segments := Segments(path)
	if len(segments) == 0 {
		return nil
	}
	parent, ok := GetPath(root, strings.Join(segments[:len(segments)-1], "."))
	if len(segments) == 1 {
		parent, ok = root, root != nil
	}
	if !ok {
		return root
	}
	last := segments[len(segments)-1]
	switch node := parent.(type) {
	case map[string]any:
		delete(node, last)
	case []any:
		if idx, numeric := index(last); numeric && idx < len(node) {
			node[idx] = nil
		}
	}
	return root
}

func containerOrNil(value any) any {
	switch value.(type) {
	case map[string]any, []any, []string:
		return value
	default:
		return nil
	}
}

func index(segment string) (int, bool) {
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}
