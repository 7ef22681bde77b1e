package formsync

import (
	"regexp"
	"strconv"
	"strings"
)

var segmentPattern = regexp.MustCompile(`^\[([a-zA-Z0-9_-]+)\]`)

// ResolveFieldName splits a bracket field name into its top-level key and a
// dotted path: "user[0][email]" resolves to ("user", "0.email") and "simple"
// to ("simple", ""). Anything left over after the bracket groups is an error.
func ResolveFieldName(name string) (base, path string, err error) {
	if strings.TrimSpace(name) == "" {
		return "", "", &FieldNameError{Name: name, Reason: "must not be empty"}
	}

	open := strings.IndexByte(name, '[')
	if open < 0 {
		if strings.ContainsRune(name, ']') {
			return "", "", &FieldNameError{Name: name, Reason: "unbalanced ']'"}
		}
		return name, "", nil
	}
	base = name[:open]
	if strings.TrimSpace(base) == "" {
		return "", "", &FieldNameError{Name: name, Reason: "missing base name"}
	}
	if strings.ContainsRune(base, ']') {
		return "", "", &FieldNameError{Name: name, Reason: "unbalanced ']'"}
	}

	var segments []string
	rest := name[open:]
	for rest != "" {
		match := segmentPattern.FindStringSubmatch(rest)
		if match == nil {
			return "", "", &FieldNameError{Name: name, Reason: "malformed segment near " + strconv.Quote(rest)}
		}
		segments = append(segments, match[1])
		rest = rest[len(match[0]):]
	}
	return base, strings.Join(segments, "."), nil
}

// ValidFieldName reports whether ResolveFieldName accepts name.
func ValidFieldName(name string) bool {
	_, _, err := ResolveFieldName(name)
	return err == nil
}
