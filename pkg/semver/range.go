package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator is a version range comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpTilde
	OpCaret
	OpWildcard
)

func (o Operator) String() string {
	return []string{"=", "!=", "<", "<=", ">", ">=", "~", "^", "wildcard"}[o]
}

// Range is a pure predicate over versions parsed from constraint text.
type Range struct {
	Raw      string
	Operator Operator
	Version  Version

	// wildcardDepth records how many leading fields are fixed for a
	// wildcard range: 0 matches everything, 1 fixes major, 2 fixes
	// major.minor.
	wildcardDepth int
}

// ParseRange parses constraint text into a Range. Supported forms are the
// comparison operators (=, !=, <, <=, >, >=), tilde and caret ranges, and
// wildcard versions such as "1.2.x", "1.*" or "*".
func ParseRange(text string) (Range, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Range{}, &ParseError{Input: text, Reason: "empty range"}
	}

	op := OpEqual
	rest := raw
	switch {
	case strings.HasPrefix(raw, ">="):
		op, rest = OpGreaterEqual, raw[2:]
	case strings.HasPrefix(raw, "<="):
		op, rest = OpLessEqual, raw[2:]
	case strings.HasPrefix(raw, "!="):
		op, rest = OpNotEqual, raw[2:]
	case strings.HasPrefix(raw, ">"):
		op, rest = OpGreater, raw[1:]
	case strings.HasPrefix(raw, "<"):
		op, rest = OpLess, raw[1:]
	case strings.HasPrefix(raw, "="):
		op, rest = OpEqual, raw[1:]
	case strings.HasPrefix(raw, "~"):
		op, rest = OpTilde, raw[1:]
	case strings.HasPrefix(raw, "^"):
		op, rest = OpCaret, raw[1:]
	}
	rest = strings.TrimSpace(rest)

	if op == OpEqual && hasWildcard(rest) {
		v, depth, err := parseWildcard(text, rest)
		if err != nil {
			return Range{}, err
		}
		return Range{Raw: raw, Operator: OpWildcard, Version: v, wildcardDepth: depth}, nil
	}

	v, err := Parse(rest)
	if err != nil {
		return Range{}, &ParseError{Input: text, Reason: err.(*ParseError).Reason}
	}
	return Range{Raw: raw, Operator: op, Version: v}, nil
}

func hasWildcard(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if isWildcardSegment(part) {
			return true
		}
	}
	return false
}

func isWildcardSegment(s string) bool {
	return s == "x" || s == "X" || s == "*"
}

// parseWildcard handles "*", "1", "1.x", "1.2.x" and friends. A wildcard
// segment widens that field and all lower fields to match anything at or
// above zero.
func parseWildcard(input, text string) (Version, int, error) {
	parts := strings.Split(text, ".")
	if len(parts) > 3 {
		return Version{}, 0, &ParseError{Input: input, Reason: "too many version fields"}
	}

	var fields [3]int
	depth := 0
	for i, part := range parts {
		if isWildcardSegment(part) {
			break
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, 0, &ParseError{Input: input, Reason: fmt.Sprintf("non-numeric field %q", part)}
		}
		fields[i] = n
		depth = i + 1
	}

	return Version{Major: fields[0], Minor: fields[1], Patch: fields[2]}, depth, nil
}

// Satisfies reports whether v matches the range predicate.
func (r Range) Satisfies(v Version) bool {
	switch r.Operator {
	case OpEqual:
		return v.Compare(r.Version) == 0
	case OpNotEqual:
		return v.Compare(r.Version) != 0
	case OpLess:
		return v.Compare(r.Version) < 0
	case OpLessEqual:
		return v.Compare(r.Version) <= 0
	case OpGreater:
		return v.Compare(r.Version) > 0
	case OpGreaterEqual:
		return v.Compare(r.Version) >= 0
	case OpTilde:
		// ~X.Y.Z means >=X.Y.Z <X.(Y+1).0
		upper := Version{Major: r.Version.Major, Minor: r.Version.Minor + 1}
		return v.Compare(r.Version) >= 0 && v.Compare(upper) < 0
	case OpCaret:
		// ^X.Y.Z means >=X.Y.Z <(X+1).0.0
		upper := Version{Major: r.Version.Major + 1}
		return v.Compare(r.Version) >= 0 && v.Compare(upper) < 0
	case OpWildcard:
		switch r.wildcardDepth {
		case 0:
			return true
		case 1:
			return v.Major == r.Version.Major
		default:
			return v.Major == r.Version.Major && v.Minor == r.Version.Minor
		}
	}
	return false
}

// Satisfies is a convenience wrapper parsing the range text and testing v
// against it.
func Satisfies(v Version, rangeText string) (bool, error) {
	r, err := ParseRange(rangeText)
	if err != nil {
		return false, err
	}
	return r.Satisfies(v), nil
}
