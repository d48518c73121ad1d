package semver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Version is an immutable semantic version value.
// Build metadata never participates in comparison or equality.
type Version struct {
	Major      int      `json:"major" yaml:"major"`
	Minor      int      `json:"minor" yaml:"minor"`
	Patch      int      `json:"patch" yaml:"patch"`
	Prerelease []string `json:"prerelease,omitempty" yaml:"prerelease,omitempty"`
	Build      []string `json:"build,omitempty" yaml:"build,omitempty"`
}

// ParseError reports malformed version or range text. It always names the
// offending input; there is no partial or best-effort parsing.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid version %q: %s", e.Input, e.Reason)
}

// BumpType selects which version segment an increment operates on.
type BumpType int

const (
	BumpMajor BumpType = iota
	BumpMinor
	BumpPatch
	BumpPrerelease
)

func (b BumpType) String() string {
	return []string{"major", "minor", "patch", "prerelease"}[b]
}

// ParseBumpType converts a string to a BumpType.
func ParseBumpType(s string) (BumpType, error) {
	switch strings.ToLower(s) {
	case "major":
		return BumpMajor, nil
	case "minor":
		return BumpMinor, nil
	case "patch":
		return BumpPatch, nil
	case "prerelease", "pre":
		return BumpPrerelease, nil
	}
	return BumpPatch, fmt.Errorf("unknown bump type: %s", s)
}

// Parse parses text in the exact MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]
// grammar. MAJOR/MINOR/PATCH are non-negative integers without leading
// zeros; prerelease and build are dot-separated alphanumeric-or-hyphen
// identifiers. Anything else fails with a *ParseError.
func Parse(text string) (Version, error) {
	rest := text

	var build []string
	if i := strings.IndexByte(rest, '+'); i >= 0 {
		var err error
		build, err = parseIdentifiers(text, rest[i+1:], false)
		if err != nil {
			return Version{}, err
		}
		rest = rest[:i]
	}

	var prerelease []string
	if i := strings.IndexByte(rest, '-'); i >= 0 {
		var err error
		prerelease, err = parseIdentifiers(text, rest[i+1:], true)
		if err != nil {
			return Version{}, err
		}
		rest = rest[:i]
	}

	parts := strings.Split(rest, ".")
	if len(parts) != 3 {
		return Version{}, &ParseError{Input: text, Reason: "expected MAJOR.MINOR.PATCH"}
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := parseNumericField(text, part)
		if err != nil {
			return Version{}, err
		}
		nums[i] = n
	}

	return Version{
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: prerelease,
		Build:      build,
	}, nil
}

// MustParse parses text and panics on error. Intended for constants and
// tests.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

func parseNumericField(input, part string) (int, error) {
	if part == "" {
		return 0, &ParseError{Input: input, Reason: "empty numeric field"}
	}
	if len(part) > 1 && part[0] == '0' {
		return 0, &ParseError{Input: input, Reason: fmt.Sprintf("leading zero in %q", part)}
	}
	n, err := strconv.Atoi(part)
	if err != nil || n < 0 {
		return 0, &ParseError{Input: input, Reason: fmt.Sprintf("non-numeric field %q", part)}
	}
	return n, nil
}

// parseIdentifiers validates a dot-separated identifier sequence.
// Numeric prerelease identifiers must not carry leading zeros; build
// identifiers are opaque and allow them.
func parseIdentifiers(input, text string, prerelease bool) ([]string, error) {
	if text == "" {
		return nil, &ParseError{Input: input, Reason: "empty identifier sequence"}
	}
	parts := strings.Split(text, ".")
	for _, id := range parts {
		if id == "" {
			return nil, &ParseError{Input: input, Reason: "empty identifier"}
		}
		for _, r := range id {
			if !isIdentifierRune(r) {
				return nil, &ParseError{Input: input, Reason: fmt.Sprintf("invalid character %q in identifier %q", r, id)}
			}
		}
		if prerelease && isNumeric(id) && len(id) > 1 && id[0] == '0' {
			return nil, &ParseError{Input: input, Reason: fmt.Sprintf("leading zero in prerelease identifier %q", id)}
		}
	}
	return parts, nil
}

func isIdentifierRune(r rune) bool {
	return r == '-' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats the version; it is the exact inverse of Parse.
func (v Version) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d.%d.%d", v.Major, v.Minor, v.Patch)
	if len(v.Prerelease) > 0 {
		sb.WriteByte('-')
		sb.WriteString(strings.Join(v.Prerelease, "."))
	}
	if len(v.Build) > 0 {
		sb.WriteByte('+')
		sb.WriteString(strings.Join(v.Build, "."))
	}
	return sb.String()
}

// Compare returns -1, 0 or 1 ordering v against other. Major, minor and
// patch compare numerically; a version with a prerelease sorts below the
// same triple without one; prerelease identifiers compare per SemVer 2.0
// precedence rules. Build metadata is ignored. The result is a total order.
func (v Version) Compare(other Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}
	return comparePrerelease(v.Prerelease, other.Prerelease)
}

// Equal reports whether two versions have the same precedence. Build
// metadata is excluded.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// LessThan reports whether v has lower precedence than other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func comparePrerelease(a, b []string) int {
	switch {
	case len(a) == 0 && len(b) == 0:
		return 0
	case len(a) == 0:
		// Release outranks any prerelease of the same triple.
		return 1
	case len(b) == 0:
		return -1
	}

	for i := 0; i < len(a) && i < len(b); i++ {
		if c := comparePrereleaseIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	// A shorter sequence that is a prefix of a longer one sorts lower.
	return compareInt(len(a), len(b))
}

func comparePrereleaseIdentifier(a, b string) int {
	aNum, bNum := isNumeric(a), isNumeric(b)
	switch {
	case aNum && bNum:
		ai, _ := strconv.Atoi(a)
		bi, _ := strconv.Atoi(b)
		return compareInt(ai, bi)
	case aNum:
		// Numeric identifiers sort below alphanumeric ones.
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(a, b)
}

// Increment returns a new version with the given segment bumped.
// Major/minor/patch bumps zero out all lower fields; a prerelease bump
// increments the trailing numeric identifier (appending "0" when the
// trailing identifier is not numeric) or, absent any prerelease, bumps
// patch and starts one at "0". Build metadata is always cleared.
func (v Version) Increment(kind BumpType) Version {
	switch kind {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	case BumpPrerelease:
		return v.incrementPrerelease()
	}
	return v
}

func (v Version) incrementPrerelease() Version {
	if len(v.Prerelease) == 0 {
		return Version{
			Major:      v.Major,
			Minor:      v.Minor,
			Patch:      v.Patch + 1,
			Prerelease: []string{"0"},
		}
	}

	pre := make([]string, len(v.Prerelease))
	copy(pre, v.Prerelease)
	last := pre[len(pre)-1]
	if isNumeric(last) {
		n, _ := strconv.Atoi(last)
		pre[len(pre)-1] = strconv.Itoa(n + 1)
	} else {
		pre = append(pre, "0")
	}

	return Version{
		Major:      v.Major,
		Minor:      v.Minor,
		Patch:      v.Patch,
		Prerelease: pre,
	}
}

// Sort orders versions in place by ascending precedence. Ordering is
// deterministic because Compare is a total order.
func Sort(versions []Version) {
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].Compare(versions[j]) < 0
	})
}
