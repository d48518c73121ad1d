// Package semver implements the semantic version algebra used throughout
// the engine: parsing and formatting of MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]
// version strings, precedence comparison, segment increments, and range
// constraints with satisfaction checks.
//
// Versions are immutable value types. Comparison follows SemVer 2.0
// precedence: numeric fields compare numerically, a prerelease sorts below
// the bare triple, prerelease identifiers compare identifier-by-identifier
// with numeric identifiers below alphanumeric ones, and build metadata is
// ignored entirely. The resulting order is total, which matrix construction
// and history reporting rely on for determinism.
//
// Ranges support the comparison operators (=, !=, <, <=, >, >=), tilde and
// caret shorthands, and wildcard versions:
//
//	ok, err := semver.Satisfies(semver.MustParse("1.5.0"), "^1.2.0") // true
//
// Malformed input fails fast with a *ParseError naming the offending text;
// there is no best-effort parsing.
package semver
