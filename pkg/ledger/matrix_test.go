package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func versions(texts ...string) []semver.Version {
	out := make([]semver.Version, len(texts))
	for i, t := range texts {
		out[i] = semver.MustParse(t)
	}
	return out
}

func versionStrings(vs []semver.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}

func pingContract() *contract.Definition {
	return &contract.Definition{
		ID:   "ping",
		Name: "Ping",
		Output: &contract.Schema{
			Kind: contract.KindObject,
			Properties: map[string]*contract.Schema{
				"pong": {Kind: contract.KindPrimitive, Type: contract.TypeBoolean},
			},
		},
	}
}

func sameContractsFor(vs []semver.Version) map[string]map[string]*contract.Definition {
	out := make(map[string]map[string]*contract.Definition, len(vs))
	for _, v := range vs {
		out[v.String()] = map[string]*contract.Definition{"ping": pingContract()}
	}
	return out
}

func TestBuildCompatibilityMatrix_SupportWindowBuckets(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	l.SetSupportWindow(SupportWindow{
		CurrentVersion:     semver.MustParse("2.0.0"),
		MinimumSupported:   semver.MustParse("1.0.0"),
		RecommendedMinimum: semver.MustParse("1.4.0"),
		EndOfLife: []EndOfLife{
			{Version: semver.MustParse("0.9.0"), EndDate: time.Now(), Reason: "pre-1.0"},
		},
	})

	known := versions("0.9.0", "1.0.0", "1.2.0", "1.3.5", "1.4.0", "1.5.0", "2.0.0")
	matrix := l.BuildCompatibilityMatrix(semver.MustParse("2.0.0"), known, sameContractsFor(known))

	assert.Equal(t, []string{"0.9.0"}, versionStrings(matrix.Unsupported))
	assert.Equal(t, []string{"1.0.0", "1.2.0", "1.3.5"}, versionStrings(matrix.Deprecated))
	assert.Equal(t, []string{"1.4.0", "1.5.0"}, versionStrings(matrix.Compatible))
	assert.NotContains(t, versionStrings(matrix.Compatible), "2.0.0", "source is never its own target")
}

func TestBuildCompatibilityMatrix_GeneratesMigrationPaths(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)

	known := versions("1.0.0", "2.0.0")
	contracts := map[string]map[string]*contract.Definition{
		"1.0.0": {"ping": pingContract()},
		"2.0.0": {}, // ping removed: breaking
	}

	matrix := l.BuildCompatibilityMatrix(semver.MustParse("1.0.0"), known, contracts)

	assert.Equal(t, []string{"2.0.0"}, versionStrings(matrix.Unsupported))
	require.Contains(t, matrix.MigrationPaths, "2.0.0")
	path := matrix.MigrationPaths["2.0.0"]
	assert.Equal(t, "1.0.0", path.FromVersion.String())
	assert.Equal(t, "2.0.0", path.ToVersion.String())
	assert.NotEmpty(t, path.Steps)
}

func TestBuildCompatibilityMatrix_BackwardCompatShortcut(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)

	// 2.1.0 -> 2.0.0 has a removed contract, but the heuristic skips the
	// diff for lower minors of the same major.
	known := versions("2.0.0", "2.1.0")
	contracts := map[string]map[string]*contract.Definition{
		"2.1.0": {"ping": pingContract()},
		"2.0.0": {},
	}

	matrix := l.BuildCompatibilityMatrix(semver.MustParse("2.1.0"), known, contracts)
	assert.Equal(t, []string{"2.0.0"}, versionStrings(matrix.Compatible))
	assert.Empty(t, matrix.MigrationPaths)
}

func TestIsBackwardCompatible(t *testing.T) {
	tests := []struct {
		source, target string
		want           bool
	}{
		{"2.1.0", "1.9.0", true},
		{"2.1.0", "2.0.0", true},
		{"2.1.0", "2.1.5", true},
		{"2.1.0", "2.2.0", false},
		{"2.1.0", "3.0.0", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsBackwardCompatible(semver.MustParse(tt.source), semver.MustParse(tt.target)),
			"source=%s target=%s", tt.source, tt.target)
	}
}

func TestMatrixFor_CachesAndInvalidates(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	known := versions("1.0.0", "1.1.0")
	contracts := sameContractsFor(known)
	source := semver.MustParse("1.1.0")

	first := l.MatrixFor(source, known, contracts)
	second := l.MatrixFor(source, known, contracts)
	assert.Same(t, first, second, "second lookup must hit the cache")

	l.Invalidate(source)
	third := l.MatrixFor(source, known, contracts)
	assert.NotSame(t, first, third, "invalidation must force a rebuild")
}

func TestRecordVersion_AdvancesCurrentOnly(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	l.SetSupportWindow(SupportWindow{CurrentVersion: semver.MustParse("1.2.0")})

	l.RecordVersion(semver.MustParse("1.3.0"))
	assert.Equal(t, "1.3.0", l.Window().CurrentVersion.String())

	// Recording an older version (rollback) does not move current back.
	l.RecordVersion(semver.MustParse("1.0.0"))
	assert.Equal(t, "1.3.0", l.Window().CurrentVersion.String())
}

func TestEnforceSupportLimit(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	known := versions("1.0.0", "1.1.0", "1.2.0", "1.3.0", "1.4.0")

	l.EnforceSupportLimit(known, 2)
	assert.Equal(t, "1.3.0", l.Window().MinimumSupported.String())

	// Never lowers an already higher minimum.
	l.SetSupportWindow(SupportWindow{MinimumSupported: semver.MustParse("1.4.0")})
	l.EnforceSupportLimit(known, 2)
	assert.Equal(t, "1.4.0", l.Window().MinimumSupported.String())
}
