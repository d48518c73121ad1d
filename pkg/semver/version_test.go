package semver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  Version
	}{
		{"0.0.0", Version{}},
		{"1.2.3", Version{Major: 1, Minor: 2, Patch: 3}},
		{"10.20.30", Version{Major: 10, Minor: 20, Patch: 30}},
		{"1.0.0-alpha", Version{Major: 1, Prerelease: []string{"alpha"}}},
		{"1.0.0-alpha.1", Version{Major: 1, Prerelease: []string{"alpha", "1"}}},
		{"1.0.0-0.3.7", Version{Major: 1, Prerelease: []string{"0", "3", "7"}}},
		{"1.0.0+20130313144700", Version{Major: 1, Build: []string{"20130313144700"}}},
		{"1.0.0-beta+exp.sha.5114f85", Version{Major: 1, Prerelease: []string{"beta"}, Build: []string{"exp", "sha", "5114f85"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"1",
		"1.2",
		"1.2.3.4",
		"01.2.3",
		"1.02.3",
		"1.2.03",
		"-1.2.3",
		"1.2.3-",
		"1.2.3+",
		"1.2.3-alpha..1",
		"1.2.3-01",
		"1.2.3-al pha",
		"v1.2.3",
		"1.2.x",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Error(), input)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	inputs := []string{
		"0.0.0",
		"1.2.3",
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-rc.1+build.42",
		"2.1.0+sha.deadbeef",
	}

	for _, input := range inputs {
		v, err := Parse(input)
		require.NoError(t, err)
		assert.Equal(t, input, v.String())
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"2.1.0", "2.0.9", 1},
		{"2.1.1", "2.1.0", 1},
		{"1.0.0", "1.0.0-alpha", 1},
		{"1.0.0-alpha", "1.0.0-alpha.1", -1},
		{"1.0.0-alpha.1", "1.0.0-alpha.beta", -1},
		{"1.0.0-alpha.beta", "1.0.0-beta", -1},
		{"1.0.0-beta.2", "1.0.0-beta.11", -1},
		{"1.0.0-rc.1", "1.0.0", -1},
		{"1.0.0+build.1", "1.0.0+build.2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		input string
		kind  BumpType
		want  string
	}{
		{"1.2.3", BumpMajor, "2.0.0"},
		{"1.2.3", BumpMinor, "1.3.0"},
		{"1.2.3", BumpPatch, "1.2.4"},
		{"1.2.3-alpha.1+build", BumpMajor, "2.0.0"},
		{"1.2.3-alpha.1+build", BumpMinor, "1.3.0"},
		{"1.2.3-alpha.1+build", BumpPatch, "1.2.4"},
		{"1.2.3", BumpPrerelease, "1.2.4-0"},
		{"1.2.3-alpha", BumpPrerelease, "1.2.3-alpha.0"},
		{"1.2.3-alpha.1", BumpPrerelease, "1.2.3-alpha.2"},
		{"1.2.3-alpha.1+meta", BumpPrerelease, "1.2.3-alpha.2"},
	}

	for _, tt := range tests {
		t.Run(tt.input+" "+tt.kind.String(), func(t *testing.T) {
			got := MustParse(tt.input).Increment(tt.kind)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIncrement_DoesNotMutateReceiver(t *testing.T) {
	v := MustParse("1.2.3-alpha.1")
	_ = v.Increment(BumpPrerelease)
	assert.Equal(t, "1.2.3-alpha.1", v.String())
}

func TestSort(t *testing.T) {
	versions := []Version{
		MustParse("1.0.0"),
		MustParse("0.9.0"),
		MustParse("1.0.0-alpha"),
		MustParse("2.0.0"),
		MustParse("1.4.2"),
	}
	Sort(versions)

	got := make([]string, len(versions))
	for i, v := range versions {
		got[i] = v.String()
	}
	assert.Equal(t, []string{"0.9.0", "1.0.0-alpha", "1.0.0", "1.4.2", "2.0.0"}, got)
}

// versionGen generates arbitrary valid versions for property tests.
func versionGen() *rapid.Generator[Version] {
	identifier := rapid.OneOf(
		rapid.StringMatching(`[1-9][0-9]{0,3}|0`),
		rapid.StringMatching(`[a-zA-Z-][a-zA-Z0-9-]{0,5}`),
	)
	return rapid.Custom(func(t *rapid.T) Version {
		return Version{
			Major:      rapid.IntRange(0, 1000).Draw(t, "major"),
			Minor:      rapid.IntRange(0, 1000).Draw(t, "minor"),
			Patch:      rapid.IntRange(0, 1000).Draw(t, "patch"),
			Prerelease: rapid.SliceOfN(identifier, 0, 4).Draw(t, "prerelease"),
			Build:      rapid.SliceOfN(rapid.StringMatching(`[a-zA-Z0-9-]{1,6}`), 0, 3).Draw(t, "build"),
		}
	})
}

func TestParse_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := versionGen().Draw(t, "v")
		parsed, err := Parse(v.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", v.String(), err)
		}
		if parsed.String() != v.String() {
			t.Fatalf("round trip mismatch: %q != %q", parsed.String(), v.String())
		}
	})
}

func TestCompare_TotalOrderProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := versionGen().Draw(t, "a")
		b := versionGen().Draw(t, "b")
		c := versionGen().Draw(t, "c")

		// Antisymmetry.
		if a.Compare(b) != -b.Compare(a) {
			t.Fatalf("antisymmetry violated for %s, %s", a, b)
		}
		// Reflexivity.
		if a.Compare(a) != 0 {
			t.Fatalf("reflexivity violated for %s", a)
		}
		// Transitivity.
		if a.Compare(b) <= 0 && b.Compare(c) <= 0 && a.Compare(c) > 0 {
			t.Fatalf("transitivity violated for %s, %s, %s", a, b, c)
		}
	})
}

func TestIncrement_MajorProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := versionGen().Draw(t, "v")
		bumped := v.Increment(BumpMajor)
		if len(bumped.Prerelease) != 0 || len(bumped.Build) != 0 {
			t.Fatalf("major bump kept prerelease/build: %s", bumped)
		}
		if bumped.Compare(v) <= 0 {
			t.Fatalf("major bump did not increase precedence: %s -> %s", v, bumped)
		}
	})
}

func TestParseBumpType(t *testing.T) {
	for _, s := range []string{"major", "minor", "patch", "prerelease"} {
		b, err := ParseBumpType(strings.ToUpper(s))
		require.NoError(t, err)
		assert.Equal(t, s, b.String())
	}
	_, err := ParseBumpType("bogus")
	assert.Error(t, err)
}
