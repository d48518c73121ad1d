package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func TestIsUpgradeSafe_NoBreakingChanges(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)

	check := l.IsUpgradeSafe(
		semver.MustParse("1.0.0"), semver.MustParse("1.1.0"),
		map[string]*contract.Definition{"ping": pingContract()},
		map[string]*contract.Definition{"ping": pingContract()},
	)

	assert.True(t, check.Safe)
	assert.Empty(t, check.BreakingChanges)
	assert.False(t, check.MigrationRequired)
}

func TestIsUpgradeSafe_BreakingChange(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)

	check := l.IsUpgradeSafe(
		semver.MustParse("1.0.0"), semver.MustParse("2.0.0"),
		map[string]*contract.Definition{"ping": pingContract()},
		map[string]*contract.Definition{},
	)

	assert.False(t, check.Safe)
	require.Len(t, check.BreakingChanges, 1)
	assert.Equal(t, contract.ContractRemoved, check.BreakingChanges[0].Type)
	assert.True(t, check.MigrationRequired)
	assert.Contains(t, check.Warnings, "major version jump from 1.0.0 to 2.0.0")
}

func TestIsUpgradeSafe_WindowWarnings(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	l.SetSupportWindow(SupportWindow{
		MinimumSupported:   semver.MustParse("1.0.0"),
		RecommendedMinimum: semver.MustParse("1.4.0"),
		EndOfLife: []EndOfLife{
			{Version: semver.MustParse("1.5.0"), EndDate: time.Now()},
		},
	})

	contracts := map[string]*contract.Definition{"ping": pingContract()}

	deprecated := l.IsUpgradeSafe(semver.MustParse("1.0.0"), semver.MustParse("1.2.0"), contracts, contracts)
	assert.Contains(t, deprecated.Warnings, "target 1.2.0 is deprecated; upgrade to 1.4.0 or later")

	unsupported := l.IsUpgradeSafe(semver.MustParse("1.0.0"), semver.MustParse("0.9.0"), contracts, contracts)
	assert.Contains(t, unsupported.Warnings, "target 0.9.0 is unsupported")
	assert.Contains(t, unsupported.Warnings, "downgrade from 1.0.0 to 0.9.0")

	// End-of-life beats deprecated even above the recommended minimum.
	eol := l.IsUpgradeSafe(semver.MustParse("1.4.0"), semver.MustParse("1.5.0"), contracts, contracts)
	assert.Contains(t, eol.Warnings, "target 1.5.0 is unsupported")
}

func TestRecommendedUpgradePath_Direct(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	known := versions("1.4.0", "1.5.0")

	plan := l.RecommendedUpgradePath(
		semver.MustParse("1.5.0"), semver.MustParse("1.4.0"),
		known, sameContractsFor(known),
	)

	assert.True(t, plan.Direct)
	assert.Empty(t, plan.SteppingStones)
	assert.Zero(t, plan.Migrations)
}

func TestRecommendedUpgradePath_SteppingStones(t *testing.T) {
	l := NewLedger(nil, nil, nil, nil)
	known := versions("1.4.0", "2.0.0", "2.3.0", "3.0.0", "3.1.0")

	// The target drops a contract relative to current, so the direct route
	// is off the table.
	contracts := sameContractsFor(known)
	contracts["3.1.0"] = map[string]*contract.Definition{}
	contracts["3.0.0"] = map[string]*contract.Definition{}

	plan := l.RecommendedUpgradePath(
		semver.MustParse("1.4.0"), semver.MustParse("3.1.0"),
		known, contracts,
	)

	assert.False(t, plan.Direct)
	assert.Equal(t, []string{"2.3.0", "3.0.0", "3.1.0"}, versionStrings(plan.SteppingStones))
	assert.Equal(t, 3, plan.Migrations)
	assert.Equal(t, 90*time.Minute, plan.EstimatedDuration)
}
