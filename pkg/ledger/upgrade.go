package ledger

import (
	"fmt"
	"time"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// UpgradeCheck is the answer to "is this upgrade safe".
type UpgradeCheck struct {
	Safe              bool
	Warnings          []string
	BreakingChanges   []contract.Change
	MigrationRequired bool
}

// IsUpgradeSafe runs the full diff between two versions. The upgrade is
// safe iff zero breaking changes are found. Warnings are emitted for
// unsupported or deprecated targets, for downgrades and for major-version
// jumps regardless of what the diff finds.
func (l *Ledger) IsUpgradeSafe(from, to semver.Version, fromContracts, toContracts map[string]*contract.Definition) *UpgradeCheck {
	analysis := l.analyzer.AnalyzeCompatibility(from, to, fromContracts, toContracts)
	window := l.Window()

	check := &UpgradeCheck{
		Safe:              len(analysis.BreakingChanges) == 0,
		BreakingChanges:   analysis.BreakingChanges,
		MigrationRequired: analysis.MigrationRequired,
	}

	switch {
	case to.LessThan(window.MinimumSupported) || window.IsEndOfLife(to):
		check.Warnings = append(check.Warnings, fmt.Sprintf("target %s is unsupported", to))
	case to.LessThan(window.RecommendedMinimum):
		check.Warnings = append(check.Warnings, fmt.Sprintf("target %s is deprecated; upgrade to %s or later", to, window.RecommendedMinimum))
	}
	if to.LessThan(from) {
		check.Warnings = append(check.Warnings, fmt.Sprintf("downgrade from %s to %s", from, to))
	}
	if to.Major > from.Major {
		check.Warnings = append(check.Warnings, fmt.Sprintf("major version jump from %s to %s", from, to))
	}
	check.Warnings = append(check.Warnings, analysis.Warnings...)

	return check
}

// UpgradePlan is a recommended route between two versions.
type UpgradePlan struct {
	Direct            bool
	SteppingStones    []semver.Version
	Migrations        int
	EstimatedDuration time.Duration
}

// RecommendedUpgradePath reports how to get from current to target. When
// target already sits in current's compatible set the upgrade is direct
// with zero migrations. Otherwise the plan routes through one stepping
// stone per intervening major version (its latest known release) plus the
// target major's X.0.0, ending at the target itself.
func (l *Ledger) RecommendedUpgradePath(current, target semver.Version, known []semver.Version, versionContracts map[string]map[string]*contract.Definition) *UpgradePlan {
	matrix := l.MatrixFor(current, known, versionContracts)
	for _, v := range matrix.Compatible {
		if v.Equal(target) {
			return &UpgradePlan{Direct: true}
		}
	}

	var stones []semver.Version
	for major := current.Major + 1; major < target.Major; major++ {
		if latest, ok := latestWithMajor(known, major); ok {
			stones = append(stones, latest)
		}
	}
	base := semver.Version{Major: target.Major}
	if !base.Equal(target) && target.Major > current.Major {
		stones = append(stones, base)
	}
	stones = append(stones, target)

	// Coarse estimate: one migration per hop at 30 minutes each.
	return &UpgradePlan{
		SteppingStones:    stones,
		Migrations:        len(stones),
		EstimatedDuration: time.Duration(len(stones)) * 30 * time.Minute,
	}
}

func latestWithMajor(known []semver.Version, major int) (semver.Version, bool) {
	var latest semver.Version
	found := false
	for _, v := range known {
		if v.Major != major {
			continue
		}
		if !found || latest.LessThan(v) {
			latest = v
			found = true
		}
	}
	return latest, found
}
