package ledger

import (
	"time"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// EndOfLife marks a version as no longer serviced.
type EndOfLife struct {
	Version semver.Version `json:"version" yaml:"version"`
	EndDate time.Time      `json:"end_date" yaml:"end_date"`
	Reason  string         `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// SupportWindow is the range of versions an installation commits to
// supporting. It is owned by the ledger and updated explicitly; the only
// implicit movement is CurrentVersion advancing when a newer version is
// recorded.
type SupportWindow struct {
	CurrentVersion     semver.Version `json:"current_version" yaml:"current_version"`
	MinimumSupported   semver.Version `json:"minimum_supported" yaml:"minimum_supported"`
	RecommendedMinimum semver.Version `json:"recommended_minimum" yaml:"recommended_minimum"`
	EndOfLife          []EndOfLife    `json:"end_of_life,omitempty" yaml:"end_of_life,omitempty"`
}

// IsEndOfLife reports whether v is explicitly end-of-lifed.
func (w *SupportWindow) IsEndOfLife(v semver.Version) bool {
	for _, eol := range w.EndOfLife {
		if eol.Version.Equal(v) {
			return true
		}
	}
	return false
}

// SetSupportWindow replaces the ledger's support window and drops any
// cached matrices, since bucketing depends on the window.
func (l *Ledger) SetSupportWindow(w SupportWindow) {
	l.mu.Lock()
	l.window = w
	l.mu.Unlock()
	l.InvalidateAll()
}

// Window returns a copy of the current support window.
func (l *Ledger) Window() SupportWindow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	w := l.window
	w.EndOfLife = append([]EndOfLife(nil), l.window.EndOfLife...)
	return w
}

// MarkEndOfLife adds a version to the end-of-life list.
func (l *Ledger) MarkEndOfLife(v semver.Version, endDate time.Time, reason string) {
	l.mu.Lock()
	l.window.EndOfLife = append(l.window.EndOfLife, EndOfLife{Version: v, EndDate: endDate, Reason: reason})
	l.mu.Unlock()
	l.InvalidateAll()
}

// RecordVersion notes a newly recorded version. CurrentVersion advances
// only when v outranks it.
func (l *Ledger) RecordVersion(v semver.Version) {
	l.mu.Lock()
	if l.window.CurrentVersion.LessThan(v) {
		l.window.CurrentVersion = v
	}
	l.mu.Unlock()
	l.InvalidateAll()
}

// EnforceSupportLimit raises MinimumSupported so that at most maxVersions
// known versions remain supported. Versions below the new minimum fall out
// of support on the next matrix build. A non-positive limit is a no-op.
func (l *Ledger) EnforceSupportLimit(known []semver.Version, maxVersions int) {
	if maxVersions <= 0 || len(known) <= maxVersions {
		return
	}

	sorted := append([]semver.Version(nil), known...)
	semver.Sort(sorted)
	cutoff := sorted[len(sorted)-maxVersions]

	l.mu.Lock()
	if l.window.MinimumSupported.LessThan(cutoff) {
		l.window.MinimumSupported = cutoff
	}
	l.mu.Unlock()
	l.InvalidateAll()
}
