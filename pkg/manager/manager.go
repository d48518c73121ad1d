package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sibyllinesoft/contractver/pkg/analyzer"
	"github.com/sibyllinesoft/contractver/pkg/config"
	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/ledger"
	"github.com/sibyllinesoft/contractver/pkg/migration"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// HistoryEntry is one append-only record of a recorded version.
type HistoryEntry struct {
	ID        string            `json:"id"`
	Version   semver.Version    `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Author    string            `json:"author"`
	Message   string            `json:"message"`
	Changes   []contract.Change `json:"changes,omitempty"`
	Contracts []string          `json:"contracts,omitempty"`
	Build     []string          `json:"build,omitempty"`
}

// BumpDecision is the outcome of analyzing a proposed contract set against
// the current one.
type BumpDecision struct {
	Analysis    *analyzer.ContractAnalysis
	Impact      contract.Impact
	BumpType    semver.BumpType
	NextVersion semver.Version
}

// Manager orchestrates the versioning engine: it owns the append-only
// history and the per-version contract sets, delegates analysis, planning
// and ledger updates, and exposes export/import snapshots.
//
// The manager provides no internal locking; callers must not run two
// BumpVersion calls concurrently against the same instance without
// external serialization.
type Manager struct {
	cfg      *config.Config
	analyzer *analyzer.Analyzer
	planner  *migration.Planner
	ledger   *ledger.Ledger
	tagger   Tagger
	logger   *observability.Logger
	metrics  *observability.Metrics

	current   semver.Version
	history   []HistoryEntry
	contracts map[string]map[string]*contract.Definition
}

// New creates a manager seeded with an initial version and its contract
// set. Nil collaborators fall back to defaults; a nil tagger disables
// tagging.
func New(cfg *config.Config, initial semver.Version, initialContracts map[string]*contract.Definition, tagger Tagger, logger *observability.Logger, metrics *observability.Metrics) *Manager {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}

	a := analyzer.New(logger, metrics)
	p := migration.NewPlanner(nil, nil, logger, metrics)
	l := ledger.NewLedger(a, p, logger, metrics)

	m := &Manager{
		cfg:      cfg,
		analyzer: a,
		planner:  p,
		ledger:   l,
		tagger:   tagger,
		logger:   logger,
		metrics:  metrics,
		current:  initial,
		contracts: map[string]map[string]*contract.Definition{
			initial.String(): initialContracts,
		},
	}
	m.history = append(m.history, HistoryEntry{
		ID:        uuid.NewString(),
		Version:   initial,
		Timestamp: time.Now().UTC(),
		Author:    "system",
		Message:   "initial version",
		Contracts: contract.SortedIDs(initialContracts),
		Build:     initial.Build,
	})
	l.RecordVersion(initial)
	metrics.HistoryLength.Set(float64(len(m.history)))
	return m
}

// Ledger exposes the compatibility ledger for support-window management.
func (m *Manager) Ledger() *ledger.Ledger { return m.ledger }

// CurrentVersion returns the version most recently recorded as current.
func (m *Manager) CurrentVersion() semver.Version { return m.current }

// History returns a copy of the append-only version history in insertion
// order.
func (m *Manager) History() []HistoryEntry {
	return append([]HistoryEntry(nil), m.history...)
}

// KnownVersions returns every version with a recorded contract set, in
// ascending version order.
func (m *Manager) KnownVersions() []semver.Version {
	out := make([]semver.Version, 0, len(m.contracts))
	seen := make(map[string]bool, len(m.contracts))
	for _, e := range m.history {
		if key := e.Version.String(); !seen[key] {
			seen[key] = true
			out = append(out, e.Version)
		}
	}
	semver.Sort(out)
	return out
}

// ContractsFor returns the contract set recorded for a version.
func (m *Manager) ContractsFor(version semver.Version) (map[string]*contract.Definition, error) {
	set, ok := m.contracts[version.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, version)
	}
	return set, nil
}

// AnalyzeChanges diffs the current contract set against target,
// accumulates the highest-severity impact and derives the bump the impact
// requires: breaking means major, feature means minor, fix means patch and
// no impact falls back to the configured default.
func (m *Manager) AnalyzeChanges(source, target map[string]*contract.Definition) *BumpDecision {
	analysis := m.analyzer.AnalyzeContractChanges(source, target)
	impact := contract.HighestImpact(analysis.Differences)
	bump := m.bumpFor(impact)

	return &BumpDecision{
		Analysis:    analysis,
		Impact:      impact,
		BumpType:    bump,
		NextVersion: m.current.Increment(bump),
	}
}

func (m *Manager) bumpFor(impact contract.Impact) semver.BumpType {
	switch impact {
	case contract.Breaking:
		return semver.BumpMajor
	case contract.Feature:
		return semver.BumpMinor
	case contract.Fix:
		return semver.BumpPatch
	}
	return m.cfg.Versioning.DefaultBumpType
}

// BumpVersion records a new version for the proposed contract set. With a
// custom bump type and strict compatibility disabled, analysis is skipped
// and a single synthetic change is recorded. In strict mode the proposed
// bump must match the detected impact or the bump is rejected with a
// *CompatibilityError, leaving history untouched.
//
// On acceptance the entry is appended, the compatibility matrix for the
// new version is rebuilt, and (when configured) the version is tagged in
// git. Tagging failure is logged and never fails the bump.
func (m *Manager) BumpVersion(ctx context.Context, contracts map[string]*contract.Definition, author, message string, customBumpType *semver.BumpType) (*HistoryEntry, error) {
	source := m.contracts[m.current.String()]

	var changes []contract.Change
	var bump semver.BumpType

	if customBumpType != nil && !m.cfg.Versioning.StrictCompatibility {
		bump = *customBumpType
		changes = []contract.Change{{
			Type:        contract.ContractModified,
			Path:        "*",
			Description: fmt.Sprintf("manual %s bump", bump),
			Impact:      contract.NoImpact,
			Severity:    contract.SeverityPatch,
		}}
	} else {
		decision := m.AnalyzeChanges(source, contracts)
		changes = decision.Analysis.Differences
		bump = decision.BumpType
		if customBumpType != nil {
			bump = *customBumpType
		}
		if m.cfg.Versioning.StrictCompatibility {
			if err := validateBump(bump, decision.Impact); err != nil {
				m.metrics.BumpsTotal.WithLabelValues(bump.String(), "rejected").Inc()
				m.logger.WithError(err).Warn("version bump rejected")
				return nil, err
			}
		}
	}

	previous := m.current
	next := m.current.Increment(bump)
	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Version:   next,
		Timestamp: time.Now().UTC(),
		Author:    author,
		Message:   message,
		Changes:   changes,
		Contracts: contract.SortedIDs(contracts),
		Build:     next.Build,
	}

	m.history = append(m.history, entry)
	m.current = next
	m.contracts[next.String()] = contracts

	m.metrics.BumpsTotal.WithLabelValues(bump.String(), "accepted").Inc()
	m.metrics.HistoryLength.Set(float64(len(m.history)))

	m.ledger.RecordVersion(next)
	known := m.KnownVersions()
	if max := m.cfg.Versioning.MaxSupportedVersions; max > 0 {
		m.ledger.EnforceSupportLimit(known, max)
	}
	m.ledger.BuildCompatibilityMatrix(next, known, m.contracts)

	if m.cfg.Git.Enabled && m.tagger != nil {
		if err := m.tagger.Tag(ctx, next, message); err != nil {
			m.logger.WithError(err).WithField("version", next.String()).Error("git tagging failed")
		}
	}

	if m.cfg.Versioning.AutoMigration {
		if breaking := contract.BreakingChanges(changes); len(breaking) > 0 {
			if _, err := m.runMigration(ctx, previous, next, breaking, source, contracts, false); err != nil {
				m.logger.WithError(err).Error("automatic migration failed")
			}
		}
	}

	m.logger.WithFields(map[string]interface{}{
		"version": next.String(),
		"bump":    bump.String(),
		"author":  author,
	}).Info("version recorded")

	return &entry, nil
}

// validateBump enforces strict-compatibility rules: a breaking change
// demands a major bump, a major bump demands a breaking change, and a
// minor bump demands at least a feature-level change.
func validateBump(bump semver.BumpType, impact contract.Impact) error {
	required := semver.BumpPatch
	switch impact {
	case contract.Breaking:
		required = semver.BumpMajor
	case contract.Feature:
		required = semver.BumpMinor
	}

	switch {
	case impact == contract.Breaking && bump != semver.BumpMajor:
		return &CompatibilityError{Proposed: bump, Required: required, Reason: "breaking changes require a major bump"}
	case bump == semver.BumpMajor && impact != contract.Breaking:
		return &CompatibilityError{Proposed: bump, Required: required, Reason: "major bump without any breaking change"}
	case bump == semver.BumpMinor && impact != contract.Feature:
		return &CompatibilityError{Proposed: bump, Required: required, Reason: "minor bump without any feature change"}
	}
	return nil
}

// Rollback appends a history entry moving current back to targetVersion.
// Prior entries are never deleted. Requires allowDowngrade.
func (m *Manager) Rollback(targetVersion semver.Version, author, reason string) (*HistoryEntry, error) {
	if !m.cfg.Versioning.AllowDowngrade {
		return nil, ErrDowngradeNotAllowed
	}
	set, ok := m.contracts[targetVersion.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVersion, targetVersion)
	}

	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Version:   targetVersion,
		Timestamp: time.Now().UTC(),
		Author:    author,
		Message:   fmt.Sprintf("rollback from %s: %s", m.current, reason),
		Contracts: contract.SortedIDs(set),
		Build:     targetVersion.Build,
	}
	m.history = append(m.history, entry)
	m.current = targetVersion

	m.metrics.RollbacksTotal.Inc()
	m.metrics.HistoryLength.Set(float64(len(m.history)))
	m.logger.WithFields(map[string]interface{}{
		"version": targetVersion.String(),
		"reason":  reason,
	}).Warn("version rolled back")

	return &entry, nil
}

// CheckCompatibility answers whether upgrading from the current version to
// target is safe, using the recorded contract sets.
func (m *Manager) CheckCompatibility(target semver.Version) (*ledger.UpgradeCheck, error) {
	targetContracts, err := m.ContractsFor(target)
	if err != nil {
		return nil, err
	}
	return m.ledger.IsUpgradeSafe(m.current, target, m.contracts[m.current.String()], targetContracts), nil
}

// Matrix returns the compatibility matrix for the current version.
func (m *Manager) Matrix() *ledger.Matrix {
	return m.ledger.MatrixFor(m.current, m.KnownVersions(), m.contracts)
}

// PlanMigration generates a migration path from the current version to
// target without executing it.
func (m *Manager) PlanMigration(target semver.Version) (*migration.Path, error) {
	targetContracts, err := m.ContractsFor(target)
	if err != nil {
		return nil, err
	}
	source := m.contracts[m.current.String()]
	analysis := m.analyzer.AnalyzeCompatibility(m.current, target, source, targetContracts)
	return m.planner.GenerateMigrationPath(m.current, target, analysis.BreakingChanges, source, targetContracts), nil
}

// Migrate plans and executes a migration from the current version to
// target, bounded by the configured migration timeout.
func (m *Manager) Migrate(ctx context.Context, target semver.Version, dryRun bool) (*migration.ExecutionResult, error) {
	targetContracts, err := m.ContractsFor(target)
	if err != nil {
		return nil, err
	}
	source := m.contracts[m.current.String()]
	analysis := m.analyzer.AnalyzeCompatibility(m.current, target, source, targetContracts)
	return m.runMigration(ctx, m.current, target, analysis.BreakingChanges, source, targetContracts, dryRun)
}

func (m *Manager) runMigration(ctx context.Context, from, to semver.Version, breaking []contract.Change, sourceContracts, targetContracts map[string]*contract.Definition, dryRun bool) (*migration.ExecutionResult, error) {
	path := m.planner.GenerateMigrationPath(from, to, breaking, sourceContracts, targetContracts)

	ctx, cancel := context.WithTimeout(ctx, m.cfg.Versioning.MigrationTimeout)
	defer cancel()
	return m.planner.ExecuteMigration(ctx, path, dryRun)
}

// Snapshot is the serializable export of the manager's state: history,
// per-version contract sets and the ledger's support window.
type Snapshot struct {
	CurrentVersion semver.Version                             `json:"current_version"`
	History        []HistoryEntry                             `json:"history"`
	Window         ledger.SupportWindow                       `json:"support_window"`
	Contracts      map[string]map[string]*contract.Definition `json:"contracts"`
	ExportedAt     time.Time                                  `json:"exported_at"`
}

// Export produces a snapshot of the manager's state. Persistence of the
// snapshot is a collaborator's responsibility.
func (m *Manager) Export() *Snapshot {
	contracts := make(map[string]map[string]*contract.Definition, len(m.contracts))
	for k, v := range m.contracts {
		contracts[k] = v
	}
	return &Snapshot{
		CurrentVersion: m.current,
		History:        m.History(),
		Window:         m.ledger.Window(),
		Contracts:      contracts,
		ExportedAt:     time.Now().UTC(),
	}
}

// Import replaces the manager's state with a previously exported snapshot
// and drops all cached matrices.
func (m *Manager) Import(snapshot *Snapshot) error {
	if snapshot == nil || len(snapshot.History) == 0 {
		return fmt.Errorf("snapshot has no history")
	}
	if _, ok := snapshot.Contracts[snapshot.CurrentVersion.String()]; !ok {
		return fmt.Errorf("snapshot is missing contracts for current version %s", snapshot.CurrentVersion)
	}

	m.current = snapshot.CurrentVersion
	m.history = append([]HistoryEntry(nil), snapshot.History...)
	m.contracts = make(map[string]map[string]*contract.Definition, len(snapshot.Contracts))
	for k, v := range snapshot.Contracts {
		m.contracts[k] = v
	}
	m.ledger.SetSupportWindow(snapshot.Window)
	m.metrics.HistoryLength.Set(float64(len(m.history)))
	return nil
}
