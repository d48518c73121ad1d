package ledger

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/sibyllinesoft/contractver/pkg/analyzer"
	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/migration"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

const (
	matrixCacheSize = 128
	matrixCacheTTL  = time.Hour
)

// Matrix classifies every known version relative to one source version.
// The three sets are disjoint; targets that need migration carry a
// generated path keyed by their canonical version string.
type Matrix struct {
	SourceVersion  semver.Version             `json:"source_version" yaml:"source_version"`
	Compatible     []semver.Version           `json:"compatible" yaml:"compatible"`
	Deprecated     []semver.Version           `json:"deprecated" yaml:"deprecated"`
	Unsupported    []semver.Version           `json:"unsupported" yaml:"unsupported"`
	MigrationPaths map[string]*migration.Path `json:"migration_paths,omitempty" yaml:"migration_paths,omitempty"`
	BuiltAt        time.Time                  `json:"built_at" yaml:"built_at"`
}

// Ledger owns the compatibility matrices and the support window. Cached
// matrices are an explicit field on this instance, keyed by canonical
// version string and invalidated by manager action, never by ambient
// global state.
type Ledger struct {
	mu     sync.RWMutex
	window SupportWindow

	analyzer *analyzer.Analyzer
	planner  *migration.Planner
	cache    *lru.LRU[string, *Matrix]
	group    singleflight.Group
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewLedger creates a ledger. Nil collaborators fall back to defaults.
func NewLedger(a *analyzer.Analyzer, p *migration.Planner, logger *observability.Logger, metrics *observability.Metrics) *Ledger {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if a == nil {
		a = analyzer.New(logger, metrics)
	}
	if p == nil {
		p = migration.NewPlanner(nil, nil, logger, metrics)
	}
	return &Ledger{
		analyzer: a,
		planner:  p,
		cache:    lru.NewLRU[string, *Matrix](matrixCacheSize, nil, matrixCacheTTL),
		logger:   logger,
		metrics:  metrics,
	}
}

// BuildCompatibilityMatrix rebuilds the matrix for source from the full
// known version set. Targets are bucketed in precedence order: unsupported
// (below the minimum supported version or explicitly end-of-lifed), then
// deprecated (below the recommended minimum), then compatible (the
// backward-compatibility heuristic holds or the full analysis finds no
// breaking change). Anything left is unsafe to adopt directly: it is
// bucketed unsupported and, when breaking changes exist, a migration path
// is generated and stored for it.
//
// versionContracts maps canonical version strings to that version's
// contract set. The rebuilt matrix replaces any cached one.
func (l *Ledger) BuildCompatibilityMatrix(source semver.Version, known []semver.Version, versionContracts map[string]map[string]*contract.Definition) *Matrix {
	started := time.Now()
	window := l.Window()

	targets := append([]semver.Version(nil), known...)
	semver.Sort(targets)

	matrix := &Matrix{
		SourceVersion:  source,
		MigrationPaths: make(map[string]*migration.Path),
		BuiltAt:        started,
	}
	sourceContracts := versionContracts[source.String()]

	for _, target := range targets {
		if target.Equal(source) {
			continue
		}

		switch {
		case target.LessThan(window.MinimumSupported) || window.IsEndOfLife(target):
			matrix.Unsupported = append(matrix.Unsupported, target)
		case target.LessThan(window.RecommendedMinimum):
			matrix.Deprecated = append(matrix.Deprecated, target)
		case IsBackwardCompatible(source, target):
			// Conservative shortcut: skips full diffing entirely.
			matrix.Compatible = append(matrix.Compatible, target)
		default:
			analysis := l.analyzer.AnalyzeCompatibility(source, target, sourceContracts, versionContracts[target.String()])
			if analysis.Compatible {
				matrix.Compatible = append(matrix.Compatible, target)
				continue
			}
			matrix.Unsupported = append(matrix.Unsupported, target)
			if len(analysis.BreakingChanges) > 0 {
				path := l.planner.GenerateMigrationPath(source, target, analysis.BreakingChanges, sourceContracts, versionContracts[target.String()])
				matrix.MigrationPaths[target.String()] = path
			}
		}
	}

	l.cache.Add(source.String(), matrix)
	l.metrics.MatrixBuildsTotal.Inc()
	l.metrics.MatrixBuildDuration.Observe(time.Since(started).Seconds())
	l.logger.WithFields(map[string]interface{}{
		"source":      source.String(),
		"compatible":  len(matrix.Compatible),
		"deprecated":  len(matrix.Deprecated),
		"unsupported": len(matrix.Unsupported),
	}).Debug("compatibility matrix rebuilt")

	return matrix
}

// MatrixFor returns the matrix for source, building it on a cache miss.
// Concurrent misses for the same source are deduplicated so only one
// rebuild runs.
func (l *Ledger) MatrixFor(source semver.Version, known []semver.Version, versionContracts map[string]map[string]*contract.Definition) *Matrix {
	key := source.String()
	if m, ok := l.cache.Get(key); ok {
		l.metrics.MatrixCacheHits.Inc()
		return m
	}
	l.metrics.MatrixCacheMisses.Inc()

	m, _, _ := l.group.Do(key, func() (interface{}, error) {
		return l.BuildCompatibilityMatrix(source, known, versionContracts), nil
	})
	return m.(*Matrix)
}

// Invalidate drops the cached matrix for one source version.
func (l *Ledger) Invalidate(source semver.Version) {
	l.cache.Remove(source.String())
}

// InvalidateAll drops every cached matrix.
func (l *Ledger) InvalidateAll() {
	l.cache.Purge()
}

// IsBackwardCompatible is the conservative shortcut used during matrix
// construction: a target with a lower major, or the same major and a
// lower-or-equal minor, is treated as compatible without re-running the
// full diff. Reproduced exactly; see the package documentation for the
// caveat.
func IsBackwardCompatible(source, target semver.Version) bool {
	if target.Major < source.Major {
		return true
	}
	return target.Major == source.Major && target.Minor <= source.Minor
}
