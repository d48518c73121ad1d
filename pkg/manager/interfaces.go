package manager

import (
	"context"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// ContractStore supplies contract sets per version. Read-only from the
// manager's perspective.
type ContractStore interface {
	Contracts(version semver.Version) (map[string]*contract.Definition, error)
	Versions() ([]semver.Version, error)
}

// SnapshotStore persists exported manager state.
type SnapshotStore interface {
	Save(snapshot *Snapshot) error
	Load() (*Snapshot, error)
}

// Tagger records an accepted version in an external version-control
// system. Tagging is fire-and-forget from the manager's perspective: a
// returned error is logged, never propagated into a bump failure.
type Tagger interface {
	Tag(ctx context.Context, version semver.Version, message string) error
}
