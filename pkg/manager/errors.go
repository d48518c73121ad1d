package manager

import (
	"errors"
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// ErrDowngradeNotAllowed is returned by Rollback when the configuration
// does not permit moving to an earlier version.
var ErrDowngradeNotAllowed = errors.New("downgrade not allowed by configuration")

// ErrUnknownVersion is returned when an operation references a version that
// has no history entry.
var ErrUnknownVersion = errors.New("version not found in history")

// CompatibilityError reports a bump rejected by strict-compatibility
// validation. The rejection leaves history and the ledger untouched.
type CompatibilityError struct {
	Proposed semver.BumpType
	Required semver.BumpType
	Reason   string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("bump rejected: %s (proposed %s, required %s)", e.Reason, e.Proposed, e.Required)
}
