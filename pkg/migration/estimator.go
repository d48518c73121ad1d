package migration

import (
	"time"

	"github.com/sibyllinesoft/contractver/pkg/contract"
)

// Estimator turns a breaking-change profile into coarse complexity and
// duration estimates. The defaults are heuristics, not measured SLAs, and
// live behind this interface so they can be swapped without touching the
// planning logic.
type Estimator interface {
	Complexity(breaking []contract.Change) Complexity
	Duration(stepCount int) time.Duration
}

// HeuristicEstimator is the reference estimation strategy.
type HeuristicEstimator struct {
	// PerStep is the assumed duration of one migration step.
	PerStep time.Duration
	// RoundToHoursAbove rounds totals exceeding this threshold up to whole
	// hours.
	RoundToHoursAbove time.Duration
}

// DefaultEstimator returns the reference heuristic: 30 minutes per step,
// rounded up to whole hours above 60 minutes.
func DefaultEstimator() *HeuristicEstimator {
	return &HeuristicEstimator{
		PerStep:           30 * time.Minute,
		RoundToHoursAbove: 60 * time.Minute,
	}
}

// Complexity derives path complexity from the count and severity of
// breaking changes: no critical and at most two major changes is simple,
// scaling up to critical.
func (e *HeuristicEstimator) Complexity(breaking []contract.Change) Complexity {
	var critical, major int
	for _, c := range breaking {
		switch c.Severity {
		case contract.SeverityCritical:
			critical++
		case contract.SeverityMajor:
			major++
		}
	}

	switch {
	case critical > 2 || major > 10:
		return ComplexityCritical
	case critical > 0 || major > 5:
		return ComplexityComplex
	case major > 2:
		return ComplexityModerate
	}
	return ComplexitySimple
}

// Duration is a linear function of step count.
func (e *HeuristicEstimator) Duration(stepCount int) time.Duration {
	total := time.Duration(stepCount) * e.PerStep
	if total > e.RoundToHoursAbove {
		hours := (total + time.Hour - 1) / time.Hour
		return hours * time.Hour
	}
	return total
}
