package analyzer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// Analyzer structurally diffs contract sets and classifies the result.
// All analysis methods are pure with respect to their inputs; the analyzer
// itself only carries logging, metrics and the text differ.
type Analyzer struct {
	logger  *observability.Logger
	metrics *observability.Metrics
	differ  *diffmatchpatch.DiffMatchPatch
}

// New creates an analyzer. Nil logger or metrics fall back to no-op
// implementations.
func New(logger *observability.Logger, metrics *observability.Metrics) *Analyzer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Analyzer{
		logger:  logger,
		metrics: metrics,
		differ:  diffmatchpatch.New(),
	}
}

// ContractAnalysis is the result of diffing two contract sets.
type ContractAnalysis struct {
	Differences       []contract.Change
	Compatible        bool
	MigrationRequired bool
}

// AnalyzeContractChanges diffs two contract sets. Contracts are visited in
// sorted ID order so that two analyses of identical inputs produce
// identical change lists.
func (a *Analyzer) AnalyzeContractChanges(source, target map[string]*contract.Definition) *ContractAnalysis {
	started := time.Now()
	var changes []contract.Change

	for _, id := range contract.SortedIDs(source) {
		src := source[id]
		dst, ok := target[id]
		if !ok {
			// Removing an entire contract is unconditionally breaking and
			// does not go through schema diffing.
			changes = append(changes, contract.Change{
				Type:        contract.ContractRemoved,
				Path:        id,
				Description: fmt.Sprintf("contract %q removed", src.Name),
				Impact:      contract.Breaking,
				Severity:    contract.SeverityCritical,
				Details: contract.ChangeDetails{
					Before:            src.Name,
					MigrationRequired: true,
				},
			})
			continue
		}
		changes = append(changes, a.diffDefinition(id, src, dst)...)
	}

	for _, id := range contract.SortedIDs(target) {
		if _, ok := source[id]; ok {
			continue
		}
		changes = append(changes, contract.Change{
			Type:        contract.ContractAdded,
			Path:        id,
			Description: fmt.Sprintf("contract %q added", target[id].Name),
			Impact:      contract.Feature,
			Severity:    contract.SeverityMinor,
			Details: contract.ChangeDetails{
				After:              target[id].Name,
				BackwardCompatible: true,
			},
		})
	}

	compatible := true
	migrationRequired := false
	for _, c := range changes {
		if c.Impact == contract.Breaking {
			compatible = false
		}
		if c.Details.MigrationRequired {
			migrationRequired = true
		}
		a.metrics.ChangesDetectedTotal.WithLabelValues(c.Impact.String()).Inc()
	}

	a.metrics.AnalysesTotal.WithLabelValues(strconv.FormatBool(compatible)).Inc()
	a.metrics.AnalysisDuration.Observe(time.Since(started).Seconds())
	a.logger.WithFields(map[string]interface{}{
		"differences": len(changes),
		"compatible":  compatible,
	}).Debug("contract analysis complete")

	return &ContractAnalysis{
		Differences:       changes,
		Compatible:        compatible,
		MigrationRequired: migrationRequired,
	}
}

// diffDefinition diffs two versions of the same contract: input and output
// schemas, then conditions, laws and invariants.
func (a *Analyzer) diffDefinition(id string, src, dst *contract.Definition) []contract.Change {
	var changes []contract.Change

	if src.Description != dst.Description {
		changes = append(changes, contract.Change{
			Type:        contract.ContractModified,
			Path:        id,
			Description: "contract description changed",
			Impact:      contract.Fix,
			Severity:    contract.SeverityPatch,
			Details: contract.ChangeDetails{
				Before:             src.Description,
				After:              dst.Description,
				Diff:               a.textDiff(src.Description, dst.Description),
				BackwardCompatible: true,
			},
		})
	}

	changes = append(changes, a.diffSchema(id+".input", src.Input, dst.Input)...)
	changes = append(changes, a.diffSchema(id+".output", src.Output, dst.Output)...)

	// Adding a precondition tightens what callers may pass; removing one
	// widens it. Postconditions, laws and invariants are guarantees, so the
	// directions flip.
	changes = append(changes, a.diffConditions(id+".preconditions", src.Preconditions, dst.Preconditions, true)...)
	changes = append(changes, a.diffConditions(id+".postconditions", src.Postconditions, dst.Postconditions, false)...)
	changes = append(changes, a.diffLaws(id+".laws", src.MetamorphicLaws, dst.MetamorphicLaws)...)
	changes = append(changes, a.diffConditions(id+".invariants", src.Invariants, dst.Invariants, false)...)

	return changes
}

// diffConditions compares named condition lists. addTightens selects which
// direction counts as breaking: true for requirements on the caller
// (preconditions), false for guarantees to the caller (postconditions,
// invariants).
func (a *Analyzer) diffConditions(path string, src, dst []contract.Condition, addTightens bool) []contract.Change {
	srcByName := conditionIndex(src)
	dstByName := conditionIndex(dst)
	var changes []contract.Change

	for _, c := range src {
		after, ok := dstByName[c.Name]
		if !ok {
			changes = append(changes, a.conditionChange(joinPath(path, c.Name), c.Expression, "", !addTightens))
			continue
		}
		if c.Expression != after.Expression {
			changes = append(changes, contract.Change{
				Type:        contract.ContractModified,
				Path:        joinPath(path, c.Name),
				Description: fmt.Sprintf("condition %q expression changed", c.Name),
				Impact:      contract.Breaking,
				Severity:    contract.SeverityMajor,
				Details: contract.ChangeDetails{
					Before:            c.Expression,
					After:             after.Expression,
					Diff:              a.textDiff(c.Expression, after.Expression),
					MigrationRequired: true,
				},
			})
		} else if c.Description != after.Description {
			changes = append(changes, contract.Change{
				Type:        contract.ContractModified,
				Path:        joinPath(path, c.Name),
				Description: fmt.Sprintf("condition %q description changed", c.Name),
				Impact:      contract.Fix,
				Severity:    contract.SeverityPatch,
				Details: contract.ChangeDetails{
					Before:             c.Description,
					After:              after.Description,
					BackwardCompatible: true,
				},
			})
		}
	}

	for _, c := range dst {
		if _, ok := srcByName[c.Name]; !ok {
			changes = append(changes, a.conditionChange(joinPath(path, c.Name), "", c.Expression, addTightens))
		}
	}

	return changes
}

func (a *Analyzer) conditionChange(path, before, after string, breaking bool) contract.Change {
	verb := "added"
	if after == "" {
		verb = "removed"
	}
	if breaking {
		return contract.Change{
			Type:        contract.ContractModified,
			Path:        path,
			Description: fmt.Sprintf("condition %s", verb),
			Impact:      contract.Breaking,
			Severity:    contract.SeverityMajor,
			Details: contract.ChangeDetails{
				Before:            before,
				After:             after,
				MigrationRequired: true,
			},
		}
	}
	return contract.Change{
		Type:        contract.ContractModified,
		Path:        path,
		Description: fmt.Sprintf("condition %s", verb),
		Impact:      contract.Feature,
		Severity:    contract.SeverityMinor,
		Details: contract.ChangeDetails{
			Before:             before,
			After:              after,
			BackwardCompatible: true,
		},
	}
}

func (a *Analyzer) diffLaws(path string, src, dst []contract.Law) []contract.Change {
	srcByName := make(map[string]contract.Law, len(src))
	for _, l := range src {
		srcByName[l.Name] = l
	}
	dstByName := make(map[string]contract.Law, len(dst))
	for _, l := range dst {
		dstByName[l.Name] = l
	}

	var changes []contract.Change
	for _, l := range src {
		after, ok := dstByName[l.Name]
		if !ok {
			// Dropping a metamorphic law weakens the contract's guarantees.
			changes = append(changes, a.conditionChange(joinPath(path, l.Name), l.Relation, "", true))
			continue
		}
		if l.Relation != after.Relation {
			changes = append(changes, contract.Change{
				Type:        contract.ContractModified,
				Path:        joinPath(path, l.Name),
				Description: fmt.Sprintf("metamorphic law %q relation changed", l.Name),
				Impact:      contract.Breaking,
				Severity:    contract.SeverityMajor,
				Details: contract.ChangeDetails{
					Before:            l.Relation,
					After:             after.Relation,
					Diff:              a.textDiff(l.Relation, after.Relation),
					MigrationRequired: true,
				},
			})
		}
	}
	for _, l := range dst {
		if _, ok := srcByName[l.Name]; !ok {
			changes = append(changes, a.conditionChange(joinPath(path, l.Name), "", l.Relation, false))
		}
	}
	return changes
}

func conditionIndex(conditions []contract.Condition) map[string]contract.Condition {
	byName := make(map[string]contract.Condition, len(conditions))
	for _, c := range conditions {
		byName[c.Name] = c
	}
	return byName
}

// textDiff renders a compact human-readable diff of two text values.
func (a *Analyzer) textDiff(before, after string) string {
	diffs := a.differ.DiffMain(before, after, false)
	return a.differ.DiffPrettyText(a.differ.DiffCleanupSemantic(diffs))
}

// CompatibilityAnalysis is the combined verdict for upgrading between two
// versions of a contract set.
type CompatibilityAnalysis struct {
	SourceVersion     semver.Version
	TargetVersion     semver.Version
	Compatible        bool
	MigrationRequired bool
	Differences       []contract.Change
	BreakingChanges   []contract.Change
	Warnings          []string
	Recommendations   []string
}

// AnalyzeCompatibility combines contract diffing with version-level
// warnings and recommendations. Compatible is true iff no difference
// carries breaking impact.
func (a *Analyzer) AnalyzeCompatibility(sourceVersion, targetVersion semver.Version, sourceContracts, targetContracts map[string]*contract.Definition) *CompatibilityAnalysis {
	analysis := a.AnalyzeContractChanges(sourceContracts, targetContracts)
	breaking := contract.BreakingChanges(analysis.Differences)

	result := &CompatibilityAnalysis{
		SourceVersion:     sourceVersion,
		TargetVersion:     targetVersion,
		Compatible:        analysis.Compatible,
		MigrationRequired: analysis.MigrationRequired,
		Differences:       analysis.Differences,
		BreakingChanges:   breaking,
	}

	if targetVersion.LessThan(sourceVersion) {
		result.Warnings = append(result.Warnings, fmt.Sprintf("target %s is a downgrade from %s", targetVersion, sourceVersion))
	}
	for _, id := range contract.SortedIDs(targetContracts) {
		if def := targetContracts[id]; def.Metadata["deprecated"] == "true" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("contract %q is deprecated in %s", def.Name, targetVersion))
		}
	}
	for _, c := range analysis.Differences {
		if c.Type == contract.ContractModified && c.Impact == contract.Breaking {
			result.Warnings = append(result.Warnings, fmt.Sprintf("behavioral change at %s: %s", c.Path, c.Description))
		}
	}

	switch {
	case len(breaking) > 0:
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("%d breaking change(s) detected: a major version bump and a migration plan are required", len(breaking)))
	case contract.HighestImpact(analysis.Differences) == contract.Feature:
		result.Recommendations = append(result.Recommendations, "additive changes only: a minor version bump is sufficient")
	case len(analysis.Differences) > 0:
		result.Recommendations = append(result.Recommendations, "non-semantic changes only: a patch bump is sufficient")
	}

	return result
}
