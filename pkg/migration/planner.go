package migration

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/observability"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// Planner generates and executes migration paths.
type Planner struct {
	estimator Estimator
	executor  StepExecutor
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewPlanner creates a planner. A nil estimator uses the reference
// heuristic; a nil executor logs operations without side effects.
func NewPlanner(executor StepExecutor, estimator Estimator, logger *observability.Logger, metrics *observability.Metrics) *Planner {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if estimator == nil {
		estimator = DefaultEstimator()
	}
	if executor == nil {
		executor = &LoggingExecutor{Logger: logger}
	}
	return &Planner{
		estimator: estimator,
		executor:  executor,
		logger:    logger,
		metrics:   metrics,
	}
}

// GenerateMigrationPath turns a list of breaking changes into an ordered,
// reversible path from one version to another. The emitted sequence is
// always: backup, one schema-transform step per breaking schema change,
// one contract-update step per breaking contract change, a data-migration
// step when any change touches stored data, then verification and cleanup.
// Steps are declared in dependency order.
func (p *Planner) GenerateMigrationPath(from, to semver.Version, breaking []contract.Change, sourceContracts, targetContracts map[string]*contract.Definition) *Path {
	var steps []Step

	backup := Step{
		ID:        "backup",
		Name:      "Back up contracts and data",
		Type:      StepDataMigration,
		Operation: fmt.Sprintf("snapshot contract set and data at %s", from),
		Validation: []string{
			"backup exists",
			"backup is readable",
		},
		Rollback: Rollback{Possible: true, Operation: "discard backup"},
	}
	steps = append(steps, backup)
	prevPhase := []string{backup.ID}

	var schemaPhase []string
	schemaIndex, contractIndex := 0, 0
	for _, c := range breaking {
		if c.Type.IsContract() {
			continue
		}
		schemaIndex++
		step := Step{
			ID:        fmt.Sprintf("schema-transform-%03d", schemaIndex),
			Name:      fmt.Sprintf("Transform schema at %s", c.Path),
			Type:      StepSchemaTransform,
			Operation: c.Description,
			Validation: []string{
				fmt.Sprintf("schema at %s matches target", c.Path),
			},
			Rollback:     Rollback{Possible: true, Operation: "restore schema from backup"},
			Dependencies: prevPhase,
		}
		steps = append(steps, step)
		schemaPhase = append(schemaPhase, step.ID)
	}
	if len(schemaPhase) > 0 {
		prevPhase = schemaPhase
	}

	var contractPhase []string
	for _, c := range breaking {
		if !c.Type.IsContract() {
			continue
		}
		contractIndex++
		step := Step{
			ID:        fmt.Sprintf("contract-update-%03d", contractIndex),
			Name:      fmt.Sprintf("Update contract %s", c.Path),
			Type:      StepContractUpdate,
			Operation: c.Description,
			Validation: []string{
				fmt.Sprintf("contract %s resolves against %s", c.Path, to),
			},
			Rollback:     Rollback{Possible: true, Operation: "restore contract from backup"},
			Dependencies: prevPhase,
		}
		steps = append(steps, step)
		contractPhase = append(contractPhase, step.ID)
	}
	if len(contractPhase) > 0 {
		prevPhase = contractPhase
	}

	if touchesStoredData(breaking) {
		step := Step{
			ID:        "data-migration",
			Name:      "Migrate stored data",
			Type:      StepDataMigration,
			Operation: fmt.Sprintf("rewrite stored data from %s layout to %s layout", from, to),
			Validation: []string{
				"row counts match",
				"sampled records validate against target schemas",
			},
			Rollback:     Rollback{Possible: true, Operation: "restore data from backup", DataLossRisk: true},
			Dependencies: prevPhase,
		}
		steps = append(steps, step)
		prevPhase = []string{step.ID}
	}

	verification := Step{
		ID:        "verification",
		Name:      "Verify migrated state",
		Type:      StepVerification,
		Operation: fmt.Sprintf("validate all contracts and data against %s", to),
		Validation: []string{
			"all target contracts validate",
		},
		Rollback:     Rollback{Possible: true, Operation: "none required"},
		Dependencies: prevPhase,
	}
	steps = append(steps, verification)

	cleanup := Step{
		ID:           "cleanup",
		Name:         "Remove superseded artifacts",
		Type:         StepCleanup,
		Operation:    fmt.Sprintf("drop %s-era schemas and staging data", from),
		Validation:   []string{"no dangling references to removed schemas"},
		Rollback:     Rollback{Possible: false, DataLossRisk: true},
		Dependencies: []string{verification.ID},
	}
	steps = append(steps, cleanup)

	complexity := p.estimator.Complexity(breaking)
	path := &Path{
		ID:                uuid.NewString(),
		FromVersion:       from,
		ToVersion:         to,
		Steps:             steps,
		Automated:         complexity <= ComplexityModerate,
		Complexity:        complexity,
		EstimatedDuration: p.estimator.Duration(len(steps)),
		Prerequisites:     prerequisites(from, to),
		Risks:             risks(breaking),
	}

	p.logger.WithFields(map[string]interface{}{
		"from":       from.String(),
		"to":         to.String(),
		"steps":      len(steps),
		"complexity": complexity.String(),
	}).Debug("generated migration path")

	return path
}

func touchesStoredData(breaking []contract.Change) bool {
	for _, c := range breaking {
		if c.Details.MigrationRequired {
			return true
		}
	}
	return false
}

func prerequisites(from, to semver.Version) []string {
	prereqs := []string{
		"verified backup of current contracts and data",
		fmt.Sprintf("consumers pinned to %s or a compatible range", from),
	}
	if to.Major > from.Major {
		prereqs = append(prereqs, "maintenance window approved for major upgrade")
	}
	return prereqs
}

func risks(breaking []contract.Change) []string {
	var out []string
	for _, c := range breaking {
		if c.Type == contract.ContractRemoved {
			out = append(out, fmt.Sprintf("consumers of removed contract %s fail until updated", c.Path))
		}
		if c.Type == contract.SchemaTypeChanged {
			out = append(out, fmt.Sprintf("stored values at %s may not convert cleanly", c.Path))
		}
	}
	if len(breaking) > 0 {
		out = append(out, "partial migration leaves mixed-version consumers")
	}
	return out
}
