package migration

import (
	"context"
	"strconv"

	"github.com/sibyllinesoft/contractver/pkg/observability"
)

// StepExecutor applies, validates and rolls back individual migration
// steps. Implementations perform the actual external data and schema
// operations; the engine only sequences them.
type StepExecutor interface {
	Apply(ctx context.Context, step Step) error
	Validate(ctx context.Context, step Step, rule string) error
	Rollback(ctx context.Context, step Step) error
}

// LoggingExecutor is the default executor: it records every operation and
// performs no side effects. Useful for planning, tests and dry runs.
type LoggingExecutor struct {
	Logger *observability.Logger
}

func (e *LoggingExecutor) Apply(ctx context.Context, step Step) error {
	e.Logger.WithField("step", step.ID).Debugf("apply: %s", step.Operation)
	return nil
}

func (e *LoggingExecutor) Validate(ctx context.Context, step Step, rule string) error {
	e.Logger.WithField("step", step.ID).Debugf("validate: %s", rule)
	return nil
}

func (e *LoggingExecutor) Rollback(ctx context.Context, step Step) error {
	e.Logger.WithField("step", step.ID).Debugf("rollback: %s", step.Rollback.Operation)
	return nil
}

// ExecutionResult reports how a migration run ended.
type ExecutionResult struct {
	Success          bool
	CompletedSteps   []string
	Err              error
	RollbackRequired bool
}

// RollbackResult reports how a rollback ended. Failures of steps flagged
// with data-loss risk are reported separately from clean failures.
type RollbackResult struct {
	Success          bool
	RolledBack       []string
	FailedSteps      []string
	DataLossFailures []string
	Err              error
}

// ExecuteMigration runs the path's steps in a topological order of their
// dependency DAG; a cycle or unknown dependency fails fast before any step
// runs. With dryRun set, every step's validation rules run but no
// operation is applied. On step failure execution stops immediately;
// RollbackRequired is true unless the failed step declares rollback
// impossible.
func (p *Planner) ExecuteMigration(ctx context.Context, path *Path, dryRun bool) (*ExecutionResult, error) {
	order, err := topoSort(path)
	if err != nil {
		return nil, err
	}

	p.metrics.MigrationSteps.Observe(float64(len(order)))
	result := &ExecutionResult{}

	for _, step := range order {
		if err := ctx.Err(); err != nil {
			result.Err = &Error{PathID: path.ID, StepID: step.ID, Reason: "execution aborted", Err: err}
			result.RollbackRequired = step.Rollback.Possible
			p.metrics.MigrationsTotal.WithLabelValues("failure", strconv.FormatBool(dryRun)).Inc()
			return result, nil
		}

		if err := p.runStep(ctx, step, dryRun); err != nil {
			result.Err = err
			result.RollbackRequired = step.Rollback.Possible
			p.metrics.MigrationsTotal.WithLabelValues("failure", strconv.FormatBool(dryRun)).Inc()
			p.logger.WithError(err).WithField("step", step.ID).Error("migration step failed")
			return result, nil
		}
		result.CompletedSteps = append(result.CompletedSteps, step.ID)
	}

	result.Success = true
	p.metrics.MigrationsTotal.WithLabelValues("success", strconv.FormatBool(dryRun)).Inc()
	p.logger.WithFields(map[string]interface{}{
		"path":    path.ID,
		"steps":   len(result.CompletedSteps),
		"dry_run": dryRun,
	}).Info("migration executed")
	return result, nil
}

func (p *Planner) runStep(ctx context.Context, step Step, dryRun bool) error {
	for _, rule := range step.Validation {
		if err := p.executor.Validate(ctx, step, rule); err != nil {
			return &ValidationError{StepID: step.ID, Rule: rule, Err: err}
		}
	}
	if dryRun {
		return nil
	}
	if err := p.executor.Apply(ctx, step); err != nil {
		return &Error{StepID: step.ID, Reason: "operation failed", Err: err}
	}
	return nil
}

// RollbackMigration undoes completed steps in reverse completion order.
// Every step is attempted, including those with data-loss risk; any
// failure is escalated as a *RollbackError naming the steps that could not
// be undone. Rollback failure is fatal and is never swallowed.
func (p *Planner) RollbackMigration(ctx context.Context, path *Path, completedSteps []string) (*RollbackResult, error) {
	result := &RollbackResult{}
	var firstErr error

	for i := len(completedSteps) - 1; i >= 0; i-- {
		id := completedSteps[i]
		step, ok := path.step(id)
		if !ok {
			result.FailedSteps = append(result.FailedSteps, id)
			if firstErr == nil {
				firstErr = &Error{PathID: path.ID, StepID: id, Reason: "unknown step in completed list"}
			}
			continue
		}

		if !step.Rollback.Possible {
			result.FailedSteps = append(result.FailedSteps, id)
			p.metrics.StepRollbacksTotal.WithLabelValues("impossible").Inc()
			if firstErr == nil {
				firstErr = &Error{PathID: path.ID, StepID: id, Reason: "rollback declared impossible"}
			}
			continue
		}

		if err := p.executor.Rollback(ctx, step); err != nil {
			result.FailedSteps = append(result.FailedSteps, id)
			if step.Rollback.DataLossRisk {
				result.DataLossFailures = append(result.DataLossFailures, id)
				p.metrics.StepRollbacksTotal.WithLabelValues("data_loss_failure").Inc()
			} else {
				p.metrics.StepRollbacksTotal.WithLabelValues("failure").Inc()
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		result.RolledBack = append(result.RolledBack, id)
		p.metrics.StepRollbacksTotal.WithLabelValues("success").Inc()
	}

	if len(result.FailedSteps) > 0 {
		result.Err = &RollbackError{PathID: path.ID, FailedSteps: result.FailedSteps, Err: firstErr}
		return result, result.Err
	}

	result.Success = true
	return result, nil
}

// topoSort orders steps so every step runs after its dependencies. The
// order is deterministic: among ready steps, declaration order wins. An
// unknown dependency or a cycle fails with a *Error.
func topoSort(path *Path) ([]Step, error) {
	indegree := make(map[string]int, len(path.Steps))
	dependents := make(map[string][]string, len(path.Steps))
	byID := make(map[string]Step, len(path.Steps))

	for _, s := range path.Steps {
		if _, dup := byID[s.ID]; dup {
			return nil, &Error{PathID: path.ID, StepID: s.ID, Reason: "duplicate step id"}
		}
		byID[s.ID] = s
		indegree[s.ID] = 0
	}
	for _, s := range path.Steps {
		for _, dep := range s.Dependencies {
			if _, ok := byID[dep]; !ok {
				return nil, &Error{PathID: path.ID, StepID: s.ID, Reason: "unknown dependency " + dep}
			}
			indegree[s.ID]++
			dependents[dep] = append(dependents[dep], s.ID)
		}
	}

	var order []Step
	scheduled := make(map[string]bool, len(path.Steps))
	for len(order) < len(path.Steps) {
		progressed := false
		for _, s := range path.Steps {
			if scheduled[s.ID] || indegree[s.ID] != 0 {
				continue
			}
			scheduled[s.ID] = true
			order = append(order, s)
			for _, next := range dependents[s.ID] {
				indegree[next]--
			}
			progressed = true
		}
		if !progressed {
			return nil, &Error{PathID: path.ID, Reason: "dependency cycle between steps"}
		}
	}

	return order, nil
}
