package migration

import (
	"time"

	"github.com/sibyllinesoft/contractver/pkg/semver"
)

// StepType classifies what a migration step does.
type StepType int

const (
	StepSchemaTransform StepType = iota
	StepDataMigration
	StepContractUpdate
	StepValidationChange
	StepCleanup
	StepVerification
)

func (t StepType) String() string {
	return []string{
		"schema_transform", "data_migration", "contract_update",
		"validation_change", "cleanup", "verification",
	}[t]
}

// Complexity grades a migration path.
type Complexity int

const (
	ComplexitySimple Complexity = iota
	ComplexityModerate
	ComplexityComplex
	ComplexityCritical
)

func (c Complexity) String() string {
	return []string{"simple", "moderate", "complex", "critical"}[c]
}

// Rollback describes how to undo a step.
type Rollback struct {
	Possible     bool   `json:"possible" yaml:"possible"`
	Operation    string `json:"operation,omitempty" yaml:"operation,omitempty"`
	DataLossRisk bool   `json:"data_loss_risk" yaml:"data_loss_risk"`
}

// Step is one unit of work in a migration path. Dependencies reference
// other step IDs and form a DAG; execution order is a topological sort of
// that DAG.
type Step struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name" yaml:"name"`
	Type         StepType `json:"type" yaml:"type"`
	Operation    string   `json:"operation" yaml:"operation"`
	Validation   []string `json:"validation,omitempty" yaml:"validation,omitempty"`
	Rollback     Rollback `json:"rollback" yaml:"rollback"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Path is an ordered, reversible plan moving contracts and data from one
// version to another.
type Path struct {
	ID                string         `json:"id" yaml:"id"`
	FromVersion       semver.Version `json:"from_version" yaml:"from_version"`
	ToVersion         semver.Version `json:"to_version" yaml:"to_version"`
	Steps             []Step         `json:"steps" yaml:"steps"`
	Automated         bool           `json:"automated" yaml:"automated"`
	Complexity        Complexity     `json:"complexity" yaml:"complexity"`
	EstimatedDuration time.Duration  `json:"estimated_duration" yaml:"estimated_duration"`
	Prerequisites     []string       `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Risks             []string       `json:"risks,omitempty" yaml:"risks,omitempty"`
}

// Step lookup by ID.
func (p *Path) step(id string) (Step, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}
