package migration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sibyllinesoft/contractver/pkg/contract"
	"github.com/sibyllinesoft/contractver/pkg/semver"
)

func breakingSchemaChange(path string) contract.Change {
	return contract.Change{
		Type:        contract.SchemaRemoved,
		Path:        path,
		Description: "field removed",
		Impact:      contract.Breaking,
		Severity:    contract.SeverityMajor,
		Details:     contract.ChangeDetails{MigrationRequired: true},
	}
}

func breakingContractChange(path string) contract.Change {
	return contract.Change{
		Type:        contract.ContractRemoved,
		Path:        path,
		Description: "contract removed",
		Impact:      contract.Breaking,
		Severity:    contract.SeverityCritical,
		Details:     contract.ChangeDetails{MigrationRequired: true},
	}
}

func TestGenerateMigrationPath_StepSequence(t *testing.T) {
	p := NewPlanner(nil, nil, nil, nil)
	path := p.GenerateMigrationPath(
		semver.MustParse("1.0.0"), semver.MustParse("2.0.0"),
		[]contract.Change{breakingSchemaChange("a.input.x"), breakingContractChange("b")},
		nil, nil,
	)

	require.NotEmpty(t, path.ID)
	types := make([]StepType, len(path.Steps))
	for i, s := range path.Steps {
		types[i] = s.Type
	}
	assert.Equal(t, []StepType{
		StepDataMigration, // backup
		StepSchemaTransform,
		StepContractUpdate,
		StepDataMigration,
		StepVerification,
		StepCleanup,
	}, types)

	// Steps are declared in dependency order: the sort must be the
	// identity permutation for generated paths.
	order, err := topoSort(path)
	require.NoError(t, err)
	for i, s := range order {
		assert.Equal(t, path.Steps[i].ID, s.ID)
	}
}

func TestGenerateMigrationPath_NoDataStepWithoutStoredData(t *testing.T) {
	p := NewPlanner(nil, nil, nil, nil)
	change := breakingSchemaChange("a.input.x")
	change.Details.MigrationRequired = false

	path := p.GenerateMigrationPath(
		semver.MustParse("1.0.0"), semver.MustParse("2.0.0"),
		[]contract.Change{change}, nil, nil,
	)

	for _, s := range path.Steps {
		assert.NotEqual(t, "data-migration", s.ID)
	}
}

func TestGenerateMigrationPath_Estimates(t *testing.T) {
	p := NewPlanner(nil, nil, nil, nil)
	path := p.GenerateMigrationPath(
		semver.MustParse("1.0.0"), semver.MustParse("2.0.0"),
		[]contract.Change{breakingSchemaChange("a.input.x")},
		nil, nil,
	)

	assert.Equal(t, ComplexitySimple, path.Complexity)
	assert.True(t, path.Automated)
	// Five steps at 30 minutes each, rounded up to whole hours above 60m.
	require.Len(t, path.Steps, 5)
	assert.Equal(t, 3*time.Hour, path.EstimatedDuration)
	assert.NotEmpty(t, path.Prerequisites)
	assert.NotEmpty(t, path.Risks)
}

func TestGenerateMigrationPath_CleanupNotRollbackable(t *testing.T) {
	p := NewPlanner(nil, nil, nil, nil)
	path := p.GenerateMigrationPath(
		semver.MustParse("1.0.0"), semver.MustParse("2.0.0"),
		[]contract.Change{breakingSchemaChange("a.input.x")},
		nil, nil,
	)

	last := path.Steps[len(path.Steps)-1]
	assert.Equal(t, StepCleanup, last.Type)
	assert.False(t, last.Rollback.Possible)
	assert.True(t, last.Rollback.DataLossRisk)
}

func TestHeuristicEstimator_Complexity(t *testing.T) {
	e := DefaultEstimator()

	major := func(n int) []contract.Change {
		out := make([]contract.Change, n)
		for i := range out {
			out[i] = contract.Change{Impact: contract.Breaking, Severity: contract.SeverityMajor}
		}
		return out
	}
	critical := func(n int) []contract.Change {
		out := make([]contract.Change, n)
		for i := range out {
			out[i] = contract.Change{Impact: contract.Breaking, Severity: contract.SeverityCritical}
		}
		return out
	}

	assert.Equal(t, ComplexitySimple, e.Complexity(nil))
	assert.Equal(t, ComplexitySimple, e.Complexity(major(2)))
	assert.Equal(t, ComplexityModerate, e.Complexity(major(3)))
	assert.Equal(t, ComplexityComplex, e.Complexity(major(6)))
	assert.Equal(t, ComplexityComplex, e.Complexity(critical(1)))
	assert.Equal(t, ComplexityCritical, e.Complexity(critical(3)))
	assert.Equal(t, ComplexityCritical, e.Complexity(major(11)))
}

func TestHeuristicEstimator_Duration(t *testing.T) {
	e := DefaultEstimator()

	assert.Equal(t, 30*time.Minute, e.Duration(1))
	assert.Equal(t, 60*time.Minute, e.Duration(2))
	// Above 60 minutes, round up to whole hours.
	assert.Equal(t, 2*time.Hour, e.Duration(3))
	assert.Equal(t, 2*time.Hour, e.Duration(4))
	assert.Equal(t, 3*time.Hour, e.Duration(5))
}
