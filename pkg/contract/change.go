package contract

import (
	"fmt"
	"strings"
)

// ChangeType is the tagged variant over {schema|contract} x
// {added|removed|modified|type_changed}.
type ChangeType int

const (
	SchemaAdded ChangeType = iota
	SchemaRemoved
	SchemaModified
	SchemaTypeChanged
	ContractAdded
	ContractRemoved
	ContractModified
	ContractTypeChanged
)

func (t ChangeType) String() string {
	return []string{
		"schema_added", "schema_removed", "schema_modified", "schema_type_changed",
		"contract_added", "contract_removed", "contract_modified", "contract_type_changed",
	}[t]
}

// IsContract reports whether the change targets a whole contract rather
// than a schema element.
func (t ChangeType) IsContract() bool {
	return t >= ContractAdded
}

// Impact classifies what a change means for consumers. Ordering matters:
// when accumulating the overall impact of a change set the highest value
// wins (Breaking > Feature > Fix > NoImpact).
type Impact int

const (
	NoImpact Impact = iota
	Fix
	Feature
	Breaking
)

func (i Impact) String() string {
	return []string{"none", "fix", "feature", "breaking"}[i]
}

// ParseImpact converts a string to an Impact.
func ParseImpact(s string) (Impact, error) {
	switch strings.ToLower(s) {
	case "none":
		return NoImpact, nil
	case "fix":
		return Fix, nil
	case "feature":
		return Feature, nil
	case "breaking":
		return Breaking, nil
	}
	return NoImpact, fmt.Errorf("unknown impact: %s", s)
}

// Severity grades a change for reporting and complexity estimation.
type Severity int

const (
	SeverityPatch Severity = iota
	SeverityMinor
	SeverityMajor
	SeverityCritical
)

func (s Severity) String() string {
	return []string{"patch", "minor", "major", "critical"}[s]
}

// ChangeDetails carries the before/after snapshot of a changed element and
// the migration flags derived from the classification rules.
type ChangeDetails struct {
	Before             string `json:"before,omitempty" yaml:"before,omitempty"`
	After              string `json:"after,omitempty" yaml:"after,omitempty"`
	Diff               string `json:"diff,omitempty" yaml:"diff,omitempty"`
	MigrationRequired  bool   `json:"migration_required" yaml:"migration_required"`
	BackwardCompatible bool   `json:"backward_compatible" yaml:"backward_compatible"`
}

// Change is one difference between two contract sets. Changes are produced
// only by the analyzer and never mutated after creation.
type Change struct {
	Type        ChangeType    `json:"type" yaml:"type"`
	Path        string        `json:"path" yaml:"path"`
	Description string        `json:"description" yaml:"description"`
	Impact      Impact        `json:"impact" yaml:"impact"`
	Severity    Severity      `json:"severity" yaml:"severity"`
	Details     ChangeDetails `json:"details" yaml:"details"`
}

// HighestImpact folds a change list down to its most severe impact.
func HighestImpact(changes []Change) Impact {
	highest := NoImpact
	for _, c := range changes {
		if c.Impact > highest {
			highest = c.Impact
		}
	}
	return highest
}

// BreakingChanges filters a change list down to breaking entries,
// preserving order.
func BreakingChanges(changes []Change) []Change {
	var breaking []Change
	for _, c := range changes {
		if c.Impact == Breaking {
			breaking = append(breaking, c)
		}
	}
	return breaking
}
