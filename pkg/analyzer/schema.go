package analyzer

import (
	"fmt"

	"github.com/sibyllinesoft/contractver/pkg/contract"
)

// SchemaAnalysis is the result of a structural schema diff.
type SchemaAnalysis struct {
	Differences     []contract.Change
	Compatible      bool
	BreakingChanges []contract.Change
}

// AnalyzeSchemaChanges structurally diffs two schema trees and classifies
// every difference. Compatible is true iff no difference is breaking.
func (a *Analyzer) AnalyzeSchemaChanges(source, target *contract.Schema) *SchemaAnalysis {
	diffs := a.diffSchema("", source, target)
	breaking := contract.BreakingChanges(diffs)
	return &SchemaAnalysis{
		Differences:     diffs,
		Compatible:      len(breaking) == 0,
		BreakingChanges: breaking,
	}
}

// diffSchema walks two schema nodes, emitting one change per added,
// removed, modified or type-changed element. Object properties are visited
// in sorted order so change lists are byte-identical across runs.
func (a *Analyzer) diffSchema(path string, src, dst *contract.Schema) []contract.Change {
	switch {
	case src == nil && dst == nil:
		return nil
	case src == nil:
		return []contract.Change{a.schemaAdded(path, dst, false)}
	case dst == nil:
		return []contract.Change{a.schemaRemoved(path, src)}
	}

	if src.Kind != dst.Kind {
		return []contract.Change{{
			Type:        contract.SchemaTypeChanged,
			Path:        path,
			Description: fmt.Sprintf("schema kind changed from %s to %s", src.Kind, dst.Kind),
			Impact:      contract.Breaking,
			Severity:    contract.SeverityMajor,
			Details: contract.ChangeDetails{
				Before:            src.Kind.String(),
				After:             dst.Kind.String(),
				MigrationRequired: true,
			},
		}}
	}

	var changes []contract.Change

	if src.Description != dst.Description {
		changes = append(changes, a.descriptionChanged(path, src.Description, dst.Description))
	}
	if src.Nullable != dst.Nullable {
		changes = append(changes, a.nullabilityChanged(path, src.Nullable, dst.Nullable))
	}

	switch src.Kind {
	case contract.KindObject:
		changes = append(changes, a.diffObject(path, src, dst)...)
	case contract.KindArray:
		changes = append(changes, a.diffArray(path, src, dst)...)
	case contract.KindPrimitive:
		changes = append(changes, a.diffPrimitive(path, src, dst)...)
	case contract.KindEnum:
		changes = append(changes, a.diffEnum(path, src, dst)...)
	case contract.KindReference:
		changes = append(changes, a.diffReference(path, src, dst)...)
	}

	return changes
}

func (a *Analyzer) diffObject(path string, src, dst *contract.Schema) []contract.Change {
	var changes []contract.Change

	for _, name := range src.SortedPropertyNames() {
		childPath := joinPath(path, name)
		srcProp := src.Properties[name]
		dstProp, ok := dst.Properties[name]
		if !ok {
			changes = append(changes, a.schemaRemoved(childPath, srcProp))
			continue
		}

		wasRequired, isRequired := src.IsRequired(name), dst.IsRequired(name)
		switch {
		case !wasRequired && isRequired:
			changes = append(changes, contract.Change{
				Type:        contract.SchemaModified,
				Path:        childPath,
				Description: fmt.Sprintf("field %q became required", name),
				Impact:      contract.Breaking,
				Severity:    contract.SeverityMajor,
				Details: contract.ChangeDetails{
					Before:            "optional",
					After:             "required",
					MigrationRequired: true,
				},
			})
		case wasRequired && !isRequired:
			changes = append(changes, contract.Change{
				Type:        contract.SchemaModified,
				Path:        childPath,
				Description: fmt.Sprintf("field %q became optional", name),
				Impact:      contract.Feature,
				Severity:    contract.SeverityMinor,
				Details: contract.ChangeDetails{
					Before:             "required",
					After:              "optional",
					BackwardCompatible: true,
				},
			})
		}

		changes = append(changes, a.diffSchema(childPath, srcProp, dstProp)...)
	}

	for _, name := range dst.SortedPropertyNames() {
		if _, ok := src.Properties[name]; ok {
			continue
		}
		changes = append(changes, a.schemaAdded(joinPath(path, name), dst.Properties[name], dst.IsRequired(name)))
	}

	return changes
}

func (a *Analyzer) diffArray(path string, src, dst *contract.Schema) []contract.Change {
	changes := a.diffSchema(path+"[]", src.Items, dst.Items)
	changes = append(changes, a.diffIntConstraint(path, "min_items", src.MinItems, dst.MinItems, tightenWhenRaised)...)
	changes = append(changes, a.diffIntConstraint(path, "max_items", src.MaxItems, dst.MaxItems, tightenWhenLowered)...)
	return changes
}

func (a *Analyzer) diffPrimitive(path string, src, dst *contract.Schema) []contract.Change {
	var changes []contract.Change

	if src.Type != dst.Type {
		changes = append(changes, contract.Change{
			Type:        contract.SchemaTypeChanged,
			Path:        path,
			Description: fmt.Sprintf("type changed from %s to %s", src.Type, dst.Type),
			Impact:      contract.Breaking,
			Severity:    contract.SeverityMajor,
			Details: contract.ChangeDetails{
				Before:            string(src.Type),
				After:             string(dst.Type),
				MigrationRequired: true,
			},
		})
	}

	if src.Format != dst.Format {
		changes = append(changes, contract.Change{
			Type:        contract.SchemaModified,
			Path:        path,
			Description: fmt.Sprintf("format changed from %q to %q", src.Format, dst.Format),
			Impact:      contract.Fix,
			Severity:    contract.SeverityPatch,
			Details: contract.ChangeDetails{
				Before:             src.Format,
				After:              dst.Format,
				BackwardCompatible: true,
			},
		})
	}

	changes = append(changes, a.diffFloatConstraint(path, "minimum", src.Minimum, dst.Minimum, tightenWhenRaised)...)
	changes = append(changes, a.diffFloatConstraint(path, "maximum", src.Maximum, dst.Maximum, tightenWhenLowered)...)
	changes = append(changes, a.diffIntConstraint(path, "min_length", src.MinLength, dst.MinLength, tightenWhenRaised)...)
	changes = append(changes, a.diffIntConstraint(path, "max_length", src.MaxLength, dst.MaxLength, tightenWhenLowered)...)

	if src.Pattern != dst.Pattern {
		changes = append(changes, a.patternChanged(path, src.Pattern, dst.Pattern))
	}

	return changes
}

func (a *Analyzer) diffEnum(path string, src, dst *contract.Schema) []contract.Change {
	var changes []contract.Change

	dstValues := make(map[string]bool, len(dst.Values))
	for _, v := range dst.Values {
		dstValues[v] = true
	}
	srcValues := make(map[string]bool, len(src.Values))
	for _, v := range src.Values {
		srcValues[v] = true
	}

	for _, v := range src.Values {
		if !dstValues[v] {
			changes = append(changes, contract.Change{
				Type:        contract.SchemaModified,
				Path:        path,
				Description: fmt.Sprintf("enum value %q removed", v),
				Impact:      contract.Breaking,
				Severity:    contract.SeverityMajor,
				Details: contract.ChangeDetails{
					Before:            v,
					MigrationRequired: true,
				},
			})
		}
	}
	for _, v := range dst.Values {
		if !srcValues[v] {
			changes = append(changes, contract.Change{
				Type:        contract.SchemaModified,
				Path:        path,
				Description: fmt.Sprintf("enum value %q added", v),
				Impact:      contract.Feature,
				Severity:    contract.SeverityMinor,
				Details: contract.ChangeDetails{
					After:              v,
					BackwardCompatible: true,
				},
			})
		}
	}

	return changes
}

func (a *Analyzer) diffReference(path string, src, dst *contract.Schema) []contract.Change {
	if src.Ref == dst.Ref {
		return nil
	}
	return []contract.Change{{
		Type:        contract.SchemaTypeChanged,
		Path:        path,
		Description: fmt.Sprintf("reference changed from %q to %q", src.Ref, dst.Ref),
		Impact:      contract.Breaking,
		Severity:    contract.SeverityMajor,
		Details: contract.ChangeDetails{
			Before:            src.Ref,
			After:             dst.Ref,
			MigrationRequired: true,
		},
	}}
}

func (a *Analyzer) schemaAdded(path string, s *contract.Schema, required bool) contract.Change {
	if required {
		return contract.Change{
			Type:        contract.SchemaAdded,
			Path:        path,
			Description: fmt.Sprintf("required %s field added", s.Kind),
			Impact:      contract.Breaking,
			Severity:    contract.SeverityMajor,
			Details: contract.ChangeDetails{
				After:             s.Kind.String(),
				MigrationRequired: true,
			},
		}
	}
	return contract.Change{
		Type:        contract.SchemaAdded,
		Path:        path,
		Description: fmt.Sprintf("optional %s field added", s.Kind),
		Impact:      contract.Feature,
		Severity:    contract.SeverityMinor,
		Details: contract.ChangeDetails{
			After:              s.Kind.String(),
			BackwardCompatible: true,
		},
	}
}

func (a *Analyzer) schemaRemoved(path string, s *contract.Schema) contract.Change {
	return contract.Change{
		Type:        contract.SchemaRemoved,
		Path:        path,
		Description: fmt.Sprintf("%s field removed", s.Kind),
		Impact:      contract.Breaking,
		Severity:    contract.SeverityMajor,
		Details: contract.ChangeDetails{
			Before:            s.Kind.String(),
			MigrationRequired: true,
		},
	}
}

func (a *Analyzer) descriptionChanged(path, before, after string) contract.Change {
	return contract.Change{
		Type:        contract.SchemaModified,
		Path:        path,
		Description: "description changed",
		Impact:      contract.Fix,
		Severity:    contract.SeverityPatch,
		Details: contract.ChangeDetails{
			Before:             before,
			After:              after,
			Diff:               a.textDiff(before, after),
			BackwardCompatible: true,
		},
	}
}

func (a *Analyzer) nullabilityChanged(path string, before, after bool) contract.Change {
	if before && !after {
		// No longer accepts null: tightening.
		return contract.Change{
			Type:        contract.SchemaModified,
			Path:        path,
			Description: "field no longer nullable",
			Impact:      contract.Breaking,
			Severity:    contract.SeverityMajor,
			Details: contract.ChangeDetails{
				Before:            "nullable",
				After:             "non-nullable",
				MigrationRequired: true,
			},
		}
	}
	return contract.Change{
		Type:        contract.SchemaModified,
		Path:        path,
		Description: "field became nullable",
		Impact:      contract.Feature,
		Severity:    contract.SeverityMinor,
		Details: contract.ChangeDetails{
			Before:             "non-nullable",
			After:              "nullable",
			BackwardCompatible: true,
		},
	}
}

func (a *Analyzer) patternChanged(path, before, after string) contract.Change {
	if after == "" {
		return contract.Change{
			Type:        contract.SchemaModified,
			Path:        path,
			Description: "pattern constraint removed",
			Impact:      contract.Feature,
			Severity:    contract.SeverityMinor,
			Details: contract.ChangeDetails{
				Before:             before,
				BackwardCompatible: true,
			},
		}
	}
	// Adding or changing a pattern tightens accepted input.
	return contract.Change{
		Type:        contract.SchemaModified,
		Path:        path,
		Description: fmt.Sprintf("pattern constraint changed to %q", after),
		Impact:      contract.Breaking,
		Severity:    contract.SeverityMajor,
		Details: contract.ChangeDetails{
			Before:            before,
			After:             after,
			MigrationRequired: true,
		},
	}
}

// constraintDirection maps a raised bound to tightening or widening.
type constraintDirection int

const (
	tightenWhenRaised constraintDirection = iota
	tightenWhenLowered
)

func (a *Analyzer) diffFloatConstraint(path, name string, src, dst *float64, dir constraintDirection) []contract.Change {
	switch {
	case src == nil && dst == nil:
		return nil
	case src == nil:
		return []contract.Change{a.constraintChange(path, name, "", formatFloat(*dst), true)}
	case dst == nil:
		return []contract.Change{a.constraintChange(path, name, formatFloat(*src), "", false)}
	case *src == *dst:
		return nil
	}

	tightened := (*dst > *src) == (dir == tightenWhenRaised)
	return []contract.Change{a.constraintChange(path, name, formatFloat(*src), formatFloat(*dst), tightened)}
}

func (a *Analyzer) diffIntConstraint(path, name string, src, dst *int, dir constraintDirection) []contract.Change {
	switch {
	case src == nil && dst == nil:
		return nil
	case src == nil:
		return []contract.Change{a.constraintChange(path, name, "", fmt.Sprintf("%d", *dst), true)}
	case dst == nil:
		return []contract.Change{a.constraintChange(path, name, fmt.Sprintf("%d", *src), "", false)}
	case *src == *dst:
		return nil
	}

	tightened := (*dst > *src) == (dir == tightenWhenRaised)
	return []contract.Change{a.constraintChange(path, name, fmt.Sprintf("%d", *src), fmt.Sprintf("%d", *dst), tightened)}
}

func (a *Analyzer) constraintChange(path, name, before, after string, tightened bool) contract.Change {
	if tightened {
		return contract.Change{
			Type:        contract.SchemaModified,
			Path:        path,
			Description: fmt.Sprintf("constraint %s tightened", name),
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
		Type:        contract.SchemaModified,
		Path:        path,
		Description: fmt.Sprintf("constraint %s widened", name),
		Impact:      contract.Feature,
		Severity:    contract.SeverityMinor,
		Details: contract.ChangeDetails{
			Before:             before,
			After:              after,
			BackwardCompatible: true,
		},
	}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}
