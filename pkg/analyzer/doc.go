// Package analyzer structurally diffs two contract sets and classifies
// every difference by impact and severity.
//
// # Classification rules
//
// Breaking: removing a field, narrowing or changing a type, adding a new
// required field, tightening a numeric or length constraint, removing an
// accepted enum value, adding a precondition, weakening a guarantee.
// Removing an entire contract is always breaking with critical severity
// and a required migration, without any schema diffing.
//
// Feature: adding an optional field, widening a constraint, adding an enum
// value, adding a new contract.
//
// Fix/none: non-semantic edits such as descriptions and formats.
//
// # Determinism
//
// For fixed inputs the list of differences and its ordering are stable:
// contracts are visited in sorted ID order and object properties in sorted
// name order. Downstream planning relies on identical inputs producing
// byte-identical change lists.
package analyzer
