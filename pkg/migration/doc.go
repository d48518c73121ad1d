// Package migration plans and executes migrations between contract
// versions.
//
// A generated path always carries, in dependency order: a backup step, one
// schema-transform step per breaking schema change, one contract-update
// step per breaking contract change, a data-migration step when stored
// data is touched, then verification and cleanup. Complexity and duration
// estimates come from an Estimator strategy so the heuristic constants can
// be swapped without touching planning logic.
//
// Execution orders steps by a topological sort of their dependency DAG and
// fails fast on cycles. A failed step stops execution immediately and
// flags whether rollback is required; rollback undoes completed steps in
// reverse completion order, attempts even steps with data-loss risk, and
// escalates any rollback failure as a fatal *RollbackError naming the
// steps that could not be undone.
package migration
