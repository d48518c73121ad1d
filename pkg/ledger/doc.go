// Package ledger maintains, per known version, which target versions are
// compatible, deprecated or unsupported, along with the support window and
// generated migration paths for targets that need them.
//
// Matrices are rebuilt from the full known version set whenever a new
// version is recorded, never incrementally patched. The cache is an
// explicit field on the Ledger instance, keyed by canonical version
// string, with entries invalidated by manager action only.
//
// During matrix construction a conservative shortcut treats a target with
// a lower major version, or the same major and a lower-or-equal minor, as
// compatible without running the full diff. This can mark a target
// compatible where a full analysis would disagree; the shortcut is
// reproduced deliberately to match established behavior. IsUpgradeSafe
// always runs the full analysis, so the shortcut only affects matrix
// bucketing.
package ledger
