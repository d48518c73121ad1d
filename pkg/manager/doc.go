// Package manager orchestrates the versioning engine. It owns the
// append-only version history and the contract set recorded for each
// version, derives the required bump from analyzed impact, validates
// proposed bumps in strict-compatibility mode, and keeps the
// compatibility ledger current as versions are recorded.
//
// A rejected bump writes nothing: history and the ledger are left exactly
// as they were. Rollback appends a new entry pointing backward rather
// than deleting the entries being rolled past.
package manager
