// Package storage provides the file-backed collaborators the engine
// consumes: a contract store reading versioned YAML contract definitions
// from per-version directories, and a snapshot store persisting exported
// manager state as JSON.
package storage
