// Package config loads engine configuration from CONTRACTVER_* environment
// variables with sane defaults. Configuration is read once at startup; the
// resulting struct is passed to the version manager at construction and
// never mutated afterwards.
package config
