// Package cli implements the contractver command line interface: analyzing
// proposed contract changes, recording version bumps, checking upgrade
// safety, planning and executing migrations, and inspecting history and
// the compatibility matrix.
package cli
