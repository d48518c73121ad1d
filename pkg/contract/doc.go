// Package contract defines the shared data model for versioned contracts:
// the Definition type (input/output schemas, pre/post-conditions,
// metamorphic laws, invariants), the closed tagged-union Schema node model
// (object, array, primitive, enum, reference), and the Change type emitted
// by the analyzer when two contract sets are diffed.
//
// Schema nodes form a closed union discriminated by Kind so that diffing is
// a structural pattern match rather than reflective property walking. All
// types here are plain serializable values; nothing in this package owns
// mutable state.
package contract
