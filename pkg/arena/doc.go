// Package arena stores the components of a tree, indexed by ComponentID.
//
// The arena is append-only: components are never removed during a run and
// identifiers are never reused. Parent/child relationships are expressed as
// identifiers, never as pointers.
//
// Each component is guarded by its own read/write lock. The collection itself
// is guarded by a separate lock, held only for the duration of an index lookup
// or an append, so that inserting new components is never serialized behind
// unrelated component accesses.
//
// Lock acquisitions are bounded: a wait longer than the configured timeout
// indicates a bug (e.g. a lock held across a blocking operation) and panics.
package arena
