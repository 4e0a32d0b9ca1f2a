// Package visitor defines the operation applied to each component of a tree
// during a traversal, and its two implementations: sync and status.
//
// Visitors hold no per-component state: everything they learn is written back
// to the arena. A single visitor is shared by all concurrent visits.
package visitor
