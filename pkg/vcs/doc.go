// Package vcs implements the git primitives used by crane, on top of go-git,
// and the synchronization protocol applied to each component.
//
// Synchronizing a component goes through the following states:
//
//	Uninitialized -> CacheFetched -> TargetLinked -> TargetFetched -> CheckedOut
//
// Any step may fail, leaving the component in the Failed state. Nothing is
// rolled back: a failed sync leaves the cache and the checkout as they were
// when the failure occurred.
package vcs
