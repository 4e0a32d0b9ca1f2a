// Package core implements the crane operations on a whole component tree:
// synchronizing it from its root, and collecting its status.
package core
