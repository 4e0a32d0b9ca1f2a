// Package engine walks a component tree which is discovered while it is being walked.
//
// Walk seeds a queue with root components and runs the visitor on each queued component,
// several at a time. When the visit of a solution completes, the children it discovered
// are queued in turn: a child is never visited before its parent.
package engine
