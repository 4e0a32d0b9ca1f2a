// Package model describes the nodes of a crane component tree.
//
// A tree is made of components, each one being a version-controlled directory.
// Components are identified by an arena-local ComponentID and refer to each other
// only through such identifiers: the arena owns all nodes.
//
// Two kinds of components exist:
//   - solutions, which may declare further components in a nested config file
//   - git dependencies, which are terminal references to a repository
//
// A solution is always also a git reference.
package model
