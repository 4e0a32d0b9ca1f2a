// Package render prints the status of a component tree, as an indented tree for
// terminals or as YAML for scripts.
package render
