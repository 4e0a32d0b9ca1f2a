package arena

import "github.com/oneconcern/crane/pkg/errors"

var (
	// ErrNotFound indicates that no component exists for some ID
	ErrNotFound = errors.New("component not found")

	// ErrInvariant indicates a broken tree invariant, such as re-parenting a component
	ErrInvariant = errors.New("component tree invariant violated")
)
