package model

import "github.com/oneconcern/crane/pkg/errors"

var (
	// ErrMissingField indicates a required descriptor attribute is absent
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownType indicates a descriptor declares an unsupported component type
	ErrUnknownType = errors.New("unknown component type")

	// ErrInvalidName indicates a component name which can't be used as a directory name
	ErrInvalidName = errors.New("invalid component name")
)
