package config

import "github.com/oneconcern/crane/pkg/errors"

var (
	// ErrNotFound indicates a missing config file
	ErrNotFound = errors.New("config file not found")

	// ErrParse indicates a config file which could not be evaluated
	ErrParse = errors.New("invalid config file")

	// ErrVariable indicates a missing or malformed components variable
	ErrVariable = errors.New("invalid components variable")

	// ErrFieldType indicates an attribute with an unexpected type
	ErrFieldType = errors.New("invalid attribute type")
)
