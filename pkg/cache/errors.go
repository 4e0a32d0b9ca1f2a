package cache

import "github.com/oneconcern/crane/pkg/errors"

var (
	// ErrNotADirectory indicates that the cache root exists but is not a directory
	ErrNotADirectory = errors.New("cache path exists but is not a directory")

	// ErrInvalidKey indicates a cache key which does not decode to a URL
	ErrInvalidKey = errors.New("invalid cache key")
)
