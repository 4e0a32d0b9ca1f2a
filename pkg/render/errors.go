package render

import "github.com/oneconcern/crane/pkg/errors"

// ErrUnknownFormat indicates an unsupported output format
var ErrUnknownFormat = errors.New("unknown output format")
