package core

import "github.com/oneconcern/crane/pkg/errors"

// ErrNoURL indicates that the URL of the root can't be determined
var ErrNoURL = errors.New("no URL given and no existing checkout to take it from")
