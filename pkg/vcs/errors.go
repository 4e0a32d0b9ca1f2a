package vcs

import "github.com/oneconcern/crane/pkg/errors"

var (
	// ErrNoRevision indicates that neither a branch nor a commit is specified
	ErrNoRevision = errors.New("neither branch nor commit is specified")

	// ErrInvalidTarget indicates a checkout target which can't be resolved
	ErrInvalidTarget = errors.New("invalid checkout target")

	// ErrInvalidURL indicates a malformed remote URL
	ErrInvalidURL = errors.New("invalid remote URL")

	// ErrRemote indicates a remote which could not be reached or read
	ErrRemote = errors.New("remote unreachable")

	// ErrAuth indicates an authentication or authorization failure against a remote
	ErrAuth = errors.New("authentication failed")

	// ErrNoRemote indicates a checkout without the expected remote configured
	ErrNoRemote = errors.New("remote not configured")

	// ErrNotARepository indicates a directory which is not a git checkout
	ErrNotARepository = errors.New("not a git repository")

	// ErrCheckout indicates a working tree which could not be updated
	ErrCheckout = errors.New("checkout failed")

	// ErrAlternate indicates a failure to register an object alternate
	ErrAlternate = errors.New("cannot register object alternate")
)
