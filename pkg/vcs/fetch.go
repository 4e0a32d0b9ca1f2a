package vcs

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/oneconcern/crane/pkg/errors"
)

// Fetch refspecs from url into repo, using a remote named name.
//
// An already up-to-date repository is not an error.
func Fetch(ctx context.Context, repo *git.Repository, name, url string, specs []config.RefSpec, t Transport) error {
	remote := git.NewRemote(repo.Storer, &config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	})

	err := remote.FetchContext(ctx, &git.FetchOptions{
		RemoteName:   name,
		RefSpecs:     specs,
		Auth:         t.Auth,
		ProxyOptions: t.Proxy,
		Tags:         git.NoTags,
		Force:        true,
	})
	return fetchError(url, err)
}

// fetchWithFallback fetches exact commits, retrying with all heads when the remote
// won't serve a commit by its hash.
func fetchWithFallback(ctx context.Context, repo *git.Repository, name, url string, specs, fallback []config.RefSpec, t Transport) error {
	err := Fetch(ctx, repo, name, url, specs, t)
	if err == nil || fallback == nil || errors.Is(err, ErrAuth) || errors.Is(err, ErrInvalidURL) {
		return err
	}
	return Fetch(ctx, repo, name, url, fallback, t)
}

func fetchError(url string, err error) error {
	if err == nil || errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}

	var noMatch git.NoMatchingRefSpecError
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod):
		return ErrAuth.Wrapf("%s: %w", url, err)
	case errors.As(err, &noMatch):
		return ErrInvalidTarget.Wrapf("%s: %w", url, err)
	case errors.Is(err, transport.ErrRepositoryNotFound):
		return ErrRemote.Wrapf("%s: %w", url, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ErrRemote.Wrapf("%s: %w", url, err)
	}
}
