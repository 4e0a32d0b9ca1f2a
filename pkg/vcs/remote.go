package vcs

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/oneconcern/crane/pkg/errors"
)

// DefaultRemote is the name of the remote crane configures in checkouts
const DefaultRemote = "origin"

// RemoteURL returns the first URL of the named remote
func RemoteURL(repo *git.Repository, name string) (string, error) {
	remote, err := repo.Remote(name)
	if err != nil {
		if errors.Is(err, git.ErrRemoteNotFound) {
			return "", ErrNoRemote.Wrapf("%q", name)
		}
		return "", err
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoRemote.Wrapf("%q has no URL", name)
	}
	return urls[0], nil
}

// EnsureRemote configures the named remote to point at url, replacing any previous URL
func EnsureRemote(repo *git.Repository, name, url string) error {
	cfg, err := repo.Config()
	if err != nil {
		return err
	}
	if current, ok := cfg.Remotes[name]; ok && len(current.URLs) > 0 && current.URLs[0] == url {
		return nil
	}
	cfg.Remotes[name] = &config.RemoteConfig{
		Name:  name,
		URLs:  []string{url},
		Fetch: []config.RefSpec{config.RefSpec("+refs/heads/*:refs/remotes/" + name + "/*")},
	}
	return repo.SetConfig(cfg)
}

// CurrentBranch returns the branch checked out in repo, or an empty string when
// HEAD is detached or the repository has no commit yet.
func CurrentBranch(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", nil
		}
		return "", err
	}
	if !ref.Name().IsBranch() {
		return "", nil
	}
	return ref.Name().Short(), nil
}

// DefaultBranch asks the remote for the branch its HEAD points to.
func DefaultBranch(ctx context.Context, url string, t Transport) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &config.RemoteConfig{
		Name: DefaultRemote,
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{
		Auth:         t.Auth,
		ProxyOptions: t.Proxy,
	})
	if err != nil {
		return "", fetchError(url, err)
	}
	return defaultBranchFromRefs(refs)
}

func defaultBranchFromRefs(refs []*plumbing.Reference) (string, error) {
	var (
		head     *plumbing.Reference
		branches = make(map[plumbing.Hash][]string)
	)
	for _, ref := range refs {
		switch {
		case ref.Name() == plumbing.HEAD:
			head = ref
		case ref.Name().IsBranch() && ref.Type() == plumbing.HashReference:
			branches[ref.Hash()] = append(branches[ref.Hash()], ref.Name().Short())
		}
	}
	if head == nil {
		return "", ErrInvalidTarget.Wrapf("remote advertises no HEAD")
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}

	// old servers don't advertise symrefs: pick a branch at the same commit
	candidates := branches[head.Hash()]
	if len(candidates) == 0 {
		return "", ErrInvalidTarget.Wrapf("remote HEAD %s matches no branch", head.Hash())
	}
	for _, preferred := range []string{"main", "master"} {
		for _, c := range candidates {
			if c == preferred {
				return c, nil
			}
		}
	}
	sort.Strings(candidates)
	return candidates[0], nil
}
