package vcs

import (
	"fmt"

	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision is what a component is checked out to.
//
// When both are set, the commit wins and the checkout is detached.
type Revision struct {
	Branch string
	Commit string
}

// IsZero is true when neither a branch nor a commit is set
func (r Revision) IsZero() bool {
	return r.Branch == "" && r.Commit == ""
}

// Validate the revision: the commit, if any, must be a full 40-character hexadecimal hash
func (r Revision) Validate() error {
	if r.IsZero() {
		return ErrNoRevision
	}
	if r.Commit != "" && !plumbing.IsHash(r.Commit) {
		return ErrInvalidTarget.Wrapf("commit %q is not a full hash", r.Commit)
	}
	return nil
}

func (r Revision) String() string {
	switch {
	case r.Commit != "":
		return r.Commit
	default:
		return r.Branch
	}
}

// cacheRefSpecs are the refs fetched into a bare cache repository, which mirrors remote heads
func (r Revision) cacheRefSpecs() []config.RefSpec {
	if r.Commit != "" {
		return []config.RefSpec{config.RefSpec(fmt.Sprintf("%s:%s", r.Commit, pinnedRef(r.Commit)))}
	}
	return []config.RefSpec{config.RefSpec(fmt.Sprintf("+%s:%s", plumbing.NewBranchReferenceName(r.Branch), plumbing.NewBranchReferenceName(r.Branch)))}
}

// targetRefSpecs are the refs fetched into a working repository, as remote-tracking references
func (r Revision) targetRefSpecs(remote string) []config.RefSpec {
	if r.Commit != "" {
		return []config.RefSpec{config.RefSpec(fmt.Sprintf("%s:%s", r.Commit, pinnedRef(r.Commit)))}
	}
	return []config.RefSpec{config.RefSpec(fmt.Sprintf("+%s:%s", plumbing.NewBranchReferenceName(r.Branch), plumbing.NewRemoteReferenceName(remote, r.Branch)))}
}

// allHeadsCache is the fallback when a remote does not serve a commit by its hash
func allHeadsCache() []config.RefSpec {
	return []config.RefSpec{"+refs/heads/*:refs/heads/*"}
}

func allHeadsTarget(remote string) []config.RefSpec {
	return []config.RefSpec{config.RefSpec(fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", remote))}
}

// pinnedRef keeps fetched commits reachable
func pinnedRef(commit string) plumbing.ReferenceName {
	return plumbing.ReferenceName("refs/crane/commits/" + commit)
}

func refSpecStrings(specs []config.RefSpec) []string {
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		out = append(out, s.String())
	}
	return out
}
