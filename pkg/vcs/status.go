package vcs

import (
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oneconcern/crane/pkg/errors"
	"github.com/oneconcern/crane/pkg/model"
)

const shortHashLen = 7

// Head describes what is checked out: a branch name, a detached commit, or no commit at all
func Head(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "no commit", nil
		}
		return "", err
	}
	if ref.Name().IsBranch() {
		return ref.Name().Short(), nil
	}
	return "detached at " + ref.Hash().String()[:shortHashLen], nil
}

// Status reports staged, unstaged and untracked changes of a working repository.
//
// Paths are reported relative to the working tree root, in lexical order.
// Files kept out of a sparse working tree are not reported missing.
func Status(repo *git.Repository) (*model.StatusReport, error) {
	head, err := Head(repo)
	if err != nil {
		return nil, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, err
	}
	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	skipped := skipWorktree(idx)

	report := &model.StatusReport{Head: head}
	paths := make([]string, 0, len(st))
	for path := range st {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		fs := st[path]
		if fs.Worktree == git.Untracked {
			report.Untracked = append(report.Untracked, model.PathChange{Path: path})
			continue
		}
		if fs.Staging != git.Unmodified {
			report.Staged = append(report.Staged, change(path, fs.Extra, fs.Staging))
		}
		if fs.Worktree != git.Unmodified && !(skipped[path] && fs.Worktree == git.Deleted) {
			report.Unstaged = append(report.Unstaged, change(path, fs.Extra, fs.Worktree))
		}
	}
	return report, nil
}

func change(path, extra string, code git.StatusCode) model.PathChange {
	c := model.PathChange{Path: path, Kind: changeKind(code)}
	if code == git.Renamed || code == git.Copied {
		c.From = extra
	}
	return c
}

func changeKind(code git.StatusCode) model.ChangeKind {
	switch code {
	case git.Added:
		return model.ChangeNew
	case git.Deleted:
		return model.ChangeDeleted
	case git.Renamed:
		return model.ChangeRenamed
	case git.Copied:
		return model.ChangeCopied
	case git.UpdatedButUnmerged:
		return model.ChangeUnmerged
	default:
		return model.ChangeModified
	}
}
