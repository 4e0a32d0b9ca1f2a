package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/oneconcern/crane/internal/gittest"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	r := gittest.NewRepo(t, map[string]string{
		"a.txt":     "a\n",
		"b.txt":     "b\n",
		"dir/c.txt": "c\n",
	})

	report, err := Status(r.Repo)
	require.NoError(t, err)
	assert.Equal(t, gittest.DefaultBranch, report.Head)
	assert.True(t, report.Clean())

	gittest.WriteFile(t, r.Dir, "a.txt", "changed\n")
	require.NoError(t, os.Remove(filepath.Join(r.Dir, "b.txt")))
	gittest.WriteFile(t, r.Dir, "new.txt", "staged\n")
	gittest.WriteFile(t, r.Dir, "loose.txt", "untracked\n")

	wt, err := r.Repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("new.txt")
	require.NoError(t, err)

	report, err = Status(r.Repo)
	require.NoError(t, err)

	assert.Equal(t, []model.PathChange{{Path: "new.txt", Kind: model.ChangeNew}}, report.Staged)
	assert.Equal(t, []model.PathChange{
		{Path: "a.txt", Kind: model.ChangeModified},
		{Path: "b.txt", Kind: model.ChangeDeleted},
	}, report.Unstaged)
	assert.Equal(t, []model.PathChange{{Path: "loose.txt"}}, report.Untracked)
}

func TestHead(t *testing.T) {
	r := gittest.NewRepo(t, nil)
	first := r.Head()
	r.Commit("second", map[string]string{"x": "x"})

	wt, err := r.Repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: first}))

	head, err := Head(r.Repo)
	require.NoError(t, err)
	assert.Equal(t, "detached at "+first.String()[:7], head)

	empty, err := OpenOrCreate(t.TempDir(), false)
	require.NoError(t, err)
	head, err = Head(empty)
	require.NoError(t, err)
	assert.Equal(t, "no commit", head)
}

func TestChangeKind(t *testing.T) {
	assert.Equal(t, model.ChangeRenamed, changeKind(git.Renamed))
	assert.Equal(t, model.ChangeCopied, changeKind(git.Copied))
	assert.Equal(t, model.ChangeUnmerged, changeKind(git.UpdatedButUnmerged))
	assert.Equal(t, model.ChangeModified, changeKind(git.Modified))

	// every status code go-git produces maps to a declared kind
	declared := []model.ChangeKind{
		model.ChangeNew, model.ChangeModified, model.ChangeDeleted,
		model.ChangeRenamed, model.ChangeCopied, model.ChangeUnmerged,
	}
	produced := make(map[model.ChangeKind]bool)
	for _, code := range []git.StatusCode{git.Added, git.Modified, git.Deleted, git.Renamed, git.Copied, git.UpdatedButUnmerged} {
		kind := changeKind(code)
		assert.Contains(t, declared, kind, string(code))
		produced[kind] = true
	}
	assert.Len(t, produced, len(declared), "no declared kind is left unused")

	c := change("new", "old", git.Renamed)
	assert.Equal(t, model.PathChange{Path: "new", From: "old", Kind: model.ChangeRenamed}, c)
}
