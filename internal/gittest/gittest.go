// Package gittest builds throw-away git repositories for tests.
//
// Repositories are created with go-git under t.TempDir() and addressed with file:// URLs,
// so fetching from them goes through the regular transport.
package gittest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// DefaultBranch of fixture repositories
const DefaultBranch = "main"

var signature = object.Signature{
	Name:  "crane",
	Email: "crane@example.com",
}

// Repo is a working repository used as a remote
type Repo struct {
	t    testing.TB
	Dir  string
	Repo *git.Repository
}

// NewRepo initializes a repository on branch main, with an initial commit holding files
func NewRepo(t testing.TB, files map[string]string) *Repo {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "remote")
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch)},
	})
	require.NoError(t, err)

	r := &Repo{t: t, Dir: dir, Repo: repo}
	if len(files) == 0 {
		files = map[string]string{"README.md": "fixture\n"}
	}
	r.Commit("initial commit", files)
	return r
}

// URL of the repository
func (r *Repo) URL() string {
	return "file://" + filepath.ToSlash(r.Dir)
}

// Commit writes files (relative path to content) and commits them on the current branch
func (r *Repo) Commit(msg string, files map[string]string) plumbing.Hash {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)

	for name, content := range files {
		WriteFile(r.t, r.Dir, name, content)
		_, err = wt.Add(filepath.ToSlash(name))
		require.NoError(r.t, err)
	}

	sig := signature
	sig.When = time.Now()
	h, err := wt.Commit(msg, &git.CommitOptions{Author: &sig, Committer: &sig, AllowEmptyCommits: true})
	require.NoError(r.t, err)
	return h
}

// Branch creates a branch at the current HEAD and checks it out
func (r *Repo) Branch(name string) {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
}

// Switch checks out an existing branch
func (r *Repo) Switch(name string) {
	r.t.Helper()
	wt, err := r.Repo.Worktree()
	require.NoError(r.t, err)
	require.NoError(r.t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
	}))
}

// Head commit
func (r *Repo) Head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.Repo.Head()
	require.NoError(r.t, err)
	return ref.Hash()
}

// WriteFile writes content at dir/name, creating parent directories
func WriteFile(t testing.TB, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ReadFile reads dir/name
func ReadFile(t testing.TB, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(content)
}

// HeadOf returns the reference HEAD resolves to in the checkout at dir
func HeadOf(t testing.TB, dir string) *plumbing.Reference {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	ref, err := repo.Head()
	require.NoError(t, err)
	return ref
}

// Isolate points HOME at a temporary directory, so tests never read the user's
// ssh keys or configuration
func Isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, v := range []string{"HTTP_PROXY", "HTTPS_PROXY", "ALL_PROXY", "http_proxy", "https_proxy", "all_proxy", "NO_PROXY", "no_proxy"} {
		t.Setenv(v, "")
	}
	return home
}
