package vcs

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oneconcern/crane/internal/gittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBranchFromRefs(t *testing.T) {
	h1 := plumbing.NewHash("1111111111111111111111111111111111111111")
	h2 := plumbing.NewHash("2222222222222222222222222222222222222222")

	for _, toPin := range []struct {
		name     string
		refs     []*plumbing.Reference
		expected string
		err      error
	}{
		{
			name: "symbolic head",
			refs: []*plumbing.Reference{
				plumbing.NewSymbolicReference(plumbing.HEAD, "refs/heads/develop"),
				plumbing.NewHashReference("refs/heads/develop", h1),
			},
			expected: "develop",
		},
		{
			name: "hash head prefers main",
			refs: []*plumbing.Reference{
				plumbing.NewHashReference(plumbing.HEAD, h1),
				plumbing.NewHashReference("refs/heads/zeta", h1),
				plumbing.NewHashReference("refs/heads/main", h1),
				plumbing.NewHashReference("refs/heads/other", h2),
			},
			expected: "main",
		},
		{
			name: "hash head falls back to first branch",
			refs: []*plumbing.Reference{
				plumbing.NewHashReference(plumbing.HEAD, h2),
				plumbing.NewHashReference("refs/heads/zeta", h2),
				plumbing.NewHashReference("refs/heads/beta", h2),
			},
			expected: "beta",
		},
		{
			name: "no head",
			refs: []*plumbing.Reference{plumbing.NewHashReference("refs/heads/main", h1)},
			err:  ErrInvalidTarget,
		},
		{
			name: "detached head",
			refs: []*plumbing.Reference{
				plumbing.NewHashReference(plumbing.HEAD, h1),
				plumbing.NewHashReference("refs/heads/main", h2),
			},
			err: ErrInvalidTarget,
		},
	} {
		tc := toPin
		t.Run(tc.name, func(t *testing.T) {
			branch, err := defaultBranchFromRefs(tc.refs)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, branch)
		})
	}
}

func TestRemoteHelpers(t *testing.T) {
	gittest.Isolate(t)
	remote := gittest.NewRepo(t, nil)

	branch, err := DefaultBranch(context.Background(), remote.URL(), Transport{})
	require.NoError(t, err)
	assert.Equal(t, gittest.DefaultBranch, branch)

	dir := t.TempDir()
	repo, err := OpenOrCreate(dir, false)
	require.NoError(t, err)

	_, err = RemoteURL(repo, DefaultRemote)
	require.ErrorIs(t, err, ErrNoRemote)

	require.NoError(t, EnsureRemote(repo, DefaultRemote, remote.URL()))
	require.NoError(t, EnsureRemote(repo, DefaultRemote, remote.URL()))
	url, err := RemoteURL(repo, DefaultRemote)
	require.NoError(t, err)
	assert.Equal(t, remote.URL(), url)

	require.NoError(t, EnsureRemote(repo, DefaultRemote, "https://example.com/moved.git"))
	url, err = RemoteURL(repo, DefaultRemote)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/moved.git", url)

	current, err := CurrentBranch(repo)
	require.NoError(t, err)
	assert.Empty(t, current, "no commit yet")

	current, err = CurrentBranch(remote.Repo)
	require.NoError(t, err)
	assert.Equal(t, gittest.DefaultBranch, current)
}

func TestOpen(t *testing.T) {
	_, err := Open(t.TempDir())
	require.ErrorIs(t, err, ErrNotARepository)
}
