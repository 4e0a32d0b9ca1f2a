package vcs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oneconcern/crane/internal/gittest"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAlternate(t *testing.T) {
	fs := afero.NewMemMapFs()
	const gitDir = "/work/repo/.git"

	require.NoError(t, AddAlternate(fs, gitDir, "/cache/git/a/objects"))
	require.NoError(t, AddAlternate(fs, gitDir, "/cache/git/a/objects/"))
	require.NoError(t, AddAlternate(fs, gitDir, "/cache/git/b/objects"))

	content, err := afero.ReadFile(fs, AlternatesPath(gitDir))
	require.NoError(t, err)
	assert.Equal(t, "/cache/git/a/objects\n/cache/git/b/objects\n", string(content))
}

func TestAddAlternateToExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	const gitDir = "/repo/.git"
	require.NoError(t, afero.WriteFile(fs, AlternatesPath(gitDir), []byte("/elsewhere/objects"), 0o644))

	require.NoError(t, AddAlternate(fs, gitDir, "/cache/objects"))

	content, err := afero.ReadFile(fs, AlternatesPath(gitDir))
	require.NoError(t, err)
	assert.Equal(t, []string{"/elsewhere/objects", "/cache/objects"}, Alternates(content))
}

func TestAddAlternateReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

	err := AddAlternate(fs, "/repo/.git", "/cache/objects")
	require.ErrorIs(t, err, ErrAlternate)
}

func TestAlternates(t *testing.T) {
	assert.Equal(t, []string{"/a/objects", "../b/objects"}, Alternates([]byte("# comment\n/a/objects\n\n  ../b/objects  \n")))
	assert.Empty(t, Alternates(nil))
}

func TestOpenReadsAlternates(t *testing.T) {
	remote := gittest.NewRepo(t, map[string]string{"shared.txt": "shared\n"})
	root := t.TempDir()

	bare := filepath.Join(root, "cache.git")
	cached, err := OpenOrCreate(bare, true)
	require.NoError(t, err)
	require.NoError(t, Fetch(context.Background(), cached, DefaultRemote, remote.URL(), allHeadsCache(), Transport{}))

	dir := filepath.Join(root, "work")
	_, err = OpenOrCreate(dir, false)
	require.NoError(t, err)

	repo, err := Open(dir)
	require.NoError(t, err)
	_, err = repo.CommitObject(remote.Head())
	require.ErrorIs(t, err, plumbing.ErrObjectNotFound)

	require.NoError(t, AddAlternate(afero.NewOsFs(), GitDir(dir), filepath.Join(bare, "objects")))

	repo, err = Open(dir)
	require.NoError(t, err)
	commit, err := repo.CommitObject(remote.Head())
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)
	f, err := tree.File("shared.txt")
	require.NoError(t, err)
	content, err := f.Contents()
	require.NoError(t, err)
	assert.Equal(t, "shared\n", content)

	assert.NoError(t, repo.Storer.HasEncodedObject(f.Hash))
	size, err := repo.Storer.EncodedObjectSize(f.Hash)
	require.NoError(t, err)
	assert.Equal(t, int64(len("shared\n")), size)
}
