package vcs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing"
	gitcache "github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/oneconcern/crane/internal/gittest"
	"github.com/oneconcern/crane/pkg/cache"
	"github.com/oneconcern/crane/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSyncer(t *testing.T, opts ...SyncerOption) (*Syncer, *cache.Cache) {
	t.Helper()
	gittest.Isolate(t)
	c, err := cache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return NewSyncer(c, opts...), c
}

func TestSyncBranch(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, map[string]string{"hello.txt": "hello\n"})
	syncer, c := newTestSyncer(t)
	dir := filepath.Join(t.TempDir(), "checkout")

	state, err := syncer.Sync(ctx, Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}})
	require.NoError(t, err)
	assert.Equal(t, CheckedOut, state)

	assert.Equal(t, "hello\n", gittest.ReadFile(t, dir, "hello.txt"))
	head := gittest.HeadOf(t, dir)
	assert.Equal(t, plumbing.NewBranchReferenceName("main"), head.Name())
	assert.Equal(t, remote.Head(), head.Hash())

	alternates, err := os.ReadFile(AlternatesPath(GitDir(dir)))
	require.NoError(t, err)
	assert.Equal(t, []string{c.ObjectsPath(remote.URL())}, Alternates(alternates))

	repo, err := Open(dir)
	require.NoError(t, err)
	url, err := RemoteURL(repo, DefaultRemote)
	require.NoError(t, err)
	assert.Equal(t, remote.URL(), url)

	cfg, err := repo.Config()
	require.NoError(t, err)
	require.Contains(t, cfg.Branches, "main")
	assert.Equal(t, DefaultRemote, cfg.Branches["main"].Remote)

	t.Run("sync again follows the branch", func(t *testing.T) {
		next := remote.Commit("update", map[string]string{"hello.txt": "hello again\n"})

		// a fresh process starts with an empty memo
		fresh, err := cache.New(c.Root())
		require.NoError(t, err)
		state, err := NewSyncer(fresh).Sync(ctx, Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}})
		require.NoError(t, err)
		assert.Equal(t, CheckedOut, state)
		assert.Equal(t, next, gittest.HeadOf(t, dir).Hash())
		assert.Equal(t, "hello again\n", gittest.ReadFile(t, dir, "hello.txt"))
	})
}

func TestSyncCommit(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, map[string]string{"v.txt": "v1\n"})
	first := remote.Commit("v2", map[string]string{"v.txt": "v2\n"})
	remote.Commit("v3", map[string]string{"v.txt": "v3\n"})
	syncer, _ := newTestSyncer(t)

	for _, toPin := range []struct {
		name string
		rev  Revision
	}{
		{name: "commit only", rev: Revision{Commit: first.String()}},
		{name: "commit wins over branch", rev: Revision{Branch: "main", Commit: first.String()}},
	} {
		tc := toPin
		t.Run(tc.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "pinned")
			state, err := syncer.Sync(ctx, Request{URL: remote.URL(), Dir: dir, Revision: tc.rev})
			require.NoError(t, err)
			assert.Equal(t, CheckedOut, state)

			head := gittest.HeadOf(t, dir)
			assert.Equal(t, plumbing.HEAD, head.Name(), "a commit checks out detached")
			assert.Equal(t, first, head.Hash())
			assert.Equal(t, "v2\n", gittest.ReadFile(t, dir, "v.txt"))
		})
	}
}

func TestSyncFailures(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, nil)
	syncer, _ := newTestSyncer(t)

	for _, toPin := range []struct {
		name    string
		req     Request
		err     error
		reached State
	}{
		{
			name:    "no revision",
			req:     Request{URL: remote.URL()},
			err:     ErrNoRevision,
			reached: Uninitialized,
		},
		{
			name:    "short commit",
			req:     Request{URL: remote.URL(), Revision: Revision{Commit: "abc123"}},
			err:     ErrInvalidTarget,
			reached: Uninitialized,
		},
		{
			name:    "unknown branch",
			req:     Request{URL: remote.URL(), Revision: Revision{Branch: "nope"}},
			err:     ErrInvalidTarget,
			reached: Uninitialized,
		},
		{
			name:    "unknown commit",
			req:     Request{URL: remote.URL(), Revision: Revision{Commit: strings.Repeat("1", 40)}},
			err:     ErrInvalidTarget,
			reached: TargetFetched,
		},
		{
			name:    "unreachable remote",
			req:     Request{URL: "file://" + filepath.ToSlash(filepath.Join(t.TempDir(), "missing")), Revision: Revision{Branch: "main"}},
			err:     ErrRemote,
			reached: Uninitialized,
		},
	} {
		tc := toPin
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Dir = filepath.Join(t.TempDir(), "target")
			state, err := syncer.Sync(ctx, tc.req)
			require.Error(t, err)
			assert.Equal(t, Failed, state)
			require.ErrorIs(t, err, tc.err)

			var syncErr *SyncError
			require.ErrorAs(t, err, &syncErr)
			assert.Equal(t, tc.reached, syncErr.Reached)
		})
	}
}

func TestSyncRefusesLocalChanges(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, map[string]string{"f.txt": "one\n"})
	syncer, _ := newTestSyncer(t)
	dir := filepath.Join(t.TempDir(), "dirty")

	_, err := syncer.Sync(ctx, Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}})
	require.NoError(t, err)

	gittest.WriteFile(t, dir, "f.txt", "local edit\n")
	remote.Commit("two", map[string]string{"f.txt": "two\n"})

	_, err = syncer.Sync(ctx, Request{URL: remote.URL(), Dir: dir, Revision: Revision{Commit: remote.Head().String()}})
	require.ErrorIs(t, err, ErrCheckout)
	assert.Equal(t, "local edit\n", gittest.ReadFile(t, dir, "f.txt"))
}

func TestSyncKeepsUntrackedFiles(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, map[string]string{"f.txt": "one\n", "old/gone.txt": "gone\n"})
	nested := gittest.NewRepo(t, map[string]string{"a.txt": "a\n"})
	syncer, _ := newTestSyncer(t)
	dir := filepath.Join(t.TempDir(), "parent")
	req := Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}}

	_, err := syncer.Sync(ctx, req)
	require.NoError(t, err)
	_, err = syncer.Sync(ctx, Request{URL: nested.URL(), Dir: filepath.Join(dir, "a"), Revision: Revision{Branch: "main"}})
	require.NoError(t, err)
	gittest.WriteFile(t, dir, "notes/mine.txt", "mine\n")
	gittest.WriteFile(t, dir, "old/scratch.txt", "scratch\n")

	next := remote.Commit("two", map[string]string{"f.txt": "two\n"})

	state, err := syncer.Sync(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, CheckedOut, state)
	assert.Equal(t, next, gittest.HeadOf(t, dir).Hash())
	assert.Equal(t, "two\n", gittest.ReadFile(t, dir, "f.txt"))

	assert.Equal(t, "mine\n", gittest.ReadFile(t, dir, "notes/mine.txt"))
	assert.Equal(t, "scratch\n", gittest.ReadFile(t, dir, "old/scratch.txt"))
	assert.Equal(t, "gone\n", gittest.ReadFile(t, dir, "old/gone.txt"))
	assert.Equal(t, "a\n", gittest.ReadFile(t, filepath.Join(dir, "a"), "a.txt"))

	// the nested checkout is still clean, so it syncs again
	state, err = syncer.Sync(ctx, Request{URL: nested.URL(), Dir: filepath.Join(dir, "a"), Revision: Revision{Branch: "main"}})
	require.NoError(t, err)
	assert.Equal(t, CheckedOut, state)
}

func TestSyncRefusesUntrackedOverwrite(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, nil)
	syncer, _ := newTestSyncer(t)
	dir := filepath.Join(t.TempDir(), "clobber")
	req := Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}}

	_, err := syncer.Sync(ctx, req)
	require.NoError(t, err)
	first := gittest.HeadOf(t, dir).Hash()

	gittest.WriteFile(t, dir, "new.txt", "mine\n")
	remote.Commit("upstream new.txt", map[string]string{"new.txt": "theirs\n"})

	_, err = syncer.Sync(ctx, req)
	require.ErrorIs(t, err, ErrCheckout)
	assert.Equal(t, "mine\n", gittest.ReadFile(t, dir, "new.txt"))
	assert.Equal(t, first, gittest.HeadOf(t, dir).Hash())

	t.Run("identical content is not a conflict", func(t *testing.T) {
		gittest.WriteFile(t, dir, "new.txt", "theirs\n")
		_, err := syncer.Sync(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, remote.Head(), gittest.HeadOf(t, dir).Hash())
	})
}

func TestSyncSparsePaths(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, map[string]string{
		"src/main.go":    "package main\n",
		"docs/readme.md": "docs\n",
		"top.txt":        "top\n",
	})
	syncer, _ := newTestSyncer(t)
	dir := filepath.Join(t.TempDir(), "sparse")
	req := Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}, Paths: []string{"src"}}

	_, err := syncer.Sync(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", gittest.ReadFile(t, dir, "src/main.go"))
	assert.NoDirExists(t, filepath.Join(dir, "docs"))
	assert.NoFileExists(t, filepath.Join(dir, "top.txt"))

	clean := func(t *testing.T) {
		repo, err := Open(dir)
		require.NoError(t, err)
		report, err := Status(repo)
		require.NoError(t, err)
		assert.True(t, report.Clean(), "files left out are not reported missing: %v", report.Unstaged)
	}
	clean(t)

	t.Run("sync again after upstream changes", func(t *testing.T) {
		next := remote.Commit("update", map[string]string{
			"src/main.go":    "package main // v2\n",
			"docs/readme.md": "docs v2\n",
		})
		_, err := syncer.Sync(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, next, gittest.HeadOf(t, dir).Hash())
		assert.Equal(t, "package main // v2\n", gittest.ReadFile(t, dir, "src/main.go"))
		assert.NoDirExists(t, filepath.Join(dir, "docs"))
		clean(t)
	})

	t.Run("widening the paths brings files back", func(t *testing.T) {
		wide := req
		wide.Paths = nil
		_, err := syncer.Sync(ctx, wide)
		require.NoError(t, err)
		assert.Equal(t, "docs v2\n", gittest.ReadFile(t, dir, "docs/readme.md"))
		assert.Equal(t, "top\n", gittest.ReadFile(t, dir, "top.txt"))
		clean(t)
	})

	t.Run("narrowing the paths removes files", func(t *testing.T) {
		_, err := syncer.Sync(ctx, req)
		require.NoError(t, err)
		assert.NoDirExists(t, filepath.Join(dir, "docs"))
		assert.FileExists(t, filepath.Join(dir, "src", "main.go"))
		clean(t)
	})
}

func TestSyncReadsObjectsThroughCache(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, map[string]string{"big.txt": strings.Repeat("x", 1<<12)})
	syncer, _ := newTestSyncer(t)
	dir := filepath.Join(t.TempDir(), "linked")

	_, err := syncer.Sync(ctx, Request{URL: remote.URL(), Dir: dir, Revision: Revision{Branch: "main"}})
	require.NoError(t, err)

	// the checkout's own object store, alternates left out
	own := filesystem.NewStorageWithOptions(osfs.New(GitDir(dir)), gitcache.NewObjectLRUDefault(), filesystem.Options{AlternatesFS: memfs.New()})
	_, err = own.EncodedObject(plumbing.CommitObject, remote.Head())
	require.ErrorIs(t, err, plumbing.ErrObjectNotFound, "objects are not duplicated into the checkout")

	tracking, err := own.Reference(plumbing.NewRemoteReferenceName(DefaultRemote, "main"))
	require.NoError(t, err)
	assert.Equal(t, remote.Head(), tracking.Hash())

	repo, err := Open(dir)
	require.NoError(t, err)
	commit, err := repo.CommitObject(remote.Head())
	require.NoError(t, err)
	assert.Equal(t, "initial commit", commit.Message)
}

func TestSyncSharesCache(t *testing.T) {
	ctx := context.Background()
	remote := gittest.NewRepo(t, nil)
	m := metrics.New()
	syncer, _ := newTestSyncer(t, WithSyncerMetrics(m), WithRemoteName("upstream"))
	assert.Equal(t, "upstream", syncer.Remote())

	for _, name := range []string{"one", "two"} {
		_, err := syncer.Sync(ctx, Request{URL: remote.URL(), Dir: filepath.Join(t.TempDir(), name), Revision: Revision{Branch: "main"}})
		require.NoError(t, err)
	}

	// the second checkout reuses the cache fetch of the first one
	const expected = `
# HELP crane_cache_hits_total Cache fetches skipped because the same refs were already fetched.
# TYPE crane_cache_hits_total counter
crane_cache_hits_total 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "crane_cache_hits_total"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "cache-fetched", CacheFetched.String())
	assert.Equal(t, "target-linked", TargetLinked.String())
	assert.Equal(t, "target-fetched", TargetFetched.String())
	assert.Equal(t, "checked-out", CheckedOut.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "state(42)", State(42).String())
}
