package core

import (
	"context"
	"time"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/cache"
	"github.com/oneconcern/crane/pkg/engine"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/oneconcern/crane/pkg/vcs"
	"github.com/oneconcern/crane/pkg/visitor"
	"go.uber.org/zap"
)

// Result of an operation on a component tree
type Result struct {
	// Dir is the absolute location of the root checkout
	Dir string

	Root    model.ComponentID
	Arena   *arena.Arena
	Visited []model.ComponentID
	Elapsed time.Duration
}

// Sync checks out the component tree rooted at ref, recursively.
//
// On failure, the result still describes the components processed so far: checkouts
// already completed are left in place.
func Sync(ctx context.Context, ref RootRef, opts ...Option) (*Result, error) {
	start := time.Now()
	s := newSettings(opts)

	dir, err := RootDir(ref)
	if err != nil {
		return nil, err
	}
	git, err := resolveRoot(ctx, ref, dir, s)
	if err != nil {
		return nil, err
	}

	c, err := openCache(s)
	if err != nil {
		return nil, err
	}
	syncer := vcs.NewSyncer(c,
		vcs.WithSyncerLogger(s.logger),
		vcs.WithSyncerFs(s.fs),
		vcs.WithSyncerMetrics(s.metrics),
		vcs.WithRemoteName(s.remote),
		vcs.WithTransportOptions(s.transportOptions()),
	)
	v := visitor.NewSync(syncer, newExpander(s), s.logger)

	root := s.arena.Add(rootComponent(dir, git))
	s.logger.Info("syncing solution",
		zap.String("dir", dir),
		zap.String("url", git.URL),
		zap.String("branch", git.Branch),
		zap.String("commit", git.Commit),
	)

	visited, err := newEngine(s).Walk(ctx, s.arena, []model.ComponentID{root}, v, dir)
	return &Result{
		Dir:     dir,
		Root:    root,
		Arena:   s.arena,
		Visited: visited,
		Elapsed: time.Since(start),
	}, err
}

// OpenCache opens the repository cache designated by the CacheDir option
func OpenCache(opts ...Option) (*cache.Cache, error) {
	return openCache(newSettings(opts))
}

func openCache(s Settings) (*cache.Cache, error) {
	root := s.cacheDir
	if root == "" {
		var err error
		if root, err = cache.DefaultRoot(); err != nil {
			return nil, err
		}
	}
	return cache.New(root, cache.WithFs(s.fs), cache.WithLogger(s.logger))
}

func newExpander(s Settings) *visitor.Expander {
	return visitor.NewExpander(visitor.WithExpanderFs(s.fs), visitor.WithExpanderLogger(s.logger))
}

func newEngine(s Settings) *engine.Engine {
	return engine.New(
		engine.Concurrency(s.concurrency),
		engine.WithLogger(s.logger),
		engine.WithMetrics(s.metrics),
	)
}
