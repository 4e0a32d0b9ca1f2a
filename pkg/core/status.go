package core

import (
	"context"
	"time"

	"github.com/oneconcern/crane/pkg/model"
	"github.com/oneconcern/crane/pkg/vcs"
	"github.com/oneconcern/crane/pkg/visitor"
	"go.uber.org/zap"
)

// Status collects the status of every checkout in the tree rooted at dir.
//
// The tree is discovered from the config files found in the checkouts, as they are on disk.
func Status(ctx context.Context, dir string, opts ...Option) (*Result, error) {
	start := time.Now()
	s := newSettings(opts)

	dir, err := RootDir(RootRef{Dir: dir})
	if err != nil {
		return nil, err
	}

	var git model.GitRef
	if repo, err := vcs.Open(dir); err == nil {
		// informative only: status works on checkouts without remote
		git.URL, _ = vcs.RemoteURL(repo, s.remote)
		git.Branch, _ = vcs.CurrentBranch(repo)
	}

	root := s.arena.Add(rootComponent(dir, git))
	s.logger.Debug("collecting status", zap.String("dir", dir))

	visited, err := newEngine(s).Walk(ctx, s.arena, []model.ComponentID{root}, visitor.NewStatus(newExpander(s), s.logger), dir)
	return &Result{
		Dir:     dir,
		Root:    root,
		Arena:   s.arena,
		Visited: visited,
		Elapsed: time.Since(start),
	}, err
}
