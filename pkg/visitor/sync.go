package visitor

import (
	"context"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/oneconcern/crane/pkg/vcs"
	"go.uber.org/zap"
)

var _ Visitor = &Sync{}

// Sync fetches and checks out each component
type Sync struct {
	syncer   *vcs.Syncer
	expander *Expander
	logger   *zap.Logger
}

// NewSync builds a sync visitor
func NewSync(syncer *vcs.Syncer, expander *Expander, logger *zap.Logger) *Sync {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sync{syncer: syncer, expander: expander, logger: logger}
}

// Name of the visitor
func (v *Sync) Name() string {
	return "sync"
}

// VisitGit brings the checkout of a component to its declared revision
func (v *Sync) VisitGit(ctx context.Context, a *arena.Arena, id model.ComponentID, baseDir string) error {
	c, err := a.Get(id)
	if err != nil {
		return err
	}

	dir := Dir(c, baseDir)
	v.logger.Debug("syncing", zap.String("component", c.Name), zap.Stringer("id", id), zap.String("dir", dir))

	_, err = v.syncer.Sync(ctx, vcs.Request{
		URL: c.Git.URL,
		Dir: dir,
		Revision: vcs.Revision{
			Branch: c.Git.Branch,
			Commit: c.Git.Commit,
		},
		Paths: c.Git.Paths,
	})
	return err
}

// VisitSolution syncs a solution, then expands it from its freshly checked out config file
func (v *Sync) VisitSolution(ctx context.Context, a *arena.Arena, id model.ComponentID, baseDir string) ([]model.ComponentID, error) {
	if err := v.VisitGit(ctx, a, id, baseDir); err != nil {
		return nil, err
	}
	return v.expander.Expand(a, id, baseDir)
}
