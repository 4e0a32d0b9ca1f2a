package visitor

import (
	"context"
	"path/filepath"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/oneconcern/crane/pkg/vcs"
	"go.uber.org/zap"
)

var _ Visitor = &Status{}

// Status collects the source-control status of each component, without modifying anything
type Status struct {
	expander *Expander
	logger   *zap.Logger
}

// NewStatus builds a status visitor
func NewStatus(expander *Expander, logger *zap.Logger) *Status {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Status{expander: expander, logger: logger}
}

// Name of the visitor
func (v *Status) Name() string {
	return "status"
}

// VisitGit stores the status report of a component's checkout in the arena
func (v *Status) VisitGit(_ context.Context, a *arena.Arena, id model.ComponentID, baseDir string) error {
	c, err := a.Get(id)
	if err != nil {
		return err
	}

	repo, err := vcs.Open(Dir(c, baseDir))
	if err != nil {
		return err
	}
	report, err := vcs.Status(repo)
	if err != nil {
		return err
	}

	return a.Update(id, func(c *model.Component) error {
		c.Report = report
		return nil
	})
}

// VisitSolution collects the status of a solution, then expands it.
//
// Untracked paths under the checkouts of its children are removed from the report:
// children report on their own.
func (v *Status) VisitSolution(ctx context.Context, a *arena.Arena, id model.ComponentID, baseDir string) ([]model.ComponentID, error) {
	if err := v.VisitGit(ctx, a, id, baseDir); err != nil {
		return nil, err
	}
	children, err := v.expander.Expand(a, id, baseDir)
	if err != nil || len(children) == 0 {
		return children, err
	}

	parent, err := a.Get(id)
	if err != nil {
		return nil, err
	}
	owned := make([]string, 0, len(children))
	for _, child := range children {
		c, err := a.Get(child)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(Dir(parent, baseDir), Dir(c, baseDir))
		if err != nil {
			return nil, err
		}
		owned = append(owned, rel)
	}

	err = a.Update(id, func(c *model.Component) error {
		if c.Report != nil {
			c.Report.SuppressUntrackedUnder(owned)
		}
		return nil
	})
	return children, err
}
