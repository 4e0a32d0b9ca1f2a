package engine

import (
	"context"
	"time"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/metrics"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/oneconcern/crane/pkg/visitor"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Engine runs visitors over component trees
type Engine struct {
	concurrency int
	logger      *zap.Logger
	metrics     *metrics.Metrics
}

// New traversal engine
func New(opts ...Option) *Engine {
	e := &Engine{
		concurrency: defaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// visitEvent is the outcome of a single visit
type visitEvent struct {
	id       model.ComponentID
	children []model.ComponentID
	err      error
}

// Walk visits the trees rooted at roots and returns the components successfully visited,
// in completion order.
//
// Solutions are expanded as they are visited and their children are queued. Siblings
// and independent subtrees are visited concurrently, in no particular order.
//
// The first failure stops scheduling further visits and is returned, wrapped in a
// ComponentError. Visits already in flight are waited for and their own failures are
// only logged. Nothing is undone.
func (e *Engine) Walk(ctx context.Context, a *arena.Arena, roots []model.ComponentID, v visitor.Visitor, baseDir string) ([]model.ComponentID, error) {
	var (
		queue    = append([]model.ComponentID(nil), roots...)
		events   = make(chan visitEvent)
		inflight int
		visited  = make([]model.ComponentID, 0, len(roots))
		first    error
		late     error
	)

	for {
		if first == nil {
			if err := ctx.Err(); err != nil {
				first = err
			}
		}

		// schedule as much as allowed
		for first == nil && len(queue) > 0 && inflight < e.concurrency {
			id := queue[0]
			queue = queue[1:]
			inflight++

			go func(id model.ComponentID) {
				children, err := e.visit(ctx, a, v, id, baseDir)
				events <- visitEvent{id: id, children: children, err: err}
			}(id)
		}

		if inflight == 0 {
			break
		}

		event := <-events
		inflight--

		if event.err != nil {
			if first == nil {
				first = event.err
			} else {
				late = multierr.Append(late, event.err)
			}
			continue
		}

		visited = append(visited, event.id)
		queue = append(queue, event.children...)
	}

	if late != nil {
		e.logger.Warn("more components failed after the first error", zap.Error(late))
	}
	if first != nil && len(queue) > 0 {
		e.logger.Debug("components left unvisited", zap.Int("count", len(queue)))
	}
	e.metrics.Components(a.Len())

	return visited, first
}

func (e *Engine) visit(ctx context.Context, a *arena.Arena, v visitor.Visitor, id model.ComponentID, baseDir string) ([]model.ComponentID, error) {
	c := a.MustGet(id)
	log := e.logger.With(zap.String("component", c.Name), zap.Stringer("id", id))
	log.Debug("visiting", zap.Stringer("kind", c.Kind))

	var (
		children []model.ComponentID
		err      error
		start    = time.Now()
	)
	switch c.Kind {
	case model.KindSolution:
		children, err = v.VisitSolution(ctx, a, id, baseDir)
	default:
		err = v.VisitGit(ctx, a, id, baseDir)
	}
	e.metrics.Visit(visitor.NameOf(v), c.Kind.String(), err, time.Since(start))

	if err != nil {
		log.Debug("visit failed", zap.Error(err))
		return nil, &ComponentError{ID: id, Name: c.Name, Dir: visitor.Dir(c, baseDir), Err: err}
	}
	log.Debug("visited", zap.Int("children", len(children)))
	return children, nil
}
