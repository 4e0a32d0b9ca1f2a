package arena

import (
	"sync"
	"time"

	"github.com/oneconcern/crane/pkg/model"
)

// DefaultLockTimeout is the default bound on lock acquisition
const DefaultLockTimeout = 10 * time.Second

type slot struct {
	lock      *boundedRWLock
	component model.Component
}

// Arena is an append-only store of components
type Arena struct {
	mu      sync.RWMutex
	slots   []*slot
	timeout time.Duration
}

// Option configures an Arena
type Option func(*Arena)

// WithLockTimeout sets the bound on lock acquisition. Exceeding it panics.
func WithLockTimeout(timeout time.Duration) Option {
	return func(a *Arena) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// New builds an empty arena
func New(opts ...Option) *Arena {
	a := &Arena{timeout: DefaultLockTimeout}
	for _, apply := range opts {
		apply(a)
	}
	return a
}

// Add inserts a component and returns its fresh identifier.
//
// Any ID, Parent or Children set on the input are ignored: linking goes through Link.
func (a *Arena) Add(c model.Component) model.ComponentID {
	s := &slot{lock: newBoundedRWLock(), component: c.Clone()}
	s.component.Parent = model.NoComponent
	s.component.Children = nil

	a.mu.Lock()
	defer a.mu.Unlock()

	a.slots = append(a.slots, s)
	id := model.ComponentID(len(a.slots))
	s.component.ID = id
	return id
}

// Len returns the number of components in the arena
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.slots)
}

// IDs returns all identifiers, in insertion order
func (a *Arena) IDs() []model.ComponentID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]model.ComponentID, len(a.slots))
	for i := range a.slots {
		ids[i] = model.ComponentID(i + 1)
	}
	return ids
}

func (a *Arena) slot(id model.ComponentID) (*slot, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id == model.NoComponent || uint64(id) > uint64(len(a.slots)) {
		return nil, false
	}
	return a.slots[id-1], true
}

// View runs fn with shared access to a component.
//
// fn must not retain the component nor call back into the arena for the same component.
func (a *Arena) View(id model.ComponentID, fn func(*model.Component) error) error {
	s, ok := a.slot(id)
	if !ok {
		return ErrNotFound.Wrapf("component %v", id)
	}
	s.lock.rlock(id, a.timeout)
	defer s.lock.runlock()
	return fn(&s.component)
}

// Get returns a snapshot of a component
func (a *Arena) Get(id model.ComponentID) (model.Component, error) {
	var c model.Component
	err := a.View(id, func(comp *model.Component) error {
		c = comp.Clone()
		return nil
	})
	return c, err
}

// MustGet returns a snapshot of a component which is expected to exist.
//
// A missing component is an internal invariant violation and panics.
func (a *Arena) MustGet(id model.ComponentID) model.Component {
	c, err := a.Get(id)
	if err != nil {
		panic(err)
	}
	return c
}

// Update runs fn with exclusive access to a component.
//
// Only the accessed component is locked: other components remain available,
// and new components may be added concurrently.
func (a *Arena) Update(id model.ComponentID, fn func(*model.Component) error) error {
	s, ok := a.slot(id)
	if !ok {
		return ErrNotFound.Wrapf("component %v", id)
	}
	s.lock.lock(id, a.timeout)
	defer s.lock.unlock()

	// identity and tree links are managed by the arena
	id, parent, children := s.component.ID, s.component.Parent, s.component.Children
	err := fn(&s.component)
	s.component.ID, s.component.Parent, s.component.Children = id, parent, children
	return err
}

// Link wires children under a parent.
//
// Each child gets its parent set and the children are appended to the parent's
// list, in order. Children must already be present in the arena and must not have a
// parent yet: violating this is an internal error and panics.
func (a *Arena) Link(parent model.ComponentID, children ...model.ComponentID) {
	if _, ok := a.slot(parent); !ok {
		panic(ErrNotFound.Wrapf("cannot link under unknown parent %v", parent))
	}

	for _, child := range children {
		if child == parent {
			panic(ErrInvariant.Wrapf("component %v cannot be its own parent", child))
		}
		s, ok := a.slot(child)
		if !ok {
			panic(ErrNotFound.Wrapf("cannot link unknown child %v under %v", child, parent))
		}
		s.lock.lock(child, a.timeout)
		if s.component.Parent != model.NoComponent {
			current := s.component.Parent
			s.lock.unlock()
			panic(ErrInvariant.Wrapf("component %v already has parent %v, cannot set %v", child, current, parent))
		}
		s.component.Parent = parent
		s.lock.unlock()
	}

	s, _ := a.slot(parent)
	s.lock.lock(parent, a.timeout)
	s.component.Children = append(s.component.Children, children...)
	s.lock.unlock()
}

// Walk visits a subtree depth-first, in children order, starting at root.
//
// fn receives a snapshot of each component and its depth (0 for root). Returning
// false skips the subtree below that component.
func (a *Arena) Walk(root model.ComponentID, fn func(c model.Component, depth int) bool) error {
	return a.walk(root, 0, fn)
}

func (a *Arena) walk(id model.ComponentID, depth int, fn func(model.Component, int) bool) error {
	c, err := a.Get(id)
	if err != nil {
		return err
	}
	if !fn(c, depth) {
		return nil
	}
	for _, child := range c.Children {
		if err := a.walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
