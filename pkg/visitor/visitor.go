package visitor

import (
	"context"
	"path/filepath"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
)

// Visitor processes components, one call per component.
//
// baseDir is the directory component target directories are relative to.
type Visitor interface {
	// VisitGit processes a version-control reference
	VisitGit(ctx context.Context, a *arena.Arena, id model.ComponentID, baseDir string) error

	// VisitSolution processes a solution like a version-control reference, then expands it:
	// components declared by its nested config file are added to the arena and linked as its
	// children. The new children are returned, for the caller to visit next.
	VisitSolution(ctx context.Context, a *arena.Arena, id model.ComponentID, baseDir string) ([]model.ComponentID, error)
}

// Named visitors report their name in logs and metrics
type Named interface {
	Name() string
}

// NameOf a visitor, "visitor" when it has none
func NameOf(v Visitor) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	return "visitor"
}

// Dir is the location on disk of a component's checkout
func Dir(c model.Component, baseDir string) string {
	if filepath.IsAbs(c.TargetDir) {
		return c.TargetDir
	}
	return filepath.Join(baseDir, c.TargetDir)
}
