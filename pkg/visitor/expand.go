package visitor

import (
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/config"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Expander discovers the children of a solution from its nested config file
type Expander struct {
	parser   *config.Parser
	fs       afero.Fs
	variable string
	logger   *zap.Logger
}

// ExpanderOption configures an Expander
type ExpanderOption func(*Expander)

// WithExpanderFs sets the filesystem config files are looked up in
func WithExpanderFs(fs afero.Fs) ExpanderOption {
	return func(e *Expander) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithExpanderLogger sets the logger
func WithExpanderLogger(l *zap.Logger) ExpanderOption {
	return func(e *Expander) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithVariable sets the config variable holding component declarations. Defaults to "deps".
func WithVariable(variable string) ExpanderOption {
	return func(e *Expander) {
		if variable != "" {
			e.variable = variable
		}
	}
}

// NewExpander builds an Expander. Unless set with options, it reads config files
// from the OS filesystem.
func NewExpander(opts ...ExpanderOption) *Expander {
	e := &Expander{
		fs:       afero.NewOsFs(),
		variable: config.DefaultVariable,
		logger:   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(e)
	}
	e.parser = config.NewParser(config.WithFs(e.fs), config.WithLogger(e.logger))
	return e
}

// Expand parses the nested config file of solution id, adds the declared components to
// the arena and links them under id.
//
// Nothing is expanded when the solution declares no config file, or when that file
// does not exist in its checkout. Children get their checkout in a subdirectory of the
// parent's, named after them.
func (e *Expander) Expand(a *arena.Arena, id model.ComponentID, baseDir string) ([]model.ComponentID, error) {
	parent, err := a.Get(id)
	if err != nil {
		return nil, err
	}
	if parent.Git.DepsFile == "" {
		return nil, nil
	}

	parentDir := Dir(parent, baseDir)
	path, err := securejoin.SecureJoin(parentDir, parent.Git.DepsFile)
	if err != nil {
		return nil, err
	}
	exists, err := afero.Exists(e.fs, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		e.logger.Debug("no nested config", zap.String("component", parent.Name), zap.String("file", path))
		return nil, nil
	}

	descriptors, err := e.parser.Parse(path, e.variable)
	if err != nil {
		return nil, err
	}

	children := make([]model.ComponentID, 0, len(descriptors))
	for _, d := range descriptors {
		child, err := d.Component()
		if err != nil {
			return nil, err
		}
		if child.Kind == model.KindSolution && child.Git.DepsFile == "" {
			child.Git.DepsFile = config.DefaultFile
		}

		target, err := securejoin.SecureJoin(parentDir, d.Name)
		if err != nil {
			return nil, err
		}
		if !filepath.IsAbs(parent.TargetDir) {
			if target, err = filepath.Rel(baseDir, target); err != nil {
				return nil, err
			}
		}
		child.TargetDir = target

		children = append(children, a.Add(child))
	}

	// all children are in the arena before any gets linked
	a.Link(id, children...)

	e.logger.Debug("expanded solution",
		zap.String("component", parent.Name),
		zap.Stringer("id", id),
		zap.Int("children", len(children)),
	)
	return children, nil
}
