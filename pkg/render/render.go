package render

import (
	"io"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
)

// Renderer prints the tree rooted at some component
type Renderer interface {
	Render(w io.Writer, a *arena.Arena, root model.ComponentID) error
}

// Format names an output format
type Format string

// Supported formats
const (
	FormatTree Format = "tree"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// New renderer for a format
func New(format Format, opts ...TreeOption) (Renderer, error) {
	switch format {
	case FormatTree, "":
		return NewTree(opts...), nil
	case FormatYAML:
		return YAML{}, nil
	case FormatJSON:
		return JSON{}, nil
	default:
		return nil, ErrUnknownFormat.Wrapf("%q", format)
	}
}
