package render

import (
	"io"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
	yaml "gopkg.in/yaml.v2"
)

// YAML renders a component tree as a YAML document
type YAML struct{}

// Render the tree rooted at root
func (YAML) Render(w io.Writer, a *arena.Arena, root model.ComponentID) error {
	doc, err := toDocument(a, root)
	if err != nil {
		return err
	}
	return yaml.NewEncoder(w).Encode(doc)
}
