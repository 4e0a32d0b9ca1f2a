package render

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
)

// JSON renders a component tree as an indented JSON document
type JSON struct{}

// Render the tree rooted at root
func (JSON) Render(w io.Writer, a *arena.Arena, root model.ComponentID) error {
	doc, err := toDocument(a, root)
	if err != nil {
		return err
	}
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
