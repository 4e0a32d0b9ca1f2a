package render

import (
	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
)

// document is the serializable form of a component tree
type document struct {
	Name     string              `json:"name" yaml:"name"`
	Kind     model.Kind          `json:"kind" yaml:"kind"`
	Dir      string              `json:"dir" yaml:"dir"`
	URL      string              `json:"url,omitempty" yaml:"url,omitempty"`
	Branch   string              `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit   string              `json:"commit,omitempty" yaml:"commit,omitempty"`
	Status   *model.StatusReport `json:"status,omitempty" yaml:"status,omitempty"`
	Children []*document         `json:"children,omitempty" yaml:"children,omitempty"`
}

func toDocument(a *arena.Arena, id model.ComponentID) (*document, error) {
	c, err := a.Get(id)
	if err != nil {
		return nil, err
	}
	node := &document{
		Name:   c.Name,
		Kind:   c.Kind,
		Dir:    c.TargetDir,
		URL:    c.Git.URL,
		Branch: c.Git.Branch,
		Commit: c.Git.Commit,
		Status: c.Report,
	}
	for _, child := range c.Children {
		n, err := toDocument(a, child)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, n)
	}
	return node, nil
}
