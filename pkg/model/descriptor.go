package model

import (
	"path/filepath"
	"strings"
)

// Descriptor is a component declared in a config file, before insertion in the arena.
type Descriptor struct {
	Name     string   `mapstructure:"-" yaml:"name"`
	Type     string   `mapstructure:"type" yaml:"type"`
	URL      string   `mapstructure:"url" yaml:"url"`
	Branch   string   `mapstructure:"branch" yaml:"branch,omitempty"`
	Commit   string   `mapstructure:"commit" yaml:"commit,omitempty"`
	DepsFile string   `mapstructure:"deps_file" yaml:"deps_file,omitempty"`
	Paths    []string `mapstructure:"paths" yaml:"paths,omitempty"`
}

// Validate the required fields of a descriptor
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return ErrMissingField.Wrapf("component name is empty")
	}
	if strings.ContainsAny(d.Name, "/"+string(filepath.Separator)) || d.Name == "." || d.Name == ".." {
		return ErrInvalidName.Wrapf("%q", d.Name)
	}
	if d.Type == "" {
		return ErrMissingField.Wrapf("%s: type", d.Name)
	}
	if _, err := ParseKind(d.Type); err != nil {
		return err
	}
	if d.URL == "" {
		return ErrMissingField.Wrapf("%s: url", d.Name)
	}
	return nil
}

// Component builds a new, unlinked component from this descriptor.
//
// The target directory is relative to the parent's checkout until the component gets linked.
func (d Descriptor) Component() (Component, error) {
	if err := d.Validate(); err != nil {
		return Component{}, err
	}
	kind, _ := ParseKind(d.Type)
	return Component{
		Name:      d.Name,
		Kind:      kind,
		TargetDir: d.Name,
		Git: GitRef{
			URL:      d.URL,
			Branch:   d.Branch,
			Commit:   d.Commit,
			DepsFile: d.DepsFile,
			Paths:    append([]string(nil), d.Paths...),
		},
	}, nil
}
