package model

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ComponentID identifies a component within an arena.
//
// Identifiers are assigned at insertion, in increasing order, starting at 1.
// They are never reused during a process run.
type ComponentID uint64

// NoComponent is the zero ComponentID, which never identifies a component.
const NoComponent ComponentID = 0

func (id ComponentID) String() string {
	return fmt.Sprintf("#%d", uint64(id))
}

// Kind tags the payload of a component
type Kind int

const (
	// KindGitDependency is a terminal version-control reference
	KindGitDependency Kind = iota
	// KindSolution is a version-control reference which may declare children in a nested config file
	KindSolution
)

const (
	typeSolution = "solution"
	typeGit      = "git"
)

// ParseKind converts the "type" attribute of a config descriptor into a Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case typeSolution:
		return KindSolution, nil
	case typeGit:
		return KindGitDependency, nil
	default:
		return KindGitDependency, ErrUnknownType.Wrapf("%q", s)
	}
}

func (k Kind) String() string {
	switch k {
	case KindSolution:
		return typeSolution
	case KindGitDependency:
		return typeGit
	default:
		return "unknown"
	}
}

// MarshalYAML renders a Kind as its config name
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// MarshalJSON implements json.Marshaller
func (k Kind) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(k.String())
}

// UnmarshalJSON implements json.Unmarshaller
func (k *Kind) UnmarshalJSON(data []byte) error {
	var str string
	if err := jsoniter.Unmarshal(data, &str); err != nil {
		return err
	}
	kind, err := ParseKind(str)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// GitRef holds the version-control attributes of a component.
//
// It is immutable once parsed.
type GitRef struct {
	URL      string   `json:"url,omitempty" yaml:"url,omitempty"`
	Branch   string   `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit   string   `json:"commit,omitempty" yaml:"commit,omitempty"`
	DepsFile string   `json:"deps_file,omitempty" yaml:"deps_file,omitempty"`
	Paths    []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// HasRevision tells if a branch or a commit is specified
func (g GitRef) HasRevision() bool {
	return g.Branch != "" || g.Commit != ""
}

// Component is a node of the component tree
type Component struct {
	ID        ComponentID
	Name      string
	Kind      Kind
	TargetDir string

	// Parent is NoComponent for roots. It is set at most once, when the component gets linked.
	Parent ComponentID

	// Children are appended in discovery order
	Children []ComponentID

	Git GitRef

	// Report is filled by status collection
	Report *StatusReport
}

// IsRoot tells if the component has no parent
func (c *Component) IsRoot() bool {
	return c.Parent == NoComponent
}

// Clone returns a copy which does not share mutable state with c
func (c Component) Clone() Component {
	clone := c
	if c.Children != nil {
		clone.Children = append([]ComponentID(nil), c.Children...)
	}
	if c.Git.Paths != nil {
		clone.Git.Paths = append([]string(nil), c.Git.Paths...)
	}
	if c.Report != nil {
		r := c.Report.Clone()
		clone.Report = &r
	}
	return clone
}

func (c Component) String() string {
	return fmt.Sprintf("%s %s(%s) in %s", c.ID, c.Name, c.Kind, c.TargetDir)
}
