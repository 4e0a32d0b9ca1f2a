package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/model"
)

const (
	tabSize = 2

	branch = "├─ "
	tail   = "└─ "

	unknownHead = "unknown"
)

// Tree renders a component tree with connectors, one status block per component
type Tree struct {
	green *color.Color
	red   *color.Color
}

// TreeOption configures the tree renderer
type TreeOption func(*Tree)

// WithColor forces colors on or off. By default, colors are used on terminals only.
func WithColor(enabled bool) TreeOption {
	return func(t *Tree) {
		for _, c := range []*color.Color{t.green, t.red} {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

// NewTree renderer
func NewTree(opts ...TreeOption) *Tree {
	t := &Tree{
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
	}
	for _, apply := range opts {
		apply(t)
	}
	return t
}

// Render the tree rooted at root:
//
//	root (main)
//	    Changes not staged:
//	      modified: README.md
//
//	  ├─ lib (main)
//	  └─ app (detached at 0123abc)
func (t *Tree) Render(w io.Writer, a *arena.Arena, root model.ComponentID) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out)

	var err error
	walkErr := a.Walk(root, func(c model.Component, depth int) bool {
		err = t.renderComponent(out, a, c, depth)
		return err == nil
	})
	if walkErr != nil {
		return walkErr
	}
	if err != nil {
		return err
	}
	return out.Flush()
}

func (t *Tree) renderComponent(out *bufio.Writer, a *arena.Arena, c model.Component, depth int) error {
	connector := ""
	if !c.IsRoot() {
		connector = branch
		if isLastChild(a, c) {
			connector = tail
		}
	}

	head := unknownHead
	if c.Report != nil && c.Report.Head != "" {
		head = c.Report.Head
	}
	fmt.Fprintf(out, "%s%s%s (%s)\n", indent(depth+1), connector, c.Name, head)

	if c.Report == nil {
		return nil
	}
	level := depth + 3
	t.section(out, level, "Changes to be committed:", c.Report.Staged, t.green, true)
	t.section(out, level, "Changes not staged:", c.Report.Unstaged, t.red, true)
	t.section(out, level, "Changes untracked:", c.Report.Untracked, t.red, false)
	return nil
}

func (t *Tree) section(out *bufio.Writer, level int, title string, changes []model.PathChange, c *color.Color, withKind bool) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(out, "%s%s\n", indent(level), title)
	for _, change := range changes {
		path := change.Path
		if change.From != "" && change.From != change.Path {
			path = change.From + " -> " + change.Path
		}
		if withKind {
			fmt.Fprintf(out, "%s%s: %s\n", indent(level+1), c.Sprint(change.Kind), c.Sprint(path))
			continue
		}
		fmt.Fprintf(out, "%s%s\n", indent(level+1), c.Sprint(path))
	}
	fmt.Fprintln(out)
}

func isLastChild(a *arena.Arena, c model.Component) bool {
	parent, err := a.Get(c.Parent)
	if err != nil || len(parent.Children) == 0 {
		return true
	}
	return parent.Children[len(parent.Children)-1] == c.ID
}

func indent(level int) string {
	return strings.Repeat(" ", level*tabSize)
}
