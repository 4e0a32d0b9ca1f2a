package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func TestParseKind(t *testing.T) {
	k, err := ParseKind("solution")
	require.NoError(t, err)
	assert.Equal(t, KindSolution, k)

	k, err = ParseKind(" Git ")
	require.NoError(t, err)
	assert.Equal(t, KindGitDependency, k)

	_, err = ParseKind("svn")
	require.ErrorIs(t, err, ErrUnknownType)

	assert.Equal(t, "unknown", Kind(9).String())
}

func TestDescriptor(t *testing.T) {
	valid := Descriptor{Name: "lib", Type: "git", URL: "https://example.com/lib.git", Branch: "main", Paths: []string{"src"}}

	for _, toPin := range []struct {
		name   string
		mutate func(*Descriptor)
		err    error
	}{
		{name: "valid", mutate: func(*Descriptor) {}},
		{name: "no name", mutate: func(d *Descriptor) { d.Name = "" }, err: ErrMissingField},
		{name: "nested name", mutate: func(d *Descriptor) { d.Name = "a/b" }, err: ErrInvalidName},
		{name: "dot dot", mutate: func(d *Descriptor) { d.Name = ".." }, err: ErrInvalidName},
		{name: "no type", mutate: func(d *Descriptor) { d.Type = "" }, err: ErrMissingField},
		{name: "bad type", mutate: func(d *Descriptor) { d.Type = "hg" }, err: ErrUnknownType},
		{name: "no url", mutate: func(d *Descriptor) { d.URL = "" }, err: ErrMissingField},
	} {
		tc := toPin
		t.Run(tc.name, func(t *testing.T) {
			d := valid
			tc.mutate(&d)
			c, err := d.Component()
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "lib", c.TargetDir)
			assert.Equal(t, KindGitDependency, c.Kind)
			assert.Equal(t, NoComponent, c.ID)
			assert.True(t, c.IsRoot())
			assert.Equal(t, GitRef{URL: d.URL, Branch: "main", Paths: []string{"src"}}, c.Git)
		})
	}
}

func TestComponentClone(t *testing.T) {
	c := Component{
		ID:       2,
		Name:     "app",
		Children: []ComponentID{3, 4},
		Git:      GitRef{Paths: []string{"a"}},
		Report:   &StatusReport{Head: "main", Untracked: []PathChange{{Path: "x"}}},
	}

	clone := c.Clone()
	clone.Children[0] = 9
	clone.Git.Paths[0] = "b"
	clone.Report.Untracked[0].Path = "y"
	clone.Report.Head = "other"

	assert.Equal(t, ComponentID(3), c.Children[0])
	assert.Equal(t, "a", c.Git.Paths[0])
	assert.Equal(t, "x", c.Report.Untracked[0].Path)
	assert.Equal(t, "main", c.Report.Head)
	assert.Equal(t, "#2", c.ID.String())
	assert.Equal(t, "#2 app(git) in ", c.String())
}

func TestSuppressUntrackedUnder(t *testing.T) {
	r := StatusReport{
		Untracked: []PathChange{
			{Path: "lib/file.go"},
			{Path: "lib"},
			{Path: "library.txt"},
			{Path: "tools/sub/x"},
			{Path: "top.txt"},
		},
	}
	r.SuppressUntrackedUnder([]string{"lib/", "./tools/sub", "."})

	assert.Equal(t, []PathChange{{Path: "library.txt"}, {Path: "top.txt"}}, r.Untracked)
	assert.False(t, r.Clean())

	r.SuppressUntrackedUnder([]string{"library.txt", "top.txt"})
	assert.True(t, r.Clean())
}

func TestKindYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Kind Kind `yaml:"kind"`
	}{Kind: KindSolution})
	require.NoError(t, err)
	assert.Equal(t, "kind: solution\n", string(out))
}
