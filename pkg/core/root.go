package core

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/oneconcern/crane/pkg/config"
	"github.com/oneconcern/crane/pkg/model"
	"github.com/oneconcern/crane/pkg/vcs"
)

// RootRef designates the root of a component tree
type RootRef struct {
	// Dir is the checkout of the root. It defaults to the repository name taken from URL when
	// a URL is given, or to the current directory.
	Dir string

	// URL of the root repository. It defaults to the URL of the remote of an existing checkout.
	URL string

	Branch string
	Commit string
}

// DirFromURL guesses a directory name from a repository URL, like git clone does
func DirFromURL(url string) string {
	name := strings.TrimRight(url, "/")
	name = strings.TrimSuffix(name, "/.git")
	name = strings.TrimSuffix(name, ".git")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "."
	}
	return name
}

// RootDir returns the absolute checkout directory designated by a root reference
func RootDir(ref RootRef) (string, error) {
	dir := ref.Dir
	if dir == "" {
		dir = "."
		if ref.URL != "" {
			dir = DirFromURL(ref.URL)
		}
	}
	return filepath.Abs(dir)
}

func rootComponent(dir string, git model.GitRef) model.Component {
	git.DepsFile = config.DefaultFile
	return model.Component{
		Name:      filepath.Base(dir),
		Kind:      model.KindSolution,
		TargetDir: ".",
		Git:       git,
	}
}

// resolveRoot completes a root reference with what an existing checkout or the remote knows.
//
// Without a URL, the checkout at dir must exist and have the remote configured.
// Without a revision, the branch checked out at dir is kept, or else the default branch
// of the remote is used.
func resolveRoot(ctx context.Context, ref RootRef, dir string, s Settings) (model.GitRef, error) {
	git := model.GitRef{URL: ref.URL, Branch: ref.Branch, Commit: ref.Commit}
	if git.URL != "" && git.HasRevision() {
		return git, nil
	}

	repo, openErr := vcs.Open(dir)
	if git.URL == "" {
		if openErr != nil {
			return git, ErrNoURL.Wrap(openErr)
		}
		url, err := vcs.RemoteURL(repo, s.remote)
		if err != nil {
			return git, ErrNoURL.Wrap(err)
		}
		git.URL = url
	}
	if git.HasRevision() {
		return git, nil
	}

	if openErr == nil {
		branch, err := vcs.CurrentBranch(repo)
		if err != nil {
			return git, err
		}
		if branch != "" {
			git.Branch = branch
			return git, nil
		}
	}

	t, err := vcs.TransportFor(git.URL, s.transportOptions())
	if err != nil {
		return git, err
	}
	branch, err := vcs.DefaultBranch(ctx, git.URL, t)
	if err != nil {
		return git, err
	}
	git.Branch = branch
	return git, nil
}

func (s Settings) transportOptions() vcs.TransportOptions {
	return vcs.TransportOptions{KeyFile: s.sshKey}
}
