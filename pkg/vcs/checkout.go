package vcs

import (
	"bytes"
	"io"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"github.com/oneconcern/crane/pkg/errors"
)

var (
	errLocalChanges     = errors.New("local changes would be overwritten")
	errUntrackedClobber = errors.New("untracked file would be overwritten")
)

// Resolve the commit a revision designates in repo, after a fetch under remote.
//
// A branch resolves to its remote-tracking reference, or to the local branch when
// nothing was fetched for it.
func Resolve(repo *git.Repository, rev Revision, remote string) (plumbing.Hash, error) {
	if err := rev.Validate(); err != nil {
		return plumbing.ZeroHash, err
	}

	if rev.Commit != "" {
		h := plumbing.NewHash(rev.Commit)
		if _, err := repo.CommitObject(h); err != nil {
			return plumbing.ZeroHash, ErrInvalidTarget.Wrapf("commit %s: %w", rev.Commit, err)
		}
		return h, nil
	}

	for _, name := range []plumbing.ReferenceName{
		plumbing.NewRemoteReferenceName(remote, rev.Branch),
		plumbing.NewBranchReferenceName(rev.Branch),
	} {
		ref, err := repo.Reference(name, true)
		if err == nil {
			return ref.Hash(), nil
		}
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, err
		}
	}
	return plumbing.ZeroHash, ErrInvalidTarget.Wrapf("branch %q not found", rev.Branch)
}

// Checkout the working tree of repo to rev.
//
// A commit checks out detached. A branch is created or moved to its remote-tracking
// commit, with tracking configuration, and checked out. Non-empty paths restrict the
// working tree to these directories: other tracked files stay in the index only,
// flagged skip-worktree.
//
// Only the paths which differ between HEAD and the target are written or removed.
// Untracked files, nested checkouts among them, are left alone.
// Local modifications to tracked files are never discarded, nor are untracked files
// overwritten: the checkout fails instead, before anything is changed.
// Nothing is done when HEAD already sits on the requested revision with the requested paths.
func Checkout(repo *git.Repository, rev Revision, remote string, paths []string) (plumbing.Hash, error) {
	target, err := Resolve(repo, rev, remote)
	if err != nil {
		return plumbing.ZeroHash, err
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrap(err)
	}
	scope := newScope(paths)

	if atRevision(repo, rev, target) && !scope.changed(idx) {
		return target, nil
	}

	wt, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrap(err)
	}
	if err := refuseLocalChanges(wt, idx); err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrapf("%s: %w", rev, err)
	}

	changes, err := headChanges(repo, target)
	if err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrapf("%s: %w", rev, err)
	}

	u := &updater{repo: repo, fs: wt.Filesystem, idx: idx, scope: scope}
	if err := u.refuseClobbers(changes); err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrapf("%s: %w", rev, err)
	}
	if err := u.apply(changes); err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrapf("%s: %w", rev, err)
	}
	if err := u.rescope(); err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrapf("%s: %w", rev, err)
	}
	if err := repo.Storer.SetIndex(idx); err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrap(err)
	}

	if err := moveHead(repo, rev, remote, target); err != nil {
		return plumbing.ZeroHash, ErrCheckout.Wrap(err)
	}
	return target, nil
}

func atRevision(repo *git.Repository, rev Revision, target plumbing.Hash) bool {
	head, err := repo.Head()
	if err != nil || head.Hash() != target {
		return false
	}
	if rev.Commit != "" {
		return head.Name() == plumbing.HEAD
	}
	return head.Name() == plumbing.NewBranchReferenceName(rev.Branch)
}

func moveHead(repo *git.Repository, rev Revision, remote string, target plumbing.Hash) error {
	if rev.Commit != "" {
		return repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, target))
	}

	branch := plumbing.NewBranchReferenceName(rev.Branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, target)); err != nil {
		return err
	}
	if err := trackBranch(repo, rev.Branch, remote); err != nil {
		return err
	}
	return repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch))
}

func trackBranch(repo *git.Repository, branch, remote string) error {
	cfg, err := repo.Config()
	if err != nil {
		return err
	}
	cfg.Branches[branch] = &config.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(branch),
	}
	return repo.SetConfig(cfg)
}

// headChanges lists the differences between the tree at HEAD, empty when HEAD is unborn, and the target tree
func headChanges(repo *git.Repository, target plumbing.Hash) (object.Changes, error) {
	var from *object.Tree
	head, err := repo.Head()
	switch {
	case err == nil:
		c, err := repo.CommitObject(head.Hash())
		if err != nil {
			return nil, err
		}
		if from, err = c.Tree(); err != nil {
			return nil, err
		}
	case !errors.Is(err, plumbing.ErrReferenceNotFound):
		return nil, err
	}

	c, err := repo.CommitObject(target)
	if err != nil {
		return nil, err
	}
	to, err := c.Tree()
	if err != nil {
		return nil, err
	}
	return object.DiffTree(from, to)
}

// refuseLocalChanges fails on any change to a tracked file. Skip-worktree files missing from disk don't count.
func refuseLocalChanges(wt *git.Worktree, idx *index.Index) error {
	st, err := wt.Status()
	if err != nil {
		return err
	}
	skipped := skipWorktree(idx)
	for name, fs := range st {
		if fs.Worktree == git.Untracked {
			continue
		}
		if skipped[name] && fs.Worktree == git.Deleted && fs.Staging == git.Unmodified {
			continue
		}
		return errLocalChanges.Wrapf("%s", name)
	}
	return nil
}

func skipWorktree(idx *index.Index) map[string]bool {
	out := make(map[string]bool)
	for _, e := range idx.Entries {
		if e.SkipWorktree {
			out[e.Name] = true
		}
	}
	return out
}

// scope is the set of directories materialized in the working tree. An empty scope is the whole tree.
type scope []string

func newScope(paths []string) scope {
	s := make(scope, 0, len(paths))
	for _, p := range paths {
		p = strings.Trim(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
		if p == "" {
			// the root directory covers everything
			return nil
		}
		s = append(s, p)
	}
	return s
}

func (s scope) contains(name string) bool {
	if len(s) == 0 {
		return true
	}
	for _, dir := range s {
		if name == dir || strings.HasPrefix(name, dir+"/") {
			return true
		}
	}
	return false
}

// changed is true when some index entry is materialized against the scope, or the other way around
func (s scope) changed(idx *index.Index) bool {
	for _, e := range idx.Entries {
		if e.SkipWorktree == s.contains(e.Name) {
			return true
		}
	}
	return false
}

// updater applies tree changes to the index and the working tree
type updater struct {
	repo  *git.Repository
	fs    billy.Filesystem
	idx   *index.Index
	scope scope
}

func (u *updater) refuseClobbers(changes object.Changes) error {
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return err
		}
		if action != merkletrie.Insert || !u.scope.contains(ch.To.Name) {
			continue
		}
		if _, err := u.idx.Entry(ch.To.Name); err == nil {
			continue
		}
		same, err := u.sameContent(ch.To.Name, ch.To.TreeEntry)
		if err != nil {
			return err
		}
		if !same {
			return errUntrackedClobber.Wrapf("%s", ch.To.Name)
		}
	}
	return nil
}

// sameContent is true when nothing is at name, or a regular file with the content of entry
func (u *updater) sameContent(name string, entry object.TreeEntry) (bool, error) {
	info, err := u.fs.Lstat(name)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() || !entry.Mode.IsFile() {
		return false, nil
	}

	f, err := u.fs.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return false, err
	}
	return plumbing.ComputeHash(plumbing.BlobObject, content) == entry.Hash, nil
}

func (u *updater) apply(changes object.Changes) error {
	// removals first, so a file may replace a directory
	var writes []object.ChangeEntry
	for _, ch := range changes {
		action, err := ch.Action()
		if err != nil {
			return err
		}
		switch action {
		case merkletrie.Delete:
			if err := u.remove(ch.From.Name); err != nil {
				return err
			}
		case merkletrie.Modify:
			if ch.From.Name != ch.To.Name {
				if err := u.remove(ch.From.Name); err != nil {
					return err
				}
			}
			writes = append(writes, ch.To)
		case merkletrie.Insert:
			writes = append(writes, ch.To)
		}
	}

	for _, to := range writes {
		if err := u.write(to.Name, to.TreeEntry); err != nil {
			return err
		}
	}
	return nil
}

func (u *updater) remove(name string) error {
	if _, err := u.idx.Remove(name); err != nil && !errors.Is(err, index.ErrEntryNotFound) {
		return err
	}
	if err := u.fs.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	u.pruneParents(name)
	return nil
}

// pruneParents removes the directories left empty above name
func (u *updater) pruneParents(name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		entries, err := u.fs.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := u.fs.Remove(dir); err != nil {
			return
		}
	}
}

// write records entry at name in the index, and materializes it when in scope
func (u *updater) write(name string, te object.TreeEntry) error {
	e, err := u.idx.Entry(name)
	if err != nil {
		if !errors.Is(err, index.ErrEntryNotFound) {
			return err
		}
		e = u.idx.Add(name)
	}
	e.Hash = te.Hash
	e.Mode = te.Mode
	e.SkipWorktree = !u.scope.contains(name)
	if e.SkipWorktree {
		u.useExtendedFlags()
		return nil
	}
	return u.materialize(e)
}

func (u *updater) materialize(e *index.Entry) error {
	if err := u.fs.Remove(e.Name); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := u.fs.MkdirAll(path.Dir(e.Name), 0o755); err != nil {
		return err
	}

	switch e.Mode {
	case filemode.Submodule:
		if err := u.fs.MkdirAll(e.Name, 0o755); err != nil {
			return err
		}
	case filemode.Symlink:
		content, err := u.blob(e.Hash)
		if err != nil {
			return err
		}
		if err := u.fs.Symlink(string(content), e.Name); err != nil {
			return err
		}
	default:
		content, err := u.blob(e.Hash)
		if err != nil {
			return err
		}
		perm := os.FileMode(0o644)
		if e.Mode == filemode.Executable {
			perm = 0o755
		}
		f, err := u.fs.OpenFile(e.Name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, bytes.NewReader(content)); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	info, err := u.fs.Lstat(e.Name)
	if err != nil {
		return err
	}
	e.ModifiedAt = info.ModTime()
	e.Size = uint32(info.Size())
	return nil
}

func (u *updater) blob(h plumbing.Hash) ([]byte, error) {
	b, err := u.repo.BlobObject(h)
	if err != nil {
		return nil, err
	}
	r, err := b.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// rescope brings entries left untouched by the changes in line with the scope
func (u *updater) rescope() error {
	for _, e := range u.idx.Entries {
		in := u.scope.contains(e.Name)
		switch {
		case in && e.SkipWorktree:
			same, err := u.sameContent(e.Name, object.TreeEntry{Name: path.Base(e.Name), Mode: e.Mode, Hash: e.Hash})
			if err != nil {
				return err
			}
			if !same {
				return errUntrackedClobber.Wrapf("%s", e.Name)
			}
			e.SkipWorktree = false
			if err := u.materialize(e); err != nil {
				return err
			}
		case !in && !e.SkipWorktree:
			e.SkipWorktree = true
			u.useExtendedFlags()
			if err := u.fs.Remove(e.Name); err != nil && !os.IsNotExist(err) {
				return err
			}
			u.pruneParents(e.Name)
		}
	}
	return nil
}

// skip-worktree is an extended flag, only encoded from index version 3 on
func (u *updater) useExtendedFlags() {
	if u.idx.Version < 3 {
		u.idx.Version = 3
	}
}
