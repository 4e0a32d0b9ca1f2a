package vcs

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	gitcache "github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/oneconcern/crane/pkg/errors"
)

// Open an existing working repository located exactly at path (parent directories are not searched).
//
// Objects missing from the repository are looked up in the object directories listed in its
// alternates file.
func Open(path string) (*git.Repository, error) {
	repo, err := open(path)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotARepository.Wrapf("%s", path)
		}
		return nil, err
	}
	return repo, nil
}

func open(workdir string) (*git.Repository, error) {
	gitDir := GitDir(workdir)
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		// no repository, or a .git file pointing elsewhere
		return git.PlainOpen(workdir)
	}

	st, err := newAlternateStorage(gitDir)
	if err != nil {
		return nil, err
	}
	return git.Open(st, osfs.New(workdir))
}

// OpenOrCreate opens the repository at path, initializing it if there is none.
//
// Bare repositories are used for caches, working repositories for checkouts.
func OpenOrCreate(path string, bare bool) (*git.Repository, error) {
	if bare {
		repo, err := git.PlainOpen(path)
		if err == nil || !errors.Is(err, git.ErrRepositoryNotExists) {
			return repo, err
		}
		return git.PlainInit(path, true)
	}

	repo, err := open(path)
	if err == nil || !errors.Is(err, git.ErrRepositoryNotExists) {
		return repo, err
	}
	if _, err := git.PlainInit(path, false); err != nil {
		return nil, err
	}
	return open(path)
}

// GitDir returns the metadata directory of a working repository
func GitDir(workdir string) string {
	return filepath.Join(workdir, git.GitDirName)
}

// alternateStorage is the storage of a working repository which falls back on the object
// stores of its alternates. These stores are opened once, with the repository.
type alternateStorage struct {
	*filesystem.Storage
	alternates []*filesystem.Storage
}

func newAlternateStorage(gitDir string) (*alternateStorage, error) {
	s := &alternateStorage{
		Storage: filesystem.NewStorage(osfs.New(gitDir), gitcache.NewObjectLRUDefault()),
	}

	content, err := os.ReadFile(AlternatesPath(gitDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, ErrAlternate.Wrap(err)
	}
	for _, objectsDir := range Alternates(content) {
		if !filepath.IsAbs(objectsDir) {
			// relative entries are relative to the objects directory
			objectsDir = filepath.Join(gitDir, "objects", objectsDir)
		}
		if _, err := os.Stat(objectsDir); err != nil {
			continue
		}
		s.alternates = append(s.alternates,
			filesystem.NewStorage(osfs.New(filepath.Dir(objectsDir)), gitcache.NewObjectLRUDefault()),
		)
	}
	return s, nil
}

func (s *alternateStorage) EncodedObject(t plumbing.ObjectType, h plumbing.Hash) (plumbing.EncodedObject, error) {
	obj, err := s.Storage.EncodedObject(t, h)
	if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return obj, err
	}
	for _, alt := range s.alternates {
		if obj, altErr := alt.EncodedObject(t, h); altErr == nil {
			return obj, nil
		}
	}
	return nil, err
}

func (s *alternateStorage) HasEncodedObject(h plumbing.Hash) error {
	err := s.Storage.HasEncodedObject(h)
	if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return err
	}
	for _, alt := range s.alternates {
		if alt.HasEncodedObject(h) == nil {
			return nil
		}
	}
	return err
}

func (s *alternateStorage) EncodedObjectSize(h plumbing.Hash) (int64, error) {
	size, err := s.Storage.EncodedObjectSize(h)
	if !errors.Is(err, plumbing.ErrObjectNotFound) {
		return size, err
	}
	for _, alt := range s.alternates {
		if size, altErr := alt.EncodedObjectSize(h); altErr == nil {
			return size, nil
		}
	}
	return 0, err
}
