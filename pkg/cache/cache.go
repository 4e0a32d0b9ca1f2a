package cache

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	// DefaultDirName is the name of the cache root under the user's home directory
	DefaultDirName = ".crane_cache"

	gitDir = "git"
)

// Cache is a directory of shared git repositories, one per remote URL
type Cache struct {
	root   string
	fs     afero.Fs
	logger *zap.Logger

	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	fetched map[string]struct{}
}

// DefaultRoot returns the cache root under the user's home directory
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDirName), nil
}

// New opens a cache rooted at root, creating the directory on demand.
//
// It fails with ErrNotADirectory if root exists and is not a directory.
func New(root string, opts ...Option) (*Cache, error) {
	c := &Cache{
		root:    root,
		fs:      afero.NewOsFs(),
		logger:  zap.NewNop(),
		locks:   make(map[string]*sync.Mutex),
		fetched: make(map[string]struct{}),
	}
	for _, apply := range opts {
		apply(c)
	}

	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache) ensureDir() error {
	fi, err := c.fs.Stat(c.root)
	switch {
	case err == nil && !fi.IsDir():
		return ErrNotADirectory.Wrapf("%s", c.root)
	case err == nil:
		return nil
	case os.IsNotExist(err):
		c.logger.Debug("creating cache directory", zap.String("dir", c.root))
		return c.fs.MkdirAll(c.root, 0o755)
	default:
		return err
	}
}

// Root directory of the cache
func (c *Cache) Root() string {
	return c.root
}

// RepoPath returns the path of the cache repository for a remote URL
func (c *Cache) RepoPath(url string) string {
	return filepath.Join(c.root, gitDir, Key(url))
}

// ObjectsPath returns the object store of the cache repository for a remote URL.
//
// Cache repositories are bare: objects live directly under the repository path.
func (c *Cache) ObjectsPath(url string) string {
	return filepath.Join(c.RepoPath(url), "objects")
}

func (c *Cache) lockFor(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[key]
	if !ok {
		l = &sync.Mutex{}
		c.locks[key] = l
	}
	return l
}

func fetchKey(url string, refspecs []string) string {
	specs := append([]string(nil), refspecs...)
	sort.Strings(specs)
	return Key(url) + "\x00" + strings.Join(specs, "\x00")
}

// FetchFunc populates the cache repository located at path
type FetchFunc func(ctx context.Context, path string) error

// Fetch runs fetch against the cache repository of url, for a set of refspecs.
//
// Concurrent fetches of the same URL are serialized, so the cache repository
// is never written by two fetches at once. A successful fetch of the same refspecs
// is not repeated: Fetch reports whether fetch actually ran.
func (c *Cache) Fetch(ctx context.Context, url string, refspecs []string, fetch FetchFunc) (bool, error) {
	key := fetchKey(url, refspecs)
	lock := c.lockFor(Key(url))
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	_, done := c.fetched[key]
	c.mu.Unlock()
	if done {
		c.logger.Debug("cache hit", zap.String("url", url), zap.Strings("refspecs", refspecs))
		return false, nil
	}

	path := c.RepoPath(url)
	if err := fetch(ctx, path); err != nil {
		return true, err
	}

	c.mu.Lock()
	c.fetched[key] = struct{}{}
	c.mu.Unlock()
	return true, nil
}

// Entry describes a cache repository
type Entry struct {
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
	Size int64  `yaml:"size"`
}

// List the repositories held in the cache, sorted by URL.
//
// Directories which do not decode to a URL are skipped.
func (c *Cache) List() ([]Entry, error) {
	base := filepath.Join(c.root, gitDir)
	infos, err := afero.ReadDir(c.fs, base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var (
		entries []Entry
		errs    error
	)
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		url, err := URLFromKey(info.Name())
		if err != nil {
			c.logger.Debug("skipping cache entry", zap.String("name", info.Name()), zap.Error(err))
			continue
		}
		path := filepath.Join(base, info.Name())
		size, err := c.size(path)
		errs = multierr.Append(errs, err)
		entries = append(entries, Entry{URL: url, Path: path, Size: size})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].URL < entries[j].URL })
	return entries, errs
}

func (c *Cache) size(path string) (int64, error) {
	var total int64
	err := afero.Walk(c.fs, path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total, err
}
