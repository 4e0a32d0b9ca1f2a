package vcs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/oneconcern/crane/pkg/cache"
	"github.com/oneconcern/crane/pkg/errors"
	"github.com/oneconcern/crane/pkg/metrics"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// State of a component going through synchronization
type State uint8

// Synchronization states, in protocol order
const (
	Uninitialized State = iota
	CacheFetched
	TargetLinked
	TargetFetched
	CheckedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case CacheFetched:
		return "cache-fetched"
	case TargetLinked:
		return "target-linked"
	case TargetFetched:
		return "target-fetched"
	case CheckedOut:
		return "checked-out"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// SyncError reports the last state reached by a failed synchronization
type SyncError struct {
	Reached State
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed after %s: %v", e.Reached, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Request to synchronize one checkout
type Request struct {
	URL      string
	Dir      string
	Revision Revision
	Paths    []string
}

// Syncer synchronizes checkouts with their remote, sharing objects through a cache
type Syncer struct {
	cache     *cache.Cache
	fs        afero.Fs
	logger    *zap.Logger
	metrics   *metrics.Metrics
	remote    string
	transport TransportOptions
}

// SyncerOption configures a Syncer
type SyncerOption func(*Syncer)

// WithSyncerLogger sets the logger
func WithSyncerLogger(l *zap.Logger) SyncerOption {
	return func(s *Syncer) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSyncerFs sets the filesystem used to write repository metadata
func WithSyncerFs(fs afero.Fs) SyncerOption {
	return func(s *Syncer) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// WithSyncerMetrics collects fetch and checkout metrics
func WithSyncerMetrics(m *metrics.Metrics) SyncerOption {
	return func(s *Syncer) {
		s.metrics = m
	}
}

// WithRemoteName sets the name of the remote configured in checkouts. Defaults to "origin".
func WithRemoteName(name string) SyncerOption {
	return func(s *Syncer) {
		if name != "" {
			s.remote = name
		}
	}
}

// WithTransportOptions sets how credentials and proxies are looked up
func WithTransportOptions(t TransportOptions) SyncerOption {
	return func(s *Syncer) {
		s.transport = t
	}
}

// NewSyncer builds a Syncer backed by a cache
func NewSyncer(c *cache.Cache, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		cache:  c,
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
		remote: DefaultRemote,
	}
	for _, apply := range opts {
		apply(s)
	}
	return s
}

// Remote is the name of the remote configured in checkouts
func (s *Syncer) Remote() string {
	return s.remote
}

// Transport resolves credentials and proxy settings for url
func (s *Syncer) Transport(url string) (Transport, error) {
	return TransportFor(url, s.transport)
}

// Sync brings the checkout at req.Dir to req.Revision:
//
//  1. fetch the revision into the cache repository for req.URL
//  2. open or create the checkout and register the cache objects as an alternate
//  3. fetch the revision into the checkout, as remote-tracking references
//  4. check the revision out
//
// A failure leaves the checkout and the cache in their current state.
func (s *Syncer) Sync(ctx context.Context, req Request) (State, error) {
	state := Uninitialized
	log := s.logger.With(zap.String("url", req.URL), zap.String("dir", req.Dir))

	fail := func(err error) (State, error) {
		log.Debug("sync failed", zap.Stringer("state", state), zap.Error(err))
		return Failed, &SyncError{Reached: state, Err: err}
	}
	advance := func(next State) {
		state = next
		log.Debug("sync progress", zap.Stringer("state", state))
	}

	if err := req.Revision.Validate(); err != nil {
		return fail(err)
	}
	t, err := s.Transport(req.URL)
	if err != nil {
		return fail(err)
	}

	if err := s.fetchCache(ctx, req, t); err != nil {
		return fail(err)
	}
	advance(CacheFetched)

	repo, err := s.link(req)
	if err != nil {
		return fail(err)
	}
	advance(TargetLinked)

	if err := s.fetchTarget(ctx, repo, req, t); err != nil {
		return fail(err)
	}
	advance(TargetFetched)

	h, err := Checkout(repo, req.Revision, s.remote, req.Paths)
	s.metrics.Checkout(err)
	if err != nil {
		return fail(err)
	}
	advance(CheckedOut)

	log.Info("checked out", zap.Stringer("revision", req.Revision), zap.String("commit", h.String()))
	return state, nil
}

func (s *Syncer) fetchCache(ctx context.Context, req Request, t Transport) error {
	specs := req.Revision.cacheRefSpecs()
	ran, err := s.cache.Fetch(ctx, req.URL, refSpecStrings(specs), func(ctx context.Context, path string) error {
		repo, err := OpenOrCreate(path, true)
		if err != nil {
			return err
		}
		var fallback = allHeadsCache()
		if req.Revision.Commit == "" {
			fallback = nil
		}
		start := time.Now()
		err = fetchWithFallback(ctx, repo, s.remote, req.URL, specs, fallback, t)
		s.metrics.Fetch(metrics.StageCache, err, time.Since(start))
		return err
	})
	if !ran {
		s.metrics.CacheHit()
	}
	return err
}

func (s *Syncer) link(req Request) (*git.Repository, error) {
	if _, err := OpenOrCreate(req.Dir, false); err != nil {
		return nil, err
	}
	if err := AddAlternate(s.fs, GitDir(req.Dir), s.cache.ObjectsPath(req.URL)); err != nil {
		return nil, err
	}

	// reopen so the object storage reads through the alternate
	repo, err := Open(req.Dir)
	if err != nil {
		return nil, err
	}
	if err := EnsureRemote(repo, s.remote, req.URL); err != nil {
		return nil, err
	}
	if err := s.seed(repo, req); err != nil {
		return nil, err
	}
	return repo, nil
}

// seed points the ref fetched into the checkout at the commit the cache holds for it,
// leaving the target fetch with nothing to download.
func (s *Syncer) seed(repo *git.Repository, req Request) error {
	src := plumbing.NewBranchReferenceName(req.Revision.Branch)
	dst := plumbing.NewRemoteReferenceName(s.remote, req.Revision.Branch)
	if req.Revision.Commit != "" {
		src = pinnedRef(req.Revision.Commit)
		dst = src
	}

	cached, err := git.PlainOpen(s.cache.RepoPath(req.URL))
	if err != nil {
		return err
	}
	ref, err := cached.Reference(src, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		// fetched through the all-heads fallback
		return nil
	}
	if err != nil {
		return err
	}
	if err := repo.Storer.HasEncodedObject(ref.Hash()); err != nil {
		s.logger.Debug("cached commit not visible from checkout", zap.String("dir", req.Dir), zap.Error(err))
		return nil
	}
	return repo.Storer.SetReference(plumbing.NewHashReference(dst, ref.Hash()))
}

func (s *Syncer) fetchTarget(ctx context.Context, repo *git.Repository, req Request, t Transport) error {
	var fallback = allHeadsTarget(s.remote)
	if req.Revision.Commit == "" {
		fallback = nil
	}
	start := time.Now()
	err := fetchWithFallback(ctx, repo, s.remote, req.URL, req.Revision.targetRefSpecs(s.remote), fallback, t)
	s.metrics.Fetch(metrics.StageTarget, err, time.Since(start))
	return err
}
