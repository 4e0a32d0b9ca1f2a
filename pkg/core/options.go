package core

import (
	"runtime"
	"time"

	"github.com/oneconcern/crane/pkg/arena"
	"github.com/oneconcern/crane/pkg/metrics"
	"github.com/oneconcern/crane/pkg/vcs"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option sets options for core operations
type Option func(*Settings)

// Settings defines various settings for core features
type Settings struct {
	cacheDir    string
	concurrency int
	lockTimeout time.Duration
	remote      string
	sshKey      string
	arena       *arena.Arena
	logger      *zap.Logger
	metrics     *metrics.Metrics
	fs          afero.Fs
}

var defaultConcurrency = 2 * runtime.NumCPU()

func defaultSettings() Settings {
	return Settings{
		concurrency: defaultConcurrency,
		lockTimeout: arena.DefaultLockTimeout,
		remote:      vcs.DefaultRemote,
		logger:      zap.NewNop(),
		fs:          afero.NewOsFs(),
	}
}

func newSettings(opts []Option) Settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(&s)
	}
	if s.arena == nil {
		s.arena = arena.New(arena.WithLockTimeout(s.lockTimeout))
	}
	return s
}

// CacheDir sets the root of the repository cache. It defaults to ~/.crane_cache.
func CacheDir(dir string) Option {
	return func(s *Settings) {
		s.cacheDir = dir
	}
}

// Concurrency sets the max number of components processed at once. It defaults to 2 x #cpus.
func Concurrency(concurrent int) Option {
	return func(s *Settings) {
		if concurrent == 0 {
			s.concurrency = defaultConcurrency
			return
		}
		s.concurrency = concurrent
	}
}

// LockTimeout bounds waits on component locks of a fresh arena. It defaults to 10s.
func LockTimeout(d time.Duration) Option {
	return func(s *Settings) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// Remote sets the name of the remote used by checkouts. It defaults to "origin".
func Remote(name string) Option {
	return func(s *Settings) {
		if name != "" {
			s.remote = name
		}
	}
}

// SSHKey sets an explicit private key for ssh remotes, instead of looking one up in ~/.ssh
func SSHKey(path string) Option {
	return func(s *Settings) {
		s.sshKey = path
	}
}

// Arena sets the arena components are added to. By default, each operation works on a fresh arena.
func Arena(a *arena.Arena) Option {
	return func(s *Settings) {
		s.arena = a
	}
}

// Logger sets the logger
func Logger(l *zap.Logger) Option {
	return func(s *Settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// Metrics collects metrics about the operation
func Metrics(m *metrics.Metrics) Option {
	return func(s *Settings) {
		s.metrics = m
	}
}

// Fs sets the filesystem used for config files and repository metadata
func Fs(fs afero.Fs) Option {
	return func(s *Settings) {
		if fs != nil {
			s.fs = fs
		}
	}
}
