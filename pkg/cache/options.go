package cache

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option configures a Cache
type Option func(*Cache)

// WithFs sets the filesystem used to manage the cache root
func WithFs(fs afero.Fs) Option {
	return func(c *Cache) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithLogger sets a logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}
