package directory

import "github.com/goliatone/go-repository-cache/cache"

// Option configures directory construction.
type Option func(*Options)

// Options captures optional behavior for the role directory.
type Options struct {
	CacheEnabled bool
	CacheConfig  *cache.Config
}

// WithCache toggles the repository cache decorator for role and group loads.
func WithCache(enabled bool) Option {
	return func(opts *Options) {
		if opts == nil {
			return
		}
		opts.CacheEnabled = enabled
	}
}

// WithCacheConfig supplies the cache configuration used when caching is enabled.
func WithCacheConfig(cfg cache.Config) Option {
	return func(opts *Options) {
		if opts == nil {
			return
		}
		opts.CacheConfig = &cfg
	}
}

func applyOptions(options []Option) Options {
	var opts Options
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&opts)
	}
	return opts
}
