package repository

import (
	"github.com/okian/courtstats/internal/domain/stats"
	"github.com/okian/courtstats/pkg/logger"
)

const defaultWriteBatch = 500

type options struct {
	log        logger.Logger
	writeBatch int
	integrity  stats.IntegrityHandler
}

// Option applies a configuration option to a store.
type Option func(*options)

// WithLogger sets the logger used for warnings and query tracing.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithWriteBatch sets how many rows go into one INSERT.
func WithWriteBatch(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.writeBatch = n
		}
	}
}

// WithIntegrityHandler receives stored events that cannot be decoded.
// By default they are logged and counted.
func WithIntegrityHandler(h stats.IntegrityHandler) Option {
	return func(o *options) {
		if h != nil {
			o.integrity = h
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{writeBatch: defaultWriteBatch}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Get().Named("repository")
	}
	if o.integrity == nil {
		l := o.log
		o.integrity = func(err *stats.DataIntegrityError) {
			logIntegrity(l, err)
		}
	}
	return o
}
