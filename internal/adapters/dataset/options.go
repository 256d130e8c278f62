package dataset

import (
	"time"

	"github.com/wrpfuk/records/pkg/logger"
)

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithReloadInterval enables polling the file for changes. Zero or a
// negative interval disables it.
func WithReloadInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.reloadInterval = interval
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
