package session

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMaxSessions bounds the store. When full, creating a session evicts the
// oldest one. maxSessions <= 0 means unbounded.
func WithMaxSessions(maxSessions int) Option {
	return func(s *Store) {
		s.maxSessions = maxSessions
	}
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
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
