package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wrpfuk/records/internal/domain/normalize"
	"github.com/wrpfuk/records/internal/domain/record"
	"github.com/wrpfuk/records/pkg/logger"
	"github.com/wrpfuk/records/pkg/metrics"
)

// Snapshot is one complete normalized load of the dataset. Snapshots are
// never modified after they are published.
type Snapshot struct {
	Records  []record.Record
	Stats    normalize.Stats
	Source   string
	LoadedAt time.Time
	Version  uint64
}

// fileStamp identifies one version of the file on disk.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// Status describes the store for health and stats endpoints.
type Status struct {
	Loaded    bool            `json:"loaded"`
	Version   uint64          `json:"version"`
	Records   int             `json:"records"`
	Source    string          `json:"source"`
	LoadedAt  time.Time       `json:"loaded_at"`
	Stats     normalize.Stats `json:"stats"`
	Stale     bool            `json:"stale"`
	LastError string          `json:"last_error,omitempty"`
}

// Store serves the current snapshot of a CSV file. Readers get the latest
// complete snapshot; reloads build a new one and swap it in atomically.
type Store struct {
	path           string
	reloadInterval time.Duration
	log            logger.Logger
	now            func() time.Time

	snapshot atomic.Pointer[Snapshot]
	version  atomic.Uint64

	// loadMu serializes loads so versions are published in order.
	loadMu  sync.Mutex
	errMu   sync.RWMutex
	lastErr error
	// attempted is the file version of the most recent load attempt.
	attempted *fileStamp

	// pollMu guards stopChan, which is nil while no poller runs.
	pollMu   sync.Mutex
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// NewStore creates a store for path. Nothing is read until Load.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		log:  logger.Nop(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the published snapshot, or nil before the first
// successful load.
func (s *Store) Current() *Snapshot {
	return s.snapshot.Load()
}

// Records returns the current canonical records or ErrNotLoaded.
func (s *Store) Records() ([]record.Record, error) {
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.Records, nil
}

// Load reads and normalizes the file and publishes the result. On failure
// the previous snapshot stays in place and the error is remembered.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	start := time.Now()
	snap, err := s.build(ctx)
	ms := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		metrics.RecordDatasetLoad("error", ms)
		metrics.RecordErrorByComponent("dataset", errorType(err))
		s.setLastErr(err)
		s.log.Error(ctx, "dataset load failed",
			logger.String("path", s.path),
			logger.Bool("has_previous", s.snapshot.Load() != nil),
			logger.Error(err))
		return nil, err
	}

	snap.Version = s.version.Add(1)
	s.snapshot.Store(snap)
	s.setLastErr(nil)

	metrics.RecordDatasetLoad("success", ms)
	metrics.RecordSnapshot(len(snap.Records), snap.LoadedAt)
	for reason, n := range snap.Stats.Dropped {
		metrics.RecordRowsDropped(string(reason), n)
	}
	s.log.Info(ctx, "dataset loaded",
		logger.String("path", s.path),
		logger.Int("records", len(snap.Records)),
		logger.Int("dropped", snap.Stats.DroppedTotal()),
		logger.Int("unparsed_dates", snap.Stats.UnparsedDates),
		logger.Any("version", snap.Version),
		logger.Duration("took", time.Since(start)))
	return snap, nil
}

func (s *Store) build(ctx context.Context) (*Snapshot, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	}
	s.errMu.Lock()
	s.attempted = &fileStamp{modTime: info.ModTime(), size: info.Size()}
	s.errMu.Unlock()

	res, err := ReadFile(ctx, s.path)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Records:  res.Records,
		Stats:    res.Stats,
		Source:   s.path,
		LoadedAt: s.now(),
	}, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrMissingColumn):
		return "missing_column"
	case errors.Is(err, ErrEmptyDataset):
		return "empty"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "unavailable"
}

func (s *Store) setLastErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// LastError returns the error of the most recent load, nil if it succeeded.
func (s *Store) LastError() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.lastErr
}

// Status reports the current snapshot and the outcome of the last load.
func (s *Store) Status() Status {
	st := Status{Source: s.path}
	if snap := s.snapshot.Load(); snap != nil {
		st.Loaded = true
		st.Version = snap.Version
		st.Records = len(snap.Records)
		st.LoadedAt = snap.LoadedAt
		st.Stats = snap.Stats
	}
	if err := s.LastError(); err != nil {
		st.LastError = err.Error()
		st.Stale = st.Loaded
	}
	return st
}

// Changed reports whether the file differs in size or modification time
// from the one last loaded or attempted. A file that cannot be stat'ed
// counts as changed so the reload reports the error.
func (s *Store) Changed() bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return true
	}
	s.errMu.RLock()
	last := s.attempted
	s.errMu.RUnlock()
	if last == nil {
		return true
	}
	return !info.ModTime().Equal(last.modTime) || info.Size() != last.size
}

// Start launches the reload poller when a reload interval is configured.
// A store can be started again after Close; a second Start while the
// poller runs is a no-op.
func (s *Store) Start(ctx context.Context) {
	if s.reloadInterval <= 0 {
		return
	}
	s.pollMu.Lock()
	defer s.pollMu.Unlock()
	if s.stopChan != nil {
		return
	}
	stop := make(chan struct{})
	s.stopChan = stop

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.reloadInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				if !s.Changed() {
					continue
				}
				// Errors are logged and kept in Status by Load.
				_, _ = s.Load(ctx)
			}
		}
	}()
}

// Close stops the reload poller and waits for it to exit.
func (s *Store) Close() error {
	s.pollMu.Lock()
	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}
	s.pollMu.Unlock()
	s.wg.Wait()
	return nil
}
