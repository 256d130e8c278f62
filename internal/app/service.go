// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/wrpfuk/records/internal/adapters/dataset"
	"github.com/wrpfuk/records/internal/adapters/export"
	"github.com/wrpfuk/records/internal/adapters/session"
	"github.com/wrpfuk/records/internal/domain/display"
	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/reduce"
	"github.com/wrpfuk/records/internal/domain/view"
	"github.com/wrpfuk/records/pkg/logger"
	"github.com/wrpfuk/records/pkg/metrics"
)

// Service answers record queries against the current dataset snapshot.
type Service struct {
	mu sync.RWMutex

	// Core components
	store    *dataset.Store
	sessions *session.Store

	// Configuration
	datasetPath    string
	reloadInterval time.Duration
	maxSessions    int
	maxExportRows  int
	systemMetrics  bool

	// State
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasetPath sets the CSV file to serve.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.datasetPath = path
		}
	}
}

// WithReloadInterval enables polling the dataset for changes.
func WithReloadInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.reloadInterval = interval
	}
}

// WithMaxSessions bounds the session store. Zero or less means unbounded.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		s.maxSessions = n
	}
}

// WithMaxExportRows limits export size. Zero or less means unlimited.
func WithMaxExportRows(n int) Option {
	return func(s *Service) {
		s.maxExportRows = n
	}
}

// WithSystemMetrics toggles the background runtime metrics sampler.
func WithSystemMetrics(enabled bool) Option {
	return func(s *Service) {
		s.systemMetrics = enabled
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		datasetPath:   "Records Master Sheet.csv",
		maxSessions:   10_000,
		maxExportRows: 100_000,
		systemMetrics: true,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = dataset.NewStore(s.datasetPath,
		dataset.WithReloadInterval(s.reloadInterval),
		dataset.WithLogger(s.logger.Named("dataset")),
	)
	s.sessions = session.NewStore(session.WithMaxSessions(s.maxSessions))
	return s
}

// Start loads the dataset and starts the background reloader. A failed
// first load is returned and leaves the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting records service...", logger.String("dataset", s.datasetPath))

	if _, err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("initial dataset load: %w", err)
	}

	bg, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.store.Start(bg)
	if s.systemMetrics {
		m := metrics.Global()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			m.RunSystemCollector(bg)
		}()
	}

	s.started = true
	s.logger.Info(ctx, "records service started",
		logger.Duration("reloadInterval", s.reloadInterval),
		logger.Int("maxSessions", s.maxSessions),
		logger.Int("maxExportRows", s.maxExportRows),
	)
	return nil
}

// Stop shuts down background work.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping records service...")
	s.cancel()
	_ = s.store.Close()
	s.wg.Wait()

	s.started = false
	s.logger.Info(context.Background(), "records service stopped")
}

// Query filters, narrows and reduces the current snapshot. In search mode
// every match is returned in dataset order.
func (s *Service) Query(ctx context.Context, c filter.Criteria, k view.Kind) (display.Result, error) {
	if k == view.LocationCounts {
		return display.Result{}, fmt.Errorf("%w: %s", ErrAggregateView, k)
	}
	start := time.Now()
	records, err := s.store.Records()
	if err != nil {
		return display.Result{}, err
	}

	c = c.Normalized()
	resolved := filter.Resolve(records, c)
	selected := view.Select(k, resolved.Records)

	res := display.Result{
		Mode:            display.ModeSearch,
		View:            string(k),
		FiltersBypassed: resolved.FiltersBypassed,
		Title:           display.Title(c.SearchMode(), c),
		Stale:           s.store.Status().Stale,
	}
	if !c.SearchMode() {
		res.Mode = display.ModeStructured
		selected = reduce.BestPerClassAndLift(selected)
	}
	if res.FiltersBypassed {
		res.Notice = display.BypassNotice
	}
	res.Rows = display.FromRecords(selected)
	res.Count = len(res.Rows)

	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordQuery(res.Mode, res.View, ms, res.Count)
	s.logger.Debug(ctx, "query served",
		logger.String("mode", res.Mode),
		logger.String("view", res.View),
		logger.Int("rows", res.Count),
	)
	return res, nil
}

// Locations counts the matching records per event location.
func (s *Service) Locations(ctx context.Context, c filter.Criteria) ([]view.LocationCount, error) {
	start := time.Now()
	records, err := s.store.Records()
	if err != nil {
		return nil, err
	}
	c = c.Normalized()
	counts := view.CountLocations(filter.Resolve(records, c).Records)

	mode := display.ModeStructured
	if c.SearchMode() {
		mode = display.ModeSearch
	}
	metrics.RecordQuery(mode, string(view.LocationCounts), float64(time.Since(start).Microseconds())/1000, len(counts))
	return counts, nil
}

// Options returns the selectable filter values for the current snapshot.
func (s *Service) Options(_ context.Context) (filter.Options, error) {
	records, err := s.store.Records()
	if err != nil {
		return filter.Options{}, err
	}
	return filter.BuildOptions(records), nil
}

// Export runs a query and writes the rows to w in format f.
func (s *Service) Export(ctx context.Context, w io.Writer, c filter.Criteria, k view.Kind, f export.Format) error {
	res, err := s.Query(ctx, c, k)
	if err != nil {
		return err
	}
	if s.maxExportRows > 0 && res.Count > s.maxExportRows {
		return fmt.Errorf("%w: %d rows, limit %d", ErrExportTooLarge, res.Count, s.maxExportRows)
	}
	return export.Write(ctx, w, f, res.Title, res.Rows)
}

// CreateSession starts a session with default criteria.
func (s *Service) CreateSession(ctx context.Context) session.Session {
	return s.sessions.Create(ctx)
}

// GetSession returns a session by id.
func (s *Service) GetSession(ctx context.Context, id string) (session.Session, error) {
	return s.sessions.Get(ctx, id)
}

// UpdateSession replaces a session's criteria.
func (s *Service) UpdateSession(ctx context.Context, id string, c filter.Criteria) (session.Session, error) {
	return s.sessions.Update(ctx, id, c)
}

// ResetSession restores a session's default criteria.
func (s *Service) ResetSession(ctx context.Context, id string) (session.Session, error) {
	return s.sessions.Reset(ctx, id)
}

// DeleteSession removes a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// Reload loads the dataset now. On failure the previous snapshot keeps
// serving and the returned status carries the error.
func (s *Service) Reload(ctx context.Context) (dataset.Status, error) {
	_, err := s.store.Load(ctx)
	return s.store.Status(), err
}

// Status reports the dataset snapshot state.
func (s *Service) Status() dataset.Status {
	return s.store.Status()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.Len()
	metrics.UpdateSessionsActive(sessions)

	return map[string]interface{}{
		"started":        s.started,
		"dataset":        s.store.Status(),
		"sessions":       sessions,
		"maxSessions":    s.maxSessions,
		"maxExportRows":  s.maxExportRows,
		"reloadInterval": s.reloadInterval.String(),
	}
}
