// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/wrpfuk/records/internal/adapters/dataset"
	"github.com/wrpfuk/records/internal/adapters/export"
	"github.com/wrpfuk/records/internal/adapters/session"
	service "github.com/wrpfuk/records/internal/app"
	"github.com/wrpfuk/records/internal/domain/display"
	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/view"
)

// RecordsDependencies answers record queries.
type RecordsDependencies interface {
	StatusProvider
	Query(ctx context.Context, c filter.Criteria, k view.Kind) (display.Result, error)
	Locations(ctx context.Context, c filter.Criteria) ([]view.LocationCount, error)
	Options(ctx context.Context) (filter.Options, error)
	Export(ctx context.Context, w io.Writer, c filter.Criteria, k view.Kind, f export.Format) error
}

// SessionDependencies manages per-user criteria.
type SessionDependencies interface {
	CreateSession(ctx context.Context) session.Session
	GetSession(ctx context.Context, id string) (session.Session, error)
	UpdateSession(ctx context.Context, id string, c filter.Criteria) (session.Session, error)
	ResetSession(ctx context.Context, id string) (session.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// AdminDependencies exposes dataset control.
type AdminDependencies interface {
	StatusProvider
	Reload(ctx context.Context) (dataset.Status, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecordsDependencies
	SessionDependencies
	AdminDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	recordsHandler  *RecordsHandler
	sessionsHandler *SessionsHandler
	adminHandler    *AdminHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(deps),
		statsHandler:    NewStatsHandler(statsProvider),
		recordsHandler:  NewRecordsHandler(deps),
		sessionsHandler: NewSessionsHandler(deps, deps),
		adminHandler:    NewAdminHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/options", MetricsMiddleware(s.recordsHandler.HandleOptions, "options"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandleRecords, "records"))
	mux.HandleFunc("/records/export", MetricsMiddleware(s.recordsHandler.HandleExport, "export"))
	mux.HandleFunc("/locations", MetricsMiddleware(s.recordsHandler.HandleLocations, "locations"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSession, "session"))
	mux.HandleFunc("/admin/reload", MetricsMiddleware(s.adminHandler.HandleReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and adapter errors to a status code.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dataset.ErrNotLoaded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	case errors.Is(err, session.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, view.ErrUnknownView),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, service.ErrAggregateView),
		errors.Is(err, service.ErrExportTooLarge):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// criteriaFromQuery reads filter criteria from query parameters. Missing
// parameters mean All. "class" is accepted for weight_class and "testing"
// for testing_status.
func criteriaFromQuery(q url.Values) filter.Criteria {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := q.Get(k); v != "" {
				return v
			}
		}
		return ""
	}
	return filter.Criteria{
		Sex:           first("sex"),
		Division:      first("division"),
		TestingStatus: first("testing", "testing_status"),
		Equipment:     first("equipment"),
		WeightClass:   first("weight_class", "class"),
		Search:        q.Get("search"),
	}.Normalized()
}
