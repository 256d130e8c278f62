package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/wrpfuk/records/internal/adapters/export"
	"github.com/wrpfuk/records/internal/domain/filter"
	"github.com/wrpfuk/records/internal/domain/view"
)

// StaleHeader marks exports built from a snapshot whose reload failed.
const StaleHeader = "X-Dataset-Stale"

// RecordsHandler serves record queries, exports, location counts and
// filter options.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleRecords handles GET /records requests.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	serveQuery(w, r, h.deps, criteriaFromQuery(r.URL.Query()))
}

// serveQuery answers a record query for c with the view named in the
// request. It backs both /records and /sessions/{id}/records.
func serveQuery(w http.ResponseWriter, r *http.Request, deps RecordsDependencies, c filter.Criteria) {
	k, err := parseRowView(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	res, err := deps.Query(r.Context(), c, k)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleExport handles GET /records/export requests. The whole file is
// encoded before anything is written so failures still get a JSON error.
func (h *RecordsHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	k, err := parseRowView(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeServiceError(w, WrapKind("export", ErrBadRequest, err))
		return
	}

	var buf bytes.Buffer
	if err := h.deps.Export(r.Context(), &buf, criteriaFromQuery(r.URL.Query()), k, f); err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename()+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if h.deps.Status().Stale {
		w.Header().Set(StaleHeader, "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type locationsResponse struct {
	Count     int                  `json:"count"`
	Stale     bool                 `json:"stale"`
	Locations []view.LocationCount `json:"locations"`
}

// HandleLocations handles GET /locations requests.
func (h *RecordsHandler) HandleLocations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	counts, err := h.deps.Locations(r.Context(), criteriaFromQuery(r.URL.Query()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, locationsResponse{
		Count:     len(counts),
		Stale:     h.deps.Status().Stale,
		Locations: counts,
	})
}

// HandleOptions handles GET /options requests. Every list starts with All.
func (h *RecordsHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	opts, err := h.deps.Options(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filter.Options{
		Sex:           withAll(opts.Sex),
		Division:      withAll(opts.Division),
		TestingStatus: withAll(opts.TestingStatus),
		Equipment:     withAll(opts.Equipment),
		WeightClass:   withAll(opts.WeightClass),
	})
}

func withAll(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, filter.All)
	return append(out, values...)
}

// parseRowView reads the view parameter. Location counts have their own
// endpoint and are rejected here.
func parseRowView(r *http.Request) (view.Kind, error) {
	k, err := view.Parse(r.URL.Query().Get("view"))
	if err != nil {
		return "", WrapKind("view", ErrBadRequest, err)
	}
	if k == view.LocationCounts {
		return "", NewKind("view "+string(k)+" is served by /locations", ErrBadRequest)
	}
	return k, nil
}
