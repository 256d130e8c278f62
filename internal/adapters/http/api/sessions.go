package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wrpfuk/records/internal/domain/filter"
)

// maxCriteriaBody bounds PUT /sessions/{id} request bodies.
const maxCriteriaBody = 64 << 10

// SessionsHandler handles session routes.
type SessionsHandler struct {
	deps    SessionDependencies
	records RecordsDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies, records RecordsDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps, records: records}
}

// HandleCreate handles POST /sessions requests.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusCreated, h.deps.CreateSession(r.Context()))
}

// HandleSession handles the /sessions/{id} subtree:
//
//	GET    /sessions/{id}          read criteria
//	PUT    /sessions/{id}          replace criteria
//	DELETE /sessions/{id}          delete
//	POST   /sessions/{id}/reset    restore defaults
//	GET    /sessions/{id}/records  query with the session's criteria
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	id, action, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/sessions/"), "/")
	if id == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case action == "" && r.Method == http.MethodPut:
		h.update(w, r, id)
	case action == "" && r.Method == http.MethodDelete:
		h.delete(w, r, id)
	case action == "reset" && r.Method == http.MethodPost:
		h.reset(w, r, id)
	case action == "records" && r.Method == http.MethodGet:
		h.query(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.deps.GetSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionsHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var c filter.Criteria
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCriteriaBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		writeServiceError(w, WrapKind("decode criteria", ErrBadRequest, err))
		return
	}
	s, err := h.deps.UpdateSession(r.Context(), id, c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionsHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.deps.DeleteSession(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionsHandler) reset(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.deps.ResetSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SessionsHandler) query(w http.ResponseWriter, r *http.Request, id string) {
	s, err := h.deps.GetSession(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	serveQuery(w, r, h.records, s.Criteria)
}
