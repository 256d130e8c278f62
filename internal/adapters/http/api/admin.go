package api

import (
	"net/http"

	"github.com/wrpfuk/records/internal/adapters/dataset"
)

// AdminHandler handles operator requests.
type AdminHandler struct {
	deps AdminDependencies
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(deps AdminDependencies) *AdminHandler {
	return &AdminHandler{deps: deps}
}

type reloadResponse struct {
	Reloaded bool           `json:"reloaded"`
	Dataset  dataset.Status `json:"dataset"`
}

// HandleReload handles POST /admin/reload requests. A failed reload
// answers 500 and the previous snapshot keeps serving.
func (h *AdminHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	st, err := h.deps.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reload_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{Reloaded: true, Dataset: st})
}
