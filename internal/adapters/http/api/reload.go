package api

import (
	"net/http"
	"time"
)

// ReloadHandler handles reload requests.
type ReloadHandler struct {
	deps Dependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

type reloadResponse struct {
	Version   uint64 `json:"version"`
	LoadedAt  string `json:"loaded_at"`
	Laureates int    `json:"laureates"`
	PrizeRows int    `json:"prize_rows"`
}

// HandleReload handles POST /api/reload. A failed reload answers 422 and
// leaves the served snapshot unchanged.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := h.deps.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "reload_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, reloadResponse{
		Version:   snap.Version,
		LoadedAt:  snap.LoadedAt.UTC().Format(time.RFC3339),
		Laureates: len(snap.Dataset.Laureates),
		PrizeRows: len(snap.Dataset.Rows),
	})
}
