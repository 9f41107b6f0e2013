package api

import (
	"net/http"

	"github.com/fastprodman/betroyal/internal/services/catalog"
)

// ListGamesHandler handles GET /api/games
func (h *HandlerProvider) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GetGameHandler handles GET /api/games/{id}
func (h *HandlerProvider) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	g, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// CreateGameHandler handles POST /api/admin/games
func (h *HandlerProvider) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var req catalog.GameInput
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.catalog.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, g)
}

// UpdateGameHandler handles PATCH /api/admin/games/{id}
func (h *HandlerProvider) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	var req catalog.GamePatch
	if !decodeJSON(w, r, &req) {
		return
	}

	g, err := h.catalog.Update(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, g)
}

// DeleteGameHandler handles DELETE /api/admin/games/{id}
func (h *HandlerProvider) DeleteGameHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid game id")
		return
	}

	err = h.catalog.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
