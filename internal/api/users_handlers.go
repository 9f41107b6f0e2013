package api

import (
	"net/http"

	"github.com/fastprodman/betroyal/internal/infra/validation"
)

type updateUserRequest struct {
	IsActive *bool `json:"isActive"`
}

// ListUsersHandler handles GET /api/admin/users
func (h *HandlerProvider) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.accounts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// UpdateUserHandler handles PATCH /api/admin/users/{id}
func (h *HandlerProvider) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsActive == nil {
		writeServiceError(w, r, validation.Field("isActive", "is required"))
		return
	}

	u, err := h.accounts.SetActive(r.Context(), id, *req.IsActive)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}
