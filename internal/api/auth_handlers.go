package api

import (
	"net/http"
	"time"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/repos/users"
	"github.com/fastprodman/betroyal/internal/services/accounts"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	users.User
	Token string `json:"token"`
}

func (h *HandlerProvider) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *HandlerProvider) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// RegisterHandler handles POST /api/register
func (h *HandlerProvider) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req accounts.Registration
	if !decodeJSON(w, r, &req) {
		return
	}

	u, token, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, sessionResponse{User: u, Token: token})
}

// LoginHandler handles POST /api/login
func (h *HandlerProvider) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, token, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Token: token})
}

// LogoutHandler handles POST /api/logout
func (h *HandlerProvider) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.accounts.Logout(auth.FromContext(r.Context()))
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CurrentUserHandler handles GET /api/user
func (h *HandlerProvider) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, u)
}
