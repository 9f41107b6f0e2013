package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter constructs the chi router with all API endpoints registered.
func NewRouter(d Deps) http.Handler {
	h := NewHandler(d)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if c := corsMiddleware(d.CORSOrigins); c != nil {
		r.Use(c)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.session)

		r.Post("/register", h.RegisterHandler)
		r.Post("/login", h.LoginHandler)

		r.Get("/games", h.ListGamesHandler)
		r.Get("/games/{id}", h.GetGameHandler)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Post("/logout", h.LogoutHandler)
			r.Get("/user", h.CurrentUserHandler)

			r.Post("/transactions", h.CreateTransactionHandler)
			r.Get("/transactions", h.ListOwnTransactionsHandler)
			r.Post("/game-result", h.GameResultHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession)
			r.Use(requireAdmin)

			r.Get("/users", h.ListUsersHandler)
			r.Patch("/users/{id}", h.UpdateUserHandler)

			r.Post("/games", h.CreateGameHandler)
			r.Patch("/games/{id}", h.UpdateGameHandler)
			r.Delete("/games/{id}", h.DeleteGameHandler)

			r.Get("/transactions", h.ListAllTransactionsHandler)
			r.Post("/transactions/{id}/approve", h.ApproveDepositHandler)
			r.Post("/transactions/{id}/reject", h.RejectDepositHandler)
		})
	})

	return r
}

// corsMiddleware allows the listed origins. Without origins only same-origin
// requests work. Cookies are only shared with explicitly listed origins, never
// with a wildcard.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			wildcard = true
		}
		allowed = append(allowed, o)
	}
	if len(allowed) == 0 {
		return nil
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}
