package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/repos/users"
	"github.com/fastprodman/betroyal/internal/services/accounts"
)

type ctxKey int

const (
	ctxUser ctxKey = iota
	ctxAuthErr
)

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		entry := log.WithFields(log.Fields{
			"request_id":  middleware.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		switch {
		case ww.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case strings.HasPrefix(r.URL.Path, "/healthz"):
			entry.Debug("request")
		default:
			entry.Info("request")
		}
	})
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(sessionCookie)
	if err == nil && c.Value != "" {
		return c.Value
	}

	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}

	return ""
}

// session resolves the caller, if any, and attaches the actor and account to
// the request context. It never rejects a request by itself.
func (h *HandlerProvider) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		actor, u, err := h.accounts.Authenticate(ctx, token)
		if err != nil {
			ctx = context.WithValue(ctx, ctxAuthErr, err)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		ctx = auth.WithActor(ctx, actor)
		ctx = context.WithValue(ctx, ctxUser, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(ctx context.Context) *users.User {
	u, _ := ctx.Value(ctxUser).(*users.User)
	return u
}

func requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.FromContext(r.Context()) == nil {
			authErr, _ := r.Context().Value(ctxAuthErr).(error)
			if errors.Is(authErr, accounts.ErrAccountDisabled) {
				writeError(w, http.StatusForbidden, "Account is disabled")
				return
			}

			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAdmin must run after requireSession.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.FromContext(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
