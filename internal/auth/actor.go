package auth

import (
	"context"
	"time"

	"github.com/fastprodman/betroyal/internal/repos/users"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID    int64
	Username  string
	Role      users.Role
	TokenID   string
	ExpiresAt time.Time
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == users.RoleAdmin
}

type ctxKey struct{}

func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns nil for anonymous requests.
func FromContext(ctx context.Context) *Actor {
	a, _ := ctx.Value(ctxKey{}).(*Actor)
	return a
}
