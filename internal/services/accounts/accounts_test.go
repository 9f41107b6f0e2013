package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos/memstore"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

func newService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()

	store := memstore.New(5000)
	svc := New(store, auth.NewIssuer("test-secret", time.Hour), auth.NewRevocations(), WithBcryptCost(bcrypt.MinCost))

	return svc, store
}

func validRegistration(name string) Registration {
	return Registration{Username: name, Password: "secret1", Email: name + "@example.com"}
}

func TestRegister_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        Registration
		wantErr   error
		wantField string
	}{
		{name: "ok", in: validRegistration("alice")},
		{name: "short_username", in: Registration{Username: "al", Password: "secret1", Email: "al@example.com"}, wantField: "username"},
		{name: "short_password", in: Registration{Username: "bobby", Password: "123", Email: "bob@example.com"}, wantField: "password"},
		{name: "password_over_72_bytes", in: Registration{Username: "bobby", Password: strings.Repeat("é", 40), Email: "bob@example.com"}, wantField: "password"},
		{name: "password_72_bytes", in: Registration{Username: "bobby", Password: strings.Repeat("é", 36), Email: "bob@example.com"}},
		{name: "bad_email", in: Registration{Username: "bobby", Password: "secret1", Email: "bob"}, wantField: "email"},
		{name: "duplicate_username", in: Registration{Username: "TAKEN", Password: "secret1", Email: "new@example.com"}, wantErr: users.ErrDuplicateUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, store := newService(t)
			_, _, err := svc.Register(t.Context(), validRegistration("taken"))
			require.NoError(t, err)

			u, token, err := svc.Register(t.Context(), tt.in)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				all, err := store.Users().List(t.Context())
				require.NoError(t, err)
				assert.Len(t, all, 1)
			case tt.wantField != "":
				var verr *validation.Error
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, token)
				assert.Equal(t, int64(5000), u.Balance)
				assert.NotEqual(t, "secret1", u.PasswordHash)
			}
		})
	}
}

func TestLogin_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
		disable  bool
		wantErr  error
	}{
		{name: "ok", username: "alice", password: "secret1"},
		{name: "case_insensitive_username", username: "ALICE", password: "secret1"},
		{name: "wrong_password", username: "alice", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown_user", username: "nobody", password: "secret1", wantErr: ErrInvalidCredentials},
		{name: "disabled", username: "alice", password: "secret1", disable: true, wantErr: ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, _ := newService(t)
			u, _, err := svc.Register(t.Context(), validRegistration("alice"))
			require.NoError(t, err)

			if tt.disable {
				_, err = svc.SetActive(t.Context(), u.ID, false)
				require.NoError(t, err)
			}

			got, token, err := svc.Login(t.Context(), tt.username, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, u.ID, got.ID)
			assert.NotEmpty(t, token)
		})
	}
}

func TestAuthenticate_Lifecycle(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	svc, _ := newService(t)

	u, token, err := svc.Register(ctx, validRegistration("alice"))
	require.NoError(t, err)

	actor, current, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.UserID)
	assert.Equal(t, u.ID, current.ID)
	assert.False(t, actor.IsAdmin())

	// Role changes apply to live sessions.
	_, err = svc.EnsureAdmin(ctx, "alice", "alice@example.com", "ignored")
	require.NoError(t, err)
	actor, _, err = svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())

	_, err = svc.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	_, _, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrAccountDisabled)

	_, err = svc.SetActive(ctx, u.ID, true)
	require.NoError(t, err)

	svc.Logout(actor)
	_, _, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, auth.ErrTokenRevoked)

	assert.Equal(t, 0, svc.PurgeRevoked(time.Now()))
	assert.Equal(t, 1, svc.PurgeRevoked(time.Now().Add(2*time.Hour)))
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newService(t)

	first, err := svc.EnsureAdmin(ctx, "admin", "admin@betroyal.com", "admin123")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin())

	second, err := svc.EnsureAdmin(ctx, "admin", "admin@betroyal.com", "changed")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := store.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, _, err = svc.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
}

func TestSetActive_Missing(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	_, err := svc.SetActive(t.Context(), 42, false)
	require.ErrorIs(t, err, users.ErrUserNotFound)

	_, err = svc.Get(t.Context(), 42)
	require.ErrorIs(t, err, users.ErrUserNotFound)
}
