package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/betroyal/internal/repos/users"
)

func TestIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("secret", time.Hour)
	u := users.User{ID: 7, Username: "alice", Role: users.RoleAdmin}

	token, issued, err := iss.Issue(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsAdmin())
	assert.Equal(t, issued.TokenID, got.TokenID)
	assert.True(t, issued.ExpiresAt.Equal(got.ExpiresAt))
}

func TestIssuer_Parse_Rejects(t *testing.T) {
	t.Parallel()

	u := users.User{ID: 1, Username: "bob", Role: users.RoleUser}

	good := NewIssuer("secret", time.Hour)
	token, _, err := good.Issue(u)
	require.NoError(t, err)

	expired := NewIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	oldToken, _, err := expired.Issue(u)
	require.NoError(t, err)

	tests := []struct {
		name   string
		issuer *Issuer
		token  string
	}{
		{name: "garbage", issuer: good, token: "not-a-jwt"},
		{name: "wrong_secret", issuer: NewIssuer("other", time.Hour), token: token},
		{name: "expired", issuer: good, token: oldToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := tt.issuer.Parse(tt.token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRevocations(t *testing.T) {
	t.Parallel()

	now := time.Now()
	r := NewRevocations()
	r.Revoke("a", now.Add(-time.Minute))
	r.Revoke("b", now.Add(time.Hour))

	assert.True(t, r.IsRevoked("a"))
	assert.True(t, r.IsRevoked("b"))
	assert.False(t, r.IsRevoked("c"))

	assert.Equal(t, 1, r.Purge(now))
	assert.False(t, r.IsRevoked("a"))
	assert.True(t, r.IsRevoked("b"))
}

func TestActorContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromContext(context.Background()))

	a := &Actor{UserID: 3}
	assert.Same(t, a, FromContext(WithActor(context.Background(), a)))

	var anon *Actor
	assert.False(t, anon.IsAdmin())
}
