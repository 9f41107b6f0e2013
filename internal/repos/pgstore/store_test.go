package pgstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/betroyal/internal/infra/pgtestutil"
	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

func TestStore_WithinTx_RollsBackAllRepos(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	store := New(db, 5000)

	u, err := store.Users().Create(ctx, users.NewUser{Username: "alice", PasswordHash: "h", Email: "alice@example.com"})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.WithinTx(ctx, func(tx repos.Tx) error {
		_, err := tx.Users().IncreaseBalance(ctx, u.ID, 1000)
		require.NoError(t, err)

		_, err = tx.Transactions().Append(ctx, transactions.NewTransaction{
			UserID: u.ID, Amount: 1000, Type: transactions.KindDeposit,
		})
		require.NoError(t, err)

		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), got.Balance)

	log, err := store.Transactions().ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, log)
}

func TestStore_WithinTx_Commits(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	store := New(db, 5000)

	u, err := store.Users().Create(ctx, users.NewUser{Username: "bob", PasswordHash: "h", Email: "bob@example.com"})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(tx repos.Tx) error {
		_, err := tx.Users().DecreaseBalance(ctx, u.ID, 200)
		if err != nil {
			return err
		}

		_, err = tx.Transactions().Append(ctx, transactions.NewTransaction{
			UserID: u.ID, Amount: 200, Type: transactions.KindWithdrawal,
		})
		return err
	})
	require.NoError(t, err)

	got, err := store.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4800), got.Balance)
}
