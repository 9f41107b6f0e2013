package transactions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/betroyal/internal/infra/pgtestutil"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

func seedUser(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(`
		INSERT INTO users (username, password, email)
		VALUES ($1, 'hash', $1 || '@example.com')
		RETURNING id
	`, name).Scan(&id)
	require.NoError(t, err)

	return id
}

func TestTransactions_AppendAndList(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	repo := New(db)

	card := "card"
	in := []transactions.NewTransaction{
		{UserID: alice, Amount: 1000, Type: transactions.KindDeposit, Method: &card},
		{UserID: bob, Amount: 50, Type: transactions.KindLoss},
		{UserID: alice, Amount: 200, Type: transactions.KindWithdrawal},
	}
	appended := make([]transactions.Transaction, 0, len(in))
	for _, nt := range in {
		got, err := repo.Append(ctx, nt)
		require.NoError(t, err)
		assert.Equal(t, transactions.StatusCompleted, got.Status)
		assert.False(t, got.CreatedAt.IsZero())
		appended = append(appended, got)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, appended, all)
	for i, nt := range in {
		assert.Equal(t, nt.UserID, all[i].UserID)
		assert.Equal(t, nt.Amount, all[i].Amount)
		assert.Equal(t, nt.Type, all[i].Type)
	}
	require.NotNil(t, all[0].Method)
	assert.Equal(t, "card", *all[0].Method)
	assert.Nil(t, all[1].Method)

	mine, err := repo.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, all[0], mine[0])
	assert.Equal(t, all[2], mine[1])

	none, err := repo.ListForUser(ctx, 999_999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransactions_TransitionStatus_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    transactions.Status
		to      transactions.Status
		missing bool
		wantErr error
	}{
		{name: "pending_to_completed", from: transactions.StatusPending, to: transactions.StatusCompleted},
		{name: "pending_to_failed", from: transactions.StatusPending, to: transactions.StatusFailed},
		{name: "stale_from", from: transactions.StatusCompleted, to: transactions.StatusFailed, wantErr: transactions.ErrStatusConflict},
		{name: "missing", missing: true, from: transactions.StatusPending, to: transactions.StatusCompleted, wantErr: transactions.ErrTransactionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			repo := New(db)
			uid := seedUser(t, db, "player")

			pending, err := repo.Append(ctx, transactions.NewTransaction{
				UserID: uid, Amount: 500, Type: transactions.KindDeposit, Status: transactions.StatusPending,
			})
			require.NoError(t, err)

			id := pending.ID
			if tt.missing {
				id = 999_999
			}

			got, err := repo.TransitionStatus(ctx, id, tt.from, tt.to)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)

			stored, err := repo.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, tt.to, stored.Status)
		})
	}
}

func TestTransactions_ListPendingBefore(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	repo := New(db)
	uid := seedUser(t, db, "player")

	old, err := repo.Append(ctx, transactions.NewTransaction{
		UserID: uid, Amount: 500, Type: transactions.KindDeposit, Status: transactions.StatusPending,
	})
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `UPDATE transactions SET created_at = now() - interval '4 days' WHERE id = $1`, old.ID)
	require.NoError(t, err)

	_, err = repo.Append(ctx, transactions.NewTransaction{
		UserID: uid, Amount: 700, Type: transactions.KindDeposit, Status: transactions.StatusPending,
	})
	require.NoError(t, err)

	_, err = repo.Append(ctx, transactions.NewTransaction{
		UserID: uid, Amount: 100, Type: transactions.KindWithdrawal,
	})
	require.NoError(t, err)

	got, err := repo.ListPendingBefore(ctx, transactions.KindDeposit, time.Now().Add(-72*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, old.ID, got[0].ID)
}
