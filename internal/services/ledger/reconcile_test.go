package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/betroyal/internal/repos/memstore"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

func TestPendingDeposit_Approve(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	svc, store, actor := setup(t, 5000)

	pending, err := svc.CreateTransaction(ctx, actor, Request{Amount: 1500, Type: transactions.KindDeposit, Status: transactions.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusPending, pending.Status)

	bal, err := svc.Balance(ctx, actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal)

	approved, err := svc.ApproveDeposit(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusCompleted, approved.Status)

	bal, err = svc.Balance(ctx, actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), bal)

	_, err = svc.ApproveDeposit(ctx, pending.ID)
	require.ErrorIs(t, err, transactions.ErrStatusConflict)

	bal, err = svc.Balance(ctx, actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(6500), bal)

	checkInvariant(t, store, actor.UserID, 5000)
}

func TestPendingDeposit_RejectAndErrors(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	svc, store, actor := setup(t, 5000)

	pending, err := svc.CreateTransaction(ctx, actor, Request{Amount: 1500, Type: transactions.KindDeposit, Status: transactions.StatusPending})
	require.NoError(t, err)

	rejected, err := svc.RejectDeposit(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusFailed, rejected.Status)

	_, err = svc.ApproveDeposit(ctx, pending.ID)
	require.ErrorIs(t, err, transactions.ErrStatusConflict)

	loss, err := svc.CreateTransaction(ctx, actor, Request{Amount: 10, Type: transactions.KindLoss})
	require.NoError(t, err)
	_, err = svc.RejectDeposit(ctx, loss.ID)
	require.ErrorIs(t, err, ErrNotDeposit)

	_, err = svc.ApproveDeposit(ctx, 999)
	require.ErrorIs(t, err, transactions.ErrTransactionNotFound)

	checkInvariant(t, store, actor.UserID, 5000)
}

func TestExpirePendingDeposits(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	clock := start

	store := memstore.New(5000, memstore.WithClock(func() time.Time { return clock }))
	u, err := store.Users().Create(ctx, users.NewUser{Username: "p", PasswordHash: "h", Email: "p@example.com"})
	require.NoError(t, err)

	svc := New(store, testCfg, WithClock(func() time.Time { return clock }))

	_, err = store.Transactions().Append(ctx, transactions.NewTransaction{UserID: u.ID, Amount: 500, Type: transactions.KindDeposit, Status: transactions.StatusPending})
	require.NoError(t, err)

	clock = start.Add(48 * time.Hour)
	fresh, err := store.Transactions().Append(ctx, transactions.NewTransaction{UserID: u.ID, Amount: 700, Type: transactions.KindDeposit, Status: transactions.StatusPending})
	require.NoError(t, err)

	clock = start.Add(73 * time.Hour)
	n, err := svc.ExpirePendingDeposits(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := store.Transactions().ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, transactions.StatusFailed, all[0].Status)
	assert.Equal(t, transactions.StatusPending, all[1].Status)

	n, err = svc.ExpirePendingDeposits(ctx, 72*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.ApproveDeposit(ctx, fresh.ID)
	require.NoError(t, err)
	checkInvariant(t, store, u.ID, 5000)
}
