package memstore

import (
	"context"
	"time"

	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

type transactionsRepo struct{ sc *scope }

func (r transactionsRepo) Append(ctx context.Context, nt transactions.NewTransaction) (transactions.Transaction, error) {
	var out transactions.Transaction

	err := r.sc.run(ctx, func(st *state) error {
		status := nt.Status
		if status == "" {
			status = transactions.StatusCompleted
		}

		out = transactions.Transaction{
			ID:        int64(len(st.log)) + 1,
			UserID:    nt.UserID,
			Amount:    nt.Amount,
			Type:      nt.Type,
			Method:    nt.Method,
			Status:    status,
			CreatedAt: r.sc.store.now().UTC(),
		}
		st.log = append(st.log, out)

		n := len(st.log) - 1
		r.sc.record(func() { st.log = st.log[:n] })

		return nil
	})

	return out, err
}

func (r transactionsRepo) Get(ctx context.Context, id int64) (*transactions.Transaction, error) {
	var out *transactions.Transaction

	err := r.sc.run(ctx, func(st *state) error {
		if id < 1 || id > int64(len(st.log)) {
			return nil
		}
		t := st.log[id-1]
		out = &t
		return nil
	})

	return out, err
}

func (r transactionsRepo) ListAll(ctx context.Context) ([]transactions.Transaction, error) {
	return r.filter(ctx, func(transactions.Transaction) bool { return true })
}

func (r transactionsRepo) ListForUser(ctx context.Context, userID int64) ([]transactions.Transaction, error) {
	return r.filter(ctx, func(t transactions.Transaction) bool { return t.UserID == userID })
}

func (r transactionsRepo) ListPendingBefore(ctx context.Context, kind transactions.Kind, cutoff time.Time) ([]transactions.Transaction, error) {
	return r.filter(ctx, func(t transactions.Transaction) bool {
		return t.Status == transactions.StatusPending && t.Type == kind && t.CreatedAt.Before(cutoff)
	})
}

func (r transactionsRepo) TransitionStatus(ctx context.Context, id int64, from, to transactions.Status) (transactions.Transaction, error) {
	var out transactions.Transaction

	err := r.sc.run(ctx, func(st *state) error {
		if id < 1 || id > int64(len(st.log)) {
			return transactions.ErrTransactionNotFound
		}

		i := id - 1
		if st.log[i].Status != from {
			return transactions.ErrStatusConflict
		}

		st.log[i].Status = to
		r.sc.record(func() { st.log[i].Status = from })

		out = st.log[i]
		return nil
	})

	return out, err
}

func (r transactionsRepo) filter(ctx context.Context, keep func(transactions.Transaction) bool) ([]transactions.Transaction, error) {
	var out []transactions.Transaction

	err := r.sc.run(ctx, func(st *state) error {
		out = make([]transactions.Transaction, 0)
		for _, t := range st.log {
			if keep(t) {
				out = append(out, t)
			}
		}
		return nil
	})

	return out, err
}
