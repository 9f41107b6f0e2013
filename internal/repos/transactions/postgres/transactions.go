package transactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
)

var _ transactions.Transactions = (*transactionsRepo)(nil)

const txColumns = `id, user_id, amount, type, method, status, created_at`

type transactionsRepo struct{ q pgutils.Querier }

func New(q pgutils.Querier) *transactionsRepo {
	return &transactionsRepo{q: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (transactions.Transaction, error) {
	var (
		t      transactions.Transaction
		kind   string
		status string
		method sql.NullString
	)

	err := row.Scan(&t.ID, &t.UserID, &t.Amount, &kind, &method, &status, &t.CreatedAt)
	if err != nil {
		return transactions.Transaction{}, err
	}

	t.Type = transactions.Kind(kind)
	t.Status = transactions.Status(status)
	if method.Valid {
		t.Method = &method.String
	}

	return t, nil
}

func (r *transactionsRepo) Append(ctx context.Context, nt transactions.NewTransaction) (transactions.Transaction, error) {
	status := nt.Status
	if status == "" {
		status = transactions.StatusCompleted
	}

	row := r.q.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, amount, type, method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+txColumns,
		nt.UserID, nt.Amount, string(nt.Type), nt.Method, string(status),
	)

	t, err := scanTransaction(row)
	if err != nil {
		return transactions.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return t, nil
}

func (r *transactionsRepo) Get(ctx context.Context, id int64) (*transactions.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE id = $1
	`, id)

	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("get transaction: %w", err)
	}

	return &t, nil
}

func (r *transactionsRepo) ListAll(ctx context.Context) ([]transactions.Transaction, error) {
	return r.list(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		ORDER BY id
	`)
}

func (r *transactionsRepo) ListForUser(ctx context.Context, userID int64) ([]transactions.Transaction, error) {
	return r.list(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY id
	`, userID)
}

func (r *transactionsRepo) ListPendingBefore(ctx context.Context, kind transactions.Kind, cutoff time.Time) ([]transactions.Transaction, error) {
	return r.list(ctx, `
		SELECT `+txColumns+`
		FROM transactions
		WHERE status = 'pending'
		  AND type = $1
		  AND created_at < $2
		ORDER BY id
	`, string(kind), cutoff)
}

func (r *transactionsRepo) TransitionStatus(ctx context.Context, id int64, from, to transactions.Status) (transactions.Transaction, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE transactions
		SET status = $3
		WHERE id = $1
		  AND status = $2
		RETURNING `+txColumns,
		id, string(from), string(to),
	)

	t, err := scanTransaction(row)
	if err == nil {
		return t, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return transactions.Transaction{}, fmt.Errorf("transition status: %w", err)
	}

	existing, err := r.Get(ctx, id)
	if err != nil {
		return transactions.Transaction{}, err
	}
	if existing == nil {
		return transactions.Transaction{}, transactions.ErrTransactionNotFound
	}

	return transactions.Transaction{}, transactions.ErrStatusConflict
}

func (r *transactionsRepo) list(ctx context.Context, query string, args ...any) ([]transactions.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]transactions.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return out, nil
}
