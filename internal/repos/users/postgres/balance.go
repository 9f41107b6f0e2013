package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

func (r *usersRepo) SetBalance(ctx context.Context, id int64, balance int64) (*users.User, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE users
		SET balance = $2
		WHERE id = $1
		RETURNING `+userColumns,
		id, balance,
	)

	return scanOptionalUser(row, "set balance")
}

// LockAndGetBalance only holds the row lock when r runs on a *sql.Tx.
func (r *usersRepo) LockAndGetBalance(ctx context.Context, id int64) (int64, error) {
	var balance int64

	err := r.q.QueryRowContext(ctx, `
		SELECT balance
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}

		return 0, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}

func (r *usersRepo) IncreaseBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	var balance int64

	err := r.q.QueryRowContext(ctx, `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance
	`, id, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, users.ErrUserNotFound
		}
		if pgutils.NumericOutOfRange(err) {
			return 0, users.ErrBalanceOverflow
		}

		return 0, fmt.Errorf("increase balance: %w", err)
	}

	return balance, nil
}

func (r *usersRepo) DecreaseBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	var balance int64

	err := r.q.QueryRowContext(ctx, `
		UPDATE users
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
		RETURNING balance
	`, id, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("decrease balance: %w", err)
	}

	// No row matched: either the user is gone or the guard rejected it.
	var exists bool
	err = r.q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return 0, users.ErrUserNotFound
	}

	return 0, users.ErrInsufficientFunds
}
