package users

import (
	"context"
	"fmt"

	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

func (r *usersRepo) Create(ctx context.Context, nu users.NewUser) (users.User, error) {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO users (username, password, email, full_name, mobile_number, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		nu.Username, nu.PasswordHash, nu.Email, nu.FullName, nu.MobileNumber, r.startingBalance,
	)

	u, err := scanUser(row)
	if err != nil {
		constraint, ok := pgutils.UniqueViolation(err)
		if ok {
			switch constraint {
			case usernameIndex:
				return users.User{}, users.ErrDuplicateUsername
			case emailIndex:
				return users.User{}, users.ErrDuplicateEmail
			}
		}

		return users.User{}, fmt.Errorf("insert user: %w", err)
	}

	return u, nil
}

func (r *usersRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)

	return scanOptionalUser(row, "get user")
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(username) = lower($1)
	`, username)

	return scanOptionalUser(row, "get user by username")
}

func (r *usersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return out, nil
}

func (r *usersRepo) SetRole(ctx context.Context, id int64, role users.Role) (*users.User, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE users
		SET role = $2
		WHERE id = $1
		RETURNING `+userColumns,
		id, string(role),
	)

	return scanOptionalUser(row, "set role")
}

func (r *usersRepo) SetActive(ctx context.Context, id int64, active bool) (*users.User, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE users
		SET is_active = $2
		WHERE id = $1
		RETURNING `+userColumns,
		id, active,
	)

	return scanOptionalUser(row, "set active")
}
