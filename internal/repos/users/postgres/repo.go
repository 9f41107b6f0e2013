package users

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

var _ users.Users = (*usersRepo)(nil)

const (
	usernameIndex = "users_username_lower_key"
	emailIndex    = "users_email_lower_key"
)

const userColumns = `id, username, password, email, full_name, mobile_number, balance, role, is_active, created_at`

type usersRepo struct {
	q               pgutils.Querier
	startingBalance int64
}

// New returns a users repository that runs its queries on q, which may be a
// *sql.DB or a *sql.Tx. New accounts are credited with startingBalance.
func New(q pgutils.Querier, startingBalance int64) *usersRepo {
	return &usersRepo{q: q, startingBalance: startingBalance}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (users.User, error) {
	var (
		u            users.User
		fullName     sql.NullString
		mobileNumber sql.NullString
		role         string
	)

	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Email,
		&fullName, &mobileNumber, &u.Balance, &role, &u.IsActive, &u.CreatedAt,
	)
	if err != nil {
		return users.User{}, err
	}

	u.Role = users.Role(role)
	if fullName.Valid {
		u.FullName = &fullName.String
	}
	if mobileNumber.Valid {
		u.MobileNumber = &mobileNumber.String
	}

	return u, nil
}

// scanOptionalUser maps sql.ErrNoRows to (nil, nil).
func scanOptionalUser(row rowScanner, op string) (*users.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &u, nil
}
