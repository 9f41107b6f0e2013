package users

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrBalanceOverflow   = errors.New("balance would exceed the maximum")
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"`
	FullName     *string   `json:"fullName"`
	MobileNumber *string   `json:"mobileNumber"`
	Balance      int64     `json:"balance"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// NewUser is a registration that already carries a password hash.
type NewUser struct {
	Username     string
	PasswordHash string
	Email        string
	FullName     *string
	MobileNumber *string
}

// Users is the account store. It is the sole owner of the balance column.
//
// Lookups return (nil, nil) for a missing user; balance operations return
// ErrUserNotFound instead.
type Users interface {
	Create(ctx context.Context, u NewUser) (User, error)
	Get(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)

	SetRole(ctx context.Context, id int64, role Role) (*User, error)
	SetActive(ctx context.Context, id int64, active bool) (*User, error)

	// SetBalance overwrites the balance without any lower-bound check.
	SetBalance(ctx context.Context, id int64, balance int64) (*User, error)

	// LockAndGetBalance reads the balance and holds the user's lock until the
	// surrounding store transaction ends.
	LockAndGetBalance(ctx context.Context, id int64) (int64, error)
	// IncreaseBalance fails with ErrBalanceOverflow instead of wrapping.
	IncreaseBalance(ctx context.Context, id int64, amount int64) (int64, error)
	// DecreaseBalance fails with ErrInsufficientFunds instead of going negative.
	DecreaseBalance(ctx context.Context, id int64, amount int64) (int64, error)
}
