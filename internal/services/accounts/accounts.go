package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

// bcrypt refuses passwords longer than this many bytes.
const maxPasswordBytes = 72

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

type Registration struct {
	Username     string  `json:"username" validate:"required,min=3,max=32"`
	Password     string  `json:"password" validate:"required,min=6,max=72"`
	Email        string  `json:"email" validate:"required,email,max=254"`
	FullName     *string `json:"fullName,omitempty" validate:"omitempty,max=128"`
	MobileNumber *string `json:"mobileNumber,omitempty" validate:"omitempty,max=32"`
}

// Service owns registration, login and the session lifecycle.
type Service struct {
	store   repos.Store
	issuer  *auth.Issuer
	revoked *auth.Revocations
	cost    int
}

type Option func(*Service)

// WithBcryptCost lowers the hashing cost, mainly for tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func New(store repos.Store, issuer *auth.Issuer, revoked *auth.Revocations, opts ...Option) *Service {
	s := &Service{
		store:   store,
		issuer:  issuer,
		revoked: revoked,
		cost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register creates an account and opens a session for it.
func (s *Service) Register(ctx context.Context, r Registration) (users.User, string, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)

	err := validation.Struct(r)
	if err != nil {
		return users.User{}, "", err
	}
	if len(r.Password) > maxPasswordBytes {
		return users.User{}, "", validation.Field("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return users.User{}, "", validation.Field("password", fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	if err != nil {
		return users.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.Users().Create(ctx, users.NewUser{
		Username:     r.Username,
		PasswordHash: string(hash),
		Email:        r.Email,
		FullName:     r.FullName,
		MobileNumber: r.MobileNumber,
	})
	if err != nil {
		return users.User{}, "", err
	}

	log.WithFields(log.Fields{"user_id": u.ID, "username": u.Username}).Info("account registered")

	token, _, err := s.issuer.Issue(u)
	if err != nil {
		return users.User{}, "", err
	}

	return u, token, nil
}

// Login checks the password and opens a session.
func (s *Service) Login(ctx context.Context, username, password string) (users.User, string, error) {
	u, err := s.store.Users().GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return users.User{}, "", err
	}
	if u == nil {
		return users.User{}, "", ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		return users.User{}, "", ErrInvalidCredentials
	}

	if !u.IsActive {
		return users.User{}, "", ErrAccountDisabled
	}

	token, _, err := s.issuer.Issue(*u)
	if err != nil {
		return users.User{}, "", err
	}

	return *u, token, nil
}

func (s *Service) Logout(a *auth.Actor) {
	if a == nil {
		return
	}
	s.revoked.Revoke(a.TokenID, a.ExpiresAt)
}

// Authenticate resolves a session token into the current actor and account.
// Role and active flag come from the store, not from the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*auth.Actor, *users.User, error) {
	a, err := s.issuer.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	if s.revoked.IsRevoked(a.TokenID) {
		return nil, nil, auth.ErrTokenRevoked
	}

	u, err := s.store.Users().Get(ctx, a.UserID)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, auth.ErrInvalidToken
	}
	if !u.IsActive {
		return nil, nil, ErrAccountDisabled
	}

	a.Username = u.Username
	a.Role = u.Role

	return a, u, nil
}

// PurgeRevoked forgets revoked tokens that have expired anyway.
func (s *Service) PurgeRevoked(now time.Time) int {
	return s.revoked.Purge(now)
}

// EnsureAdmin creates the admin account if the username is free and makes sure
// the account has the admin role. It never resets an existing password.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) (users.User, error) {
	var out users.User

	err := s.store.WithinTx(ctx, func(tx repos.Tx) error {
		existing, err := tx.Users().GetByUsername(ctx, username)
		if err != nil {
			return err
		}

		if existing == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			created, err := tx.Users().Create(ctx, users.NewUser{
				Username:     username,
				PasswordHash: string(hash),
				Email:        email,
			})
			if err != nil {
				return err
			}
			existing = &created
		}

		if existing.IsAdmin() {
			out = *existing
			return nil
		}

		promoted, err := tx.Users().SetRole(ctx, existing.ID, users.RoleAdmin)
		if err != nil {
			return err
		}
		out = *promoted

		return nil
	})
	if err != nil {
		return users.User{}, fmt.Errorf("ensure admin: %w", err)
	}

	return out, nil
}

func (s *Service) Get(ctx context.Context, id int64) (users.User, error) {
	u, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return users.User{}, err
	}
	if u == nil {
		return users.User{}, users.ErrUserNotFound
	}

	return *u, nil
}

func (s *Service) List(ctx context.Context) ([]users.User, error) {
	return s.store.Users().List(ctx)
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (users.User, error) {
	u, err := s.store.Users().SetActive(ctx, id, active)
	if err != nil {
		return users.User{}, err
	}
	if u == nil {
		return users.User{}, users.ErrUserNotFound
	}

	log.WithFields(log.Fields{"user_id": id, "active": active}).Info("account status changed")

	return *u, nil
}
