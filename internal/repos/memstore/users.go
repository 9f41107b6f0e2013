package memstore

import (
	"context"
	"math"

	"github.com/fastprodman/betroyal/internal/repos/users"
)

type usersRepo struct{ sc *scope }

func (r usersRepo) Create(ctx context.Context, nu users.NewUser) (users.User, error) {
	var out users.User

	err := r.sc.run(ctx, func(st *state) error {
		name, email := fold(nu.Username), fold(nu.Email)
		if _, taken := st.byUsername[name]; taken {
			return users.ErrDuplicateUsername
		}
		if _, taken := st.byEmail[email]; taken {
			return users.ErrDuplicateEmail
		}

		st.nextUserID++
		out = users.User{
			ID:           st.nextUserID,
			Username:     nu.Username,
			PasswordHash: nu.PasswordHash,
			Email:        nu.Email,
			FullName:     nu.FullName,
			MobileNumber: nu.MobileNumber,
			Balance:      r.sc.store.startingBalance,
			Role:         users.RoleUser,
			IsActive:     true,
			CreatedAt:    r.sc.store.now().UTC(),
		}
		st.users[out.ID] = out
		st.byUsername[name] = out.ID
		st.byEmail[email] = out.ID

		id := out.ID
		r.sc.record(func() {
			delete(st.users, id)
			delete(st.byUsername, name)
			delete(st.byEmail, email)
		})

		return nil
	})

	return out, err
}

func (r usersRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	var out *users.User

	err := r.sc.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if ok {
			out = &u
		}
		return nil
	})

	return out, err
}

func (r usersRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	var out *users.User

	err := r.sc.run(ctx, func(st *state) error {
		id, ok := st.byUsername[fold(username)]
		if ok {
			u := st.users[id]
			out = &u
		}
		return nil
	})

	return out, err
}

func (r usersRepo) List(ctx context.Context) ([]users.User, error) {
	var out []users.User

	err := r.sc.run(ctx, func(st *state) error {
		out = make([]users.User, 0, len(st.users))
		for _, id := range sortedKeys(st.users) {
			out = append(out, st.users[id])
		}
		return nil
	})

	return out, err
}

func (r usersRepo) SetRole(ctx context.Context, id int64, role users.Role) (*users.User, error) {
	return r.update(ctx, id, func(u *users.User) { u.Role = role })
}

func (r usersRepo) SetActive(ctx context.Context, id int64, active bool) (*users.User, error) {
	return r.update(ctx, id, func(u *users.User) { u.IsActive = active })
}

func (r usersRepo) SetBalance(ctx context.Context, id int64, balance int64) (*users.User, error) {
	return r.update(ctx, id, func(u *users.User) { u.Balance = balance })
}

// LockAndGetBalance relies on the store mutex, which a unit of work already
// holds for its whole duration.
func (r usersRepo) LockAndGetBalance(ctx context.Context, id int64) (int64, error) {
	var balance int64

	err := r.sc.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return users.ErrUserNotFound
		}
		balance = u.Balance
		return nil
	})

	return balance, err
}

func (r usersRepo) IncreaseBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	return r.adjust(ctx, id, amount)
}

func (r usersRepo) DecreaseBalance(ctx context.Context, id int64, amount int64) (int64, error) {
	return r.adjust(ctx, id, -amount)
}

func (r usersRepo) adjust(ctx context.Context, id int64, delta int64) (int64, error) {
	var balance int64

	err := r.sc.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return users.ErrUserNotFound
		}
		if delta > 0 && u.Balance > math.MaxInt64-delta {
			return users.ErrBalanceOverflow
		}
		if u.Balance+delta < 0 {
			return users.ErrInsufficientFunds
		}

		prev := u
		u.Balance += delta
		st.users[id] = u
		r.sc.record(func() { st.users[id] = prev })

		balance = u.Balance
		return nil
	})

	return balance, err
}

func (r usersRepo) update(ctx context.Context, id int64, mutate func(*users.User)) (*users.User, error) {
	var out *users.User

	err := r.sc.run(ctx, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return nil
		}

		prev := u
		mutate(&u)
		st.users[id] = u
		r.sc.record(func() { st.users[id] = prev })

		out = &u
		return nil
	})

	return out, err
}
