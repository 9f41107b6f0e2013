package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/games"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

var _ repos.Store = (*Store)(nil)

// Store is an in-process repos.Store guarded by a single mutex.
//
// WithinTx holds the mutex for the whole unit of work and undoes every
// recorded mutation when fn fails. Calling the Store's own repositories from
// inside fn deadlocks; use the Tx passed to fn.
type Store struct {
	mu              sync.Mutex
	st              *state
	startingBalance int64
	now             func() time.Time

	base *scope
}

type Option func(*Store)

// WithClock overrides the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(startingBalance int64, opts ...Option) *Store {
	s := &Store{
		st:              newState(),
		startingBalance: startingBalance,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.base = &scope{store: s}

	return s
}

func (s *Store) Users() users.Users                       { return usersRepo{s.base} }
func (s *Store) Transactions() transactions.Transactions { return transactionsRepo{s.base} }
func (s *Store) Games() games.Games                       { return gamesRepo{s.base} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repos.Tx) error) (err error) {
	err = ctx.Err()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sc := &scope{store: s, inTx: true}

	defer func() {
		r := recover()
		if r != nil {
			sc.rollback()
			panic(r)
		}
		if err != nil {
			sc.rollback()
		}
	}()

	return fn(txView{sc})
}

func (s *Store) Close() error { return nil }

type txView struct{ sc *scope }

func (v txView) Users() users.Users                       { return usersRepo{v.sc} }
func (v txView) Transactions() transactions.Transactions { return transactionsRepo{v.sc} }
func (v txView) Games() games.Games                       { return gamesRepo{v.sc} }

// scope is either the store's shared non-transactional scope, which locks per
// call, or one unit of work, which already holds the lock and journals undo
// steps.
type scope struct {
	store *Store
	inTx  bool
	undo  []func()
}

func (sc *scope) run(ctx context.Context, fn func(st *state) error) error {
	err := ctx.Err()
	if err != nil {
		return fmt.Errorf("memstore: %w", err)
	}

	if !sc.inTx {
		sc.store.mu.Lock()
		defer sc.store.mu.Unlock()
	}

	return fn(sc.store.st)
}

func (sc *scope) record(undo func()) {
	if sc.inTx {
		sc.undo = append(sc.undo, undo)
	}
}

func (sc *scope) rollback() {
	for i := len(sc.undo) - 1; i >= 0; i-- {
		sc.undo[i]()
	}
	sc.undo = nil
}
