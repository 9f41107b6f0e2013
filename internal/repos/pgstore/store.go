package pgstore

import (
	"context"
	"database/sql"

	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/games"
	pggames "github.com/fastprodman/betroyal/internal/repos/games/postgres"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	pgtransactions "github.com/fastprodman/betroyal/internal/repos/transactions/postgres"
	"github.com/fastprodman/betroyal/internal/repos/users"
	pgusers "github.com/fastprodman/betroyal/internal/repos/users/postgres"
)

var _ repos.Store = (*Store)(nil)

// Store is the Postgres-backed repos.Store.
type Store struct {
	db              *sql.DB
	startingBalance int64
	bound
}

type bound struct {
	users        users.Users
	transactions transactions.Transactions
	games        games.Games
}

func (b bound) Users() users.Users                       { return b.users }
func (b bound) Transactions() transactions.Transactions { return b.transactions }
func (b bound) Games() games.Games                       { return b.games }

func bind(q pgutils.Querier, startingBalance int64) bound {
	return bound{
		users:        pgusers.New(q, startingBalance),
		transactions: pgtransactions.New(q),
		games:        pggames.New(q),
	}
}

// New takes ownership of db; Close closes it.
func New(db *sql.DB, startingBalance int64) *Store {
	return &Store{
		db:              db,
		startingBalance: startingBalance,
		bound:           bind(db, startingBalance),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repos.Tx) error) error {
	return pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(bind(tx, s.startingBalance))
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
