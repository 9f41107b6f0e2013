package repos

import (
	"context"

	"github.com/fastprodman/betroyal/internal/repos/games"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

// Tx exposes repositories bound to one unit of work.
type Tx interface {
	Users() users.Users
	Transactions() transactions.Transactions
	Games() games.Games
}

// Store is the injected persistence layer. Its own repositories run each call
// on its own; WithinTx groups calls atomically and rolls all of them back when
// fn returns an error. fn must only use the Tx it receives.
type Store interface {
	Tx
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
