package reporter

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos/games"
	"github.com/fastprodman/betroyal/internal/services/ledger"
)

type Ledger interface {
	ApplyGameResult(ctx context.Context, actor *auth.Actor, res ledger.GameResult) (int64, error)
}

type Catalog interface {
	Get(ctx context.Context, id int64) (games.Game, error)
	IncrementPlayers(ctx context.Context, id int64) error
}

// Reporter accepts game outcomes from clients and settles them on the ledger.
type Reporter struct {
	ledger  Ledger
	catalog Catalog
}

func New(l Ledger, c Catalog) *Reporter {
	return &Reporter{ledger: l, catalog: c}
}

// Report returns the user's balance after the result is applied.
func (r *Reporter) Report(ctx context.Context, actor *auth.Actor, res ledger.GameResult) (int64, error) {
	if actor == nil {
		return 0, ledger.ErrUnauthenticated
	}
	if res.GameID <= 0 {
		return 0, validation.Field("gameId", "is required")
	}

	_, err := r.catalog.Get(ctx, res.GameID)
	if err != nil {
		return 0, err
	}

	entry := log.WithFields(log.Fields{
		"user_id": actor.UserID,
		"game_id": res.GameID,
		"amount":  res.Amount,
		"is_win":  res.IsWin,
	})

	balance, err := r.ledger.ApplyGameResult(ctx, actor, res)
	if err != nil {
		entry.WithError(err).Warn("game result rejected")
		return 0, err
	}

	err = r.catalog.IncrementPlayers(ctx, res.GameID)
	if err != nil && !errors.Is(err, games.ErrGameNotFound) {
		entry.WithError(err).Warn("increment players")
	}

	entry.WithField("balance", balance).Info("game result applied")

	return balance, nil
}
