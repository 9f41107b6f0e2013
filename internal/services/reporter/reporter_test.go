package reporter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastprodman/betroyal/internal/auth"
	"github.com/fastprodman/betroyal/internal/config"
	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos/games"
	"github.com/fastprodman/betroyal/internal/repos/memstore"
	"github.com/fastprodman/betroyal/internal/repos/users"
	"github.com/fastprodman/betroyal/internal/services/catalog"
	"github.com/fastprodman/betroyal/internal/services/ledger"
)

func TestReport_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		anonymous   bool
		res         ledger.GameResult
		wantBalance int64
		wantPlayers int64
		wantErr     error
		wantField   string
	}{
		{name: "win", res: ledger.GameResult{GameID: 1, Amount: 250, IsWin: true}, wantBalance: 5250, wantPlayers: 1},
		{name: "loss", res: ledger.GameResult{GameID: 1, Amount: 250}, wantBalance: 4750, wantPlayers: 1},
		{name: "insufficient", res: ledger.GameResult{GameID: 1, Amount: 5001}, wantErr: ledger.ErrInsufficientBalance},
		{name: "unknown_game", res: ledger.GameResult{GameID: 42, Amount: 10}, wantErr: games.ErrGameNotFound},
		{name: "missing_game_id", res: ledger.GameResult{Amount: 10}, wantField: "gameId"},
		{name: "anonymous", anonymous: true, res: ledger.GameResult{GameID: 1, Amount: 10}, wantErr: ledger.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			store := memstore.New(5000)
			u, err := store.Users().Create(ctx, users.NewUser{Username: "p", PasswordHash: "h", Email: "p@example.com"})
			require.NoError(t, err)
			g, err := store.Games().Create(ctx, games.NewGame{Name: "Dice", Type: "dice", IsActive: true})
			require.NoError(t, err)
			require.Equal(t, int64(1), g.ID)

			cat := catalog.New(store)
			r := New(ledger.New(store, config.LedgerConfig{DepositMin: 100, DepositMax: 100000}), cat)

			actor := &auth.Actor{UserID: u.ID}
			if tt.anonymous {
				actor = nil
			}

			got, err := r.Report(ctx, actor, tt.res)

			switch {
			case tt.wantField != "":
				var verr *validation.Error
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantBalance, got)
			}

			game, err := cat.Get(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPlayers, game.PlayersCount)
		})
	}
}
