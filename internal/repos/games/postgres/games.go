package games

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastprodman/betroyal/internal/infra/pgutils"
	"github.com/fastprodman/betroyal/internal/repos/games"
)

var _ games.Games = (*gamesRepo)(nil)

const gameColumns = `id, name, type, image, description, is_active, players_count, rating`

type gamesRepo struct{ q pgutils.Querier }

func New(q pgutils.Querier) *gamesRepo {
	return &gamesRepo{q: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (games.Game, error) {
	var (
		g           games.Game
		image       sql.NullString
		description sql.NullString
	)

	err := row.Scan(&g.ID, &g.Name, &g.Type, &image, &description, &g.IsActive, &g.PlayersCount, &g.Rating)
	if err != nil {
		return games.Game{}, err
	}

	if image.Valid {
		g.Image = &image.String
	}
	if description.Valid {
		g.Description = &description.String
	}

	return g, nil
}

func (r *gamesRepo) List(ctx context.Context) ([]games.Game, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := make([]games.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	return out, nil
}

func (r *gamesRepo) Get(ctx context.Context, id int64) (*games.Game, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+gameColumns+`
		FROM games
		WHERE id = $1
	`, id)

	return scanOptionalGame(row, "get game")
}

func (r *gamesRepo) Create(ctx context.Context, ng games.NewGame) (games.Game, error) {
	row := r.q.QueryRowContext(ctx, `
		INSERT INTO games (name, type, image, description, is_active, players_count, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+gameColumns,
		ng.Name, ng.Type, ng.Image, ng.Description, ng.IsActive, ng.PlayersCount, ng.Rating,
	)

	g, err := scanGame(row)
	if err != nil {
		return games.Game{}, fmt.Errorf("insert game: %w", err)
	}

	return g, nil
}

// Update leaves columns whose patch field is nil untouched.
func (r *gamesRepo) Update(ctx context.Context, id int64, p games.Patch) (*games.Game, error) {
	row := r.q.QueryRowContext(ctx, `
		UPDATE games
		SET name          = COALESCE($2, name),
		    type          = COALESCE($3, type),
		    image         = COALESCE($4, image),
		    description   = COALESCE($5, description),
		    is_active     = COALESCE($6, is_active),
		    players_count = COALESCE($7, players_count),
		    rating        = COALESCE($8, rating)
		WHERE id = $1
		RETURNING `+gameColumns,
		id, p.Name, p.Type, p.Image, p.Description, p.IsActive, p.PlayersCount, p.Rating,
	)

	return scanOptionalGame(row, "update game")
}

func (r *gamesRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *gamesRepo) IncrementPlayers(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE games
		SET players_count = players_count + 1
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment players: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return games.ErrGameNotFound
	}

	return nil
}

func scanOptionalGame(row rowScanner, op string) (*games.Game, error) {
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &g, nil
}
