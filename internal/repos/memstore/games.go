package memstore

import (
	"context"

	"github.com/fastprodman/betroyal/internal/repos/games"
)

type gamesRepo struct{ sc *scope }

func (r gamesRepo) List(ctx context.Context) ([]games.Game, error) {
	var out []games.Game

	err := r.sc.run(ctx, func(st *state) error {
		out = make([]games.Game, 0, len(st.games))
		for _, id := range sortedKeys(st.games) {
			out = append(out, st.games[id])
		}
		return nil
	})

	return out, err
}

func (r gamesRepo) Get(ctx context.Context, id int64) (*games.Game, error) {
	var out *games.Game

	err := r.sc.run(ctx, func(st *state) error {
		g, ok := st.games[id]
		if ok {
			out = &g
		}
		return nil
	})

	return out, err
}

func (r gamesRepo) Create(ctx context.Context, ng games.NewGame) (games.Game, error) {
	var out games.Game

	err := r.sc.run(ctx, func(st *state) error {
		st.nextGameID++
		out = games.Game{
			ID:           st.nextGameID,
			Name:         ng.Name,
			Type:         ng.Type,
			Image:        ng.Image,
			Description:  ng.Description,
			IsActive:     ng.IsActive,
			PlayersCount: ng.PlayersCount,
			Rating:       ng.Rating,
		}
		st.games[out.ID] = out

		id := out.ID
		r.sc.record(func() { delete(st.games, id) })

		return nil
	})

	return out, err
}

func (r gamesRepo) Update(ctx context.Context, id int64, p games.Patch) (*games.Game, error) {
	var out *games.Game

	err := r.sc.run(ctx, func(st *state) error {
		prev, ok := st.games[id]
		if !ok {
			return nil
		}

		g := p.Apply(prev)
		st.games[id] = g
		r.sc.record(func() { st.games[id] = prev })

		out = &g
		return nil
	})

	return out, err
}

func (r gamesRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool

	err := r.sc.run(ctx, func(st *state) error {
		prev, ok := st.games[id]
		if !ok {
			return nil
		}

		delete(st.games, id)
		r.sc.record(func() { st.games[id] = prev })

		deleted = true
		return nil
	})

	return deleted, err
}

func (r gamesRepo) IncrementPlayers(ctx context.Context, id int64) error {
	return r.sc.run(ctx, func(st *state) error {
		g, ok := st.games[id]
		if !ok {
			return games.ErrGameNotFound
		}

		prev := g
		g.PlayersCount++
		st.games[id] = g
		r.sc.record(func() { st.games[id] = prev })

		return nil
	})
}
