package games

import (
	"context"
	"errors"
)

var ErrGameNotFound = errors.New("game not found")

type Game struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	Image        *string `json:"image"`
	Description  *string `json:"description"`
	IsActive     bool    `json:"isActive"`
	PlayersCount int64   `json:"playersCount"`
	Rating       int     `json:"rating"`
}

type NewGame struct {
	Name         string
	Type         string
	Image        *string
	Description  *string
	IsActive     bool
	PlayersCount int64
	Rating       int
}

// Patch holds the fields of a partial update; nil fields are left alone.
type Patch struct {
	Name         *string
	Type         *string
	Image        *string
	Description  *string
	IsActive     *bool
	PlayersCount *int64
	Rating       *int
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Image == nil && p.Description == nil &&
		p.IsActive == nil && p.PlayersCount == nil && p.Rating == nil
}

// Apply returns g with the patch applied.
func (p Patch) Apply(g Game) Game {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Type != nil {
		g.Type = *p.Type
	}
	if p.Image != nil {
		g.Image = p.Image
	}
	if p.Description != nil {
		g.Description = p.Description
	}
	if p.IsActive != nil {
		g.IsActive = *p.IsActive
	}
	if p.PlayersCount != nil {
		g.PlayersCount = *p.PlayersCount
	}
	if p.Rating != nil {
		g.Rating = *p.Rating
	}
	return g
}

// Games is the catalog store. Get and Update return (nil, nil) for a missing
// game; Delete reports whether a row was removed.
type Games interface {
	List(ctx context.Context) ([]Game, error)
	Get(ctx context.Context, id int64) (*Game, error)
	Create(ctx context.Context, g NewGame) (Game, error)
	Update(ctx context.Context, id int64, p Patch) (*Game, error)
	Delete(ctx context.Context, id int64) (bool, error)
	IncrementPlayers(ctx context.Context, id int64) error
}
