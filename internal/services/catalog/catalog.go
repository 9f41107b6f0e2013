package catalog

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/infra/validation"
	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/games"
)

// GameInput is the body of an admin create. Omitted IsActive means active.
type GameInput struct {
	Name         string  `json:"name" validate:"required,max=128"`
	Type         string  `json:"type" validate:"required,max=32"`
	Image        *string `json:"image,omitempty" validate:"omitempty,max=2048"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2048"`
	IsActive     *bool   `json:"isActive,omitempty"`
	PlayersCount int64   `json:"playersCount" validate:"gte=0"`
	Rating       int     `json:"rating" validate:"gte=0,lte=5"`
}

// GamePatch is the body of an admin update.
type GamePatch struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=128"`
	Type         *string `json:"type,omitempty" validate:"omitempty,min=1,max=32"`
	Image        *string `json:"image,omitempty" validate:"omitempty,max=2048"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2048"`
	IsActive     *bool   `json:"isActive,omitempty"`
	PlayersCount *int64  `json:"playersCount,omitempty" validate:"omitempty,gte=0"`
	Rating       *int    `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
}

type Service struct {
	store repos.Store
}

func New(store repos.Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]games.Game, error) {
	return s.store.Games().List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (games.Game, error) {
	g, err := s.store.Games().Get(ctx, id)
	if err != nil {
		return games.Game{}, err
	}
	if g == nil {
		return games.Game{}, games.ErrGameNotFound
	}

	return *g, nil
}

func (s *Service) Create(ctx context.Context, in GameInput) (games.Game, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)

	err := validation.Struct(in)
	if err != nil {
		return games.Game{}, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	g, err := s.store.Games().Create(ctx, games.NewGame{
		Name:         in.Name,
		Type:         in.Type,
		Image:        in.Image,
		Description:  in.Description,
		IsActive:     active,
		PlayersCount: in.PlayersCount,
		Rating:       in.Rating,
	})
	if err != nil {
		return games.Game{}, fmt.Errorf("create game: %w", err)
	}

	log.WithFields(log.Fields{"game_id": g.ID, "name": g.Name}).Info("game created")

	return g, nil
}

func (s *Service) Update(ctx context.Context, id int64, p GamePatch) (games.Game, error) {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		p.Name = &v
	}
	if p.Type != nil {
		v := strings.TrimSpace(*p.Type)
		p.Type = &v
	}

	err := validation.Struct(p)
	if err != nil {
		return games.Game{}, err
	}

	g, err := s.store.Games().Update(ctx, id, games.Patch{
		Name:         p.Name,
		Type:         p.Type,
		Image:        p.Image,
		Description:  p.Description,
		IsActive:     p.IsActive,
		PlayersCount: p.PlayersCount,
		Rating:       p.Rating,
	})
	if err != nil {
		return games.Game{}, fmt.Errorf("update game: %w", err)
	}
	if g == nil {
		return games.Game{}, games.ErrGameNotFound
	}

	return *g, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.Games().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	if !deleted {
		return games.ErrGameNotFound
	}

	log.WithField("game_id", id).Info("game deleted")

	return nil
}

func (s *Service) IncrementPlayers(ctx context.Context, id int64) error {
	return s.store.Games().IncrementPlayers(ctx, id)
}
