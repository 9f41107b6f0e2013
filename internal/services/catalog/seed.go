package catalog

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/fastprodman/betroyal/internal/repos"
	"github.com/fastprodman/betroyal/internal/repos/games"
)

func ptr[T any](v T) *T { return &v }

var demoGames = []games.NewGame{
	{
		Name:         "Spaceman Crash",
		Type:         "crash",
		Image:        ptr("https://images.unsplash.com/photo-1485356824219-4bc17c2a2ea7?auto=format&fit=crop&w=800&h=500"),
		Description:  ptr("Watch the rocket fly and cash out before it crashes for big wins!"),
		IsActive:     true,
		PlayersCount: 2450,
		Rating:       5,
	},
	{
		Name:         "Royal Slots",
		Type:         "slots",
		Description:  ptr("Classic slot machine game with exciting bonuses"),
		IsActive:     true,
		PlayersCount: 1200,
		Rating:       4,
	},
	{
		Name:         "Lucky Dice",
		Type:         "dice",
		Image:        ptr("https://images.unsplash.com/photo-1518548419970-58e3b4079ab2?auto=format&fit=crop&w=800&h=500"),
		Description:  ptr("Test your luck with our dice game"),
		IsActive:     true,
		PlayersCount: 856,
		Rating:       4,
	},
	{
		Name:         "VIP Poker",
		Type:         "cards",
		Description:  ptr("Premium poker experience for high rollers"),
		IsActive:     true,
		PlayersCount: 1500,
		Rating:       5,
	},
	{
		Name:         "Royal Roulette",
		Type:         "roulette",
		Image:        ptr("https://images.unsplash.com/photo-1606167668584-78701c57f13d?auto=format&fit=crop&w=800&h=500"),
		Description:  ptr("Classic roulette with multiple betting options"),
		IsActive:     true,
		PlayersCount: 923,
		Rating:       4,
	},
}

// SeedDemo fills an empty catalog with the storefront's demo games and
// returns how many it inserted.
func (s *Service) SeedDemo(ctx context.Context) (int, error) {
	n := 0

	err := s.store.WithinTx(ctx, func(tx repos.Tx) error {
		existing, err := tx.Games().List(ctx)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return nil
		}

		for _, g := range demoGames {
			_, err := tx.Games().Create(ctx, g)
			if err != nil {
				return err
			}
			n++
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed demo games: %w", err)
	}

	if n > 0 {
		log.WithField("count", n).Info("demo games seeded")
	}

	return n, nil
}
