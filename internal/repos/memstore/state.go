package memstore

import (
	"sort"
	"strings"

	"github.com/fastprodman/betroyal/internal/repos/games"
	"github.com/fastprodman/betroyal/internal/repos/transactions"
	"github.com/fastprodman/betroyal/internal/repos/users"
)

type state struct {
	users      map[int64]users.User
	byUsername map[string]int64
	byEmail    map[string]int64
	nextUserID int64

	// log[i].ID == i+1
	log []transactions.Transaction

	games      map[int64]games.Game
	nextGameID int64
}

func newState() *state {
	return &state{
		users:      make(map[int64]users.User),
		byUsername: make(map[string]int64),
		byEmail:    make(map[string]int64),
		games:      make(map[int64]games.Game),
	}
}

func fold(s string) string { return strings.ToLower(s) }

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return keys
}
