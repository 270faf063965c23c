package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
)

type GameRepository struct {
	mu    sync.RWMutex
	items map[string]game.Game
}

func NewGameRepository() *GameRepository {
	return &GameRepository{items: make(map[string]game.Game)}
}

func (r *GameRepository) GetByID(_ context.Context, id string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return game.Game{}, false, nil
	}
	return cloneGame(item), true, nil
}

func (r *GameRepository) ListByWeek(_ context.Context, weekID string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.items))
	for _, item := range r.items {
		if item.WeekID == weekID {
			out = append(out, cloneGame(item))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *GameRepository) ListMustPickByWeek(_ context.Context, weekID string) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0, len(r.items))
	for _, item := range r.items {
		if item.WeekID == weekID && item.MustPick {
			out = append(out, cloneGame(item))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *GameRepository) Create(_ context.Context, item game.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneGame(item)
	return nil
}

func (r *GameRepository) UpdateQuote(_ context.Context, id string, q game.Quote, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("game %s not found", id)
	}
	quote := cloneQuote(q)
	item.Quote = &quote
	item.OddsSyncedAt = &syncedAt
	item.UpdatedAt = syncedAt
	r.items[id] = item
	return nil
}

func (r *GameRepository) UpdateScoreSnapshot(_ context.Context, id string, homeScore, awayScore *int, status string, syncedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("game %s not found", id)
	}
	if item.Status == game.StatusFinal {
		return fmt.Errorf("game %s is already final", id)
	}
	item.HomeScore = cloneIntPtr(homeScore)
	item.AwayScore = cloneIntPtr(awayScore)
	item.Status = game.NormalizeStatus(status)
	item.ScoresSyncedAt = &syncedAt
	item.UpdatedAt = syncedAt
	r.items[id] = item
	return nil
}

func (r *GameRepository) Finalize(_ context.Context, id string, homeScore, awayScore int, manual bool, finalizedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("game %s not found", id)
	}
	item.HomeScore = &homeScore
	item.AwayScore = &awayScore
	item.ManualScore = manual
	item.Status = game.StatusFinal
	item.ScoresSyncedAt = &finalizedAt
	item.UpdatedAt = finalizedAt
	r.items[id] = item
	return nil
}

// weekIDOf lets the pick repository resolve a game to its week without a
// circular dependency on the catalog interface.
func (r *GameRepository) weekIDOf(gameID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[gameID]
	if !ok {
		return "", false
	}
	return item.WeekID, true
}

func cloneGame(item game.Game) game.Game {
	copied := item
	if item.Quote != nil {
		quote := cloneQuote(*item.Quote)
		copied.Quote = &quote
	}
	copied.HomeScore = cloneIntPtr(item.HomeScore)
	copied.AwayScore = cloneIntPtr(item.AwayScore)
	copied.OddsSyncedAt = cloneTimePtr(item.OddsSyncedAt)
	copied.ScoresSyncedAt = cloneTimePtr(item.ScoresSyncedAt)
	return copied
}

func cloneQuote(q game.Quote) game.Quote {
	copied := q
	copied.Spread = cloneFloatPtr(q.Spread)
	copied.Total = cloneFloatPtr(q.Total)
	copied.MoneylineHome = cloneIntPtr(q.MoneylineHome)
	copied.MoneylineAway = cloneIntPtr(q.MoneylineAway)
	return copied
}
