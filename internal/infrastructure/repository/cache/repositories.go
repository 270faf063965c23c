// Package cache wraps repositories with a read-through TTL cache. Write
// operations pass through to the wrapped repository and invalidate the
// affected keys, so a stale entry never outlives its TTL or the next write.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/participant"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	basecache "github.com/pickemhq/pickem-pool/internal/platform/cache"
)

type WeekRepository struct {
	next  week.Repository
	cache *basecache.Store
}

func NewWeekRepository(next week.Repository, cache *basecache.Store) *WeekRepository {
	return &WeekRepository{next: next, cache: cache}
}

func (r *WeekRepository) GetByID(ctx context.Context, id string) (week.Week, bool, error) {
	key := "week:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedWeekByID{value: cloneWeek(item), exists: exists}, nil
	})
	if err != nil {
		return week.Week{}, false, err
	}

	cached, _ := v.(cachedWeekByID)
	return cloneWeek(cached.value), cached.exists, nil
}

func (r *WeekRepository) ListBySeason(ctx context.Context, season int) ([]week.Week, error) {
	key := "week:season:" + strconv.Itoa(season)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySeason(ctx, season)
		if err != nil {
			return nil, err
		}
		out := make([]week.Week, 0, len(items))
		for _, item := range items {
			out = append(out, cloneWeek(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]week.Week)
	out := make([]week.Week, 0, len(items))
	for _, item := range items {
		out = append(out, cloneWeek(item))
	}
	return out, nil
}

func (r *WeekRepository) Create(ctx context.Context, w week.Week) error {
	if err := r.next.Create(ctx, w); err != nil {
		return err
	}
	r.cache.Delete(ctx, "week:id:"+w.ID)
	r.cache.Delete(ctx, "week:season:"+strconv.Itoa(w.Season))
	return nil
}

type cachedWeekByID struct {
	value  week.Week
	exists bool
}

type GameRepository struct {
	next  game.Repository
	cache *basecache.Store
}

func NewGameRepository(next game.Repository, cache *basecache.Store) *GameRepository {
	return &GameRepository{next: next, cache: cache}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	key := "game:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedGameByID{value: cloneGame(item), exists: exists}, nil
	})
	if err != nil {
		return game.Game{}, false, err
	}

	cached, _ := v.(cachedGameByID)
	return cloneGame(cached.value), cached.exists, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, weekID string) ([]game.Game, error) {
	return r.cachedList(ctx, "game:list:week:"+weekID, func(ctx context.Context) ([]game.Game, error) {
		return r.next.ListByWeek(ctx, weekID)
	})
}

func (r *GameRepository) ListMustPickByWeek(ctx context.Context, weekID string) ([]game.Game, error) {
	return r.cachedList(ctx, "game:mustpick:week:"+weekID, func(ctx context.Context) ([]game.Game, error) {
		return r.next.ListMustPickByWeek(ctx, weekID)
	})
}

func (r *GameRepository) cachedList(ctx context.Context, key string, load func(context.Context) ([]game.Game, error)) ([]game.Game, error) {
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]game.Game, 0, len(items))
		for _, item := range items {
			out = append(out, cloneGame(item))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]game.Game)
	out := make([]game.Game, 0, len(items))
	for _, item := range items {
		out = append(out, cloneGame(item))
	}
	return out, nil
}

func (r *GameRepository) Create(ctx context.Context, g game.Game) error {
	if err := r.next.Create(ctx, g); err != nil {
		return err
	}
	r.invalidateGame(ctx, g.ID)
	return nil
}

func (r *GameRepository) UpdateQuote(ctx context.Context, id string, q game.Quote, syncedAt time.Time) error {
	if err := r.next.UpdateQuote(ctx, id, q, syncedAt); err != nil {
		return err
	}
	r.invalidateGame(ctx, id)
	return nil
}

func (r *GameRepository) UpdateScoreSnapshot(ctx context.Context, id string, homeScore, awayScore *int, status string, syncedAt time.Time) error {
	if err := r.next.UpdateScoreSnapshot(ctx, id, homeScore, awayScore, status, syncedAt); err != nil {
		return err
	}
	r.invalidateGame(ctx, id)
	return nil
}

func (r *GameRepository) Finalize(ctx context.Context, id string, homeScore, awayScore int, manual bool, finalizedAt time.Time) error {
	if err := r.next.Finalize(ctx, id, homeScore, awayScore, manual, finalizedAt); err != nil {
		return err
	}
	r.invalidateGame(ctx, id)
	return nil
}

// The game row carries no week id on the write paths, so the week-scoped
// lists are flushed by prefix instead of by key.
func (r *GameRepository) invalidateGame(ctx context.Context, id string) {
	r.cache.Delete(ctx, "game:id:"+id)
	r.cache.DeletePrefix(ctx, "game:list:week:")
	r.cache.DeletePrefix(ctx, "game:mustpick:week:")
}

type cachedGameByID struct {
	value  game.Game
	exists bool
}

type ParticipantRepository struct {
	next  participant.Repository
	cache *basecache.Store
}

func NewParticipantRepository(next participant.Repository, cache *basecache.Store) *ParticipantRepository {
	return &ParticipantRepository{next: next, cache: cache}
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (participant.Participant, bool, error) {
	key := "participant:id:" + id
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return cachedParticipantByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return participant.Participant{}, false, err
	}

	cached, _ := v.(cachedParticipantByID)
	return cached.value, cached.exists, nil
}

func (r *ParticipantRepository) Create(ctx context.Context, p participant.Participant) error {
	if err := r.next.Create(ctx, p); err != nil {
		return err
	}
	r.cache.Delete(ctx, "participant:id:"+p.ID)
	return nil
}

type cachedParticipantByID struct {
	value  participant.Participant
	exists bool
}

func cloneWeek(item week.Week) week.Week {
	out := item
	out.SubmissionCutoff = cloneTimePtr(item.SubmissionCutoff)
	out.PickerChoiceCap = cloneIntPtr(item.PickerChoiceCap)
	out.TriplePlayCap = cloneIntPtr(item.TriplePlayCap)
	return out
}

func cloneGame(item game.Game) game.Game {
	out := item
	if item.Quote != nil {
		quote := *item.Quote
		quote.Spread = cloneFloatPtr(item.Quote.Spread)
		quote.Total = cloneFloatPtr(item.Quote.Total)
		quote.MoneylineHome = cloneIntPtr(item.Quote.MoneylineHome)
		quote.MoneylineAway = cloneIntPtr(item.Quote.MoneylineAway)
		out.Quote = &quote
	}
	out.HomeScore = cloneIntPtr(item.HomeScore)
	out.AwayScore = cloneIntPtr(item.AwayScore)
	out.OddsSyncedAt = cloneTimePtr(item.OddsSyncedAt)
	out.ScoresSyncedAt = cloneTimePtr(item.ScoresSyncedAt)
	return out
}

func cloneFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func cloneTimePtr(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	copied := *v
	return &copied
}
