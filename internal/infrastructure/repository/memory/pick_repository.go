package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemhq/pickem-pool/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[string]pick.Pick

	games *GameRepository

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewPickRepository needs the game repository to resolve picks to weeks.
func NewPickRepository(games *GameRepository) *PickRepository {
	return &PickRepository{
		items: make(map[string]pick.Pick),
		games: games,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *PickRepository) GetByParticipantAndGame(_ context.Context, participantID, gameID string) (pick.Pick, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[pickKey(participantID, gameID)]
	if !ok {
		return pick.Pick{}, false, nil
	}
	return clonePick(item), true, nil
}

func (r *PickRepository) ListByGame(_ context.Context, gameID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 8)
	for _, item := range r.items {
		if item.GameID == gameID {
			out = append(out, clonePick(item))
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) ListByParticipantAndWeek(_ context.Context, participantID, weekID string) ([]pick.Pick, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.Pick, 0, 8)
	for _, item := range r.items {
		if item.ParticipantID != participantID {
			continue
		}
		if gameWeek, ok := r.games.weekIDOf(item.GameID); ok && gameWeek == weekID {
			out = append(out, clonePick(item))
		}
	}
	sortPicks(out)
	return out, nil
}

func (r *PickRepository) Create(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pickKey(item.ParticipantID, item.GameID)
	if _, exists := r.items[key]; exists {
		return pick.ErrAlreadyExists
	}
	r.items[key] = clonePick(item)
	return nil
}

func (r *PickRepository) Update(_ context.Context, item pick.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[pickKey(item.ParticipantID, item.GameID)] = clonePick(item)
	return nil
}

func (r *PickRepository) Delete(_ context.Context, participantID, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, pickKey(participantID, gameID))
	return nil
}

func (r *PickRepository) GradeAll(_ context.Context, graded []pick.Graded) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range graded {
		for key, item := range r.items {
			if item.ID != g.PickID {
				continue
			}
			result := g.Result
			evaluatedAt := g.EvaluatedAt
			item.Result = &result
			item.EvaluatedAt = &evaluatedAt
			r.items[key] = item
		}
	}
	return nil
}

func (r *PickRepository) SubmitExclusive(ctx context.Context, participantID, weekID string, fn func(context.Context) error) error {
	lock := r.submissionLock(participantID + "::" + weekID)
	lock.Lock()
	defer lock.Unlock()
	return fn(ctx)
}

func (r *PickRepository) submissionLock(key string) *sync.Mutex {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()

	lock, ok := r.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}

func pickKey(participantID, gameID string) string {
	return participantID + "::" + gameID
}

func sortPicks(items []pick.Pick) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].GameID != items[j].GameID {
			return items[i].GameID < items[j].GameID
		}
		return items[i].ParticipantID < items[j].ParticipantID
	})
}

func clonePick(item pick.Pick) pick.Pick {
	copied := item
	copied.Spread = cloneFloatPtr(item.Spread)
	copied.EvaluatedAt = cloneTimePtr(item.EvaluatedAt)
	if item.Result != nil {
		result := *item.Result
		copied.Result = &result
	}
	return copied
}
