package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pickemhq/pickem-pool/internal/domain/week"
)

type WeekRepository struct {
	mu    sync.RWMutex
	items map[string]week.Week
}

func NewWeekRepository() *WeekRepository {
	return &WeekRepository{items: make(map[string]week.Week)}
}

func (r *WeekRepository) GetByID(_ context.Context, id string) (week.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return week.Week{}, false, nil
	}
	return cloneWeek(item), true, nil
}

func (r *WeekRepository) ListBySeason(_ context.Context, season int) ([]week.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]week.Week, 0, len(r.items))
	for _, item := range r.items {
		if item.Season == season {
			out = append(out, cloneWeek(item))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *WeekRepository) Create(_ context.Context, item week.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = cloneWeek(item)
	return nil
}

func cloneWeek(item week.Week) week.Week {
	copied := item
	copied.SubmissionCutoff = cloneTimePtr(item.SubmissionCutoff)
	copied.PickerChoiceCap = cloneIntPtr(item.PickerChoiceCap)
	copied.TriplePlayCap = cloneIntPtr(item.TriplePlayCap)
	return copied
}
