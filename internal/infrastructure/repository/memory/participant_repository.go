package memory

import (
	"context"
	"sync"

	"github.com/pickemhq/pickem-pool/internal/domain/participant"
)

type ParticipantRepository struct {
	mu    sync.RWMutex
	items map[string]participant.Participant
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{items: make(map[string]participant.Participant)}
}

func (r *ParticipantRepository) GetByID(_ context.Context, id string) (participant.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return participant.Participant{}, false, nil
	}
	return item, true, nil
}

func (r *ParticipantRepository) Create(_ context.Context, item participant.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[item.ID] = item
	return nil
}
