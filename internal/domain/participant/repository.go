package participant

import "context"

// Repository exposes participant lookups.
type Repository interface {
	GetByID(ctx context.Context, id string) (Participant, bool, error)
	Create(ctx context.Context, p Participant) error
}
