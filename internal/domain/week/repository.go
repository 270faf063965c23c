package week

import "context"

// Repository exposes week persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (Week, bool, error)
	ListBySeason(ctx context.Context, season int) ([]Week, error)
	Create(ctx context.Context, w Week) error
}
