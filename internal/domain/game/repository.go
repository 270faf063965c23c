package game

import (
	"context"
	"time"
)

// Repository exposes game catalog persistence operations.
type Repository interface {
	GetByID(ctx context.Context, id string) (Game, bool, error)
	ListByWeek(ctx context.Context, weekID string) ([]Game, error)
	ListMustPickByWeek(ctx context.Context, weekID string) ([]Game, error)
	Create(ctx context.Context, g Game) error
	// UpdateQuote replaces the game's market quote and stamps odds_synced_at.
	UpdateQuote(ctx context.Context, id string, q Quote, syncedAt time.Time) error
	// UpdateScoreSnapshot records a provider score/status observation on a
	// game that is not yet final and stamps scores_synced_at.
	UpdateScoreSnapshot(ctx context.Context, id string, homeScore, awayScore *int, status string, syncedAt time.Time) error
	// Finalize writes the final score and flips the status to final. Manual
	// marks the score as admin-entered rather than provider-sourced.
	Finalize(ctx context.Context, id string, homeScore, awayScore int, manual bool, finalizedAt time.Time) error
}
