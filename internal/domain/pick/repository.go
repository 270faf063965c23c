package pick

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyExists is returned by Create when the (participant, game)
// uniqueness constraint fires. The read-before-write existence check in the
// services is advisory only; the constraint is the authoritative guard and
// callers retry as an update.
var ErrAlreadyExists = errors.New("pick already exists for participant and game")

// Graded carries one grading outcome for persistence.
type Graded struct {
	PickID      string
	Result      Result
	EvaluatedAt time.Time
}

// Repository exposes pick persistence operations.
type Repository interface {
	GetByParticipantAndGame(ctx context.Context, participantID, gameID string) (Pick, bool, error)
	ListByGame(ctx context.Context, gameID string) ([]Pick, error)
	ListByParticipantAndWeek(ctx context.Context, participantID, weekID string) ([]Pick, error)
	Create(ctx context.Context, p Pick) error
	Update(ctx context.Context, p Pick) error
	Delete(ctx context.Context, participantID, gameID string) error
	// GradeAll persists results for every listed pick in one transaction so
	// a crash cannot leave a final game half graded.
	GradeAll(ctx context.Context, graded []Graded) error
	// SubmitExclusive runs fn while holding a mutual-exclusion lock keyed on
	// (participant, week), serializing concurrent bulk submissions so quota
	// counts cannot race.
	SubmitExclusive(ctx context.Context, participantID, weekID string, fn func(context.Context) error) error
}
