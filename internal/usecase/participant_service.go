package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/participant"
)

type ParticipantService struct {
	participantRepo participant.Repository
	now             func() time.Time
}

func NewParticipantService(participantRepo participant.Repository) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		now:             time.Now,
	}
}

// Resolve turns a verified participant id into a caller identity,
// rejecting ids the pool has never seen.
func (s *ParticipantService) Resolve(ctx context.Context, participantID string) (Identity, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Resolve")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return Identity{}, fmt.Errorf("%w: participant id is required", ErrUnauthorized)
	}

	_, exists, err := s.participantRepo.GetByID(ctx, participantID)
	if err != nil {
		return Identity{}, fmt.Errorf("get participant by id: %w", err)
	}
	if !exists {
		return Identity{}, fmt.Errorf("%w: unknown participant %s", ErrUnauthorized, participantID)
	}
	return Identity{ParticipantID: participantID}, nil
}

func (s *ParticipantService) Register(ctx context.Context, participantID, displayName string) (participant.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ParticipantService.Register")
	defer span.End()

	participantID = strings.TrimSpace(participantID)
	displayName = strings.TrimSpace(displayName)
	if participantID == "" {
		return participant.Participant{}, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	if displayName == "" {
		return participant.Participant{}, fmt.Errorf("%w: display name is required", ErrInvalidInput)
	}

	item := participant.Participant{
		ID:          participantID,
		DisplayName: displayName,
		JoinedAt:    s.now().UTC(),
	}
	if err := s.participantRepo.Create(ctx, item); err != nil {
		return participant.Participant{}, fmt.Errorf("create participant: %w", err)
	}
	return item, nil
}
