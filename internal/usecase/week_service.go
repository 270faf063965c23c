package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/week"
	"github.com/pickemhq/pickem-pool/internal/platform/id"
)

type CreateWeekInput struct {
	Name             string
	Season           int
	StartsAt         time.Time
	EndsAt           time.Time
	SubmissionCutoff *time.Time
	PickerChoiceCap  *int
	TriplePlayCap    *int
}

type WeekService struct {
	weekRepo week.Repository
	idGen    id.Generator
	now      func() time.Time
}

func NewWeekService(weekRepo week.Repository, idGen id.Generator) *WeekService {
	return &WeekService{
		weekRepo: weekRepo,
		idGen:    idGen,
		now:      time.Now,
	}
}

func (s *WeekService) Create(ctx context.Context, input CreateWeekInput) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Create")
	defer span.End()

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return week.Week{}, fmt.Errorf("%w: week name is required", ErrInvalidInput)
	}
	if input.Season <= 0 {
		return week.Week{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}

	weekID, err := s.idGen.NewID()
	if err != nil {
		return week.Week{}, fmt.Errorf("generate week id: %w", err)
	}

	now := s.now().UTC()
	item := week.Week{
		ID:               weekID,
		Name:             input.Name,
		Season:           input.Season,
		StartsAt:         input.StartsAt.UTC(),
		EndsAt:           input.EndsAt.UTC(),
		SubmissionCutoff: input.SubmissionCutoff,
		PickerChoiceCap:  input.PickerChoiceCap,
		TriplePlayCap:    input.TriplePlayCap,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := week.Validate(item); err != nil {
		if errors.Is(err, week.ErrInvalidWindow) || errors.Is(err, week.ErrNegativeCap) {
			return week.Week{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
		return week.Week{}, fmt.Errorf("validate week: %w", err)
	}

	if err := s.weekRepo.Create(ctx, item); err != nil {
		return week.Week{}, fmt.Errorf("create week: %w", err)
	}
	return item, nil
}

func (s *WeekService) Get(ctx context.Context, weekID string) (week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.Get")
	defer span.End()

	weekID = strings.TrimSpace(weekID)
	if weekID == "" {
		return week.Week{}, fmt.Errorf("%w: week id is required", ErrInvalidInput)
	}

	item, exists, err := s.weekRepo.GetByID(ctx, weekID)
	if err != nil {
		return week.Week{}, fmt.Errorf("get week by id: %w", err)
	}
	if !exists {
		return week.Week{}, fmt.Errorf("%w: week=%s", ErrNotFound, weekID)
	}
	return item, nil
}

func (s *WeekService) ListBySeason(ctx context.Context, season int) ([]week.Week, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WeekService.ListBySeason")
	defer span.End()

	if season <= 0 {
		return nil, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}

	weeks, err := s.weekRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list weeks by season: %w", err)
	}
	return weeks, nil
}
