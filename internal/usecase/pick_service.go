package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	"github.com/pickemhq/pickem-pool/internal/platform/id"
)

// Operation names the pick mutation being validated.
type Operation string

const (
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Validation is the outcome of the pick gate. Expected rejections come back
// as a reason string; errors are reserved for infrastructure failures.
type Validation struct {
	OK     bool
	Reason string
}

func rejected(format string, args ...any) Validation {
	return Validation{Reason: fmt.Sprintf(format, args...)}
}

type SavePickInput struct {
	GameID     string
	Side       pick.Side
	TriplePlay bool
}

type PickService struct {
	weekRepo week.Repository
	gameRepo game.Repository
	pickRepo pick.Repository
	idGen    id.Generator
	now      func() time.Time
}

func NewPickService(
	weekRepo week.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	idGen id.Generator,
) *PickService {
	return &PickService{
		weekRepo: weekRepo,
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		idGen:    idGen,
		now:      time.Now,
	}
}

// Validate runs the ordered pick gate for one mutation. Checks short-circuit
// on the first failure and never write anything.
func (s *PickService) Validate(ctx context.Context, identity Identity, gameID string, triplePlay bool, op Operation) (Validation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Validate")
	defer span.End()

	identity = identity.Normalize()
	gameID = strings.TrimSpace(gameID)
	if !identity.Valid() || gameID == "" {
		return Validation{}, fmt.Errorf("%w: participant id and game id are required", ErrInvalidInput)
	}

	return s.validate(ctx, identity, gameID, triplePlay, op, false)
}

func (s *PickService) validate(ctx context.Context, identity Identity, gameID string, triplePlay bool, op Operation, skipSubmissionLock bool) (Validation, error) {
	g, exists, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return Validation{}, fmt.Errorf("get game by id: %w", err)
	}
	if !exists {
		return rejected("game %s does not exist", gameID), nil
	}

	wk, exists, err := s.weekRepo.GetByID(ctx, g.WeekID)
	if err != nil {
		return Validation{}, fmt.Errorf("get week by id: %w", err)
	}
	if !exists {
		return Validation{}, fmt.Errorf("%w: week=%s referenced by game=%s", ErrNotFound, g.WeekID, gameID)
	}

	now := s.now().UTC()
	if week.CutoffPassed(wk, now) {
		return rejected("submission cutoff for week %s has passed", wk.Name), nil
	}

	existing, hasExisting, err := s.pickRepo.GetByParticipantAndGame(ctx, identity.ParticipantID, gameID)
	if err != nil {
		return Validation{}, fmt.Errorf("get existing pick: %w", err)
	}

	// A started game freezes its pick, except that an unsubmitted pick may
	// still be retracted so the participant is not stuck holding it.
	if g.Started(now) {
		retractable := op == OperationDelete && hasExisting && !existing.Submitted
		if !retractable {
			return rejected("game %s vs %s has already started", g.AwayTeam, g.HomeTeam), nil
		}
	}

	if !skipSubmissionLock {
		locked, err := s.weekLocked(ctx, identity, wk.ID, now)
		if err != nil {
			return Validation{}, err
		}
		if locked {
			return rejected("picks for week %s are already submitted", wk.Name), nil
		}
	}

	if hasExisting && existing.Submitted {
		return rejected("pick for game %s is already submitted and cannot be changed", gameID), nil
	}

	if op == OperationDelete {
		return Validation{OK: true}, nil
	}

	weekPicks, err := s.pickRepo.ListByParticipantAndWeek(ctx, identity.ParticipantID, wk.ID)
	if err != nil {
		return Validation{}, fmt.Errorf("list week picks: %w", err)
	}
	weekGames, err := s.gameRepo.ListByWeek(ctx, wk.ID)
	if err != nil {
		return Validation{}, fmt.Errorf("list week games: %w", err)
	}
	gamesByID := make(map[string]game.Game, len(weekGames))
	for _, item := range weekGames {
		gamesByID[item.ID] = item
	}

	if !hasExisting && !g.MustPick && wk.PickerChoiceCap != nil {
		choiceCount := 0
		for _, p := range weekPicks {
			if pg, ok := gamesByID[p.GameID]; ok && !pg.MustPick {
				choiceCount++
			}
		}
		if choiceCount >= *wk.PickerChoiceCap {
			return rejected("picker's-choice limit of %d picks for week %s reached", *wk.PickerChoiceCap, wk.Name), nil
		}
	}

	// Must-pick games are exempt from the triple-play cap.
	if triplePlay && !g.MustPick && wk.TriplePlayCap != nil {
		tripleCount := 0
		for _, p := range weekPicks {
			if !p.Submitted || !p.TriplePlay {
				continue
			}
			if p.GameID == gameID && existing.TriplePlay {
				continue
			}
			tripleCount++
		}
		if tripleCount >= *wk.TriplePlayCap {
			return rejected("triple-play limit of %d picks for week %s reached", *wk.TriplePlayCap, wk.Name), nil
		}
	}

	return Validation{OK: true}, nil
}

// weekLocked reports whether every eligible pick (a pick on a game that has
// not started) is already submitted. Deliberately scoped to eligible picks
// so one finished game cannot lock the rest of the week forever.
func (s *PickService) weekLocked(ctx context.Context, identity Identity, weekID string, now time.Time) (bool, error) {
	picks, err := s.pickRepo.ListByParticipantAndWeek(ctx, identity.ParticipantID, weekID)
	if err != nil {
		return false, fmt.Errorf("list week picks: %w", err)
	}
	games, err := s.gameRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return false, fmt.Errorf("list week games: %w", err)
	}
	gamesByID := make(map[string]game.Game, len(games))
	for _, item := range games {
		gamesByID[item.ID] = item
	}

	eligible := 0
	for _, p := range picks {
		g, ok := gamesByID[p.GameID]
		if !ok || g.Started(now) {
			continue
		}
		eligible++
		if !p.Submitted {
			return false, nil
		}
	}
	return eligible > 0, nil
}

// Save creates or updates the caller's pick on a game, re-capturing the
// current line for the chosen side. The (participant, game) uniqueness
// constraint stays authoritative: a create that loses the race is retried
// as an update.
func (s *PickService) Save(ctx context.Context, identity Identity, input SavePickInput) (pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Save")
	defer span.End()

	identity = identity.Normalize()
	input.GameID = strings.TrimSpace(input.GameID)
	if !identity.Valid() {
		return pick.Pick{}, fmt.Errorf("%w: participant id is required", ErrInvalidInput)
	}
	if input.GameID == "" {
		return pick.Pick{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if !pick.ValidSide(input.Side) {
		return pick.Pick{}, fmt.Errorf("%w: side must be %s or %s", ErrInvalidInput, pick.SideHomeSpread, pick.SideAwaySpread)
	}

	return s.save(ctx, identity, input, false, false)
}

func (s *PickService) save(ctx context.Context, identity Identity, input SavePickInput, submitted, skipSubmissionLock bool) (pick.Pick, error) {
	g, exists, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get game by id: %w", err)
	}
	if !exists {
		return pick.Pick{}, fmt.Errorf("%w: game=%s", ErrNotFound, input.GameID)
	}

	existing, hasExisting, err := s.pickRepo.GetByParticipantAndGame(ctx, identity.ParticipantID, input.GameID)
	if err != nil {
		return pick.Pick{}, fmt.Errorf("get existing pick: %w", err)
	}

	op := OperationCreate
	if hasExisting {
		op = OperationUpdate
	}
	verdict, err := s.validate(ctx, identity, input.GameID, input.TriplePlay, op, skipSubmissionLock)
	if err != nil {
		return pick.Pick{}, err
	}
	if !verdict.OK {
		return pick.Pick{}, fmt.Errorf("%w: %s", ErrInvalidInput, verdict.Reason)
	}

	now := s.now().UTC()
	spread := game.SpreadForSide(g, input.Side == pick.SideHomeSpread)

	if hasExisting {
		existing.Side = input.Side
		existing.Spread = spread
		existing.TriplePlay = input.TriplePlay
		existing.Submitted = existing.Submitted || submitted
		existing.UpdatedAt = now
		if err := s.pickRepo.Update(ctx, existing); err != nil {
			return pick.Pick{}, fmt.Errorf("update pick: %w", err)
		}
		return existing, nil
	}

	pickID, err := s.idGen.NewID()
	if err != nil {
		return pick.Pick{}, fmt.Errorf("generate pick id: %w", err)
	}
	item := pick.Pick{
		ID:            pickID,
		ParticipantID: identity.ParticipantID,
		GameID:        input.GameID,
		Side:          input.Side,
		Spread:        spread,
		Submitted:     submitted,
		TriplePlay:    input.TriplePlay,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.pickRepo.Create(ctx, item); err != nil {
		if errors.Is(err, pick.ErrAlreadyExists) {
			return s.save(ctx, identity, input, submitted, skipSubmissionLock)
		}
		return pick.Pick{}, fmt.Errorf("create pick: %w", err)
	}
	return item, nil
}

// Delete retracts the caller's pick on a game.
func (s *PickService) Delete(ctx context.Context, identity Identity, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.Delete")
	defer span.End()

	identity = identity.Normalize()
	gameID = strings.TrimSpace(gameID)
	if !identity.Valid() || gameID == "" {
		return fmt.Errorf("%w: participant id and game id are required", ErrInvalidInput)
	}

	_, hasExisting, err := s.pickRepo.GetByParticipantAndGame(ctx, identity.ParticipantID, gameID)
	if err != nil {
		return fmt.Errorf("get existing pick: %w", err)
	}
	if !hasExisting {
		return fmt.Errorf("%w: pick for game=%s", ErrNotFound, gameID)
	}

	verdict, err := s.validate(ctx, identity, gameID, false, OperationDelete, false)
	if err != nil {
		return err
	}
	if !verdict.OK {
		return fmt.Errorf("%w: %s", ErrInvalidInput, verdict.Reason)
	}

	if err := s.pickRepo.Delete(ctx, identity.ParticipantID, gameID); err != nil {
		return fmt.Errorf("delete pick: %w", err)
	}
	return nil
}

// ListByWeek returns the caller's picks for one week. Callers use this to
// re-read the submission state after a partially-failed batch.
func (s *PickService) ListByWeek(ctx context.Context, identity Identity, weekID string) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.ListByWeek")
	defer span.End()

	identity = identity.Normalize()
	weekID = strings.TrimSpace(weekID)
	if !identity.Valid() || weekID == "" {
		return nil, fmt.Errorf("%w: participant id and week id are required", ErrInvalidInput)
	}

	_, exists, err := s.weekRepo.GetByID(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("get week by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: week=%s", ErrNotFound, weekID)
	}

	picks, err := s.pickRepo.ListByParticipantAndWeek(ctx, identity.ParticipantID, weekID)
	if err != nil {
		return nil, fmt.Errorf("list picks by week: %w", err)
	}
	return picks, nil
}
