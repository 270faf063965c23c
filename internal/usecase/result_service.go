package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/platform/logging"
)

type FinalizeInput struct {
	GameID    string
	HomeScore int
	AwayScore int
	// Manual marks an admin-entered score; provider refreshes stop touching
	// the game's score once set.
	Manual bool
}

// ResultService writes final scores and grades every pick on the finalized
// game. Grading persists in one transaction so a crash cannot leave a final
// game half graded.
type ResultService struct {
	gameRepo game.Repository
	pickRepo pick.Repository
	logger   *logging.Logger
	now      func() time.Time
}

func NewResultService(gameRepo game.Repository, pickRepo pick.Repository, logger *logging.Logger) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ResultService{
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		logger:   logger.With("component", "result_service"),
		now:      time.Now,
	}
}

// Finalize persists the final score and evaluates every pick referencing the
// game. Picks that captured no spread are left ungraded rather than being
// defaulted to a loss. Finalization is not re-runnable; callers gate on the
// game's status before invoking it.
func (s *ResultService) Finalize(ctx context.Context, input FinalizeInput) ([]pick.Pick, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.Finalize")
	defer span.End()

	input.GameID = strings.TrimSpace(input.GameID)
	if input.GameID == "" {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, fmt.Errorf("%w: scores cannot be negative", ErrInvalidInput)
	}

	g, exists, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		return nil, fmt.Errorf("get game by id: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: game=%s", ErrNotFound, input.GameID)
	}
	if g.Final() {
		return nil, fmt.Errorf("%w: game %s is already final", ErrInvalidInput, g.ID)
	}

	now := s.now().UTC()
	if err := s.gameRepo.Finalize(ctx, g.ID, input.HomeScore, input.AwayScore, input.Manual, now); err != nil {
		return nil, fmt.Errorf("finalize game: %w", err)
	}

	picks, err := s.pickRepo.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list picks by game: %w", err)
	}

	graded := make([]pick.Graded, 0, len(picks))
	out := make([]pick.Pick, 0, len(picks))
	for _, p := range picks {
		result, err := pick.Evaluate(p.Side, p.Spread, input.HomeScore, input.AwayScore)
		if err != nil {
			if errors.Is(err, pick.ErrNoSpread) {
				s.logger.WarnContext(ctx, "pick left ungraded, no spread captured",
					"pick_id", p.ID, "game_id", g.ID, "participant_id", p.ParticipantID)
				out = append(out, p)
				continue
			}
			return nil, fmt.Errorf("evaluate pick %s: %w", p.ID, err)
		}
		graded = append(graded, pick.Graded{PickID: p.ID, Result: result, EvaluatedAt: now})
		p.Result = &result
		p.EvaluatedAt = &now
		out = append(out, p)
	}

	if len(graded) > 0 {
		if err := s.pickRepo.GradeAll(ctx, graded); err != nil {
			return nil, fmt.Errorf("grade picks for game %s: %w", g.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "game finalized",
		"game_id", g.ID,
		"home_score", input.HomeScore,
		"away_score", input.AwayScore,
		"picks_graded", len(graded),
		"picks_ungraded", len(picks)-len(graded),
	)
	return out, nil
}
