package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	"github.com/pickemhq/pickem-pool/internal/domain/week"
	"github.com/pickemhq/pickem-pool/internal/platform/id"
	"github.com/pickemhq/pickem-pool/internal/platform/logging"
)

type CreateGameInput struct {
	WeekID     string
	HomeTeam   string
	AwayTeam   string
	KickoffAt  time.Time
	MustPick   bool
	ExternalID int64
	Quote      *game.Quote
}

// WeekGame is one game as the caller sees it: the catalog row, the caller's
// pick if any, and how the line moved since that pick was captured.
type WeekGame struct {
	Game       game.Game
	Pick       *pick.Pick
	LineChange *pick.LineChange
}

type freshnessChecker interface {
	WithFreshnessCheck(ctx context.Context, games []game.Game)
}

type GameService struct {
	weekRepo  week.Repository
	gameRepo  game.Repository
	pickRepo  pick.Repository
	refresher freshnessChecker
	idGen     id.Generator
	logger    *logging.Logger
	now       func() time.Time
}

func NewGameService(
	weekRepo week.Repository,
	gameRepo game.Repository,
	pickRepo pick.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *GameService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameService{
		weekRepo: weekRepo,
		gameRepo: gameRepo,
		pickRepo: pickRepo,
		idGen:    idGen,
		logger:   logger.With("component", "game_service"),
		now:      time.Now,
	}
}

func (s *GameService) SetFreshnessChecker(refresher freshnessChecker) {
	s.refresher = refresher
}

func (s *GameService) Create(ctx context.Context, input CreateGameInput) (game.Game, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.Create")
	defer span.End()

	input.WeekID = strings.TrimSpace(input.WeekID)
	input.HomeTeam = strings.TrimSpace(input.HomeTeam)
	input.AwayTeam = strings.TrimSpace(input.AwayTeam)
	if input.WeekID == "" {
		return game.Game{}, fmt.Errorf("%w: week id is required", ErrInvalidInput)
	}
	if input.HomeTeam == "" || input.AwayTeam == "" {
		return game.Game{}, fmt.Errorf("%w: both team names are required", ErrInvalidInput)
	}
	if input.KickoffAt.IsZero() {
		return game.Game{}, fmt.Errorf("%w: kickoff time is required", ErrInvalidInput)
	}

	_, exists, err := s.weekRepo.GetByID(ctx, input.WeekID)
	if err != nil {
		return game.Game{}, fmt.Errorf("get week by id: %w", err)
	}
	if !exists {
		return game.Game{}, fmt.Errorf("%w: week=%s", ErrNotFound, input.WeekID)
	}

	gameID, err := s.idGen.NewID()
	if err != nil {
		return game.Game{}, fmt.Errorf("generate game id: %w", err)
	}

	now := s.now().UTC()
	item := game.Game{
		ID:         gameID,
		WeekID:     input.WeekID,
		HomeTeam:   input.HomeTeam,
		AwayTeam:   input.AwayTeam,
		KickoffAt:  input.KickoffAt.UTC(),
		MustPick:   input.MustPick,
		Status:     game.StatusScheduled,
		ExternalID: input.ExternalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.Quote != nil {
		q := *input.Quote
		if q.QuotedAt.IsZero() {
			q.QuotedAt = now
		}
		item.Quote = &q
		item.OddsSyncedAt = &now
	}

	if err := s.gameRepo.Create(ctx, item); err != nil {
		return game.Game{}, fmt.Errorf("create game: %w", err)
	}
	return item, nil
}

// ListWeekGames serves the week board for one caller. Stale games get a
// background refresh fired before the cached rows are returned, and any
// favorable line movement on an open pick is applied in passing.
func (s *GameService) ListWeekGames(ctx context.Context, identity Identity, weekID string) ([]WeekGame, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameService.ListWeekGames")
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

	games, err := s.gameRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].KickoffAt.Equal(games[j].KickoffAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].KickoffAt.Before(games[j].KickoffAt)
	})

	if s.refresher != nil {
		s.refresher.WithFreshnessCheck(ctx, games)
	}

	picks, err := s.pickRepo.ListByParticipantAndWeek(ctx, identity.ParticipantID, weekID)
	if err != nil {
		return nil, fmt.Errorf("list picks by week: %w", err)
	}
	picksByGame := make(map[string]pick.Pick, len(picks))
	for _, p := range picks {
		picksByGame[p.GameID] = p
	}

	now := s.now().UTC()
	out := make([]WeekGame, 0, len(games))
	for _, g := range games {
		row := WeekGame{Game: g}
		if p, ok := picksByGame[g.ID]; ok {
			current := game.SpreadForSide(g, p.Side == pick.SideHomeSpread)
			change := pick.ChangeFor(p, current)
			if pick.AutoApplicable(p, change, g.Started(now)) {
				p.Spread = &change.CurrentSpread
				p.UpdatedAt = now
				if err := s.pickRepo.Update(ctx, p); err != nil {
					return nil, fmt.Errorf("apply favorable line to pick %s: %w", p.ID, err)
				}
				s.logger.InfoContext(ctx, "pick moved to improved line",
					"pick_id", p.ID,
					"game_id", g.ID,
					"from", change.OriginalSpread,
					"to", change.CurrentSpread,
				)
			}
			row.Pick = &p
			row.LineChange = change
		}
		out = append(out, row)
	}
	return out, nil
}
