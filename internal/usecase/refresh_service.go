package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/platform/logging"
)

const (
	defaultRefreshWorkers = 8
	refreshTimeout        = 30 * time.Second
)

// RefreshService keeps externally-sourced odds and scores fresh without ever
// putting a provider round-trip on a request path. Reads schedule a refresh
// and return immediately with whatever is cached; refresh outcomes go to the
// logger, never to the caller.
type RefreshService struct {
	gameRepo game.Repository
	provider OddsScoreProvider
	results  *ResultService
	pool     *ants.Pool
	logger   *logging.Logger
	now      func() time.Time
}

func NewRefreshService(
	gameRepo game.Repository,
	provider OddsScoreProvider,
	results *ResultService,
	workers int,
	logger *logging.Logger,
) (*RefreshService, error) {
	if workers <= 0 {
		workers = defaultRefreshWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create refresh worker pool: %w", err)
	}
	return &RefreshService{
		gameRepo: gameRepo,
		provider: provider,
		results:  results,
		pool:     pool,
		logger:   logger.With("component", "refresh_service"),
		now:      time.Now,
	}, nil
}

func (s *RefreshService) Close() {
	s.pool.Release()
}

// WithFreshnessCheck fires a background refresh for every stale game in the
// slice and returns without waiting. A saturated pool drops the refresh;
// the next read retries staleness.
func (s *RefreshService) WithFreshnessCheck(ctx context.Context, games []game.Game) {
	now := s.now().UTC()
	for _, g := range games {
		staleOdds := game.StaleOdds(g, now)
		staleScores := game.StaleScores(g, now)
		if !staleOdds && !staleScores {
			continue
		}
		if g.ExternalID <= 0 {
			s.logger.DebugContext(ctx, "stale game has no provider mapping", "game_id", g.ID)
			continue
		}

		g := g
		if err := s.pool.Submit(func() { s.refresh(g, staleOdds, staleScores) }); err != nil {
			s.logger.WarnContext(ctx, "refresh not scheduled", "game_id", g.ID, "error", err.Error())
		}
	}
}

// refresh runs detached from any request lifetime. Failures are logged and
// swallowed; pick correctness never depends on this data, only on the spread
// captured at pick time.
func (s *RefreshService) refresh(g game.Game, staleOdds, staleScores bool) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	var wg conc.WaitGroup
	if staleOdds {
		wg.Go(func() {
			if err := s.refreshOdds(ctx, g); err != nil {
				s.logger.WarnContext(ctx, "odds refresh failed", "game_id", g.ID, "error", err.Error())
			}
		})
	}
	if staleScores {
		wg.Go(func() {
			if err := s.refreshScores(ctx, g); err != nil {
				s.logger.WarnContext(ctx, "score refresh failed", "game_id", g.ID, "error", err.Error())
			}
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "refresh panicked", "game_id", g.ID, "panic", recovered.String())
	}
}

func (s *RefreshService) refreshOdds(ctx context.Context, g game.Game) error {
	quote, err := s.provider.FetchQuote(ctx, g.ExternalID)
	if err != nil {
		return fmt.Errorf("fetch quote external_id=%d: %w", g.ExternalID, err)
	}

	now := s.now().UTC()
	q := game.Quote{
		Spread:        quote.Spread,
		Total:         quote.Total,
		MoneylineHome: quote.MoneylineHome,
		MoneylineAway: quote.MoneylineAway,
		Source:        quote.Source,
		QuotedAt:      quote.QuotedAt,
	}
	if q.QuotedAt.IsZero() {
		q.QuotedAt = now
	}
	if err := s.gameRepo.UpdateQuote(ctx, g.ID, q, now); err != nil {
		return fmt.Errorf("store quote: %w", err)
	}
	s.logger.DebugContext(ctx, "odds refreshed", "game_id", g.ID)
	return nil
}

func (s *RefreshService) refreshScores(ctx context.Context, g game.Game) error {
	score, err := s.provider.FetchScore(ctx, g.ExternalID)
	if err != nil {
		return fmt.Errorf("fetch score external_id=%d: %w", g.ExternalID, err)
	}

	if score.Completed && score.HomeScore != nil && score.AwayScore != nil {
		_, err := s.results.Finalize(ctx, FinalizeInput{
			GameID:    g.ID,
			HomeScore: *score.HomeScore,
			AwayScore: *score.AwayScore,
		})
		if err != nil {
			return fmt.Errorf("finalize from provider score: %w", err)
		}
		return nil
	}

	status := game.NormalizeStatus(score.Status)
	if err := s.gameRepo.UpdateScoreSnapshot(ctx, g.ID, score.HomeScore, score.AwayScore, status, s.now().UTC()); err != nil {
		return fmt.Errorf("store score snapshot: %w", err)
	}
	s.logger.DebugContext(ctx, "scores refreshed", "game_id", g.ID, "status", status)
	return nil
}
