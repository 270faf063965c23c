package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-pool/internal/domain/game"
	qb "github.com/pickemhq/pickem-pool/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, id string) (game.Game, bool, error) {
	query, args, err := qb.Select(gameColumns()...).
		From("games").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game: %w", err)
	}
	return gameFromRow(row), true, nil
}

func (r *GameRepository) ListByWeek(ctx context.Context, weekID string) ([]game.Game, error) {
	return r.listByWeek(ctx, weekID, false)
}

func (r *GameRepository) ListMustPickByWeek(ctx context.Context, weekID string) ([]game.Game, error) {
	return r.listByWeek(ctx, weekID, true)
}

func (r *GameRepository) listByWeek(ctx context.Context, weekID string, mustPickOnly bool) ([]game.Game, error) {
	conditions := []qb.Condition{qb.Eq("week_id", weekID)}
	if mustPickOnly {
		conditions = append(conditions, qb.Eq("must_pick", true))
	}
	query, args, err := qb.Select(gameColumns()...).
		From("games").
		Where(conditions...).
		OrderBy("kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games by week: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func (r *GameRepository) Create(ctx context.Context, item game.Game) error {
	query, args, err := qb.InsertModel("games", gameInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert game %s: %w", item.ID, err)
	}
	return nil
}

func (r *GameRepository) UpdateQuote(ctx context.Context, id string, q game.Quote, syncedAt time.Time) error {
	builder := qb.Update("games").
		Set("spread", q.Spread).
		Set("total", q.Total).
		Set("moneyline_home", q.MoneylineHome).
		Set("moneyline_away", q.MoneylineAway).
		Set("quote_source", q.Source).
		Set("quoted_at", q.QuotedAt).
		Set("odds_synced_at", syncedAt).
		Set("updated_at", syncedAt).
		Where(qb.Eq("id", id))

	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build update quote query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update quote for game %s: %w", id, err)
	}
	return nil
}

func (r *GameRepository) UpdateScoreSnapshot(ctx context.Context, id string, homeScore, awayScore *int, status string, syncedAt time.Time) error {
	query, args, err := qb.Update("games").
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		Set("status", status).
		Set("scores_synced_at", syncedAt).
		Set("updated_at", syncedAt).
		Where(
			qb.Eq("id", id),
			// A final game never loses its score to a late provider echo.
			qb.Expr("status <> 'final'"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update score snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update score snapshot for game %s: %w", id, err)
	}
	return nil
}

func (r *GameRepository) Finalize(ctx context.Context, id string, homeScore, awayScore int, manual bool, finalizedAt time.Time) error {
	query, args, err := qb.Update("games").
		Set("home_score", homeScore).
		Set("away_score", awayScore).
		Set("manual_score", manual).
		Set("status", game.StatusFinal).
		Set("scores_synced_at", finalizedAt).
		Set("updated_at", finalizedAt).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finalize game query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("finalize game %s: %w", id, err)
	}
	return nil
}
