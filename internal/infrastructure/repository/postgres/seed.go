package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-pool/internal/domain/game"
	"github.com/pickemhq/pickem-pool/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo pool into an empty database. A database that
// already has weeks is left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM weeks`); err != nil {
		return fmt.Errorf("count weeks for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, w := range memory.SeedWeeks() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO weeks (id, name, season, starts_at, ends_at, submission_cutoff, picker_choice_cap, triple_play_cap)
VALUES (:id, :name, :season, :starts_at, :ends_at, :submission_cutoff, :picker_choice_cap, :triple_play_cap)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":                w.ID,
			"name":              w.Name,
			"season":            w.Season,
			"starts_at":         w.StartsAt.UTC(),
			"ends_at":           w.EndsAt.UTC(),
			"submission_cutoff": w.SubmissionCutoff,
			"picker_choice_cap": w.PickerChoiceCap,
			"triple_play_cap":   w.TriplePlayCap,
		})
		if err != nil {
			return fmt.Errorf("bind seed week %s query: %w", w.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed week %s: %w", w.ID, err)
		}
	}

	for _, g := range memory.SeedGames() {
		params := map[string]any{
			"id":             g.ID,
			"week_id":        g.WeekID,
			"home_team":      g.HomeTeam,
			"away_team":      g.AwayTeam,
			"kickoff_at":     g.KickoffAt.UTC(),
			"must_pick":      g.MustPick,
			"status":         game.NormalizeStatus(g.Status),
			"spread":         nil,
			"total":          nil,
			"moneyline_home": nil,
			"moneyline_away": nil,
			"quote_source":   nil,
			"quoted_at":      nil,
		}
		if g.Quote != nil {
			params["spread"] = g.Quote.Spread
			params["total"] = g.Quote.Total
			params["moneyline_home"] = g.Quote.MoneylineHome
			params["moneyline_away"] = g.Quote.MoneylineAway
			params["quote_source"] = g.Quote.Source
			params["quoted_at"] = g.Quote.QuotedAt.UTC()
		}
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO games (id, week_id, home_team, away_team, kickoff_at, must_pick, status, spread, total, moneyline_home, moneyline_away, quote_source, quoted_at)
VALUES (:id, :week_id, :home_team, :away_team, :kickoff_at, :must_pick, :status, :spread, :total, :moneyline_home, :moneyline_away, :quote_source, :quoted_at)
ON CONFLICT (id) DO NOTHING`, params)
		if err != nil {
			return fmt.Errorf("bind seed game %s query: %w", g.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed game %s: %w", g.ID, err)
		}
	}

	for _, p := range memory.SeedParticipants() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO participants (id, display_name, joined_at)
VALUES (:id, :display_name, :joined_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           p.ID,
			"display_name": p.DisplayName,
			"joined_at":    p.JoinedAt.UTC(),
		})
		if err != nil {
			return fmt.Errorf("bind seed participant %s query: %w", p.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed participant %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
