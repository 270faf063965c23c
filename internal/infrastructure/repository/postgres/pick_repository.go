package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pickemhq/pickem-pool/internal/domain/pick"
	qb "github.com/pickemhq/pickem-pool/internal/platform/querybuilder"
)

type PickRepository struct {
	db *sqlx.DB
}

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func (r *PickRepository) GetByParticipantAndGame(ctx context.Context, participantID, gameID string) (pick.Pick, bool, error) {
	query, args, err := qb.Select(pickColumns()...).
		From("picks").
		Where(qb.Eq("participant_id", participantID), qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return pick.Pick{}, false, fmt.Errorf("build get pick query: %w", err)
	}

	var row pickTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pick.Pick{}, false, nil
		}
		return pick.Pick{}, false, fmt.Errorf("get pick: %w", err)
	}
	return pickFromRow(row), true, nil
}

func (r *PickRepository) ListByGame(ctx context.Context, gameID string) ([]pick.Pick, error) {
	query, args, err := qb.Select(pickColumns()...).
		From("picks").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("participant_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by game query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PickRepository) ListByParticipantAndWeek(ctx context.Context, participantID, weekID string) ([]pick.Pick, error) {
	query, args, err := qb.Select(prefixedPickColumns("p")...).
		From("picks p JOIN games g ON g.id = p.game_id").
		Where(qb.Eq("p.participant_id", participantID), qb.Eq("g.week_id", weekID)).
		OrderBy("g.kickoff_at", "g.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by week query: %w", err)
	}
	return r.list(ctx, query, args)
}

func (r *PickRepository) list(ctx context.Context, query string, args []any) ([]pick.Pick, error) {
	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks: %w", err)
	}
	out := make([]pick.Pick, 0, len(rows))
	for _, row := range rows {
		out = append(out, pickFromRow(row))
	}
	return out, nil
}

func (r *PickRepository) Create(ctx context.Context, item pick.Pick) error {
	query, args, err := qb.InsertModel("picks", pickInsertModel(item), "")
	if err != nil {
		return fmt.Errorf("build insert pick query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return pick.ErrAlreadyExists
		}
		return fmt.Errorf("insert pick %s: %w", item.ID, err)
	}
	return nil
}

func (r *PickRepository) Update(ctx context.Context, item pick.Pick) error {
	row := pickInsertModel(item)
	query, args, err := qb.Update("picks").
		Set("side", row.Side).
		Set("spread", row.Spread).
		Set("triple_play", row.TriplePlay).
		Set("submitted", row.Submitted).
		Set("result", row.Result).
		Set("evaluated_at", row.EvaluatedAt).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("id", row.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update pick query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update pick %s: %w", item.ID, err)
	}
	return nil
}

func (r *PickRepository) Delete(ctx context.Context, participantID, gameID string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM picks WHERE participant_id = $1 AND game_id = $2",
		participantID, gameID,
	); err != nil {
		return fmt.Errorf("delete pick: %w", err)
	}
	return nil
}

func (r *PickRepository) GradeAll(ctx context.Context, graded []pick.Graded) error {
	if len(graded) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin grade transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, g := range graded {
		query, args, err := qb.Update("picks").
			Set("result", string(g.Result)).
			Set("evaluated_at", g.EvaluatedAt).
			Set("updated_at", g.EvaluatedAt).
			Where(qb.Eq("id", g.PickID)).
			ToSQL()
		if err != nil {
			return fmt.Errorf("build grade pick query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("grade pick %s: %w", g.PickID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit grade transaction: %w", err)
	}
	return nil
}

// SubmitExclusive serializes submissions per (participant, week) with a
// transaction-scoped advisory lock. The inner writes still go through the
// pool; the transaction only carries the lock, which releases on commit or
// rollback.
func (r *PickRepository) SubmitExclusive(ctx context.Context, participantID, weekID string, fn func(context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission lock transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockKey := participantID + "::" + weekID
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", lockKey); err != nil {
		return fmt.Errorf("acquire submission lock: %w", err)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("release submission lock: %w", err)
	}
	return nil
}
